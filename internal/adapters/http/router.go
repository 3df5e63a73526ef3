// Package http - Router configuration for REST API.
//
// Router собирает все handlers и middleware в единую точку входа.
//
// Pattern: Builder
// - Handlers получают только нужные им use cases
// - Middleware применяется к соответствующим группам routes
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Haleralex/userdir/internal/adapters/http/handlers"
	"github.com/Haleralex/userdir/internal/adapters/http/middleware"
	"github.com/Haleralex/userdir/internal/application/dtos"
	"github.com/Haleralex/userdir/internal/application/ports"
)

// MessageNotFound - ответ на неизвестный маршрут.
const MessageNotFound = "Recurso no encontrado"

// ============================================
// Router Configuration
// ============================================

// RateLimitSettings - лимиты запросов.
type RateLimitSettings struct {
	// RequestsPerMinute - глобальный лимит на IP (0 - выключен)
	RequestsPerMinute int
	// LoginAttemptsPerMinute - лимит входов на IP (0 - выключен)
	LoginAttemptsPerMinute int
	// Store - хранилище счётчиков (nil - в памяти процесса)
	Store middleware.RateLimitStore
}

// RouterConfig - конфигурация роутера.
type RouterConfig struct {
	// Logger для middleware
	Logger *slog.Logger
	// HealthChecks - зависимости для /ready и /health/detailed
	HealthChecks map[string]ports.HealthChecker
	// Version приложения
	Version string
	// BuildTime время сборки
	BuildTime string
	// Environment (development, staging, production)
	Environment string
	// AllowedOrigins для CORS (production)
	AllowedOrigins []string
	// TokenValidator - проверка сессионных токенов (nil - все запросы анонимны)
	TokenValidator middleware.TokenValidator
	// RateLimit - лимиты запросов
	RateLimit RateLimitSettings
	// TracingServiceName - имя сервиса в спанах otelgin ("" - tracing выключен)
	TracingServiceName string
}

// DefaultRouterConfig - конфигурация по умолчанию для development.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:         slog.Default(),
		Version:        "dev",
		BuildTime:      "unknown",
		Environment:    "development",
		AllowedOrigins: []string{"*"},
		RateLimit: RateLimitSettings{
			RequestsPerMinute:      100,
			LoginAttemptsPerMinute: 10,
		},
	}
}

func (c *RouterConfig) isProduction() bool {
	return c.Environment == "production"
}

// ============================================
// Use Case Providers
// ============================================

// LoginUseCases - provider для входа.
type LoginUseCases struct {
	ValidateCredentials handlers.ValidateCredentialsUseCase
	// Tokens - выпуск сессионного токена (nil - токен не выдаётся)
	Tokens handlers.TokenIssuer
}

// UserUseCases - provider для справочника пользователей.
type UserUseCases struct {
	List           handlers.ListUsersUseCase
	Get            handlers.GetUserUseCase
	Create         handlers.CreateUserUseCase
	Update         handlers.UpdateUserUseCase
	Delete         handlers.DeleteUserUseCase
	ChangePassword handlers.ChangePasswordUseCase
}

// ============================================
// Router Builder
// ============================================

// RouterBuilder - builder для создания роутера.
type RouterBuilder struct {
	config *RouterConfig
	login  *LoginUseCases
	users  *UserUseCases
}

// NewRouterBuilder создаёт новый builder.
func NewRouterBuilder(config *RouterConfig) *RouterBuilder {
	if config == nil {
		config = DefaultRouterConfig()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &RouterBuilder{
		config: config,
	}
}

// WithLoginUseCases добавляет вход.
func (b *RouterBuilder) WithLoginUseCases(useCases *LoginUseCases) *RouterBuilder {
	b.login = useCases
	return b
}

// WithUserUseCases добавляет справочник пользователей.
func (b *RouterBuilder) WithUserUseCases(useCases *UserUseCases) *RouterBuilder {
	b.users = useCases
	return b
}

// Build создаёт сконфигурированный Gin Engine.
func (b *RouterBuilder) Build() *gin.Engine {
	if b.config.isProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Создаём router без default middleware
	router := gin.New()
	router.HandleMethodNotAllowed = true

	handlers.SetupValidator()

	// ============================================
	// Global Middleware
	// ============================================

	// 1. Recovery - должен быть первым
	router.Use(middleware.Recovery(&middleware.RecoveryConfig{
		Logger:           b.config.Logger,
		EnableStackTrace: !b.config.isProduction(),
	}))

	// 2. Request ID
	router.Use(middleware.RequestID())

	// 3. Security headers
	router.Use(middleware.SecurityHeaders(b.config.isProduction()))

	// 4. CORS
	if b.config.isProduction() {
		router.Use(middleware.CORS(middleware.ProductionCORSConfig(b.config.AllowedOrigins)))
	} else {
		router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}

	// 5. Tracing
	if b.config.TracingServiceName != "" {
		router.Use(otelgin.Middleware(b.config.TracingServiceName))
	}

	// 6. Logging
	logCfg := middleware.DefaultLoggingConfig()
	logCfg.Logger = b.config.Logger
	logCfg.LogRequestBody = !b.config.isProduction()
	router.Use(middleware.Logging(logCfg))

	// 7. Rate Limiting (global)
	if b.config.RateLimit.RequestsPerMinute > 0 {
		router.Use(middleware.RateLimit(&middleware.RateLimitConfig{
			Name:   "global",
			Limit:  b.config.RateLimit.RequestsPerMinute,
			Window: time.Minute,
			Store:  b.config.RateLimit.Store,
			Logger: b.config.Logger,
		}))
	}

	// 8. Metrics (Prometheus)
	router.Use(middleware.Metrics())

	// 9. Identity (действующий пользователь)
	router.Use(middleware.Identity(&middleware.IdentityConfig{
		Validator: b.config.TokenValidator,
		Logger:    b.config.Logger,
	}))

	// ============================================
	// Operational Routes
	// ============================================

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	healthHandler := handlers.NewHealthHandler(
		b.config.HealthChecks,
		b.config.Version,
		b.config.BuildTime,
	)
	healthHandler.RegisterRoutes(router)

	// ============================================
	// Directory Routes
	// ============================================

	if b.login != nil {
		var loginLimits []gin.HandlerFunc
		if b.config.RateLimit.LoginAttemptsPerMinute > 0 {
			loginLimits = append(loginLimits, middleware.LoginRateLimit(
				b.config.RateLimit.LoginAttemptsPerMinute,
				time.Minute,
				b.config.RateLimit.Store,
				b.config.Logger,
			))
		}

		loginHandler := handlers.NewLoginHandler(b.login.ValidateCredentials, b.login.Tokens, b.config.Logger)
		loginHandler.RegisterRoutes(router, loginLimits...)
	}

	if b.users != nil {
		userHandler := handlers.NewUserHandler(
			b.users.List,
			b.users.Get,
			b.users.Create,
			b.users.Update,
			b.users.Delete,
			b.users.ChangePassword,
		)
		userHandler.RegisterRoutes(router)
	}

	// ============================================
	// 404 / 405 Handlers
	// ============================================

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dtos.Fail[dtos.Empty](MessageNotFound+": "+c.Request.URL.Path))
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dtos.Fail[dtos.Empty](MessageNotFound+": "+c.Request.Method+" "+c.Request.URL.Path))
	})

	return router
}

// NewRouter создаёт роутер с базовой конфигурацией (для простых случаев).
func NewRouter(config *RouterConfig) *gin.Engine {
	return NewRouterBuilder(config).Build()
}
