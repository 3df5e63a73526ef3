// Package container - Dependency Injection container for the application.
//
// Container управляет жизненным циклом всех зависимостей:
// - Создание (logger, tracing, БД, audit, rate limit, токены)
// - Доступ (getters)
// - Закрытие (cleanup в обратном порядке)
//
// Pattern: Composition Root
// - Все зависимости собираются в одном месте
// - Инфраструктуру можно подменить через ContainerBuilder
package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	natsgo "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/Haleralex/userdir/internal/adapters/http"
	"github.com/Haleralex/userdir/internal/adapters/http/handlers"
	"github.com/Haleralex/userdir/internal/adapters/http/middleware"
	"github.com/Haleralex/userdir/internal/application/audit"
	"github.com/Haleralex/userdir/internal/application/ports"
	"github.com/Haleralex/userdir/internal/application/usecases/login"
	"github.com/Haleralex/userdir/internal/application/usecases/user"
	"github.com/Haleralex/userdir/internal/config"
	"github.com/Haleralex/userdir/internal/infrastructure/auth"
	"github.com/Haleralex/userdir/internal/infrastructure/messaging/nats"
	"github.com/Haleralex/userdir/internal/infrastructure/persistence/postgres"
	"github.com/Haleralex/userdir/internal/infrastructure/persistence/sqldb"
	"github.com/Haleralex/userdir/internal/infrastructure/ratelimit"
	"github.com/Haleralex/userdir/internal/pkg/logger"
	"github.com/Haleralex/userdir/internal/pkg/tracing"
)

// ============================================
// Container
// ============================================

// Container - DI контейнер приложения.
type Container struct {
	config *config.Config
	logger *slog.Logger

	// Infrastructure
	logFile         io.Closer
	tracingShutdown tracing.ShutdownFunc
	sqlDB           *sqlx.DB
	pgPool          *pgxpool.Pool
	caller          ports.ProcedureCaller
	natsConn        *natsgo.Conn
	auditPublisher  ports.AuditPublisher
	redisClient     *redis.Client
	memoryStore     *ratelimit.MemoryStore
	rateLimitStore  middleware.RateLimitStore
	tokens          *auth.TokenService
	healthChecks    map[string]ports.HealthChecker

	// Use Cases
	validateCredentialsUC *login.ValidateCredentialsUseCase
	listUsersUC           *user.ListUsersUseCase
	getUserUC             *user.GetUserUseCase
	createUserUC          *user.CreateUserUseCase
	updateUserUC          *user.UpdateUserUseCase
	deleteUserUC          *user.DeleteUserUseCase
	changePasswordUC      *user.ChangePasswordUseCase

	// HTTP
	httpServer *http.Server
}

// New создаёт новый контейнер с заданной конфигурацией.
func New(cfg *config.Config) *Container {
	return &Container{
		config:       cfg,
		healthChecks: make(map[string]ports.HealthChecker),
	}
}

// ============================================
// Initialization
// ============================================

// Initialize инициализирует все зависимости.
func (c *Container) Initialize(ctx context.Context) error {
	return NewBuilder(c.config).build(ctx, c)
}

// initLogger инициализирует логгер.
func (c *Container) initLogger() (*slog.Logger, error) {
	var output io.Writer = os.Stdout

	switch c.config.Log.Output {
	case "stderr":
		output = os.Stderr
	case "file":
		w, err := logger.NewRotatingWriter(logger.FileConfig{
			Path:         c.config.Log.FilePath,
			MaxAge:       c.config.Log.MaxAge,
			RotationTime: c.config.Log.RotationTime,
		})
		if err != nil {
			return nil, err
		}
		c.logFile = w
		output = w
	}

	log := logger.New(&logger.Config{
		Level:     c.config.Log.Level,
		Format:    c.config.Log.Format,
		Output:    output,
		AddSource: c.config.App.Debug,
	})
	slog.SetDefault(log)

	return log, nil
}

// initTracing регистрирует глобальный tracer provider.
func (c *Container) initTracing(ctx context.Context) error {
	shutdown, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     c.config.Tracing.Enabled,
		Endpoint:    c.config.Tracing.Endpoint,
		ServiceName: c.config.Tracing.ServiceName,
		Version:     c.config.App.Version,
		Environment: c.config.App.Environment,
		Insecure:    c.config.Tracing.Insecure,
		SampleRatio: c.config.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}
	c.tracingShutdown = shutdown
	return nil
}

// initDatabase открывает пул выбранного драйвера и создаёт ProcedureCaller.
func (c *Container) initDatabase(ctx context.Context) error {
	db := c.config.Database

	if db.Driver == config.DriverPostgres {
		pool, err := postgres.NewConnectionPool(ctx, postgres.Config{
			URL:             db.URL,
			Host:            db.Host,
			Port:            db.Port,
			Database:        db.Database,
			User:            db.User,
			Password:        db.Password,
			SSLMode:         db.SSLMode,
			MaxConns:        int32(db.MaxConnections),
			MinConns:        int32(db.MinConnections),
			MaxConnLifetime: db.MaxConnLifetime,
			MaxConnIdleTime: db.MaxConnIdleTime,
			ConnectTimeout:  db.ConnectTimeout,
		})
		if err != nil {
			return err
		}
		c.pgPool = pool
		c.caller = postgres.NewCaller(pool, c.logger)
		return nil
	}

	dialect, err := sqldb.ParseDialect(db.Driver)
	if err != nil {
		return err
	}

	sqlDB, err := sqldb.Open(ctx, sqldb.Config{
		Dialect:         dialect,
		URL:             db.URL,
		Host:            db.Host,
		Port:            db.Port,
		Database:        db.Database,
		User:            db.User,
		Password:        db.Password,
		Encrypt:         db.SSLMode,
		MaxOpenConns:    db.MaxConnections,
		MaxIdleConns:    db.MinConnections,
		ConnMaxLifetime: db.MaxConnLifetime,
		ConnMaxIdleTime: db.MaxConnIdleTime,
		ConnectTimeout:  db.ConnectTimeout,
	})
	if err != nil {
		return err
	}
	c.sqlDB = sqlDB
	c.caller = sqldb.NewCaller(sqlDB, dialect, c.logger)
	return nil
}

// initAudit подключает NATS, если audit включён.
func (c *Container) initAudit() error {
	if !c.config.Audit.Enabled {
		c.auditPublisher = ports.NoopAuditPublisher
		return nil
	}

	conn, err := nats.Connect(nats.Config{
		URL:           c.config.Audit.NatsURL,
		SubjectPrefix: c.config.Audit.SubjectPrefix,
		Name:          c.config.App.Name,
	}, c.logger)
	if err != nil {
		return err
	}
	c.natsConn = conn
	c.auditPublisher = nats.NewPublisher(conn, c.config.Audit.SubjectPrefix)
	c.healthChecks["nats"] = handlers.HealthCheckFunc(func(context.Context) error {
		if !conn.IsConnected() {
			return fmt.Errorf("nats status: %s", conn.Status())
		}
		return nil
	})
	return nil
}

// initRateLimit выбирает хранилище счётчиков.
func (c *Container) initRateLimit() {
	if !c.config.RateLimit.Enabled {
		return
	}

	if c.config.RateLimit.Backend == config.RateLimitBackendRedis {
		client := ratelimit.NewRedisClient(ratelimit.RedisConfig{
			Addr:     c.config.RateLimit.RedisAddr,
			Password: c.config.RateLimit.RedisPassword,
			DB:       c.config.RateLimit.RedisDB,
		})
		c.redisClient = client
		c.rateLimitStore = ratelimit.NewRedisStore(client, "")
		c.healthChecks["redis"] = handlers.HealthCheckFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		return
	}

	c.memoryStore = ratelimit.NewMemoryStore(c.config.RateLimit.CleanupInterval)
	c.rateLimitStore = c.memoryStore
}

// initAuth создаёт сервис сессионных токенов.
func (c *Container) initAuth() error {
	if !c.config.Auth.Enabled {
		return nil
	}

	tokens, err := auth.NewTokenService(auth.Config{
		Secret: c.config.Auth.JWTSecret,
		Issuer: c.config.Auth.JWTIssuer,
		Expiry: c.config.Auth.TokenExpiry,
	})
	if err != nil {
		return err
	}
	c.tokens = tokens
	return nil
}

// initUseCases инициализирует use cases.
func (c *Container) initUseCases() {
	recorder := audit.NewRecorder(c.auditPublisher, c.logger)

	c.validateCredentialsUC = login.NewValidateCredentialsUseCase(
		c.caller,
		c.config.Procedures.Login,
		recorder,
		c.logger,
	)

	deps := user.Dependencies{
		Caller: c.caller,
		Audit:  recorder,
		Logger: c.logger,
		Options: user.Options{
			Procedure:         c.config.Procedures.Users,
			StrictEmptyResult: c.config.Procedures.StrictEmptyResult,
		},
	}
	c.listUsersUC = user.NewListUsersUseCase(deps)
	c.getUserUC = user.NewGetUserUseCase(deps)
	c.createUserUC = user.NewCreateUserUseCase(deps)
	c.updateUserUC = user.NewUpdateUserUseCase(deps)
	c.deleteUserUC = user.NewDeleteUserUseCase(deps)
	c.changePasswordUC = user.NewChangePasswordUseCase(deps)
}

// initHTTPServer инициализирует HTTP сервер.
func (c *Container) initHTTPServer() {
	if checker, ok := c.caller.(ports.HealthChecker); ok {
		c.healthChecks["database"] = checker
	}

	routerConfig := &http.RouterConfig{
		Logger:         c.logger,
		HealthChecks:   c.healthChecks,
		Version:        c.config.App.Version,
		BuildTime:      c.config.App.BuildTime,
		Environment:    c.config.App.Environment,
		AllowedOrigins: c.config.CORS.AllowedOrigins,
	}
	if c.rateLimitStore != nil {
		routerConfig.RateLimit = http.RateLimitSettings{
			RequestsPerMinute:      c.config.RateLimit.RequestsPerMinute,
			LoginAttemptsPerMinute: c.config.RateLimit.LoginAttemptsPerMinute,
			Store:                  c.rateLimitStore,
		}
	}
	if c.config.Tracing.Enabled {
		routerConfig.TracingServiceName = c.config.Tracing.ServiceName
	}

	loginUseCases := &http.LoginUseCases{ValidateCredentials: c.validateCredentialsUC}
	// nil *TokenService в интерфейсе не равен nil, поэтому присваиваем явно.
	if c.tokens != nil {
		routerConfig.TokenValidator = c.tokens
		loginUseCases.Tokens = c.tokens
	}

	router := http.NewRouterBuilder(routerConfig).
		WithLoginUseCases(loginUseCases).
		WithUserUseCases(&http.UserUseCases{
			List:           c.listUsersUC,
			Get:            c.getUserUC,
			Create:         c.createUserUC,
			Update:         c.updateUserUC,
			Delete:         c.deleteUserUC,
			ChangePassword: c.changePasswordUC,
		}).
		Build()

	serverConfig := &http.ServerConfig{
		Host:              c.config.Server.Host,
		Port:              strconv.Itoa(c.config.Server.Port),
		ReadTimeout:       c.config.Server.ReadTimeout,
		ReadHeaderTimeout: c.config.Server.ReadHeaderTimeout,
		WriteTimeout:      c.config.Server.WriteTimeout,
		IdleTimeout:       c.config.Server.IdleTimeout,
		ShutdownTimeout:   c.config.Server.ShutdownTimeout,
		Logger:            c.logger,
	}

	c.httpServer = http.NewServer(serverConfig, router)
}

// ============================================
// Getters
// ============================================

// Config возвращает конфигурацию.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger возвращает логгер.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Caller возвращает адаптер хранимых процедур.
func (c *Container) Caller() ports.ProcedureCaller {
	return c.caller
}

// HTTPServer возвращает HTTP сервер.
func (c *Container) HTTPServer() *http.Server {
	return c.httpServer
}

// Tokens возвращает сервис токенов (nil, если auth выключен).
func (c *Container) Tokens() *auth.TokenService {
	return c.tokens
}

// HealthChecks возвращает зарегистрированные проверки зависимостей.
func (c *Container) HealthChecks() map[string]ports.HealthChecker {
	return c.healthChecks
}

// ValidateCredentialsUseCase возвращает use case входа.
func (c *Container) ValidateCredentialsUseCase() *login.ValidateCredentialsUseCase {
	return c.validateCredentialsUC
}

// ListUsersUseCase возвращает use case списка пользователей.
func (c *Container) ListUsersUseCase() *user.ListUsersUseCase {
	return c.listUsersUC
}

// ============================================
// Shutdown
// ============================================

// Shutdown выполняет graceful shutdown всех компонентов.
func (c *Container) Shutdown(ctx context.Context) error {
	log := logger.OrDefault(c.logger)
	log.Info("Shutting down container...")

	var errs []error

	// 1. HTTP Server
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	// 2. Audit (доотправляем буфер)
	if c.natsConn != nil {
		if err := c.natsConn.Drain(); err != nil {
			errs = append(errs, fmt.Errorf("nats drain: %w", err))
		}
	}

	// 3. Rate limit
	if c.memoryStore != nil {
		_ = c.memoryStore.Close()
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	// 4. Database
	if c.sqlDB != nil {
		if err := c.sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	if c.pgPool != nil {
		c.pgPool.Close()
	}

	// 5. Tracing
	if c.tracingShutdown != nil {
		if err := c.tracingShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("shutdown errors: %w", err)
	}

	log.Info("Container shutdown complete")

	// 6. Log file - последним
	if c.logFile != nil {
		_ = c.logFile.Close()
	}
	return nil
}

// ============================================
// Run
// ============================================

// Run запускает HTTP сервер и ожидает сигнал завершения.
func (c *Container) Run(ctx context.Context) error {
	c.logger.Info("Starting userdir API server",
		slog.String("version", c.config.App.Version),
		slog.String("environment", c.config.App.Environment),
		slog.String("driver", c.config.Database.Driver),
		slog.String("address", c.config.Server.Address()),
	)

	return c.httpServer.Run(ctx)
}

// ============================================
// Builder Pattern
// ============================================

// ContainerBuilder - builder для создания контейнера с кастомными компонентами.
type ContainerBuilder struct {
	cfg            *config.Config
	logger         *slog.Logger
	caller         ports.ProcedureCaller
	auditPublisher ports.AuditPublisher
	rateLimitStore middleware.RateLimitStore
}

// NewBuilder создаёт новый builder.
func NewBuilder(cfg *config.Config) *ContainerBuilder {
	return &ContainerBuilder{
		cfg: cfg,
	}
}

// WithLogger устанавливает кастомный логгер.
func (b *ContainerBuilder) WithLogger(logger *slog.Logger) *ContainerBuilder {
	b.logger = logger
	return b
}

// WithCaller устанавливает готовый адаптер процедур (БД не открывается).
func (b *ContainerBuilder) WithCaller(caller ports.ProcedureCaller) *ContainerBuilder {
	b.caller = caller
	return b
}

// WithAuditPublisher устанавливает кастомный публикатор audit-событий.
func (b *ContainerBuilder) WithAuditPublisher(publisher ports.AuditPublisher) *ContainerBuilder {
	b.auditPublisher = publisher
	return b
}

// WithRateLimitStore устанавливает кастомное хранилище счётчиков.
func (b *ContainerBuilder) WithRateLimitStore(store middleware.RateLimitStore) *ContainerBuilder {
	b.rateLimitStore = store
	return b
}

// Build создаёт контейнер.
func (b *ContainerBuilder) Build(ctx context.Context) (*Container, error) {
	c := New(b.cfg)
	if err := b.build(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (b *ContainerBuilder) build(ctx context.Context, c *Container) (err error) {
	if c.config == nil {
		return errors.New("config is required")
	}

	// Освобождаем уже открытые ресурсы, если инициализация прервалась.
	defer func() {
		if err != nil {
			_ = c.Shutdown(context.WithoutCancel(ctx))
		}
	}()

	// 1. Logger
	if b.logger != nil {
		c.logger = b.logger
	} else if c.logger, err = c.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger.Info("Initializing application container...")

	// 2. Tracing
	if err = c.initTracing(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	// 3. Database
	if b.caller != nil {
		c.caller = b.caller
	} else {
		if err = c.initDatabase(ctx); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		c.logger.Info("Database connected", slog.String("driver", c.config.Database.Driver))
	}

	// 4. Audit
	if b.auditPublisher != nil {
		c.auditPublisher = b.auditPublisher
	} else if err = c.initAudit(); err != nil {
		return fmt.Errorf("failed to initialize audit: %w", err)
	}

	// 5. Rate limit
	if b.rateLimitStore != nil {
		c.rateLimitStore = b.rateLimitStore
	} else {
		c.initRateLimit()
	}

	// 6. Auth
	if err = c.initAuth(); err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}

	// 7. Use Cases + HTTP
	c.initUseCases()
	c.initHTTPServer()

	c.logger.Info("Container initialization complete")
	return nil
}
