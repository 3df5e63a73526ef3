// Package config - Application configuration management.
//
// Использует Viper для:
// - Загрузки из YAML файлов
// - Переменных окружения (префикс USERDIR, плюс короткие алиасы)
// - Значений по умолчанию
//
// Порядок приоритета (от высшего к низшему):
// 1. Environment variables (включая .env, загруженный godotenv)
// 2. Config file
// 3. Default values
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix - префикс переменных окружения.
const EnvPrefix = "USERDIR"

// DefaultJWTSecret - секрет по умолчанию; запрещён в production.
const DefaultJWTSecret = "change-me-in-production"

// ============================================
// Main Configuration
// ============================================

// Config - главная структура конфигурации приложения.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Procedures ProceduresConfig `mapstructure:"procedures"`
	Auth       AuthConfig       `mapstructure:"auth"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Log        LogConfig        `mapstructure:"log"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Audit      AuditConfig      `mapstructure:"audit"`
}

// ============================================
// App Configuration
// ============================================

// AppConfig - конфигурация приложения.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	BuildTime   string `mapstructure:"build_time"`
	GitCommit   string `mapstructure:"git_commit"`
}

// IsDevelopment возвращает true если окружение development.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction возвращает true если окружение production.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// ============================================
// Server Configuration
// ============================================

// ServerConfig - конфигурация HTTP сервера.
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// Address возвращает полный адрес сервера.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ============================================
// Database Configuration
// ============================================

// Поддерживаемые драйверы.
const (
	DriverSQLServer = "sqlserver"
	DriverMySQL     = "mysql"
	DriverPostgres  = "postgres"
)

// DatabaseConfig - конфигурация базы данных.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlserver, mysql, postgres
	URL             string        `mapstructure:"url"`    // готовый DSN, перекрывает поля ниже
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"` // postgres sslmode / sqlserver encrypt
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// ============================================
// Procedures Configuration
// ============================================

// ProceduresConfig - имена хранимых процедур и режим разбора ответа.
type ProceduresConfig struct {
	Login string `mapstructure:"login"`
	Users string `mapstructure:"users"`
	// StrictEmptyResult - пустой ответ на запись считается отказом
	StrictEmptyResult bool `mapstructure:"strict_empty_result"`
}

// ============================================
// Auth Configuration
// ============================================

// AuthConfig - конфигурация сессионных токенов.
type AuthConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
}

// ============================================
// CORS Configuration
// ============================================

// CORSConfig - конфигурация CORS.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ============================================
// Rate Limit Configuration
// ============================================

// Хранилища счётчиков rate limit.
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// RateLimitConfig - конфигурация rate limiting.
type RateLimitConfig struct {
	Enabled                bool          `mapstructure:"enabled"`
	Backend                string        `mapstructure:"backend"` // memory, redis
	RequestsPerMinute      int           `mapstructure:"requests_per_minute"`
	LoginAttemptsPerMinute int           `mapstructure:"login_attempts_per_minute"`
	CleanupInterval        time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr              string        `mapstructure:"redis_addr"`
	RedisPassword          string        `mapstructure:"redis_password"`
	RedisDB                int           `mapstructure:"redis_db"`
}

// ============================================
// Log Configuration
// ============================================

// LogConfig - конфигурация логирования.
type LogConfig struct {
	Level        string        `mapstructure:"level"`  // debug, info, warn, error
	Format       string        `mapstructure:"format"` // json, text
	Output       string        `mapstructure:"output"` // stdout, stderr, file
	FilePath     string        `mapstructure:"file_path"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

// ============================================
// Tracing / Audit Configuration
// ============================================

// TracingConfig - экспорт спанов в OTLP коллектор.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// AuditConfig - публикация audit-событий в NATS.
type AuditConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	NatsURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// ============================================
// Configuration Loading
// ============================================

// Load загружает конфигурацию из файла и переменных окружения.
//
// configPath - путь к директории с конфигурацией (например, "configs")
// configName - имя файла конфигурации без расширения (например, "config")
func Load(configPath, configName string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := newViper()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/userdir")

	// Читаем конфигурационный файл
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Файл не найден - используем defaults и env vars
	}

	return unmarshal(v)
}

// LoadFromEnv загружает конфигурацию только из переменных окружения.
func LoadFromEnv() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	return unmarshal(newViper())
}

// loadDotEnv подхватывает .env, если он есть. Уже заданные
// переменные окружения не перезаписываются.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDriverDefaults(v.IsSet("database.port"))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// applyDriverDefaults подставляет стандартный порт драйвера, если порт не задан явно.
func (c *Config) applyDriverDefaults(portSet bool) {
	if portSet {
		return
	}
	switch c.Database.Driver {
	case DriverMySQL:
		c.Database.Port = 3306
	case DriverPostgres:
		c.Database.Port = 5432
	default:
		c.Database.Port = 1433
	}
}

// setDefaults устанавливает значения по умолчанию.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "userdir")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	v.SetDefault("database.driver", DriverSQLServer)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "sa")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "userdir")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
	v.SetDefault("database.connect_timeout", "5s")

	// Procedures defaults
	v.SetDefault("procedures.login", "sp_LoginUsuario")
	v.SetDefault("procedures.users", "dbo.sp_Usuario_CRUD")
	v.SetDefault("procedures.strict_empty_result", true)

	// Auth defaults
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.jwt_secret", DefaultJWTSecret)
	v.SetDefault("auth.jwt_issuer", "userdir")
	v.SetDefault("auth.token_expiry", "8h")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"*"})

	// Rate Limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.backend", RateLimitBackendMemory)
	v.SetDefault("rate_limit.requests_per_minute", 100)
	v.SetDefault("rate_limit.login_attempts_per_minute", 10)
	v.SetDefault("rate_limit.cleanup_interval", "2m")
	v.SetDefault("rate_limit.redis_addr", "")
	v.SetDefault("rate_limit.redis_password", "")
	v.SetDefault("rate_limit.redis_db", 0)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/userdir.log")
	v.SetDefault("log.max_age", "168h")
	v.SetDefault("log.rotation_time", "24h")

	// Tracing defaults
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.service_name", "userdir")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_ratio", 1.0)

	// Audit defaults
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.nats_url", "nats://localhost:4222")
	v.SetDefault("audit.subject_prefix", "userdir.audit")
}

// bindEnvVars привязывает короткие алиасы переменных окружения.
func bindEnvVars(v *viper.Viper) {
	// Database (обычно передаётся через env в production)
	_ = v.BindEnv("database.driver", "USERDIR_DATABASE_DRIVER", "DB_DRIVER")
	_ = v.BindEnv("database.url", "USERDIR_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("database.host", "USERDIR_DATABASE_HOST", "DB_HOST")
	_ = v.BindEnv("database.port", "USERDIR_DATABASE_PORT", "DB_PORT")
	_ = v.BindEnv("database.user", "USERDIR_DATABASE_USER", "DB_USER")
	_ = v.BindEnv("database.password", "USERDIR_DATABASE_PASSWORD", "DB_PASSWORD")
	_ = v.BindEnv("database.database", "USERDIR_DATABASE_DATABASE", "DB_NAME")

	// Auth
	_ = v.BindEnv("auth.jwt_secret", "USERDIR_AUTH_JWT_SECRET", "JWT_SECRET")

	// Server
	_ = v.BindEnv("server.port", "USERDIR_SERVER_PORT", "PORT")

	// App
	_ = v.BindEnv("app.environment", "USERDIR_APP_ENVIRONMENT", "ENVIRONMENT", "ENV")

	// Infrastructure
	_ = v.BindEnv("rate_limit.redis_addr", "USERDIR_RATE_LIMIT_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("audit.nats_url", "USERDIR_AUDIT_NATS_URL", "NATS_URL")
}

// ============================================
// Configuration Validation
// ============================================

// Validate валидирует конфигурацию.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLServer, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.App.IsProduction() && c.Auth.Enabled && c.Auth.JWTSecret == DefaultJWTSecret {
		return fmt.Errorf("JWT secret must be changed in production")
	}

	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required when auth is enabled")
	}

	switch c.RateLimit.Backend {
	case RateLimitBackendMemory:
	case RateLimitBackendRedis:
		if c.RateLimit.RedisAddr == "" {
			return fmt.Errorf("redis address is required for the redis rate limit backend")
		}
	default:
		return fmt.Errorf("unsupported rate limit backend: %q", c.RateLimit.Backend)
	}

	if c.Audit.Enabled && c.Audit.NatsURL == "" {
		return fmt.Errorf("nats url is required when audit is enabled")
	}

	return nil
}

// ============================================
// Development Helpers
// ============================================

// Development возвращает конфигурацию для разработки.
func Development() *Config {
	return &Config{
		App: AppConfig{
			Name:        "userdir",
			Version:     "dev",
			Environment: "development",
			Debug:       true,
		},
		Server: ServerConfig{
			Host:              "localhost",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverSQLServer,
			Host:            "localhost",
			Port:            1433,
			User:            "sa",
			Database:        "userdir",
			SSLMode:         "disable",
			MaxConnections:  10,
			MinConnections:  2,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
			ConnectTimeout:  5 * time.Second,
		},
		Procedures: ProceduresConfig{
			Login:             "sp_LoginUsuario",
			Users:             "dbo.sp_Usuario_CRUD",
			StrictEmptyResult: true,
		},
		Auth: AuthConfig{
			Enabled:     true,
			JWTSecret:   "dev-secret-key",
			JWTIssuer:   "userdir-dev",
			TokenExpiry: 8 * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		RateLimit: RateLimitConfig{
			Enabled:                true,
			Backend:                RateLimitBackendMemory,
			RequestsPerMinute:      100,
			LoginAttemptsPerMinute: 10,
			CleanupInterval:        2 * time.Minute,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
		},
		Tracing: TracingConfig{
			ServiceName: "userdir",
			SampleRatio: 1,
		},
		Audit: AuditConfig{
			SubjectPrefix: "userdir.audit",
		},
	}
}

// Test возвращает конфигурацию для тестов.
func Test() *Config {
	cfg := Development()
	cfg.App.Environment = "test"
	cfg.Database.Database = "userdir_test"
	cfg.Log.Level = "error" // Меньше шума в тестах
	return cfg
}
