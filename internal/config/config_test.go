package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate переносит тест в пустую директорию, чтобы чужой .env или
// config.yaml не влиял на результат.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestAppConfig_Environment(t *testing.T) {
	tests := []struct {
		environment string
		development bool
		production  bool
	}{
		{"development", true, false},
		{"production", false, true},
		{"staging", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			cfg := &AppConfig{Environment: tt.environment}
			assert.Equal(t, tt.development, cfg.IsDevelopment())
			assert.Equal(t, tt.production, cfg.IsProduction())
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	cfg := &ServerConfig{Host: "0.0.0.0", Port: 3000}
	assert.Equal(t, "0.0.0.0:3000", cfg.Address())
}

// ============================================
// Validate
// ============================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "development is valid", mutate: func(*Config) {}},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "oracle" },
			wantErr: "unsupported database driver",
		},
		{
			name:    "empty host without url",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: "database host is required",
		},
		{
			name: "url replaces host",
			mutate: func(c *Config) {
				c.Database.Host = ""
				c.Database.URL = "sqlserver://sa:pw@db:1433?database=userdir"
			},
		},
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name: "default secret in production",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Auth.JWTSecret = DefaultJWTSecret
			},
			wantErr: "JWT secret must be changed",
		},
		{
			name: "default secret in production without auth",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Auth.JWTSecret = DefaultJWTSecret
				c.Auth.Enabled = false
			},
		},
		{
			name:    "empty secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "" },
			wantErr: "JWT secret is required",
		},
		{
			name:    "unknown rate limit backend",
			mutate:  func(c *Config) { c.RateLimit.Backend = "memcached" },
			wantErr: "unsupported rate limit backend",
		},
		{
			name:    "redis without address",
			mutate:  func(c *Config) { c.RateLimit.Backend = RateLimitBackendRedis },
			wantErr: "redis address is required",
		},
		{
			name: "redis with address",
			mutate: func(c *Config) {
				c.RateLimit.Backend = RateLimitBackendRedis
				c.RateLimit.RedisAddr = "localhost:6379"
			},
		},
		{
			name: "audit without nats url",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.NatsURL = ""
			},
			wantErr: "nats url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := Development()
			tt.mutate(cfg)

			// Act
			err := cfg.Validate()

			// Assert
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// ============================================
// Presets
// ============================================

func TestDevelopment(t *testing.T) {
	cfg := Development()

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, DriverSQLServer, cfg.Database.Driver)
	assert.Equal(t, "sp_LoginUsuario", cfg.Procedures.Login)
	assert.Equal(t, "dbo.sp_Usuario_CRUD", cfg.Procedures.Users)
	assert.True(t, cfg.Procedures.StrictEmptyResult)
	assert.Equal(t, RateLimitBackendMemory, cfg.RateLimit.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestTest(t *testing.T) {
	cfg := Test()

	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, "userdir_test", cfg.Database.Database)
	assert.Equal(t, "error", cfg.Log.Level)
}

// ============================================
// Loading
// ============================================

func TestLoadFromEnv_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, "userdir", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, DriverSQLServer, cfg.Database.Driver)
	assert.Equal(t, 1433, cfg.Database.Port)
	assert.Equal(t, "dbo.sp_Usuario_CRUD", cfg.Procedures.Users)
	assert.True(t, cfg.Procedures.StrictEmptyResult)
	assert.Equal(t, 8*time.Hour, cfg.Auth.TokenExpiry)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10, cfg.RateLimit.LoginAttemptsPerMinute)
	assert.Equal(t, 7*24*time.Hour, cfg.Log.MaxAge)
	assert.False(t, cfg.Tracing.Enabled)
	assert.False(t, cfg.Audit.Enabled)
	assert.Equal(t, "userdir.audit", cfg.Audit.SubjectPrefix)
}

func TestLoadFromEnv_DriverDefaultPort(t *testing.T) {
	tests := []struct {
		driver string
		port   int
	}{
		{DriverSQLServer, 1433},
		{DriverMySQL, 3306},
		{DriverPostgres, 5432},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			isolate(t)
			t.Setenv("USERDIR_DATABASE_DRIVER", tt.driver)

			cfg, err := LoadFromEnv()

			require.NoError(t, err)
			assert.Equal(t, tt.port, cfg.Database.Port)
		})
	}
}

func TestLoadFromEnv_ExplicitPortWins(t *testing.T) {
	isolate(t)
	t.Setenv("DB_DRIVER", DriverPostgres)
	t.Setenv("DB_PORT", "6543")

	cfg, err := LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 6543, cfg.Database.Port)
}

func TestLoadFromEnv_Aliases(t *testing.T) {
	// Arrange
	isolate(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "directorio")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "Usuarios")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("ENVIRONMENT", "staging")

	// Act
	cfg, err := LoadFromEnv()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "directorio", cfg.Database.User)
	assert.Equal(t, "pw", cfg.Database.Password)
	assert.Equal(t, "Usuarios", cfg.Database.Database)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "staging", cfg.App.Environment)
}

func TestLoadFromEnv_PrefixedVariables(t *testing.T) {
	isolate(t)
	t.Setenv("USERDIR_PROCEDURES_STRICT_EMPTY_RESULT", "false")
	t.Setenv("USERDIR_RATE_LIMIT_BACKEND", "redis")
	t.Setenv("USERDIR_RATE_LIMIT_REDIS_ADDR", "redis:6379")

	cfg, err := LoadFromEnv()

	require.NoError(t, err)
	assert.False(t, cfg.Procedures.StrictEmptyResult)
	assert.Equal(t, RateLimitBackendRedis, cfg.RateLimit.Backend)
	assert.Equal(t, "redis:6379", cfg.RateLimit.RedisAddr)
}

func TestLoadFromEnv_ProductionDefaultSecret(t *testing.T) {
	isolate(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadFromEnv()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret must be changed")
}

func TestLoadFromEnv_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("USERDIR_APP_NAME=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("USERDIR_APP_NAME") })

	cfg, err := LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.App.Name)
}

func TestLoad_FileNotFound(t *testing.T) {
	isolate(t)

	cfg, err := Load("nonexistent", "config")

	require.NoError(t, err)
	assert.Equal(t, "userdir", cfg.App.Name)
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	// Arrange
	dir := isolate(t)
	yaml := []byte(`
database:
  driver: mysql
  host: mysql.internal
procedures:
  users: sp_Usuario_CRUD
server:
  port: 8081
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("USERDIR_SERVER_PORT", "9000")

	// Act
	cfg, err := Load(dir, "config")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "mysql.internal", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "sp_Usuario_CRUD", cfg.Procedures.Users)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [port"), 0o600))

	_, err := Load(dir, "config")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
