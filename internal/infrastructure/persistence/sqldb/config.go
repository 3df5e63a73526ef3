// Package sqldb реализует ProcedureCaller для SQL Server и MySQL поверх sqlx.
//
// Patterns:
// - Adapter: переводит procedures.Call в вызов драйвера и обратно
// - Connection Pool: *sqlx.DB, одно соединение на вызов
package sqldb

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	domainErrors "github.com/Haleralex/userdir/internal/domain/errors"
)

// Dialect - способ вызова процедуры.
type Dialect string

const (
	// SQLServer - RPC-вызов по имени процедуры с именованными параметрами.
	SQLServer Dialect = "sqlserver"
	// MySQL - CALL name(?, ...) с позиционными параметрами.
	MySQL Dialect = "mysql"
)

// ParseDialect проверяет имя драйвера из конфигурации.
func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(driver) {
	case SQLServer, MySQL:
		return Dialect(driver), nil
	default:
		return "", fmt.Errorf("%w: %q", domainErrors.ErrUnsupportedDriver, driver)
	}
}

// Config содержит настройки подключения.
type Config struct {
	Dialect         Dialect
	URL             string // готовый DSN, перекрывает остальные поля
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	Encrypt         string // SQL Server: disable|false|true|strict
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию для SQL Server.
func DefaultConfig() Config {
	return Config{
		Dialect:         SQLServer,
		Host:            "localhost",
		Port:            1433,
		Database:        "userdir",
		User:            "sa",
		Encrypt:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		ConnectTimeout:  5 * time.Second,
	}
}

// DSN формирует строку подключения для драйвера диалекта.
func (c Config) DSN() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}

	addr := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))

	switch c.Dialect {
	case SQLServer:
		query := url.Values{}
		query.Set("database", c.Database)
		if c.Encrypt != "" {
			query.Set("encrypt", c.Encrypt)
		}
		if c.ConnectTimeout > 0 {
			query.Set("dial timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
		}
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.User, c.Password),
			Host:     addr,
			RawQuery: query.Encode(),
		}
		return u.String(), nil

	case MySQL:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = c.Database
		mc.ParseTime = true
		mc.Timeout = c.ConnectTimeout
		return mc.FormatDSN(), nil

	default:
		return "", fmt.Errorf("%w: %q", domainErrors.ErrUnsupportedDriver, c.Dialect)
	}
}

// Open открывает пул соединений и проверяет подключение.
//
// Example:
//
//	db, err := sqldb.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(string(cfg.Dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s pool: %w", cfg.Dialect, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
