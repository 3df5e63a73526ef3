// Package postgres реализует ProcedureCaller для PostgreSQL.
//
// Процедуры справочника в PostgreSQL - это функции. Функция возвращает
// либо строки (один result set), либо SETOF refcursor (по курсору на
// result set).
package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationName видна в pg_stat_activity.
const ApplicationName = "userdir"

const pingTimeout = 5 * time.Second

// Config - параметры пула PostgreSQL.
type Config struct {
	URL             string // готовый DSN, перекрывает поля подключения
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string // disable, require, verify-full
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
	// StatementTimeout ограничивает выполнение одной функции на сервере; 0 - без ограничения
	StatementTimeout time.Duration
}

// DefaultConfig - локальная база разработки.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            5432,
		Database:        "userdir",
		User:            "postgres",
		SSLMode:         "disable",
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectTimeout:  5 * time.Second,
	}
}

// DSN возвращает URL подключения в форме postgres://.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	query := url.Values{}
	if c.SSLMode != "" {
		query.Set("sslmode", c.SSLMode)
	}
	if c.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: query.Encode(),
	}
	return u.String()
}

// poolConfig разбирает DSN и накладывает настройки пула.
func (c Config) poolConfig() (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if c.MaxConns > 0 {
		pc.MaxConns = c.MaxConns
	}
	if c.MinConns > 0 && c.MinConns <= pc.MaxConns {
		pc.MinConns = c.MinConns
	}
	if c.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = c.MaxConnLifetime
	}
	if c.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = c.MaxConnIdleTime
	}

	params := pc.ConnConfig.RuntimeParams
	if _, set := params["application_name"]; !set {
		params["application_name"] = ApplicationName
	}
	if c.StatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(c.StatementTimeout.Milliseconds(), 10)
	}

	return pc, nil
}

// NewConnectionPool открывает пул и проверяет подключение.
//
// Example:
//
//	pool, err := postgres.NewConnectionPool(ctx, postgres.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
func NewConnectionPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := cfg.poolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
