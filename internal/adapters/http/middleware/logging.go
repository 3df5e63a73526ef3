// Package middleware - журнал HTTP запросов через slog.
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/userdir/internal/adapters/http/common"
	"github.com/Haleralex/userdir/internal/pkg/logger"
)

// redacted заменяет значение секретного поля в журнале.
const redacted = logger.Redacted

// LoggingConfig - конфигурация журнала запросов.
type LoggingConfig struct {
	Logger *slog.Logger
	// SkipPaths - пути без записи (probes, /metrics)
	SkipPaths []string
	// LogRequestBody - писать JSON тело запроса с маскировкой RedactFields
	LogRequestBody bool
	// MaxBodySize - предел тела в байтах; больше - тело не пишется
	MaxBodySize int
	// RedactFields - дополнительные поля верхнего уровня JSON, значения
	// которых маскируются (без учёта регистра, как и биндинг JSON)
	RedactFields []string
}

// DefaultLoggingConfig - конфигурация по умолчанию.
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Logger:      slog.Default(),
		SkipPaths:   []string{"/health", "/ready", "/live", "/metrics"},
		MaxBodySize: 4096,
		RedactFields: []string{
			"Password",
			"PasswordActual",
			"PasswordNueva",
			"Respuesta",
			"FotografiaBase64",
		},
	}
}

// Logging пишет одну запись на запрос.
//
// Уровень: Error для 5xx, Warn для прочих 4xx и для конвертов с
// Exito=false (справочник отвечает 200 на отказы), иначе Info.
func Logging(config *LoggingConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultLoggingConfig()
	}
	log := logger.OrDefault(config.Logger)

	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}
	secret := make(map[string]struct{}, len(config.RedactFields))
	for _, f := range config.RedactFields {
		secret[strings.ToLower(f)] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		var body []byte
		if config.LogRequestBody && c.Request.Body != nil && c.Request.ContentLength <= int64(config.MaxBodySize) {
			// При chunked (ContentLength -1) тело может быть длиннее
			// прочитанного префикса: остаток отдаётся хендлеру как есть.
			orig := c.Request.Body
			body, _ = io.ReadAll(io.LimitReader(orig, int64(config.MaxBodySize)+1))
			c.Request.Body = replayBody{
				Reader: io.MultiReader(bytes.NewReader(body), orig),
				Closer: orig,
			}
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		attrs := make([]slog.Attr, 0, 12)
		attrs = append(attrs,
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", elapsed),
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
		)
		if q := c.Request.URL.RawQuery; q != "" {
			attrs = append(attrs, slog.String("query", q))
		}
		if actor := common.GetActor(c); actor != "" {
			attrs = append(attrs, slog.String("actor", actor))
		}

		exito, enveloped := common.GetOutcome(c)
		if enveloped {
			attrs = append(attrs, slog.Bool("exito", exito))
		}

		if len(body) > 0 {
			if len(body) > config.MaxBodySize {
				attrs = append(attrs, slog.String("request_body", "[too large]"))
			} else {
				attrs = append(attrs, slog.Any("request_body", redactJSON(body, secret)))
			}
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest, enveloped && !exito:
			level = slog.LevelWarn
		}

		log.LogAttrs(c.Request.Context(), level, "HTTP Request", attrs...)
	}
}

// replayBody отдаёт прочитанный префикс и остаток исходного тела.
type replayBody struct {
	io.Reader
	io.Closer
}

// redactJSON маскирует секретные поля объекта. Не-объект или
// невалидный JSON в журнал не попадает.
func redactJSON(body []byte, secret map[string]struct{}) any {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return "[unparsed]"
	}
	for name, v := range fields {
		_, listed := secret[strings.ToLower(name)]
		if (listed || logger.IsSensitive(name)) && v != nil {
			fields[name] = redacted
		}
	}
	return fields
}
