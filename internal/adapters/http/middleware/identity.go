// Package middleware - Identity middleware.
//
// Определяет действующего пользователя для audit-атрибуции записей.
// Справочник не требует авторизации: запрос без токена или с
// невалидным токеном обрабатывается как анонимный ("system").
package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/userdir/internal/adapters/http/common"
	"github.com/Haleralex/userdir/internal/infrastructure/auth"
	"github.com/Haleralex/userdir/internal/pkg/logger"
)

// TokenValidator проверяет сессионный токен, выданный при входе.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// IdentityConfig - конфигурация для identity middleware.
type IdentityConfig struct {
	Validator TokenValidator
	Logger    *slog.Logger
}

// Identity middleware читает необязательный "Authorization: Bearer <jwt>".
//
// Валидный токен: subject становится действующим пользователем
// (common.SetActor) и попадает в логи как user_id.
// Всё остальное: запрос остаётся анонимным, ответ не меняется.
func Identity(config *IdentityConfig) gin.HandlerFunc {
	if config == nil || config.Validator == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log := logger.OrDefault(config.Logger)

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		claims, err := config.Validator.Validate(token)
		if err != nil || claims.Subject == "" {
			log.DebugContext(c.Request.Context(), "ignoring session token", "error", err)
			c.Next()
			return
		}

		common.SetActor(c, claims.Subject)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.Subject))

		c.Next()
	}
}

// bearerToken извлекает токен из заголовка "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
