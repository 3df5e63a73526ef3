// Package middleware содержит HTTP middleware для обработки запросов.
//
// Middleware в Gin - это функции, которые выполняются до/после handlers.
// Они используются для cross-cutting concerns: логирование, rate limit,
// tracing, определение действующего пользователя.
//
// Pattern: Chain of Responsibility
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Haleralex/userdir/internal/adapters/http/common"
	"github.com/Haleralex/userdir/internal/pkg/logger"
)

// RequestIDHeader - имя заголовка для Request ID.
const RequestIDHeader = common.RequestIDKey

// maxRequestIDLength - длиннее клиентский ID не принимаем.
const maxRequestIDLength = 128

// RequestID middleware добавляет уникальный ID к каждому запросу.
//
// Если клиент передаёт X-Request-ID - используем его,
// иначе генерируем новый UUID. ID попадает в заголовок ответа,
// контекст gin и context.Context запроса (для логов и audit).
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		common.SetRequestID(c, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// GetRequestID извлекает Request ID из контекста Gin.
func GetRequestID(c *gin.Context) string {
	return common.GetRequestID(c)
}
