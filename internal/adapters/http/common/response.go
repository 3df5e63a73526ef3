// Package common содержит общие типы и helpers HTTP слоя.
//
// Вынесен в отдельный пакет чтобы избежать циклических импортов
// между handlers, middleware и основным http пакетом.
//
// Все ответы справочника - конверт dtos.APIResponse с HTTP 200,
// включая ошибки клиента, перехваченные panic и отказы rate limiter.
package common

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/userdir/internal/application/dtos"
)

// ============================================
// Messages
// ============================================

const (
	// InvalidRequestPrefix - префикс сообщений об ошибке клиента.
	InvalidRequestPrefix = "Solicitud inválida: "

	// MessageMissingUserID - не передан обязательный idUsuario.
	MessageMissingUserID = InvalidRequestPrefix + "idUsuario es obligatorio"

	// MessageTooManyRequests - превышен лимит запросов.
	MessageTooManyRequests = "Demasiadas solicitudes, intente más tarde."
)

// ============================================
// Context keys
// ============================================

const (
	// RequestIDKey - заголовок и ключ контекста gin для Request ID.
	RequestIDKey = "X-Request-ID"

	// ActorKey - ключ контекста gin для действующего пользователя.
	ActorKey = "userdir_actor"

	// OutcomeKey - ключ контекста gin для поля Exito отправленного конверта.
	OutcomeKey = "userdir_outcome"
)

// GetRequestID возвращает Request ID из контекста.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// SetRequestID устанавливает Request ID в контекст и заголовок ответа.
func SetRequestID(c *gin.Context, id string) {
	c.Set(RequestIDKey, id)
	c.Header(RequestIDKey, id)
}

// GetActor возвращает действующего пользователя или "" для анонимного запроса.
func GetActor(c *gin.Context) string {
	return c.GetString(ActorKey)
}

// SetActor сохраняет действующего пользователя.
func SetActor(c *gin.Context, actor string) {
	c.Set(ActorKey, actor)
}

// GetOutcome возвращает Exito отправленного конверта; ok=false, если
// ответ не был конвертом (метрики, health, 404 от gin).
func GetOutcome(c *gin.Context) (exito, ok bool) {
	v, exists := c.Get(OutcomeKey)
	if !exists {
		return false, false
	}
	exito, ok = v.(bool)
	return exito, ok
}

// ============================================
// Response Helpers
// ============================================

// Respond отправляет конверт use case как есть.
func Respond[T any](c *gin.Context, resp dtos.APIResponse[T]) {
	c.Set(OutcomeKey, resp.Success)
	c.JSON(http.StatusOK, resp)
}

// Reject отправляет отказ без вызова процедуры (ошибка клиента).
func Reject(c *gin.Context, message string) {
	c.Set(OutcomeKey, false)
	c.JSON(http.StatusOK, dtos.Fail[dtos.Empty](message))
}

// AbortWithException прерывает цепочку конвертом "Excepción: ...".
func AbortWithException(c *gin.Context, err error) {
	c.Set(OutcomeKey, false)
	c.AbortWithStatusJSON(http.StatusOK, dtos.Exception[dtos.Empty](err))
}

// AbortRateLimited прерывает цепочку конвертом-отказом с HTTP 200.
// Превышение лимита видно по Exito=false и заголовку Retry-After.
func AbortRateLimited(c *gin.Context) {
	c.Set(OutcomeKey, false)
	c.AbortWithStatusJSON(http.StatusOK, dtos.Fail[dtos.Empty](MessageTooManyRequests))
}
