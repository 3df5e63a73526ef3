// Package handlers - Login HTTP handler.
package handlers

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/userdir/internal/adapters/http/common"
	"github.com/Haleralex/userdir/internal/application/clientinfo"
	"github.com/Haleralex/userdir/internal/application/dtos"
	"github.com/Haleralex/userdir/internal/pkg/logger"
)

// AuthTokenHeader - заголовок ответа с сессионным токеном.
const AuthTokenHeader = "X-Auth-Token"

// ============================================
// Use Case Interfaces
// ============================================

// ValidateCredentialsUseCase - интерфейс проверки учётных данных.
type ValidateCredentialsUseCase interface {
	Execute(ctx context.Context, cmd dtos.LoginCommand, transport clientinfo.Transport) dtos.LoginResponse
}

// TokenIssuer выпускает сессионный токен после успешного входа.
type TokenIssuer interface {
	Issue(userID, session, branchID string) (string, error)
}

// ============================================
// Login Handler
// ============================================

// LoginHandler обрабатывает POST /Login/ValidarCredenciales.
type LoginHandler struct {
	validate ValidateCredentialsUseCase
	tokens   TokenIssuer
	logger   *slog.Logger
}

// NewLoginHandler создаёт новый LoginHandler. tokens может быть nil:
// тогда токен не выдаётся.
func NewLoginHandler(validate ValidateCredentialsUseCase, tokens TokenIssuer, log *slog.Logger) *LoginHandler {
	return &LoginHandler{
		validate: validate,
		tokens:   tokens,
		logger:   logger.OrDefault(log),
	}
}

// ValidateCredentials проверяет учётные данные.
//
// @Summary Validate credentials
// @Tags Login
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body dtos.LoginCommand true "Credentials and optional client context"
// @Success 200 {object} dtos.LoginResponse
// @Router /Login/ValidarCredenciales [post]
func (h *LoginHandler) ValidateCredentials(c *gin.Context) {
	var cmd dtos.LoginCommand
	if !Bind(c, &cmd) {
		return
	}

	resp := h.validate.Execute(c.Request.Context(), cmd, NewTransport(c))

	if resp.Success && resp.Data != nil && resp.Data.UserID != nil {
		h.issueToken(c, resp.Data)
	}

	common.Respond(c, resp)
}

// issueToken добавляет токен в заголовок. Ошибка не меняет ответ входа.
func (h *LoginHandler) issueToken(c *gin.Context, data *dtos.LoginDataDTO) {
	if h.tokens == nil {
		return
	}

	token, err := h.tokens.Issue(*data.UserID, deref(data.Session), deref(data.BranchID))
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "failed to issue session token", "error", err)
		return
	}
	c.Header(AuthTokenHeader, token)
}

// RegisterRoutes регистрирует маршруты входа.
// Доп. middleware (строгий rate limit) применяются только к этим маршрутам.
func (h *LoginHandler) RegisterRoutes(r gin.IRouter, middlewares ...gin.HandlerFunc) {
	login := r.Group("/Login", middlewares...)
	login.POST("/ValidarCredenciales", h.ValidateCredentials)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
