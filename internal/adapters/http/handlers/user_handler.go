// Package handlers - User directory HTTP handlers.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/userdir/internal/adapters/http/common"
	"github.com/Haleralex/userdir/internal/application/dtos"
)

// ============================================
// Use Case Interfaces
// ============================================

// ListUsersUseCase - интерфейс для получения страницы пользователей.
type ListUsersUseCase interface {
	Execute(ctx context.Context, query dtos.ListUsersQuery) dtos.APIResponse[dtos.UserListDTO]
}

// GetUserUseCase - интерфейс для получения пользователя.
type GetUserUseCase interface {
	Execute(ctx context.Context, query dtos.GetUserQuery) dtos.APIResponse[dtos.UserDTO]
}

// CreateUserUseCase - интерфейс для создания пользователя.
type CreateUserUseCase interface {
	Execute(ctx context.Context, cmd dtos.CreateUserCommand) dtos.APIResponse[dtos.UserDTO]
}

// UpdateUserUseCase - интерфейс для обновления пользователя.
type UpdateUserUseCase interface {
	Execute(ctx context.Context, cmd dtos.UpdateUserCommand) dtos.APIResponse[dtos.UserDTO]
}

// DeleteUserUseCase - интерфейс для удаления пользователя.
type DeleteUserUseCase interface {
	Execute(ctx context.Context, cmd dtos.DeleteUserCommand) dtos.APIResponse[dtos.Empty]
}

// ChangePasswordUseCase - интерфейс для смены пароля.
type ChangePasswordUseCase interface {
	Execute(ctx context.Context, cmd dtos.ChangePasswordCommand) dtos.APIResponse[dtos.Empty]
}

// ============================================
// User Handler
// ============================================

// UserHandler обрабатывает HTTP запросы справочника пользователей.
//
// Pattern: Adapter (Hexagonal Architecture)
// - Преобразует HTTP запросы в Use Case вызовы
// - Добавляет действующего пользователя в команды записи
type UserHandler struct {
	listUsers      ListUsersUseCase
	getUser        GetUserUseCase
	createUser     CreateUserUseCase
	updateUser     UpdateUserUseCase
	deleteUser     DeleteUserUseCase
	changePassword ChangePasswordUseCase
}

// NewUserHandler создаёт новый UserHandler.
func NewUserHandler(
	listUsers ListUsersUseCase,
	getUser GetUserUseCase,
	createUser CreateUserUseCase,
	updateUser UpdateUserUseCase,
	deleteUser DeleteUserUseCase,
	changePassword ChangePasswordUseCase,
) *UserHandler {
	return &UserHandler{
		listUsers:      listUsers,
		getUser:        getUser,
		createUser:     createUser,
		updateUser:     updateUser,
		deleteUser:     deleteUser,
		changePassword: changePassword,
	}
}

// ============================================
// HTTP Handlers
// ============================================

// List возвращает страницу пользователей.
//
// @Summary List users
// @Tags Usuario
// @Produce json
// @Param buscar query string false "Search text"
// @Param pagina query int false "Page (default 1)"
// @Param tamanoPagina query int false "Page size (default 10)"
// @Success 200 {object} dtos.APIResponse[dtos.UserListDTO]
// @Router /Usuario/Listar [get]
func (h *UserHandler) List(c *gin.Context) {
	var query dtos.ListUsersQuery
	if !BindQuery(c, &query) {
		return
	}

	common.Respond(c, h.listUsers.Execute(c.Request.Context(), query))
}

// Get возвращает пользователя по idUsuario.
//
// @Summary Get user
// @Tags Usuario
// @Produce json
// @Param idUsuario query string true "User id"
// @Success 200 {object} dtos.APIResponse[dtos.UserDTO]
// @Router /Usuario/Obtener [get]
func (h *UserHandler) Get(c *gin.Context) {
	var query dtos.GetUserQuery
	if !BindQuery(c, &query) {
		return
	}

	common.Respond(c, h.getUser.Execute(c.Request.Context(), query))
}

// Create создаёт пользователя.
//
// @Summary Create user
// @Tags Usuario
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} dtos.APIResponse[dtos.UserDTO]
// @Router /Usuario/Crear [post]
func (h *UserHandler) Create(c *gin.Context) {
	var cmd dtos.CreateUserCommand
	if !Bind(c, &cmd) {
		return
	}
	cmd.Actor = common.GetActor(c)

	common.Respond(c, h.createUser.Execute(c.Request.Context(), cmd))
}

// Update обновляет пользователя.
//
// @Summary Update user
// @Tags Usuario
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} dtos.APIResponse[dtos.UserDTO]
// @Router /Usuario/Actualizar [post]
func (h *UserHandler) Update(c *gin.Context) {
	var cmd dtos.UpdateUserCommand
	if !Bind(c, &cmd) {
		return
	}
	cmd.Actor = common.GetActor(c)

	common.Respond(c, h.updateUser.Execute(c.Request.Context(), cmd))
}

// Delete удаляет пользователя (мягко или жёстко).
//
// @Summary Delete user
// @Tags Usuario
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} dtos.APIResponse[dtos.Empty]
// @Router /Usuario/Eliminar [post]
func (h *UserHandler) Delete(c *gin.Context) {
	var cmd dtos.DeleteUserCommand
	if !Bind(c, &cmd) {
		return
	}
	cmd.Actor = common.GetActor(c)

	common.Respond(c, h.deleteUser.Execute(c.Request.Context(), cmd))
}

// ChangePassword меняет пароль пользователя.
//
// @Summary Change password
// @Tags Usuario
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} dtos.APIResponse[dtos.Empty]
// @Router /Usuario/CambiarPassword [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var cmd dtos.ChangePasswordCommand
	if !Bind(c, &cmd) {
		return
	}
	cmd.Actor = common.GetActor(c)

	common.Respond(c, h.changePassword.Execute(c.Request.Context(), cmd))
}

// RegisterRoutes регистрирует маршруты справочника.
func (h *UserHandler) RegisterRoutes(r gin.IRouter) {
	users := r.Group("/Usuario")
	{
		users.GET("/Listar", h.List)
		users.GET("/Obtener", h.Get)
		users.POST("/Crear", h.Create)
		users.POST("/Actualizar", h.Update)
		users.POST("/Eliminar", h.Delete)
		users.POST("/CambiarPassword", h.ChangePassword)
	}
}
