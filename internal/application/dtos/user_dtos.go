package dtos

import "time"

// ============================================
// Read models
// ============================================

// UserDTO - запись пользователя. Каждое поле независимо nullable:
// процедура может не вернуть колонку вовсе.
type UserDTO struct {
	UserID      *string    `json:"IdUsuario"`
	FirstName   *string    `json:"Nombre"`
	LastName    *string    `json:"Apellido"`
	Email       *string    `json:"CorreoElectronico"`
	BranchID    *int       `json:"IdSucursal"`
	StatusID    *int       `json:"IdStatusUsuario"`
	RoleID      *int       `json:"IdRole"`
	MobilePhone *string    `json:"TelefonoMovil"`
	CreatedAt   *time.Time `json:"FechaCreacion"`
}

// UserListDTO - страница пользователей.
type UserListDTO = PagedResult[UserDTO]

// ============================================
// Queries (Read операции)
// ============================================

// ListUsersQuery - GET /Usuario/Listar.
type ListUsersQuery struct {
	Search   string `form:"buscar"`
	Page     int    `form:"pagina,default=1"`
	PageSize int    `form:"tamanoPagina,default=10"`
}

// GetUserQuery - GET /Usuario/Obtener.
type GetUserQuery struct {
	UserID string `form:"idUsuario" binding:"notblank"`
}

// ============================================
// Commands (Write операции)
// ============================================

// DefaultStatusID - статус нового пользователя, если клиент его не указал.
const DefaultStatusID = 1

// UserFields - поля, общие для создания и обновления.
type UserFields struct {
	FirstName   *string `json:"Nombre" form:"Nombre"`
	LastName    *string `json:"Apellido" form:"Apellido"`
	BirthDate   *Date   `json:"FechaNacimiento" form:"FechaNacimiento"`
	StatusID    *int    `json:"IdStatusUsuario" form:"IdStatusUsuario"`
	Password    *string `json:"Password" form:"Password"` // открытый текст, хеширует процедура
	GenderID    *int    `json:"IdGenero" form:"IdGenero"`
	Email       *string `json:"CorreoElectronico" form:"CorreoElectronico"`
	MobilePhone *string `json:"TelefonoMovil" form:"TelefonoMovil"`
	BranchID    *int    `json:"IdSucursal" form:"IdSucursal"`
	Question    *string `json:"Pregunta" form:"Pregunta"`
	Answer      *string `json:"Respuesta" form:"Respuesta"`
	RoleID      *int    `json:"IdRole" form:"IdRole"`
	PhotoBase64 *string `json:"FotografiaBase64" form:"FotografiaBase64"` // "data:image/...;base64,..."
}

// CreateUserCommand - POST /Usuario/Crear.
type CreateUserCommand struct {
	UserID *string `json:"IdUsuario" form:"IdUsuario"`
	UserFields

	// Actor - кто выполняет действие; заполняет handler, не клиент.
	Actor string `json:"-" form:"-"`
}

// UpdateUserCommand - POST /Usuario/Actualizar.
type UpdateUserCommand struct {
	UserID string `json:"IdUsuario" form:"IdUsuario" binding:"notblank"`
	UserFields
	ClearPhoto bool `json:"LimpiarFoto" form:"LimpiarFoto"`

	Actor string `json:"-" form:"-"`
}

// DeleteUserCommand - POST /Usuario/Eliminar.
type DeleteUserCommand struct {
	UserID     string `json:"IdUsuario" form:"IdUsuario" binding:"notblank"`
	HardDelete bool   `json:"HardDelete" form:"HardDelete"`

	Actor string `json:"-" form:"-"`
}

// ChangePasswordCommand - POST /Usuario/CambiarPassword.
type ChangePasswordCommand struct {
	UserID          string  `json:"IdUsuario" form:"IdUsuario" binding:"notblank"`
	CurrentPassword *string `json:"PasswordActual" form:"PasswordActual"`
	NewPassword     *string `json:"PasswordNueva" form:"PasswordNueva"`

	Actor string `json:"-" form:"-"`
}
