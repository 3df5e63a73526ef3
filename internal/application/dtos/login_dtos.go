package dtos

// ============================================
// Login
// ============================================

// LoginCommand - запрос POST /Login/ValidarCredenciales (JSON или form-data).
//
// Поля контекста клиента (Ip, UserAgent, ...) необязательны: пустые
// заполняются на сервере из транспорта.
type LoginCommand struct {
	Username        string `json:"Usuario" form:"Usuario"`
	Password        string `json:"Password" form:"Password"`
	IP              string `json:"Ip" form:"Ip"`
	UserAgent       string `json:"UserAgent" form:"UserAgent"`
	OperatingSystem string `json:"SistemaOperativo" form:"SistemaOperativo"`
	Device          string `json:"Dispositivo" form:"Dispositivo"`
	Browser         string `json:"Browser" form:"Browser"`
	Debug           bool   `json:"Debug" form:"Debug"`
}

// LoginDataDTO - данные успешного входа.
//
// Все поля - nullable текст, как их вернула процедура.
type LoginDataDTO struct {
	UserID    *string `json:"IdUsuario"`
	FirstName *string `json:"Nombre"`
	LastName  *string `json:"Apellido"`
	Email     *string `json:"CorreoElectronico"`
	Session   *string `json:"Sesion"`
	BranchID  *string `json:"IdSucursal"`
}

// LoginResponse - конверт ответа на вход.
type LoginResponse = APIResponse[LoginDataDTO]
