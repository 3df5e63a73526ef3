package procedures

import (
	"time"

	"github.com/Haleralex/userdir/internal/domain/valueobjects"
)

// Declared parameter widths.
const (
	CredentialWidth = 100
	ActionWidth     = 20
	NameWidth       = 100
	PhoneWidth      = 30
	QuestionWidth   = 200
	SearchWidth     = 100
)

// Action is the @Accion discriminator of the user procedure.
type Action string

const (
	ActionList           Action = "LISTAR"
	ActionGet            Action = "OBTENER"
	ActionCreate         Action = "CREAR"
	ActionUpdate         Action = "ACTUALIZAR"
	ActionDelete         Action = "ELIMINAR"
	ActionChangePassword Action = "CAMBIAR_PASSWORD"
)

// LoginArgs are the inputs of the login procedure.
type LoginArgs struct {
	Username string
	Password string
	Client   valueobjects.ClientContext
}

// LoginCall binds the seven login parameters. None of them is ever NULL.
func LoginCall(procedure string, args LoginArgs) Call {
	client := args.Client.Clipped()

	return Call{
		Procedure: procedure,
		Label:     "login",
		SingleRow: true,
		Params: []Param{
			Text("@Usuario", CredentialWidth, args.Username),
			Text("@Password", CredentialWidth, args.Password),
			Text("@DireccionIp", valueobjects.IPWidth, client.IP),
			Text("@UserAgent", valueobjects.UserAgentWidth, client.UserAgent),
			Text("@SistemaOperativo", valueobjects.OSWidth, client.OperatingSystem),
			Text("@Dispositivo", valueobjects.DeviceWidth, client.Device),
			Text("@Browser", valueobjects.BrowserWidth, client.Browser),
		},
	}
}

// UserArgs is the superset of every user action's inputs.
// Nil fields are sent as NULL.
type UserArgs struct {
	Action          Action
	UserID          *string
	FirstName       *string
	LastName        *string
	BirthDate       *time.Time
	StatusID        *int
	Password        *string
	GenderID        *int
	Email           *string
	MobilePhone     *string
	BranchID        *int
	Question        *string
	Answer          *string
	RoleID          *int
	Photo           valueobjects.Photo
	ClearPhoto      *bool
	HardDelete      *bool
	CurrentPassword *string
	NewPassword     *string
	Search          *string
	Page            *int
	PageSize        *int
	Actor           *string
}

// UserCall binds the full positional contract of the user procedure.
func UserCall(procedure string, args UserArgs) Call {
	call := Call{
		Procedure: procedure,
		Label:     string(args.Action),
		Params: []Param{
			Text("@Accion", ActionWidth, string(args.Action)),
			NullableText("@IdUsuario", NameWidth, args.UserID),
			NullableText("@Nombre", NameWidth, args.FirstName),
			NullableText("@Apellido", NameWidth, args.LastName),
			NullableDate("@FechaNacimiento", args.BirthDate),
			NullableInt("@IdStatusUsuario", args.StatusID),
			NullableText("@Password", CredentialWidth, args.Password),
			NullableInt("@IdGenero", args.GenderID),
			NullableText("@CorreoElectronico", NameWidth, args.Email),
			NullableText("@TelefonoMovil", PhoneWidth, args.MobilePhone),
			NullableInt("@IdSucursal", args.BranchID),
			NullableText("@Pregunta", QuestionWidth, args.Question),
			NullableText("@Respuesta", QuestionWidth, args.Answer),
			NullableInt("@IdRole", args.RoleID),
			Binary("@Fotografia", args.Photo),
			NullableBit("@LimpiarFoto", args.ClearPhoto),
			NullableBit("@HardDelete", args.HardDelete),
			NullableText("@PasswordActual", CredentialWidth, args.CurrentPassword),
			NullableText("@PasswordNueva", CredentialWidth, args.NewPassword),
			NullableText("@Buscar", SearchWidth, args.Search),
			NullableInt("@Pagina", args.Page),
			NullableInt("@TamanoPagina", args.PageSize),
			NullableText("@UsuarioAccion", NameWidth, args.Actor),
		},
	}

	if args.Action == ActionGet {
		call.SingleRow = true
	}
	return call
}
