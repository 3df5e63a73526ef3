package user

import (
	"context"

	"github.com/Haleralex/userdir/internal/application/dtos"
	"github.com/Haleralex/userdir/internal/application/procedures"
	"github.com/Haleralex/userdir/internal/domain/valueobjects"
)

// CreateUserUseCase - use case для создания пользователя.
//
// Сценарий:
// 1. Декодировать фотографию (ошибочная фотография = без фотографии)
// 2. Вызвать CREAR со всеми полями и действующим пользователем
// 3. Разобрать статусную строку или строку данных
// 4. Опубликовать audit-событие
//
// Уникальность, хеширование пароля и прочие правила - в процедуре.
type CreateUserUseCase struct {
	gateway
}

// NewCreateUserUseCase создаёт новый use case.
func NewCreateUserUseCase(deps Dependencies) *CreateUserUseCase {
	return &CreateUserUseCase{gateway: newGateway(deps)}
}

// Execute выполняет use case.
func (uc *CreateUserUseCase) Execute(ctx context.Context, cmd dtos.CreateUserCommand) dtos.APIResponse[dtos.UserDTO] {
	args := fieldArgs(procedures.ActionCreate, optionalText(cmd.UserID), cmd.UserFields)
	if args.StatusID == nil {
		args.StatusID = intPtr(dtos.DefaultStatusID)
	}
	args.Photo = valueobjects.DecodePhotoPtr(cmd.PhotoBase64)
	args.Actor = actor(cmd.Actor)

	return uc.writeResponse(ctx, args, MessageCreated)
}
