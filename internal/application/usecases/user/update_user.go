package user

import (
	"context"

	"github.com/Haleralex/userdir/internal/application/dtos"
	"github.com/Haleralex/userdir/internal/application/procedures"
	"github.com/Haleralex/userdir/internal/domain/valueobjects"
)

// UpdateUserUseCase - use case для обновления пользователя.
//
// Пустой Password означает "не менять"; LimpiarFoto=true удаляет фотографию.
type UpdateUserUseCase struct {
	gateway
}

// NewUpdateUserUseCase создаёт новый use case.
func NewUpdateUserUseCase(deps Dependencies) *UpdateUserUseCase {
	return &UpdateUserUseCase{gateway: newGateway(deps)}
}

// Execute выполняет use case.
func (uc *UpdateUserUseCase) Execute(ctx context.Context, cmd dtos.UpdateUserCommand) dtos.APIResponse[dtos.UserDTO] {
	args := fieldArgs(procedures.ActionUpdate, &cmd.UserID, cmd.UserFields)
	args.Photo = valueobjects.DecodePhotoPtr(cmd.PhotoBase64)
	args.ClearPhoto = boolPtr(cmd.ClearPhoto)
	args.Actor = actor(cmd.Actor)

	return uc.writeResponse(ctx, args, MessageUpdated)
}
