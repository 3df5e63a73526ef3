package user

import (
	"context"

	"github.com/Haleralex/userdir/internal/application/dtos"
	"github.com/Haleralex/userdir/internal/application/procedures"
)

// DeleteUserUseCase - use case для удаления пользователя.
//
// Мягкое или жёсткое удаление решает процедура по флагу HardDelete.
type DeleteUserUseCase struct {
	gateway
}

// NewDeleteUserUseCase создаёт новый use case.
func NewDeleteUserUseCase(deps Dependencies) *DeleteUserUseCase {
	return &DeleteUserUseCase{gateway: newGateway(deps)}
}

// Execute выполняет use case. Второй result set не читается.
func (uc *DeleteUserUseCase) Execute(ctx context.Context, cmd dtos.DeleteUserCommand) dtos.APIResponse[dtos.Empty] {
	return uc.statusResponse(ctx, procedures.UserArgs{
		Action:     procedures.ActionDelete,
		UserID:     &cmd.UserID,
		HardDelete: boolPtr(cmd.HardDelete),
		Actor:      actor(cmd.Actor),
	}, MessageDeleted)
}
