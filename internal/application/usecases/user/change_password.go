package user

import (
	"context"

	"github.com/Haleralex/userdir/internal/application/dtos"
	"github.com/Haleralex/userdir/internal/application/procedures"
)

// ChangePasswordUseCase - use case для смены пароля.
//
// Текущий пароль сверяет процедура; здесь пароли не сравниваются
// и не хешируются.
type ChangePasswordUseCase struct {
	gateway
}

// NewChangePasswordUseCase создаёт новый use case.
func NewChangePasswordUseCase(deps Dependencies) *ChangePasswordUseCase {
	return &ChangePasswordUseCase{gateway: newGateway(deps)}
}

// Execute выполняет use case.
func (uc *ChangePasswordUseCase) Execute(ctx context.Context, cmd dtos.ChangePasswordCommand) dtos.APIResponse[dtos.Empty] {
	return uc.statusResponse(ctx, procedures.UserArgs{
		Action:          procedures.ActionChangePassword,
		UserID:          &cmd.UserID,
		CurrentPassword: cmd.CurrentPassword,
		NewPassword:     cmd.NewPassword,
		Actor:           actor(cmd.Actor),
	}, MessagePasswordChanged)
}
