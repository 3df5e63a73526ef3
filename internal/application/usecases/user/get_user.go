package user

import (
	"context"

	"github.com/Haleralex/userdir/internal/application/dtos"
	"github.com/Haleralex/userdir/internal/application/procedures"
	"github.com/Haleralex/userdir/internal/pkg/metrics"
)

// GetUserUseCase - use case для получения одного пользователя (query).
type GetUserUseCase struct {
	gateway
}

// NewGetUserUseCase создаёт новый use case.
func NewGetUserUseCase(deps Dependencies) *GetUserUseCase {
	return &GetUserUseCase{gateway: newGateway(deps)}
}

// Execute возвращает пользователя или "No encontrado".
func (uc *GetUserUseCase) Execute(ctx context.Context, query dtos.GetUserQuery) dtos.APIResponse[dtos.UserDTO] {
	res, err := uc.call(ctx, procedures.UserArgs{
		Action: procedures.ActionGet,
		UserID: &query.UserID,
	})
	if err != nil {
		return dtos.Exception[dtos.UserDTO](err)
	}

	row, ok := res.FirstRow()
	if !ok {
		metrics.RecordOperation(string(procedures.ActionGet), metrics.OutcomeRejected)
		return dtos.Fail[dtos.UserDTO](MessageNotFound)
	}

	u, err := dtos.ToUserDTO(row)
	if err != nil {
		uc.fail(ctx, procedures.ActionGet, err)
		return dtos.Exception[dtos.UserDTO](err)
	}

	metrics.RecordOperation(string(procedures.ActionGet), metrics.OutcomeSuccess)
	return dtos.Ok(MessageOK, &u)
}
