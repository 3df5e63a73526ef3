package user

import (
	"context"

	"github.com/Haleralex/userdir/internal/application/dtos"
	"github.com/Haleralex/userdir/internal/application/procedures"
	"github.com/Haleralex/userdir/internal/pkg/metrics"
)

// ColumnTotal - колонка второго result set с общим числом совпадений.
const ColumnTotal = "Total"

// ListUsersUseCase - use case для получения страницы пользователей.
//
// Пустая страница - не ошибка: Exito=false только при исключении.
type ListUsersUseCase struct {
	gateway
}

// NewListUsersUseCase создаёт новый use case.
func NewListUsersUseCase(deps Dependencies) *ListUsersUseCase {
	return &ListUsersUseCase{gateway: newGateway(deps)}
}

// Execute возвращает страницу пользователей и общее число совпадений.
//
// Первый result set - строки страницы, первая строка второго - Total.
// Без второго result set Total = 0.
func (uc *ListUsersUseCase) Execute(ctx context.Context, query dtos.ListUsersQuery) dtos.APIResponse[dtos.UserListDTO] {
	res, err := uc.call(ctx, procedures.UserArgs{
		Action:   procedures.ActionList,
		Search:   text(query.Search),
		Page:     intPtr(query.Page),
		PageSize: intPtr(query.PageSize),
	})
	if err != nil {
		return dtos.Exception[dtos.UserListDTO](err)
	}

	page := dtos.UserListDTO{Items: []dtos.UserDTO{}}

	if rows, ok := res.Set(0); ok {
		page.Items, err = dtos.ToUserDTOList(rows)
		if err != nil {
			uc.fail(ctx, procedures.ActionList, err)
			return dtos.Exception[dtos.UserListDTO](err)
		}
	}

	if totals, ok := res.Set(1); ok {
		if row, ok := totals.First(); ok {
			total, err := row.Int(ColumnTotal)
			if err != nil {
				uc.fail(ctx, procedures.ActionList, err)
				return dtos.Exception[dtos.UserListDTO](err)
			}
			if total != nil {
				page.Total = *total
			}
		}
	}

	metrics.RecordOperation(string(procedures.ActionList), metrics.OutcomeSuccess)
	return dtos.Ok(MessageOK, &page)
}
