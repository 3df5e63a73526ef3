// Package ports определяет интерфейсы (порты) для внешних зависимостей.
// Эти интерфейсы реализуются в Infrastructure Layer.
//
// Вся бизнес-логика живёт в хранимых процедурах, поэтому главный порт
// здесь один: выполнить вызов процедуры и вернуть её result sets.
//
// Pattern: Ports & Adapters (Hexagonal Architecture)
package ports

import (
	"context"

	"github.com/Haleralex/userdir/internal/application/procedures"
)

// ProcedureCaller выполняет один вызов хранимой процедуры.
//
// Реализации:
// - sqldb (SQL Server, MySQL через sqlx)
// - postgres (pgxpool, функции с refcursor)
// - fake в тестах use cases
//
// Контракт:
// - На каждый вызов берётся ровно одно соединение из пула и
//   освобождается на любом пути выхода.
// - Пустые result sets (без колонок) пропускаются.
// - Читается не больше call.ResultSetLimit() result sets.
// - Ошибки соединения/выполнения возвращаются как *errors.ProcedureError.
type ProcedureCaller interface {
	Call(ctx context.Context, call procedures.Call) (procedures.Result, error)
}

// HealthChecker проверяет доступность БД (используется /ready и /health/detailed).
type HealthChecker interface {
	Ping(ctx context.Context) error
}
