// Package user содержит use cases справочника пользователей.
//
// Все шесть действий вызывают одну и ту же процедуру с дискриминатором
// @Accion и разбирают её ответ одним и тем же способом:
// - LISTAR / OBTENER читают строки данных;
// - CREAR / ACTUALIZAR / ELIMINAR / CAMBIAR_PASSWORD читают статусную
//   строку {Resultado, Mensaje} или саму запись пользователя.
//
// Pattern: Use Case (Interactor)
// - Зависит только от ports.ProcedureCaller (DIP)
// - Никогда не возвращает error: любая ошибка становится конвертом
//   с Exito=false и Mensaje="Excepción: ..."
package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Haleralex/userdir/internal/application/audit"
	"github.com/Haleralex/userdir/internal/application/dtos"
	"github.com/Haleralex/userdir/internal/application/ports"
	"github.com/Haleralex/userdir/internal/application/procedures"
	"github.com/Haleralex/userdir/internal/pkg/logger"
	"github.com/Haleralex/userdir/internal/pkg/metrics"
)

// DefaultProcedure - имя процедуры справочника по умолчанию.
const DefaultProcedure = "dbo.sp_Usuario_CRUD"

// ActorSystem - действующий пользователь для анонимных запросов.
const ActorSystem = "system"

// Сообщения ответа по умолчанию.
const (
	MessageOK              = "OK"
	MessageNotFound        = "No encontrado"
	MessageCreated         = "Creado"
	MessageUpdated         = "Actualizado"
	MessageDeleted         = "Eliminado"
	MessagePasswordChanged = "Password actualizado"
)

// Options - настройки справочника.
type Options struct {
	// Procedure - имя процедуры справочника.
	Procedure string

	// StrictEmptyResult: если true, действие записи без единой строки
	// в ответе считается отказом (MessageNoResponse). Если false, как и
	// раньше, считается успехом с сообщением по умолчанию.
	StrictEmptyResult bool
}

// Dependencies - зависимости, общие для всех use cases справочника.
type Dependencies struct {
	Caller  ports.ProcedureCaller
	Audit   *audit.Recorder
	Logger  *slog.Logger
	Options Options
}

// gateway - общая часть всех use cases: вызов процедуры и разбор ответа.
type gateway struct {
	caller      ports.ProcedureCaller
	procedure   string
	strictEmpty bool
	audit       *audit.Recorder
	logger      *slog.Logger
}

func newGateway(deps Dependencies) gateway {
	procedure := deps.Options.Procedure
	if procedure == "" {
		procedure = DefaultProcedure
	}
	return gateway{
		caller:      deps.Caller,
		procedure:   procedure,
		strictEmpty: deps.Options.StrictEmptyResult,
		audit:       deps.Audit,
		logger:      logger.OrDefault(deps.Logger),
	}
}

// call выполняет действие. Ошибка уже залогирована и посчитана.
func (g gateway) call(ctx context.Context, args procedures.UserArgs) (procedures.Result, error) {
	res, err := g.caller.Call(ctx, procedures.UserCall(g.procedure, args))
	if err != nil {
		g.fail(ctx, args.Action, err)
		return procedures.Result{}, err
	}
	return res, nil
}

func (g gateway) fail(ctx context.Context, action procedures.Action, err error) {
	metrics.RecordOperation(string(action), metrics.OutcomeException)
	g.logger.ErrorContext(ctx, "user procedure failed",
		"procedure", g.procedure,
		"action", string(action),
		"error", err,
	)
}

// writeOutcome - итог действия записи до построения конверта.
type writeOutcome struct {
	success bool
	message string
	record  *procedures.Record
}

// write выполняет действие записи и применяет классификацию ответа.
//
//   - статусная строка: Exito = (Resultado == 1), Mensaje из строки,
//     запись - первая строка второго result set (если readRecord);
//   - строка данных: успех с сообщением по умолчанию и этой записью;
//   - нет строк: см. Options.StrictEmptyResult.
func (g gateway) write(
	ctx context.Context,
	args procedures.UserArgs,
	defaultMessage string,
	readRecord bool,
) (writeOutcome, error) {
	res, err := g.call(ctx, args)
	if err != nil {
		return writeOutcome{}, err
	}

	classified, err := procedures.ClassifyWrite(res, readRecord)
	if err != nil {
		g.fail(ctx, args.Action, err)
		return writeOutcome{}, err
	}

	var out writeOutcome
	switch classified.Shape {
	case procedures.ShapeEmpty:
		if g.strictEmpty {
			g.logger.WarnContext(ctx, "user procedure returned no rows",
				"procedure", g.procedure,
				"action", string(args.Action),
			)
			metrics.RecordOperation(string(args.Action), metrics.OutcomeEmpty)
			return writeOutcome{message: dtos.MessageNoResponse}, nil
		}
		out = writeOutcome{success: true, message: defaultMessage}

	case procedures.ShapeStatus:
		out = writeOutcome{
			success: classified.Status.OK(),
			message: classified.Status.Message,
			record:  classified.Record,
		}

	case procedures.ShapeRecord:
		out = writeOutcome{success: true, message: defaultMessage}
		if readRecord {
			out.record = classified.Record
		}
	}

	if out.success {
		metrics.RecordOperation(string(args.Action), metrics.OutcomeSuccess)
	} else {
		metrics.RecordOperation(string(args.Action), metrics.OutcomeRejected)
		g.logger.InfoContext(ctx, "user procedure rejected request",
			"action", string(args.Action),
			"message", out.message,
		)
	}
	return out, nil
}

// writeResponse строит конверт действия записи с записью пользователя.
func (g gateway) writeResponse(
	ctx context.Context,
	args procedures.UserArgs,
	defaultMessage string,
) dtos.APIResponse[dtos.UserDTO] {
	out, err := g.write(ctx, args, defaultMessage, true)
	if err != nil {
		return dtos.Exception[dtos.UserDTO](err)
	}
	g.record(ctx, args, out)

	if !out.success {
		return dtos.Fail[dtos.UserDTO](out.message)
	}
	if out.record == nil {
		return dtos.Ok[dtos.UserDTO](out.message, nil)
	}

	u, err := dtos.ToUserDTO(*out.record)
	if err != nil {
		g.fail(ctx, args.Action, err)
		return dtos.Exception[dtos.UserDTO](err)
	}
	return dtos.Ok(out.message, &u)
}

// statusResponse строит конверт действия записи без полезной нагрузки.
func (g gateway) statusResponse(
	ctx context.Context,
	args procedures.UserArgs,
	defaultMessage string,
) dtos.APIResponse[dtos.Empty] {
	out, err := g.write(ctx, args, defaultMessage, false)
	if err != nil {
		return dtos.Exception[dtos.Empty](err)
	}
	g.record(ctx, args, out)

	return dtos.APIResponse[dtos.Empty]{Success: out.success, Message: out.message}
}

func (g gateway) record(ctx context.Context, args procedures.UserArgs, out writeOutcome) {
	event := ports.AuditEvent{
		Type:    string(args.Action),
		Success: out.success,
		Message: out.message,
	}
	if args.UserID != nil {
		event.UserID = *args.UserID
	}
	if args.Actor != nil {
		event.Actor = *args.Actor
	}
	g.audit.Record(ctx, event)
}

// ============================================
// Argument helpers
// ============================================

// actor возвращает действующего пользователя или ActorSystem.
func actor(name string) *string {
	if strings.TrimSpace(name) == "" {
		s := ActorSystem
		return &s
	}
	return &name
}

// text превращает пустую строку или строку из пробелов в NULL.
func text(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// optionalText: отсутствующее поле и "" уходят как NULL, остальное -
// без изменений.
func optionalText(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *int { return &n }

// fieldArgs переносит общие поля создания/обновления в аргументы процедуры.
func fieldArgs(action procedures.Action, userID *string, f dtos.UserFields) procedures.UserArgs {
	return procedures.UserArgs{
		Action:      action,
		UserID:      userID,
		FirstName:   optionalText(f.FirstName),
		LastName:    optionalText(f.LastName),
		BirthDate:   f.BirthDate.TimePtr(),
		StatusID:    f.StatusID,
		Password:    optionalText(f.Password),
		GenderID:    f.GenderID,
		Email:       optionalText(f.Email),
		MobilePhone: optionalText(f.MobilePhone),
		BranchID:    f.BranchID,
		Question:    optionalText(f.Question),
		Answer:      optionalText(f.Answer),
		RoleID:      f.RoleID,
	}
}
