// Package login содержит use case проверки учётных данных.
//
// Pattern: Use Case (Interactor)
// - Заполняет контекст клиента из транспорта
// - Вызывает процедуру входа
// - Классифицирует строку ответа (ошибка / успех)
// - Всегда возвращает конверт, никогда не ошибку
package login

import (
	"context"
	"log/slog"

	"github.com/Haleralex/userdir/internal/application/audit"
	"github.com/Haleralex/userdir/internal/application/clientinfo"
	"github.com/Haleralex/userdir/internal/application/dtos"
	"github.com/Haleralex/userdir/internal/application/ports"
	"github.com/Haleralex/userdir/internal/application/procedures"
	"github.com/Haleralex/userdir/internal/domain/valueobjects"
	"github.com/Haleralex/userdir/internal/pkg/logger"
	"github.com/Haleralex/userdir/internal/pkg/metrics"
)

// DefaultProcedure - имя процедуры входа по умолчанию.
const DefaultProcedure = "sp_LoginUsuario"

// Сообщения ответа.
const (
	MessageSuccess    = "Login exitoso"
	MessageNoResponse = dtos.MessageNoResponse
)

const operation = "login"

// ValidateCredentialsUseCase - use case для POST /Login/ValidarCredenciales.
//
// Сценарий:
// 1. Заполнить пустые поля контекста клиента из транспорта и обрезать их
// 2. Вызвать процедуру с семью параметрами (single row)
// 3. Строка ровно из {Resultado, Mensaje} - отказ, иначе - данные входа
// 4. При Debug приложить итоговый контекст клиента к ответу
// 5. Опубликовать audit-событие
type ValidateCredentialsUseCase struct {
	caller    ports.ProcedureCaller
	procedure string
	audit     *audit.Recorder
	logger    *slog.Logger
}

// NewValidateCredentialsUseCase создаёт use case.
func NewValidateCredentialsUseCase(
	caller ports.ProcedureCaller,
	procedure string,
	recorder *audit.Recorder,
	log *slog.Logger,
) *ValidateCredentialsUseCase {
	if procedure == "" {
		procedure = DefaultProcedure
	}
	return &ValidateCredentialsUseCase{
		caller:    caller,
		procedure: procedure,
		audit:     recorder,
		logger:    logger.OrDefault(log),
	}
}

// Execute выполняет use case.
//
// Ошибки инфраструктуры не возвращаются, а сворачиваются в
// Mensaje = "Excepción: ...". Debug-нагрузка сохраняется при любом исходе.
func (uc *ValidateCredentialsUseCase) Execute(
	ctx context.Context,
	cmd dtos.LoginCommand,
	transport clientinfo.Transport,
) dtos.LoginResponse {
	client := clientinfo.Resolve(valueobjects.ClientContext{
		IP:              cmd.IP,
		UserAgent:       cmd.UserAgent,
		OperatingSystem: cmd.OperatingSystem,
		Device:          cmd.Device,
		Browser:         cmd.Browser,
	}, transport)

	resp := uc.authenticate(ctx, cmd, client)
	if cmd.Debug {
		resp = resp.WithDebug(client)
	}

	uc.record(ctx, cmd, client, resp)
	return resp
}

func (uc *ValidateCredentialsUseCase) authenticate(
	ctx context.Context,
	cmd dtos.LoginCommand,
	client valueobjects.ClientContext,
) dtos.LoginResponse {
	call := procedures.LoginCall(uc.procedure, procedures.LoginArgs{
		Username: cmd.Username,
		Password: cmd.Password,
		Client:   client,
	})

	res, err := uc.caller.Call(ctx, call)
	if err != nil {
		return uc.exception(ctx, err)
	}

	classified, err := procedures.ClassifyLogin(res)
	if err != nil {
		return uc.exception(ctx, err)
	}

	switch classified.Shape {
	case procedures.ShapeEmpty:
		metrics.RecordOperation(operation, metrics.OutcomeEmpty)
		uc.logger.WarnContext(ctx, "login procedure returned no rows", "procedure", uc.procedure)
		return dtos.Fail[dtos.LoginDataDTO](MessageNoResponse)

	case procedures.ShapeStatus:
		metrics.RecordOperation(operation, metrics.OutcomeRejected)
		uc.logger.InfoContext(ctx, "login rejected",
			"user", valueobjects.Clip(cmd.Username, procedures.CredentialWidth),
			"ip", client.IP,
		)
		return dtos.Fail[dtos.LoginDataDTO](classified.Status.Message)
	}

	data, err := dtos.ToLoginDataDTO(*classified.Record)
	if err != nil {
		return uc.exception(ctx, err)
	}

	metrics.RecordOperation(operation, metrics.OutcomeSuccess)
	uc.logger.InfoContext(ctx, "login succeeded",
		"user", valueobjects.Clip(cmd.Username, procedures.CredentialWidth),
		"ip", client.IP,
		"device", client.Device,
	)
	return dtos.Ok(MessageSuccess, &data)
}

func (uc *ValidateCredentialsUseCase) exception(ctx context.Context, err error) dtos.LoginResponse {
	metrics.RecordOperation(operation, metrics.OutcomeException)
	uc.logger.ErrorContext(ctx, "login procedure failed",
		"procedure", uc.procedure,
		"error", err,
	)
	return dtos.Exception[dtos.LoginDataDTO](err)
}

func (uc *ValidateCredentialsUseCase) record(
	ctx context.Context,
	cmd dtos.LoginCommand,
	client valueobjects.ClientContext,
	resp dtos.LoginResponse,
) {
	userID := valueobjects.Clip(cmd.Username, procedures.CredentialWidth)
	if resp.Data != nil && resp.Data.UserID != nil {
		userID = *resp.Data.UserID
	}

	uc.audit.Record(ctx, ports.AuditEvent{
		Type:     ports.AuditLogin,
		UserID:   userID,
		Actor:    userID,
		Success:  resp.Success,
		Message:  resp.Message,
		ClientIP: client.IP,
	})
}
