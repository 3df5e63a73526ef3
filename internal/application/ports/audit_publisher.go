package ports

import (
	"context"
	"time"
)

// Типы audit-событий.
const (
	AuditLogin = "login"
)

// AuditEvent - запись о попытке входа или изменении пользователя.
//
// Никогда не содержит паролей, фотографий и ответов на секретный вопрос.
type AuditEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"` // "login" или действие процедуры ("CREAR", "ELIMINAR", ...)
	UserID     string    `json:"user_id,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	ClientIP   string    `json:"client_ip,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditPublisher публикует audit-события.
//
// Behaviour:
// - Ошибка публикации не меняет ответ клиенту, только логируется.
// - At-most-once: повторов нет.
type AuditPublisher interface {
	Publish(ctx context.Context, event AuditEvent) error
}

// AuditPublisherFunc адаптирует функцию к AuditPublisher.
type AuditPublisherFunc func(ctx context.Context, event AuditEvent) error

// Publish вызывает f(ctx, event).
func (f AuditPublisherFunc) Publish(ctx context.Context, event AuditEvent) error {
	return f(ctx, event)
}

// NoopAuditPublisher - публикатор по умолчанию, когда audit выключен.
var NoopAuditPublisher AuditPublisher = AuditPublisherFunc(func(context.Context, AuditEvent) error { return nil })
