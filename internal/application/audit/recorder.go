// Package audit дополняет и публикует audit-события use cases.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Haleralex/userdir/internal/application/ports"
	"github.com/Haleralex/userdir/internal/pkg/logger"
	"github.com/Haleralex/userdir/internal/pkg/metrics"
)

// Recorder публикует события через ports.AuditPublisher.
//
// Ошибка публикации никогда не возвращается вызывающему: она логируется
// и считается в метрике, ответ клиенту от неё не зависит.
type Recorder struct {
	publisher ports.AuditPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewRecorder создаёт Recorder. nil publisher означает "audit выключен".
func NewRecorder(publisher ports.AuditPublisher, log *slog.Logger) *Recorder {
	if publisher == nil {
		publisher = ports.NoopAuditPublisher
	}
	return &Recorder{
		publisher: publisher,
		logger:    logger.OrDefault(log),
		now:       time.Now,
	}
}

// Record заполняет ID, время и request id и публикует событие.
func (r *Recorder) Record(ctx context.Context, event ports.AuditEvent) {
	if r == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = r.now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = logger.GetRequestID(ctx)
	}

	if err := r.publisher.Publish(ctx, event); err != nil {
		metrics.AuditPublishFailures.Inc()
		r.logger.WarnContext(ctx, "failed to publish audit event",
			"type", event.Type,
			"error", err,
		)
	}
}
