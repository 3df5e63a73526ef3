// Package nats публикует audit-события справочника в NATS.
//
// Subjects:
//   - <prefix>.login
//   - <prefix>.user.<action>  (listar, crear, actualizar, ...)
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/Haleralex/userdir/internal/application/ports"
	"github.com/Haleralex/userdir/internal/pkg/logger"
)

// DefaultSubjectPrefix - префикс subjects по умолчанию.
const DefaultSubjectPrefix = "userdir.audit"

// Config - настройки подключения.
type Config struct {
	URL           string
	SubjectPrefix string
	Name          string
}

// msgPublisher - часть *nats.Conn, нужная публикатору.
type msgPublisher interface {
	PublishMsg(msg *natsgo.Msg) error
}

// Publisher реализует ports.AuditPublisher.
type Publisher struct {
	conn   msgPublisher
	prefix string
}

// Connect подключается к NATS с бесконечным переподключением.
func Connect(cfg Config, log *slog.Logger) (*natsgo.Conn, error) {
	log = logger.OrDefault(log)

	name := cfg.Name
	if name == "" {
		name = "userdir"
	}

	conn, err := natsgo.Connect(cfg.URL,
		natsgo.Name(name),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", "error", err)
			}
		}),
		natsgo.ReconnectHandler(func(c *natsgo.Conn) {
			log.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return conn, nil
}

// NewPublisher создаёт публикатор поверх соединения.
func NewPublisher(conn *natsgo.Conn, prefix string) *Publisher {
	return newPublisher(conn, prefix)
}

func newPublisher(conn msgPublisher, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{conn: conn, prefix: strings.TrimSuffix(prefix, ".")}
}

// Subject возвращает subject для типа события.
func (p *Publisher) Subject(eventType string) string {
	if eventType == ports.AuditLogin {
		return p.prefix + "." + ports.AuditLogin
	}
	return p.prefix + ".user." + strings.ToLower(eventType)
}

// Publish публикует событие. Доставка at-most-once: брокер недоступен -
// событие теряется, запрос пользователя не страдает.
func (p *Publisher) Publish(ctx context.Context, event ports.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	msg := natsgo.NewMsg(p.Subject(event.Type))
	msg.Data = data
	// дедупликация на стороне JetStream
	msg.Header.Set(natsgo.MsgIdHdr, event.ID)
	if event.RequestID != "" {
		msg.Header.Set("X-Request-ID", event.RequestID)
	}

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish audit event: %w", err)
	}
	return nil
}
