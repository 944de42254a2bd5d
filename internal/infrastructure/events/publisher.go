package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/config"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/nats-io/nats.go"
)

// Publisher публикует доменные события
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
	Close() error
}

// New возвращает NATS publisher или noop, если NATS_URL не задан
func New(cfg config.NATSConfig, log logger.Logger) (Publisher, error) {
	if !cfg.Enabled() {
		log.Info("NATS is not configured, events are only logged")
		return NewNoopPublisher(log), nil
	}
	return NewNATSPublisher(cfg, log)
}

// Subject строит тему вида <prefix>.<код управления>.<тип события>
func Subject(prefix string, event domain.Event) string {
	parts := make([]string, 0, 3)
	if prefix = strings.Trim(prefix, ". "); prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, event.ManagementCodeID.String(), string(event.Type))
	return strings.Join(parts, ".")
}

// NATSPublisher публикует события в NATS
type NATSPublisher struct {
	conn    *nats.Conn
	prefix  string
	logger  logger.Logger
	publish func(subject string, data []byte) error
}

// NewNATSPublisher подключается к NATS с бесконечным переподключением
func NewNATSPublisher(cfg config.NATSConfig, log logger.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("caretrip-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", map[string]interface{}{"error": err.Error()})
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", map[string]interface{}{"url": c.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{
		conn:    conn,
		prefix:  cfg.SubjectPrefix,
		logger:  log,
		publish: conn.Publish,
	}, nil
}

// Publish сериализует событие в JSON и отправляет его
func (p *NATSPublisher) Publish(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := Subject(p.prefix, event)
	if err := p.publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	p.logger.Debug("Event published", map[string]interface{}{
		"subject":   subject,
		"entity_id": event.EntityID.String(),
	})
	return nil
}

// Close сбрасывает буфер и закрывает соединение
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

// NoopPublisher только логирует события
type NoopPublisher struct {
	logger logger.Logger
}

// NewNoopPublisher создает publisher без внешнего брокера
func NewNoopPublisher(log logger.Logger) *NoopPublisher {
	return &NoopPublisher{logger: log}
}

// Publish записывает событие в лог
func (p *NoopPublisher) Publish(_ context.Context, event domain.Event) error {
	p.logger.Debug("Event", map[string]interface{}{
		"type":      string(event.Type),
		"entity_id": event.EntityID.String(),
	})
	return nil
}

// Close ничего не делает
func (p *NoopPublisher) Close() error {
	return nil
}
