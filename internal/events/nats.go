// Package events publishes rule-update notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"farerules/internal/domain"
	"farerules/internal/port"
)

const (
	headerMsgID    = "Nats-Msg-Id"
	headerRuleKey  = "Rule-Key"
	connectionName = "farerules"
)

// msgConn is the subset of *nats.Conn the publisher needs.
type msgConn interface {
	PublishMsg(m *nats.Msg) error
	Drain() error
}

type natsPublisher struct {
	conn    msgConn
	subject string
}

// NewNATSPublisher connects to url and publishes rule updates on subject.
func NewNATSPublisher(url, subject string) (port.EventPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(connectionName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats %s: %w", url, err)
	}
	return newNATSPublisher(nc, subject), nil
}

func newNATSPublisher(conn msgConn, subject string) *natsPublisher {
	return &natsPublisher{conn: conn, subject: subject}
}

func (p *natsPublisher) PublishRuleUpdated(ctx context.Context, event domain.RuleUpdatedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding rule event: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set(headerMsgID, uuid.NewString())
	msg.Header.Set(headerRuleKey, event.RuleKey)

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.subject, err)
	}
	return nil
}

func (p *natsPublisher) Close() error {
	return p.conn.Drain()
}
