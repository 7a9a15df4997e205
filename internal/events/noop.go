package events

import (
	"context"

	"farerules/internal/domain"
	"farerules/internal/port"
)

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() port.EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishRuleUpdated(context.Context, domain.RuleUpdatedEvent) error {
	return nil
}

func (noopPublisher) Close() error { return nil }
