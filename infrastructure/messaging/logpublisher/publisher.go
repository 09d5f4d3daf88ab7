// Package logpublisher publishes graph events to the structured log and
// optionally forwards them to a downstream publisher.
package logpublisher

import (
	"context"
	"time"

	"github.com/AlotfyDev/ArchiNote/application/ports"
	"github.com/AlotfyDev/ArchiNote/domain/events"
	"go.uber.org/zap"
)

// Publisher writes one log entry per event. When next is set every batch is
// forwarded after logging; a forwarding failure is logged and returned.
type Publisher struct {
	next   ports.EventPublisher
	logger *zap.Logger
}

// NewPublisher creates a log publisher; next may be nil
func NewPublisher(logger *zap.Logger, next ports.EventPublisher) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		next:   next,
		logger: logger.Named("events"),
	}
}

// Publish logs a single event
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch logs every event in order, then forwards the batch
func (p *Publisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	for _, event := range domainEvents {
		p.logger.Info("Domain event",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
			zap.Time("timestamp", event.GetTimestamp()),
			zap.Int("version", event.GetVersion()),
		)
	}

	if p.next == nil {
		return nil
	}

	start := time.Now()
	if err := p.next.PublishBatch(ctx, domainEvents); err != nil {
		p.logger.Error("Failed to forward events",
			zap.Int("count", len(domainEvents)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return err
	}
	return nil
}
