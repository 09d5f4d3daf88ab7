package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

// Source is the EventBridge source of every graph event
const Source = "archinote.graph"

// EventBridge limits PutEvents to 10 entries
const batchSize = 10

// PutEventsAPI is the subset of the EventBridge client used by the publisher
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher publishes graph events to an EventBridge bus
type Publisher struct {
	client       PutEventsAPI
	eventBusName string
	graphID      string
	maxRetries   int
	backoff      time.Duration
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher. graphID is attached to
// every entry as its resource so rules can route per graph.
func NewPublisher(client PutEventsAPI, eventBusName, graphID string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		graphID:      graphID,
		maxRetries:   3,
		backoff:      100 * time.Millisecond,
		logger:       logger.Named("eventbridge"),
	}
}

// Publish sends a single event to EventBridge
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends events in chunks of ten, in order
func (p *Publisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for i := 0; i < len(domainEvents); i += batchSize {
		end := i + batchSize
		if end > len(domainEvents) {
			end = len(domainEvents)
		}
		if err := p.publishWithRetry(ctx, domainEvents[i:end]); err != nil {
			return err
		}
	}
	return nil
}

// publishWithRetry resends only the entries EventBridge rejected, with exponential backoff
func (p *Publisher) publishWithRetry(ctx context.Context, batch []events.DomainEvent) error {
	entries, err := p.entries(batch)
	if err != nil {
		return err
	}

	backoff := p.backoff
	for attempt := 1; ; attempt++ {
		failed, err := p.putEvents(ctx, entries)
		if err == nil && len(failed) == 0 {
			p.logger.Debug("Events published to EventBridge",
				zap.Int("count", len(batch)),
				zap.String("eventBus", p.eventBusName),
			)
			return nil
		}
		if attempt >= p.maxRetries {
			if err != nil {
				return fmt.Errorf("failed to publish events to EventBridge: %w", err)
			}
			return fmt.Errorf("%d events failed to publish after %d attempts", len(failed), attempt)
		}
		if err == nil {
			entries = failed
		}

		p.logger.Warn("Retrying event publication",
			zap.Int("attempt", attempt),
			zap.Int("entries", len(entries)),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// putEvents returns the entries EventBridge reported as failed
func (p *Publisher) putEvents(ctx context.Context, entries []types.PutEventsRequestEntry) ([]types.PutEventsRequestEntry, error) {
	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return nil, err
	}
	if result.FailedEntryCount == 0 {
		return nil, nil
	}

	var failed []types.PutEventsRequestEntry
	for i, entry := range result.Entries {
		if entry.ErrorCode == nil || i >= len(entries) {
			continue
		}
		p.logger.Error("Failed to publish event",
			zap.String("eventType", aws.ToString(entries[i].DetailType)),
			zap.String("errorCode", aws.ToString(entry.ErrorCode)),
			zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
		)
		failed = append(failed, entries[i])
	}
	return failed, nil
}

func (p *Publisher) entries(batch []events.DomainEvent) ([]types.PutEventsRequestEntry, error) {
	entries := make([]types.PutEventsRequestEntry, 0, len(batch))
	for _, event := range batch {
		detail, err := json.Marshal(event)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s event: %w", event.GetEventType(), err)
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(Source),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.GetTimestamp()),
			Resources: []string{
				fmt.Sprintf("archinote:graph/%s/%s", p.graphID, event.GetAggregateID()),
			},
		})
	}
	return entries, nil
}
