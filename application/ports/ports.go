package ports

import (
	"context"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/core/aggregates"
	"github.com/AlotfyDev/ArchiNote/domain/events"
)

// SnapshotStore defines the interface for graph persistence.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type SnapshotStore interface {
	// Save persists the snapshot under graphID, replacing any previous one
	Save(ctx context.Context, graphID string, snapshot aggregates.Snapshot) error

	// Load retrieves the snapshot; a missing graph yields a GRAPH_NOT_FOUND error
	Load(ctx context.Context, graphID string) (aggregates.Snapshot, error)

	// Delete removes the snapshot
	Delete(ctx context.Context, graphID string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// MetricsRecorder receives operation outcomes from the service layer
type MetricsRecorder interface {
	RecordGraphOperation(operation string, success bool, duration time.Duration)
	SetGraphEntities(nodes, edges, paths int)
}

// NoopMetrics discards everything
type NoopMetrics struct{}

func (NoopMetrics) RecordGraphOperation(string, bool, time.Duration) {}
func (NoopMetrics) SetGraphEntities(int, int, int)                   {}
