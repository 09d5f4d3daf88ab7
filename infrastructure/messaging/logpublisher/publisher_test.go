package logpublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingPublisher struct {
	batches [][]events.DomainEvent
	err     error
}

func (r *recordingPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return r.PublishBatch(ctx, []events.DomainEvent{event})
}

func (r *recordingPublisher) PublishBatch(_ context.Context, batch []events.DomainEvent) error {
	r.batches = append(r.batches, batch)
	return r.err
}

func TestPublisher_LogsEveryEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := NewPublisher(zap.New(core), nil)

	batch := []events.DomainEvent{
		events.NewPathRemoved("path-1", time.Now()),
		events.NewEdgeRemoved("edge-1", "A", "B", []string{"path-1"}, time.Now()),
	}
	require.NoError(t, p.PublishBatch(context.Background(), batch))

	entries := logs.FilterMessage("Domain event").All()
	require.Len(t, entries, 2)
	assert.Equal(t, events.TypePathRemoved, entries[0].ContextMap()["eventType"])
	assert.Equal(t, "edge-1", entries[1].ContextMap()["aggregateID"])
}

func TestPublisher_Forwards(t *testing.T) {
	next := &recordingPublisher{}
	p := NewPublisher(zap.NewNop(), next)

	event := events.NewPathRemoved("path-1", time.Now())
	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, next.batches, 1)
	assert.Equal(t, event, next.batches[0][0])

	next.err = errors.New("downstream down")
	assert.Error(t, p.Publish(context.Background(), event))

	require.NoError(t, p.PublishBatch(context.Background(), nil))
	assert.Len(t, next.batches, 2, "empty batches are not forwarded")
}
