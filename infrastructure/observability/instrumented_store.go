package observability

import (
	"context"

	"github.com/AlotfyDev/ArchiNote/application/ports"
	"github.com/AlotfyDev/ArchiNote/domain/core/aggregates"
)

// InstrumentedStore counts every call made to the wrapped snapshot store
type InstrumentedStore struct {
	next      ports.SnapshotStore
	backend   string
	collector *Collector
}

// NewInstrumentedStore wraps next; backend labels its metrics
func NewInstrumentedStore(next ports.SnapshotStore, backend string, collector *Collector) *InstrumentedStore {
	return &InstrumentedStore{next: next, backend: backend, collector: collector}
}

func (s *InstrumentedStore) Save(ctx context.Context, graphID string, snapshot aggregates.Snapshot) error {
	err := s.next.Save(ctx, graphID, snapshot)
	s.collector.RecordStoreOperation(s.backend, "save", err == nil)
	return err
}

func (s *InstrumentedStore) Load(ctx context.Context, graphID string) (aggregates.Snapshot, error) {
	snapshot, err := s.next.Load(ctx, graphID)
	s.collector.RecordStoreOperation(s.backend, "load", err == nil)
	return snapshot, err
}

func (s *InstrumentedStore) Delete(ctx context.Context, graphID string) error {
	err := s.next.Delete(ctx, graphID)
	s.collector.RecordStoreOperation(s.backend, "delete", err == nil)
	return err
}
