package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/core/aggregates"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
)

type storedSnapshot struct {
	payload []byte
	savedAt time.Time
}

// SnapshotStore keeps encoded snapshots in process memory. Snapshots are
// stored encoded so callers never share state with the store.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]storedSnapshot
}

// NewSnapshotStore creates an empty in-memory snapshot store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]storedSnapshot),
	}
}

// Save replaces the snapshot stored under graphID
func (s *SnapshotStore) Save(ctx context.Context, graphID string, snapshot aggregates.Snapshot) error {
	if graphID == "" {
		return pkgerrors.NewValidationError("graph id is required")
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return pkgerrors.NewInternalError(fmt.Sprintf("encode snapshot %s", graphID)).WithCause(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[graphID] = storedSnapshot{payload: payload, savedAt: time.Now()}
	return nil
}

// Load returns the snapshot stored under graphID
func (s *SnapshotStore) Load(ctx context.Context, graphID string) (aggregates.Snapshot, error) {
	s.mu.RLock()
	stored, exists := s.snapshots[graphID]
	s.mu.RUnlock()

	if !exists {
		return aggregates.Snapshot{}, pkgerrors.NewGraphNotFound(graphID)
	}

	var snapshot aggregates.Snapshot
	if err := json.Unmarshal(stored.payload, &snapshot); err != nil {
		return aggregates.Snapshot{}, pkgerrors.NewInternalError(fmt.Sprintf("decode snapshot %s", graphID)).WithCause(err)
	}
	return snapshot, nil
}

// Delete removes the snapshot; deleting an absent graph is not an error
func (s *SnapshotStore) Delete(ctx context.Context, graphID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, graphID)
	return nil
}

// GraphIDs lists stored graphs in order
func (s *SnapshotStore) GraphIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SavedAt reports when graphID was last saved
func (s *SnapshotStore) SavedAt(graphID string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.snapshots[graphID]
	return stored.savedAt, exists
}
