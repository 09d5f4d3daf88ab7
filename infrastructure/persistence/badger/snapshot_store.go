// Package badger persists graph snapshots in an embedded BadgerDB.
package badger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/core/aggregates"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const (
	keyPrefix   = "graph/"
	keySnapshot = "/snapshot"
)

// Config holds configuration for the BadgerDB instance
type Config struct {
	// Path is the database directory; ignored when InMemory is set
	Path     string
	InMemory bool

	SyncWrites bool

	// GCInterval of zero disables value log garbage collection
	GCInterval     time.Duration
	GCDiscardRatio float64
}

// DefaultConfig returns production defaults for path
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns a configuration for tests
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// SnapshotStore stores one JSON snapshot per graph under graph/<id>/snapshot
type SnapshotStore struct {
	db     *badger.DB
	logger *zap.Logger

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// Open opens the database and starts the GC runner when configured
func Open(cfg Config, logger *zap.Logger) (*SnapshotStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(&zapBadgerLogger{logger: logger.Named("badger_db").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	s := &SnapshotStore{
		db:     db,
		logger: logger.Named("badger_store"),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		go s.runGC(cfg.GCInterval, cfg.GCDiscardRatio)
	} else {
		close(s.doneCh)
	}

	s.logger.Info("Badger snapshot store opened",
		zap.String("path", cfg.Path),
		zap.Bool("in_memory", cfg.InMemory),
	)
	return s, nil
}

func snapshotKey(graphID string) []byte {
	return []byte(keyPrefix + graphID + keySnapshot)
}

// Save replaces the snapshot stored under graphID
func (s *SnapshotStore) Save(ctx context.Context, graphID string, snapshot aggregates.Snapshot) error {
	if graphID == "" {
		return pkgerrors.NewValidationError("graph id is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return pkgerrors.NewInternalError(fmt.Sprintf("encode snapshot %s", graphID)).WithCause(err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(graphID), payload)
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("save snapshot", err)
	}

	s.logger.Debug("Snapshot saved",
		zap.String("graph_id", graphID),
		zap.Int("bytes", len(payload)),
	)
	return nil
}

// Load returns the snapshot stored under graphID
func (s *SnapshotStore) Load(ctx context.Context, graphID string) (aggregates.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return aggregates.Snapshot{}, err
	}

	var payload []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(graphID))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return aggregates.Snapshot{}, pkgerrors.NewGraphNotFound(graphID)
	}
	if err != nil {
		return aggregates.Snapshot{}, pkgerrors.NewDatabaseError("load snapshot", err)
	}

	var snapshot aggregates.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return aggregates.Snapshot{}, pkgerrors.NewInternalError(fmt.Sprintf("decode snapshot %s", graphID)).WithCause(err)
	}
	return snapshot, nil
}

// Delete removes the snapshot; deleting an absent graph is not an error
func (s *SnapshotStore) Delete(ctx context.Context, graphID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(snapshotKey(graphID))
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("delete snapshot", err)
	}
	return nil
}

// GraphIDs lists stored graphs in key order
func (s *SnapshotStore) GraphIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := it.Item().Key()
			if !bytes.HasSuffix(key, []byte(keySnapshot)) {
				continue
			}
			ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(string(key), keyPrefix), keySnapshot))
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list graphs", err)
	}
	return ids, nil
}

// Close stops the GC runner and closes the database. Safe to call twice.
func (s *SnapshotStore) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
		err = s.db.Close()
	})
	return err
}

func (s *SnapshotStore) runGC(interval time.Duration, ratio float64) {
	defer close(s.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			// ErrNoRewrite only means there was nothing to collect
			if err := s.db.RunValueLogGC(ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("Badger value log GC failed", zap.Error(err))
			}
		}
	}
}

// zapBadgerLogger adapts zap to badger's Logger interface
type zapBadgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *zapBadgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(strings.TrimSpace(format), args...)
}

func (l *zapBadgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(strings.TrimSpace(format), args...)
}

func (l *zapBadgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf(strings.TrimSpace(format), args...)
}

func (l *zapBadgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(strings.TrimSpace(format), args...)
}
