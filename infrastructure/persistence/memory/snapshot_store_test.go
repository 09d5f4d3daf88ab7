package memory

import (
	"context"
	"testing"

	"github.com/AlotfyDev/ArchiNote/domain/core/aggregates"
	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testSnapshot(t *testing.T) aggregates.Snapshot {
	t.Helper()
	o := aggregates.NewOrchestrator(nil, zap.NewNop())
	require.NoError(t, o.AddNode(entities.NewNodeWithID("P", valueobjects.NodeTypeProject, "project")))
	require.NoError(t, o.AddNode(entities.NewNodeWithID("B", valueobjects.NodeTypeBacklog, "backlog")))
	_, err := o.AddWeightedEdge("P", "B", valueobjects.RelationshipDependsOn, 0.8, "")
	require.NoError(t, err)

	snap, err := o.Snapshot()
	require.NoError(t, err)
	return snap
}

func TestSnapshotStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()
	snap := testSnapshot(t)

	require.NoError(t, store.Save(ctx, "g1", snap))

	loaded, err := store.Load(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, snap.Version, loaded.Version)
	require.Len(t, loaded.Nodes, 2)
	require.Len(t, loaded.Edges, 1)
	assert.Equal(t, "B", loaded.Nodes[0].ID)
	assert.Equal(t, snap.Edges[0].ID, loaded.Edges[0].ID)

	// Mutating the loaded copy does not leak into the store
	loaded.Nodes[0].ID = "changed"
	again, err := store.Load(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "B", again.Nodes[0].ID)

	assert.Equal(t, []string{"g1"}, store.GraphIDs())
	_, ok := store.SavedAt("g1")
	assert.True(t, ok)
}

func TestSnapshotStore_Missing(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	_, err := store.Load(ctx, "nope")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeGraphNotFound, pkgerrors.GetAppError(err).Code)

	assert.Error(t, store.Save(ctx, "", testSnapshot(t)))
}

func TestSnapshotStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()
	require.NoError(t, store.Save(ctx, "g1", testSnapshot(t)))

	require.NoError(t, store.Delete(ctx, "g1"))
	require.NoError(t, store.Delete(ctx, "g1"))

	_, err := store.Load(ctx, "g1")
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Empty(t, store.GraphIDs())
}
