package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/AlotfyDev/ArchiNote/domain/core/aggregates"
	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	"github.com/AlotfyDev/ArchiNote/infrastructure/persistence/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// seedStore saves a small graph A -> B -> C under graphID
func seedStore(t *testing.T, dir, graphID string) {
	t.Helper()
	orch := aggregates.NewOrchestrator(nil, zap.NewNop())
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, orch.AddNode(entities.NewNodeWithID(id, valueobjects.NodeTypeArchitecture, "component "+id)))
	}
	_, err := orch.AddEdge("A", "B", valueobjects.RelationshipUses, "")
	require.NoError(t, err)
	_, err = orch.AddEdge("B", "C", valueobjects.RelationshipDependsOn, "")
	require.NoError(t, err)

	snap, err := orch.Snapshot()
	require.NoError(t, err)

	store, err := badger.Open(badger.Config{Path: dir}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), graphID, snap))
	require.NoError(t, store.Close())
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestKgctl_Commands(t *testing.T) {
	dir := t.TempDir()
	seedStore(t, dir, "arch")

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{"validate", []string{"validate"}, []string{"graph arch is valid"}},
		{"stats", []string{"stats"}, []string{"node_count: 3", "edge_count: 2"}},
		{"cycles", []string{"cycles"}, []string{"no cycles"}},
		{"export yaml", []string{"export"}, []string{"id: A", "id: C"}},
		{"export json", []string{"export", "--format", "json"}, []string{`"id": "B"`}},
		{"export rag", []string{"export", "-f", "rag"}, []string{"component A", "USES -> B"}},
		{"graphs", []string{"graphs"}, []string{"arch"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--data", dir, "--graph", "arch")
			out, err := run(t, args...)
			require.NoError(t, err, out)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestKgctl_Errors(t *testing.T) {
	dir := t.TempDir()
	seedStore(t, dir, "arch")

	_, err := run(t, "stats", "--data", dir, "--graph", "missing")
	assert.Error(t, err)

	_, err = run(t, "export", "--format", "xml", "--data", dir, "--graph", "arch")
	assert.Error(t, err)

	_, err = run(t, "validate", "extra-arg", "--data", dir)
	assert.Error(t, err)
}
