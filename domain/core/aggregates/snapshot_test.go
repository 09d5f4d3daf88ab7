package aggregates

import (
	"encoding/json"
	"testing"

	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotGraph(t *testing.T) (*Orchestrator, *entities.Path) {
	t.Helper()
	o, edges := diamond(t)

	node := entities.NewNodeWithID("P", valueobjects.NodeTypeProject, "with attributes")
	attr := entities.NewStructuredAttribute("owner", valueobjects.AttributeTypeDataMember, valueobjects.ContentTypeKeyValue)
	require.NoError(t, attr.SetValue("team", valueobjects.StringValue("core")))
	require.NoError(t, node.AddAttribute(attr))
	require.NoError(t, o.AddNode(node))
	addTestEdge(t, o, "P", "A", valueobjects.RelationshipContains, 0.7)

	path, err := o.AddPath([]string{edges["AC"].ID(), edges["CD"].ID()}, valueobjects.PathTypeDependency, "strong")
	require.NoError(t, err)
	return o, path
}

func TestOrchestrator_SnapshotRoundTrip(t *testing.T) {
	o, path := snapshotGraph(t)

	snap, err := o.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, SnapshotVersion, snap.Version)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))

	restored := createTestOrchestrator(t, nil)
	require.NoError(t, restored.RestoreSnapshot(decoded))

	want, err := o.Document()
	require.NoError(t, err)
	got, err := restored.Document()
	require.NoError(t, err)

	require.Equal(t, len(want.Graph.Nodes), len(got.Graph.Nodes))
	for i, n := range want.Graph.Nodes {
		g := got.Graph.Nodes[i]
		assert.Equal(t, n.ID, g.ID)
		assert.Equal(t, n.Type, g.Type)
		assert.Equal(t, n.IncomingEdgeIDs, g.IncomingEdgeIDs)
		assert.Equal(t, n.OutgoingEdgeIDs, g.OutgoingEdgeIDs)
		assert.Equal(t, n.PathIDs, g.PathIDs)
		assert.Equal(t, len(n.Attributes), len(g.Attributes))
	}

	restoredP, err := restored.GetNode("P")
	require.NoError(t, err)
	owner, ok := restoredP.AttributeByName("owner")
	require.True(t, ok)
	team, ok := owner.Value("team")
	require.True(t, ok)
	value, _ := team.AsString()
	assert.Equal(t, "core", value)

	assert.Equal(t, len(want.Graph.Edges), len(got.Graph.Edges))
	for i := range want.Graph.Edges {
		assert.Equal(t, want.Graph.Edges[i].ID, got.Graph.Edges[i].ID)
		assert.Equal(t, want.Graph.Edges[i].Source, got.Graph.Edges[i].Source)
		assert.InDelta(t, want.Graph.Edges[i].Strength.Float64(), got.Graph.Edges[i].Strength.Float64(), 1e-9)
	}

	restoredPath, err := restored.GetPath(path.ID())
	require.NoError(t, err)
	assert.Equal(t, path.NodeIDs(), restoredPath.NodeIDs())
	assert.InDelta(t, path.TotalStrength().Float64(), restoredPath.TotalStrength().Float64(), 1e-9)
	assert.True(t, restored.IsValidPath(path.ID()))
	require.NoError(t, restored.ValidateGraph())
	assert.Empty(t, restored.GetUncommittedEvents())

	bfsBefore, _ := o.FindPathBetween("A", "D")
	bfsAfter, _ := restored.FindPathBetween("A", "D")
	assert.Equal(t, bfsBefore.EdgeIDs(), bfsAfter.EdgeIDs(), "traversal order survives restore")
}

func TestOrchestrator_SnapshotKeepsPrecision(t *testing.T) {
	o, _ := diamond(t)
	weak := addTestEdge(t, o, "B", "C", valueobjects.RelationshipRelatedTo, 0.555)

	node := entities.NewNodeWithID("E", valueobjects.NodeTypeTask, "")
	attr := entities.NewStructuredAttribute("estimate", valueobjects.AttributeTypeDataMember, valueobjects.ContentTypeKeyValue)
	attr.SetConfidence(0.333)
	nested := entities.NewStructuredAttribute("range", valueobjects.AttributeTypeDataMember, valueobjects.ContentTypeKeyValue)
	nested.SetConfidence(0.125)
	require.NoError(t, attr.AddNestedStructure(nested))
	require.NoError(t, node.AddAttribute(attr))
	require.NoError(t, o.AddNode(node))

	snap, err := o.Snapshot()
	require.NoError(t, err)
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"strength":0.555`)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))
	restored := createTestOrchestrator(t, nil)
	require.NoError(t, restored.RestoreSnapshot(decoded))

	edge, err := restored.GetEdge(weak.ID())
	require.NoError(t, err)
	assert.Equal(t, 0.555, edge.Strength().Float64())

	e, err := restored.GetNode("E")
	require.NoError(t, err)
	got, ok := e.AttributeByName("estimate")
	require.True(t, ok)
	assert.Equal(t, 0.333, got.Confidence().Float64())
	require.Len(t, got.NestedStructures(), 1)
	assert.Equal(t, 0.125, got.NestedStructures()[0].Confidence().Float64())

	rendered, err := restored.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, rendered, `"strength": 0.56`, "rendered documents keep two decimals")
}

func TestOrchestrator_RestoreSnapshot_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		corrupt  func(*Snapshot)
		wantCode string
	}{
		{
			name:     "dangling edge endpoint",
			corrupt:  func(s *Snapshot) { s.Edges[0].Target = "missing" },
			wantCode: pkgerrors.CodeNodeNotFound,
		},
		{
			name:     "unknown relationship",
			corrupt:  func(s *Snapshot) { s.Edges[0].Type = valueobjects.RelationshipUnknown },
			wantCode: pkgerrors.CodeInvalidEntity,
		},
		{
			name:     "path over missing edge",
			corrupt:  func(s *Snapshot) { s.Paths[0].Edges[0].ID = "EDGE_missing" },
			wantCode: pkgerrors.CodeEdgeNotFound,
		},
		{
			name:     "duplicate node",
			corrupt:  func(s *Snapshot) { s.Nodes = append(s.Nodes, s.Nodes[0]) },
			wantCode: pkgerrors.CodeDuplicateID,
		},
		{
			name: "foreign incoming edge",
			corrupt: func(s *Snapshot) {
				for _, e := range s.Edges {
					if e.Target != s.Nodes[0].ID {
						s.Nodes[0].IncomingEdgeIDs = append(s.Nodes[0].IncomingEdgeIDs, e.ID)
						return
					}
				}
			},
			wantCode: pkgerrors.CodeInvalidEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := snapshotGraph(t)
			snap, err := o.Snapshot()
			require.NoError(t, err)
			tt.corrupt(&snap)

			target, _ := diamond(t)
			before := target.NodeIDs()
			err = target.RestoreSnapshot(snap)
			assert.True(t, pkgerrors.HasCode(err, tt.wantCode), "got %v", err)
			assert.Equal(t, before, target.NodeIDs(), "failed restore leaves the graph untouched")
		})
	}
}

func TestOrchestrator_RestoreSnapshot_Version(t *testing.T) {
	o := createTestOrchestrator(t, nil)
	err := o.RestoreSnapshot(Snapshot{Version: 99})
	assert.True(t, pkgerrors.IsValidation(err))
}
