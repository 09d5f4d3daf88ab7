package aggregates

import (
	"testing"

	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathNodes(paths []*entities.Path) [][]string {
	out := make([][]string, len(paths))
	for i, p := range paths {
		out[i] = p.NodeIDs()
	}
	return out
}

func TestOrchestrator_FindAllPaths(t *testing.T) {
	o, _ := diamond(t)

	tests := []struct {
		name        string
		src, tgt    string
		maxDepth    int
		minStrength float64
		want        [][]string
	}{
		{"both branches", "A", "D", 5, 0, [][]string{{"A", "B", "D"}, {"A", "C", "D"}}},
		{"depth too small", "A", "D", 1, 0, [][]string{}},
		{"weak branch skipped", "A", "D", 5, 0.5, [][]string{{"A", "C", "D"}}},
		{"against direction", "D", "A", 5, 0, [][]string{}},
		{"zero depth", "A", "D", 0, 0, [][]string{}},
		{"missing endpoint", "A", "Z", 5, 0, [][]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := o.FindAllPaths(tt.src, tt.tgt, tt.maxDepth, tt.minStrength)
			assert.Equal(t, tt.want, pathNodes(paths))
			for _, p := range paths {
				assert.True(t, p.IsValid())
				assert.False(t, p.IsCyclic())
			}
		})
	}
	assert.Zero(t, o.PathCount())
}

func TestOrchestrator_FindAllPaths_NoRevisits(t *testing.T) {
	o := createTestOrchestrator(t, nil)
	for _, id := range []string{"A", "B", "C"} {
		addTestNode(t, o, id, valueobjects.NodeTypeTask)
	}
	addTestEdge(t, o, "A", "B", valueobjects.RelationshipUses, 0.5)
	addTestEdge(t, o, "B", "A", valueobjects.RelationshipUses, 0.5)
	addTestEdge(t, o, "B", "C", valueobjects.RelationshipUses, 0.5)

	paths := o.FindAllPaths("A", "C", 10, 0)
	assert.Equal(t, [][]string{{"A", "B", "C"}}, pathNodes(paths))
}

func TestOrchestrator_FindShortestAndStrongest(t *testing.T) {
	o, _ := diamond(t)
	addTestNode(t, o, "E", valueobjects.NodeTypeTask)
	addTestEdge(t, o, "A", "E", valueobjects.RelationshipUses, 0.05)
	addTestEdge(t, o, "E", "D", valueobjects.RelationshipUses, 0.05)

	shortest := o.FindShortestPath("A", "D", 0)
	require.NotNil(t, shortest)
	assert.Equal(t, 2, shortest.Depth())
	assert.Equal(t, []string{"A", "B", "D"}, shortest.NodeIDs(), "first found wins ties")

	strongest := o.FindStrongestPath("A", "D", 5)
	require.NotNil(t, strongest)
	assert.Equal(t, []string{"A", "C", "D"}, strongest.NodeIDs())
	assert.InDelta(t, 0.9, strongest.TotalStrength().Float64(), 1e-9)

	assert.Nil(t, o.FindShortestPath("D", "A", 0))
	assert.Nil(t, o.FindStrongestPath("A", "D", 1))
}

func TestOrchestrator_FindPathsByType(t *testing.T) {
	o, _ := diamond(t)

	typed := o.FindPathsByType("A", "D", valueobjects.RelationshipDependsOn, 5)
	assert.Equal(t, [][]string{{"A", "C", "D"}}, pathNodes(typed))

	assert.Len(t, o.FindPathsByType("A", "D", valueobjects.RelationshipAny, 5), 2)
	assert.Empty(t, o.FindPathsByType("A", "D", valueobjects.RelationshipExtends, 5))
}

func TestOrchestrator_Connections(t *testing.T) {
	o, _ := diamond(t)

	assert.True(t, o.HasDirectConnection("A", "B"))
	assert.False(t, o.HasDirectConnection("B", "A"))
	assert.False(t, o.HasDirectConnection("A", "D"))

	assert.False(t, o.HasConnection("A", "D", 1))
	assert.True(t, o.HasConnection("A", "D", 2))
	assert.False(t, o.HasConnection("D", "A", 10))
	assert.False(t, o.HasConnection("A", "Z", 10))
}

func TestOrchestrator_NeighborQueries(t *testing.T) {
	o, edges := diamond(t)

	neighbors, err := o.Neighbors("A", valueobjects.RelationshipAny)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, neighbors)

	neighbors, err = o.Neighbors("A", valueobjects.RelationshipUses)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, neighbors)

	_, err = o.Neighbors("Z", valueobjects.RelationshipAny)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNodeNotFound))

	between := o.EdgesBetween("A", "C")
	require.Len(t, between, 1)
	assert.Equal(t, edges["AC"].ID(), between[0].ID())
	assert.Empty(t, o.EdgesBetween("C", "A"))

	into, err := o.EdgesTo("D", valueobjects.RelationshipAny)
	require.NoError(t, err)
	assert.Len(t, into, 2)

	into, err = o.EdgesTo("D", valueobjects.RelationshipDependsOn)
	require.NoError(t, err)
	require.Len(t, into, 1)
	assert.Equal(t, "C", into[0].SourceID())

	from, err := o.EdgesFrom("B", valueobjects.RelationshipAny)
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, edges["BD"].ID(), from[0].ID())
}

func TestOrchestrator_RemoveRelationships(t *testing.T) {
	o, edges := diamond(t)
	_, err := o.AddPath([]string{edges["AB"].ID(), edges["BD"].ID()}, valueobjects.PathTypeWorkflow, "")
	require.NoError(t, err)

	n, err := o.RemoveRelationships("A", valueobjects.RelationshipUses)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, o.EdgeCount())
	assert.Zero(t, o.PathCount())

	n, err = o.RemoveAllRelationships("D")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, o.EdgeCount())
	require.NoError(t, o.ValidateGraph())

	_, err = o.RemoveAllRelationships("Z")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNodeNotFound))
}

func TestOrchestrator_FindCycles(t *testing.T) {
	o := createTestOrchestrator(t, nil)
	for _, id := range []string{"A", "B", "C", "D"} {
		addTestNode(t, o, id, valueobjects.NodeTypeTask)
	}
	ab := addTestEdge(t, o, "A", "B", valueobjects.RelationshipUses, 0.5)
	bc := addTestEdge(t, o, "B", "C", valueobjects.RelationshipUses, 0.5)
	ca := addTestEdge(t, o, "C", "A", valueobjects.RelationshipUses, 0.5)
	addTestEdge(t, o, "D", "A", valueobjects.RelationshipUses, 0.5)

	cycles := o.FindCycles()
	require.Len(t, cycles, 1)
	witness := cycles[0]
	assert.True(t, witness.IsCyclic())
	assert.True(t, witness.IsValid())
	assert.Equal(t, []string{ab.ID(), bc.ID(), ca.ID()}, witness.EdgeIDs())
	assert.Equal(t, []string{"A", "B", "C", "A"}, witness.NodeIDs())

	assert.Len(t, o.FindCyclesInvolvingNode("B"), 1)
	assert.Empty(t, o.FindCyclesInvolvingNode("D"))

	acyclic, _ := diamond(t)
	assert.Empty(t, acyclic.FindCycles())
}

func TestOrchestrator_ValidateGraph(t *testing.T) {
	o, edges := diamond(t)
	_, err := o.AddPath([]string{edges["AC"].ID(), edges["CD"].ID()}, valueobjects.PathTypeDependency, "")
	require.NoError(t, err)
	require.NoError(t, o.ValidateGraph())

	o.nodes["B"].AddOutgoingEdgeID("EDGE_ghost")
	err = o.ValidateGraph()
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidEntity), "got %v", err)

	o.nodes["B"].RemoveEdgeID("EDGE_ghost")
	o.nodes["B"].RemoveEdgeID(edges["AB"].ID())
	err = o.ValidateGraph()
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidEntity), "got %v", err)

	o.nodes["B"].AddIncomingEdgeID(edges["AB"].ID())
	require.NoError(t, o.ValidateGraph())

	o.nodes["A"].AddIncomingEdgeID(edges["AB"].ID())
	err = o.ValidateGraph()
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidEntity), "edge filed under the wrong direction: %v", err)
	assert.Contains(t, err.Error(), "as incoming")
}

func TestOrchestrator_OrphansAndComponents(t *testing.T) {
	o, _ := diamond(t)
	addTestNode(t, o, "F", valueobjects.NodeTypeTask)
	addTestNode(t, o, "E", valueobjects.NodeTypeTask)

	assert.Equal(t, []string{"E", "F"}, o.FindOrphanedNodes())
	assert.Equal(t, [][]string{{"A", "B", "C", "D"}, {"E"}, {"F"}}, o.FindConnectedComponents())
}

func TestOrchestrator_ExtractNeighborhood(t *testing.T) {
	o, _ := diamond(t)

	tests := []struct {
		name   string
		radius int
		want   []string
	}{
		{"self only", 0, []string{"D"}},
		{"direct neighbors ignore direction", 1, []string{"B", "C", "D"}},
		{"whole graph", 2, []string{"A", "B", "C", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := o.ExtractNeighborhood("D", tt.radius)
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.NodeIDs())
		})
	}

	_, err := o.ExtractNeighborhood("Z", 1)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNodeNotFound))
}

func TestOrchestrator_Statistics(t *testing.T) {
	o, edges := diamond(t)
	addTestNode(t, o, "E", valueobjects.NodeTypeTask)
	_, err := o.AddPath([]string{edges["AB"].ID()}, valueobjects.PathTypeWorkflow, "")
	require.NoError(t, err)

	stats := o.Statistics()
	assert.Equal(t, 5, stats.NodeCount)
	assert.Equal(t, 4, stats.EdgeCount)
	assert.Equal(t, 1, stats.PathCount)
	assert.Equal(t, 4, stats.NodesByType["ARCHITECTURE"])
	assert.Equal(t, 1, stats.NodesByType["TASK"])
	assert.Equal(t, 2, stats.EdgesByType["USES"])
	assert.Equal(t, 2, stats.EdgesByType["DEPENDS_ON"])
	assert.Equal(t, 1, stats.PathsByType["WORKFLOW"])
	assert.InDelta(t, 1.6, stats.AverageDegree, 1e-9)
	assert.Equal(t, 1, stats.OrphanCount)
}
