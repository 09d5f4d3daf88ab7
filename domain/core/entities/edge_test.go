package entities

import (
	"math"
	"testing"

	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestEdge(id, source, target string, rel valueobjects.RelationshipType, strength float64) *Edge {
	return NewWeightedEdge(id, source, target, rel, strength, "")
}

func TestNewEdge_DefaultStrength(t *testing.T) {
	edge := NewEdge("e1", "A", "B", valueobjects.RelationshipUses, "uses")

	assert.Equal(t, valueobjects.Strength(0.5), edge.Strength())
	assert.Equal(t, "A", edge.SourceID())
	assert.Equal(t, "B", edge.TargetID())
	assert.True(t, edge.IsValid())
}

func TestEdge_StrengthClamping(t *testing.T) {
	assert.Equal(t, valueobjects.Strength(1), createTestEdge("e", "A", "B", valueobjects.RelationshipUses, 2).Strength())
	assert.Equal(t, valueobjects.Strength(0), createTestEdge("e", "A", "B", valueobjects.RelationshipUses, -2).Strength())

	edge := createTestEdge("e", "A", "B", valueobjects.RelationshipUses, 0.3)
	edge.SetStrength(9)
	assert.Equal(t, valueobjects.Strength(1), edge.Strength())

	edge.SetStrength(math.NaN())
	assert.Equal(t, valueobjects.Strength(0), edge.Strength())
	j, err := edge.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, j, `"strength": 0.00`)
}

func TestEdge_IsValid(t *testing.T) {
	tests := []struct {
		name string
		edge *Edge
		want bool
	}{
		{"valid", createTestEdge("e", "A", "B", valueobjects.RelationshipContains, 0.8), true},
		{"empty id", createTestEdge("", "A", "B", valueobjects.RelationshipContains, 0.8), false},
		{"empty source", createTestEdge("e", "", "B", valueobjects.RelationshipContains, 0.8), false},
		{"empty target", createTestEdge("e", "A", "", valueobjects.RelationshipContains, 0.8), false},
		{"self loop", createTestEdge("e", "A", "A", valueobjects.RelationshipContains, 0.8), false},
		{"unknown relationship", createTestEdge("e", "A", "B", valueobjects.RelationshipUnknown, 0.8), false},
		{"any relationship", createTestEdge("e", "A", "B", valueobjects.RelationshipAny, 0.8), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.edge.IsValid())
		})
	}
}

func TestEdge_Endpoints(t *testing.T) {
	edge := createTestEdge("e", "A", "B", valueobjects.RelationshipUses, 0.5)

	assert.True(t, edge.ConnectsNodes("A", "B"))
	assert.True(t, edge.ConnectsNodes("B", "A"))
	assert.False(t, edge.ConnectsNodes("A", "C"))

	assert.True(t, edge.InvolvesNode("B"))
	assert.False(t, edge.InvolvesNode("C"))
	assert.False(t, edge.InvolvesNode(""))

	assert.Equal(t, "B", edge.OtherNode("A"))
	assert.Equal(t, "A", edge.OtherNode("B"))
	assert.Equal(t, "", edge.OtherNode("C"))
	assert.Equal(t, "", edge.OtherNode(""))
}

func TestEdge_Sources(t *testing.T) {
	edge := createTestEdge("e", "A", "B", valueobjects.RelationshipUses, 0.5)
	edge.AddSource("")
	edge.AddSource("adr-7")
	edge.AddSource("adr-7")

	assert.Equal(t, []string{"adr-7"}, edge.Sources())
	assert.True(t, edge.RemoveSource("adr-7"))
	assert.Empty(t, edge.Sources())
}

func TestEdge_Rendering(t *testing.T) {
	edge := createTestEdge("e1", "A", "B", valueobjects.RelationshipDependsOn, 0.8)
	edge.SetDescription("needs")

	y, err := edge.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, y, "source: A")
	assert.Contains(t, y, "type: DEPENDS_ON")
	assert.Contains(t, y, "strength: 0.80")
	assert.Contains(t, y, "description: needs")
	assert.NotContains(t, y, "sources:")

	j, err := edge.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, j, `"strength": 0.80`)

	back, err := EdgeFromDocument(edge.Document())
	require.NoError(t, err)
	assert.Equal(t, edge.String(), back.String())

	_, err = EdgeFromDocument(EdgeDocument{ID: "x", Source: "A", Target: "A", Type: valueobjects.RelationshipUses})
	assert.Error(t, err)
}

func TestEdge_Clone(t *testing.T) {
	edge := createTestEdge("e", "A", "B", valueobjects.RelationshipUses, 0.5)
	edge.AddSource("s")

	clone := edge.Clone()
	clone.SetStrength(0.9)
	clone.AddSource("t")

	assert.Equal(t, valueobjects.Strength(0.5), edge.Strength())
	assert.Equal(t, []string{"s"}, edge.Sources())
}
