package entities

import (
	"testing"

	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestNode(id string, nodeType valueobjects.NodeType) *Node {
	return NewNodeWithID(id, nodeType, "test node "+id)
}

func TestNewNode(t *testing.T) {
	node := NewNode(valueobjects.NodeTypeProject, "ArchiNote")

	assert.True(t, valueobjects.HasPrefix(node.ID(), valueobjects.NodeIDPrefix))
	assert.Equal(t, valueobjects.NodeTypeProject, node.Type())
	assert.Equal(t, "ArchiNote", node.Description())
	assert.Empty(t, node.IncomingEdgeIDs())
	assert.Empty(t, node.OutgoingEdgeIDs())
	assert.Empty(t, node.PathIDs())
	assert.True(t, node.IsValid())
}

func TestNode_IsValid(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want bool
	}{
		{"valid", createTestNode("A", valueobjects.NodeTypeTask), true},
		{"empty id", createTestNode("", valueobjects.NodeTypeTask), false},
		{"unknown type", createTestNode("A", valueobjects.NodeTypeUnknown), false},
		{"zero type", createTestNode("A", ""), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.IsValid())
		})
	}
}

func TestNode_EdgeIDLists(t *testing.T) {
	node := createTestNode("A", valueobjects.NodeTypeProject)

	node.AddOutgoingEdgeID("e1")
	node.AddOutgoingEdgeID("e1")
	node.AddOutgoingEdgeID("")
	node.AddIncomingEdgeID("e2")
	node.AddIncomingEdgeID("e3")

	assert.Equal(t, []string{"e1"}, node.OutgoingEdgeIDs())
	assert.Equal(t, []string{"e2", "e3"}, node.IncomingEdgeIDs())
	assert.Equal(t, 3, node.Degree())
	assert.True(t, node.HasEdge("e3"))

	node.RemoveEdgeID("e2")
	node.RemoveEdgeID("missing")
	assert.Equal(t, []string{"e3"}, node.IncomingEdgeIDs())
	assert.False(t, node.HasEdge("e2"))
}

func TestNode_RemoveEdgeIDFromBothLists(t *testing.T) {
	node := createTestNode("A", valueobjects.NodeTypeProject)
	node.AddIncomingEdgeID("e1")
	node.AddOutgoingEdgeID("e1")

	node.RemoveEdgeID("e1")

	assert.Empty(t, node.IncomingEdgeIDs())
	assert.Empty(t, node.OutgoingEdgeIDs())
}

func TestNode_PathIDs(t *testing.T) {
	node := createTestNode("A", valueobjects.NodeTypeProject)
	node.AddPathID("p1")
	node.AddPathID("p1")
	node.AddPathID("p2")
	node.AddPathID("")

	assert.Equal(t, []string{"p1", "p2"}, node.PathIDs())
	node.RemovePathID("p1")
	assert.Equal(t, []string{"p2"}, node.PathIDs())
	assert.False(t, node.HasPath("p1"))
}

func TestNode_Attributes(t *testing.T) {
	node := createTestNode("A", valueobjects.NodeTypeProject)
	attr := createTestAttribute("scope")

	require.NoError(t, node.AddAttribute(attr))
	assert.Error(t, node.AddAttribute(nil))
	assert.Error(t, node.AddAttribute(createTestAttribute("")))
	assert.Len(t, node.Attributes(), 1)

	found, ok := node.AttributeByName("scope")
	require.True(t, ok)
	assert.Equal(t, attr.ID(), found.ID())

	found.SetName("changed")
	again, _ := node.AttributeByName("scope")
	assert.NotNil(t, again, "returned attributes must be copies")

	assert.True(t, node.RemoveAttribute(attr.ID()))
	assert.False(t, node.RemoveAttribute(attr.ID()))
	_, ok = node.AttributeByName("scope")
	assert.False(t, ok)
}

func TestNode_GettersReturnCopies(t *testing.T) {
	node := createTestNode("A", valueobjects.NodeTypeProject)
	node.AddOutgoingEdgeID("e1")

	ids := node.OutgoingEdgeIDs()
	ids[0] = "tampered"

	assert.Equal(t, []string{"e1"}, node.OutgoingEdgeIDs())
}

func TestNode_Clone(t *testing.T) {
	node := createTestNode("A", valueobjects.NodeTypeProject)
	require.NoError(t, node.AddAttribute(createTestAttribute("scope")))
	node.AddOutgoingEdgeID("e1")

	clone := node.Clone()
	clone.AddOutgoingEdgeID("e2")
	clone.SetDescription("other")
	clone.attributes[0].SetName("renamed")

	assert.Equal(t, []string{"e1"}, node.OutgoingEdgeIDs())
	assert.Equal(t, "test node A", node.Description())
	_, ok := node.AttributeByName("scope")
	assert.True(t, ok)

	clone.ClearReferences()
	assert.Empty(t, clone.OutgoingEdgeIDs())
	assert.Equal(t, []string{"e1"}, node.OutgoingEdgeIDs())
}

func TestNode_String(t *testing.T) {
	node := NewNodeWithID("A", valueobjects.NodeTypeProject, "")
	node.AddOutgoingEdgeID("e1")

	assert.Equal(t, "Node(id=A, type=PROJECT), incoming_edge_ids=[], outgoing_edge_ids=[e1], path_ids=[]", node.String())
}

func TestNode_ToYAML(t *testing.T) {
	node := createTestNode("A", valueobjects.NodeTypeBacklog)
	node.AddIncomingEdgeID("e1")

	out, err := node.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, out, "id: A")
	assert.Contains(t, out, "type: BACKLOG")
	assert.Contains(t, out, "incoming_edge_ids:")
	assert.NotContains(t, out, "outgoing_edge_ids")

	back, err := NodeFromDocument(node.Document())
	require.NoError(t, err)
	assert.Empty(t, back.IncomingEdgeIDs())
	assert.Equal(t, node.Type(), back.Type())

	_, err = NodeFromDocument(NodeDocument{ID: "X", Type: valueobjects.NodeTypeUnknown})
	assert.Error(t, err)
}
