package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
)

// Node is a typed knowledge unit. It only records the ids of the edges and
// paths that reference it; the orchestrator owns those links.
type Node struct {
	id              string
	nodeType        valueobjects.NodeType
	description     string
	attributes      []*StructuredAttribute
	incomingEdgeIDs []string
	outgoingEdgeIDs []string
	pathIDs         []string
	updatedAt       time.Time
}

// NewNode creates a node with a generated id
func NewNode(nodeType valueobjects.NodeType, description string) *Node {
	return NewNodeWithID(valueobjects.NewNodeID(), nodeType, description)
}

// NewNodeWithID creates a node with a caller supplied id
func NewNodeWithID(id string, nodeType valueobjects.NodeType, description string) *Node {
	return &Node{
		id:              id,
		nodeType:        nodeType,
		description:     description,
		attributes:      []*StructuredAttribute{},
		incomingEdgeIDs: []string{},
		outgoingEdgeIDs: []string{},
		pathIDs:         []string{},
		updatedAt:       time.Now().UTC(),
	}
}

// ID returns the node's identifier
func (n *Node) ID() string {
	return n.id
}

// Type returns the node's classification
func (n *Node) Type() valueobjects.NodeType {
	return n.nodeType
}

// Description returns the free-text description
func (n *Node) Description() string {
	return n.description
}

// UpdatedAt returns the last modification time
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

// SetDescription replaces the description
func (n *Node) SetDescription(description string) {
	n.description = description
	n.touch()
}

// Attributes returns deep copies of the attributes in insertion order
func (n *Node) Attributes() []*StructuredAttribute {
	out := make([]*StructuredAttribute, len(n.attributes))
	for i, a := range n.attributes {
		out[i] = a.Clone()
	}
	return out
}

// AddAttribute attaches a copy of a valid attribute
func (n *Node) AddAttribute(attr *StructuredAttribute) error {
	if attr == nil {
		return pkgerrors.NewInvalidEntity("attribute", "attribute cannot be nil")
	}
	if !attr.IsValid() {
		return pkgerrors.NewInvalidEntity("attribute", fmt.Sprintf("attribute %q is invalid", attr.Name()))
	}
	n.attributes = append(n.attributes, attr.Clone())
	n.touch()
	return nil
}

// RemoveAttribute reports whether an attribute with the id was removed
func (n *Node) RemoveAttribute(id string) bool {
	for i, a := range n.attributes {
		if a.ID() == id {
			n.attributes = append(n.attributes[:i:i], n.attributes[i+1:]...)
			n.touch()
			return true
		}
	}
	return false
}

// AttributeByName returns a copy of the first attribute with the given name
func (n *Node) AttributeByName(name string) (*StructuredAttribute, bool) {
	for _, a := range n.attributes {
		if a.Name() == name {
			return a.Clone(), true
		}
	}
	return nil, false
}

// IncomingEdgeIDs returns a copy of the incoming edge ids
func (n *Node) IncomingEdgeIDs() []string {
	return append([]string{}, n.incomingEdgeIDs...)
}

// OutgoingEdgeIDs returns a copy of the outgoing edge ids
func (n *Node) OutgoingEdgeIDs() []string {
	return append([]string{}, n.outgoingEdgeIDs...)
}

// EdgeIDs returns incoming then outgoing edge ids
func (n *Node) EdgeIDs() []string {
	out := make([]string, 0, len(n.incomingEdgeIDs)+len(n.outgoingEdgeIDs))
	out = append(out, n.incomingEdgeIDs...)
	return append(out, n.outgoingEdgeIDs...)
}

// PathIDs returns a copy of the path ids
func (n *Node) PathIDs() []string {
	return append([]string{}, n.pathIDs...)
}

// Degree is the number of incident edges
func (n *Node) Degree() int {
	return len(n.incomingEdgeIDs) + len(n.outgoingEdgeIDs)
}

// HasEdge reports whether the id is in either edge list
func (n *Node) HasEdge(id string) bool {
	return containsString(n.incomingEdgeIDs, id) || containsString(n.outgoingEdgeIDs, id)
}

// HasPath reports whether the path id is recorded
func (n *Node) HasPath(id string) bool {
	return containsString(n.pathIDs, id)
}

// AddIncomingEdgeID is idempotent; empty ids are ignored
func (n *Node) AddIncomingEdgeID(id string) {
	if id == "" || containsString(n.incomingEdgeIDs, id) {
		return
	}
	n.incomingEdgeIDs = append(n.incomingEdgeIDs, id)
	n.touch()
}

// AddOutgoingEdgeID is idempotent; empty ids are ignored
func (n *Node) AddOutgoingEdgeID(id string) {
	if id == "" || containsString(n.outgoingEdgeIDs, id) {
		return
	}
	n.outgoingEdgeIDs = append(n.outgoingEdgeIDs, id)
	n.touch()
}

// RemoveEdgeID removes the id from both edge lists
func (n *Node) RemoveEdgeID(id string) {
	var in, out bool
	n.incomingEdgeIDs, in = removeString(n.incomingEdgeIDs, id)
	n.outgoingEdgeIDs, out = removeString(n.outgoingEdgeIDs, id)
	if in || out {
		n.touch()
	}
}

// AddPathID is idempotent; empty ids are ignored
func (n *Node) AddPathID(id string) {
	if id == "" || containsString(n.pathIDs, id) {
		return
	}
	n.pathIDs = append(n.pathIDs, id)
	n.touch()
}

func (n *Node) RemovePathID(id string) {
	var ok bool
	if n.pathIDs, ok = removeString(n.pathIDs, id); ok {
		n.touch()
	}
}

// ClearReferences drops every edge and path id
func (n *Node) ClearReferences() {
	n.incomingEdgeIDs = []string{}
	n.outgoingEdgeIDs = []string{}
	n.pathIDs = []string{}
}

// IsValid requires an id, a known type and valid attributes
func (n *Node) IsValid() bool {
	if n == nil || n.id == "" || !n.nodeType.IsKnown() {
		return false
	}
	for _, a := range n.attributes {
		if !a.IsValid() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.attributes = n.Attributes()
	c.incomingEdgeIDs = n.IncomingEdgeIDs()
	c.outgoingEdgeIDs = n.OutgoingEdgeIDs()
	c.pathIDs = n.PathIDs()
	return &c
}

// String renders the node on a single line
func (n *Node) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Node(id=%s, type=%s)", n.id, n.nodeType)
	if n.description != "" {
		fmt.Fprintf(&sb, ", description=%q", n.description)
	}
	if len(n.attributes) > 0 {
		names := make([]string, len(n.attributes))
		for i, a := range n.attributes {
			names[i] = a.String()
		}
		fmt.Fprintf(&sb, ", attributes=[%s]", strings.Join(names, ", "))
	}
	fmt.Fprintf(&sb, ", incoming_edge_ids=[%s]", strings.Join(n.incomingEdgeIDs, ", "))
	fmt.Fprintf(&sb, ", outgoing_edge_ids=[%s]", strings.Join(n.outgoingEdgeIDs, ", "))
	fmt.Fprintf(&sb, ", path_ids=[%s]", strings.Join(n.pathIDs, ", "))
	return sb.String()
}

func (n *Node) touch() {
	n.updatedAt = time.Now().UTC()
}
