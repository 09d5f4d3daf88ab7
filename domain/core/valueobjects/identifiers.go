package valueobjects

import (
	"strings"

	"github.com/google/uuid"
)

// Identifier prefixes. Ids are otherwise opaque.
const (
	NodeIDPrefix      = "NODE"
	EdgeIDPrefix      = "EDGE"
	PathIDPrefix      = "PATH"
	AttributeIDPrefix = "ATTR"
)

func newID(prefix string) string {
	return prefix + "_" + uuid.New().String()
}

// NewNodeID generates a unique node identifier
func NewNodeID() string { return newID(NodeIDPrefix) }

// NewEdgeID generates a unique edge identifier
func NewEdgeID() string { return newID(EdgeIDPrefix) }

// NewPathID generates a unique path identifier
func NewPathID() string { return newID(PathIDPrefix) }

// NewAttributeID generates a unique attribute identifier
func NewAttributeID() string { return newID(AttributeIDPrefix) }

// HasPrefix reports whether id was generated with the given prefix
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_")
}
