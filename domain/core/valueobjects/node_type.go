package valueobjects

import "strings"

// NodeType classifies a node within the software-engineering domain
type NodeType string

const (
	NodeTypeProject      NodeType = "PROJECT"
	NodeTypeArchitecture NodeType = "ARCHITECTURE"
	NodeTypeDevelopment  NodeType = "DEVELOPMENT"
	NodeTypeQuality      NodeType = "QUALITY"
	NodeTypeKnowledge    NodeType = "KNOWLEDGE"
	NodeTypeBacklog      NodeType = "BACKLOG"
	NodeTypeTask         NodeType = "TASK"
	NodeTypeUnknown      NodeType = "Unknown"
)

// AllNodeTypes lists every known node type in declaration order
func AllNodeTypes() []NodeType {
	return []NodeType{
		NodeTypeProject,
		NodeTypeArchitecture,
		NodeTypeDevelopment,
		NodeTypeQuality,
		NodeTypeKnowledge,
		NodeTypeBacklog,
		NodeTypeTask,
	}
}

// ParseNodeType converts a string to a NodeType, case-insensitively.
// Unrecognised input maps to NodeTypeUnknown.
func ParseNodeType(s string) NodeType {
	s = strings.TrimSpace(s)
	for _, t := range AllNodeTypes() {
		if strings.EqualFold(string(t), s) {
			return t
		}
	}
	return NodeTypeUnknown
}

// String returns the canonical name
func (t NodeType) String() string {
	if t == "" {
		return string(NodeTypeUnknown)
	}
	return string(t)
}

// IsKnown reports whether the type is one of the declared domain types
func (t NodeType) IsKnown() bool {
	return ParseNodeType(string(t)) != NodeTypeUnknown
}
