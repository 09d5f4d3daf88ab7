package valueobjects

import "strings"

// PathType categorises what a path is used for
type PathType string

const (
	PathTypeDependency   PathType = "DEPENDENCY"
	PathTypeWorkflow     PathType = "WORKFLOW"
	PathTypeHierarchical PathType = "HIERARCHICAL"
	PathTypeKnowledge    PathType = "KNOWLEDGE"
	PathTypeTraceability PathType = "TRACEABILITY"
	PathTypeUnknown      PathType = "Unknown"
)

// AllPathTypes lists the known path types
func AllPathTypes() []PathType {
	return []PathType{
		PathTypeDependency,
		PathTypeWorkflow,
		PathTypeHierarchical,
		PathTypeKnowledge,
		PathTypeTraceability,
	}
}

// ParsePathType converts a string to a PathType, case-insensitively
func ParsePathType(s string) PathType {
	s = strings.TrimSpace(s)
	for _, t := range AllPathTypes() {
		if strings.EqualFold(string(t), s) {
			return t
		}
	}
	return PathTypeUnknown
}

// String returns the canonical name
func (t PathType) String() string {
	if t == "" {
		return string(PathTypeUnknown)
	}
	return string(t)
}
