package valueobjects

import "strings"

// RelationshipType is the semantic label of a directed edge
type RelationshipType string

const (
	RelationshipDependsOn  RelationshipType = "DEPENDS_ON"
	RelationshipImplements RelationshipType = "IMPLEMENTS"
	RelationshipUses       RelationshipType = "USES"
	RelationshipContains   RelationshipType = "CONTAINS"
	RelationshipExtends    RelationshipType = "EXTENDS"
	RelationshipRelatedTo  RelationshipType = "RELATED_TO"

	// RelationshipAny only appears in query filters and never on a stored edge
	RelationshipAny     RelationshipType = "ANY"
	RelationshipUnknown RelationshipType = "Unknown"
)

// ConcreteRelationships lists the relationships an edge may carry
func ConcreteRelationships() []RelationshipType {
	return []RelationshipType{
		RelationshipDependsOn,
		RelationshipImplements,
		RelationshipUses,
		RelationshipContains,
		RelationshipExtends,
		RelationshipRelatedTo,
	}
}

// ParseRelationship converts a string to a RelationshipType, case-insensitively.
// "ANY" is accepted; anything unrecognised maps to RelationshipUnknown.
func ParseRelationship(s string) RelationshipType {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(RelationshipAny)) {
		return RelationshipAny
	}
	for _, r := range ConcreteRelationships() {
		if strings.EqualFold(string(r), s) {
			return r
		}
	}
	return RelationshipUnknown
}

// String returns the canonical name
func (r RelationshipType) String() string {
	if r == "" {
		return string(RelationshipUnknown)
	}
	return string(r)
}

// IsConcrete reports whether the relationship may be stored on an edge
func (r RelationshipType) IsConcrete() bool {
	p := ParseRelationship(string(r))
	return p != RelationshipUnknown && p != RelationshipAny
}

// Matches reports whether r satisfies the filter. ANY matches everything.
func (r RelationshipType) Matches(filter RelationshipType) bool {
	return filter == RelationshipAny || filter == r
}
