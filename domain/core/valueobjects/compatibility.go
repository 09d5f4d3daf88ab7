package valueobjects

import "sort"

// CompatibilityRule permits a relationship from one node type to another
type CompatibilityRule struct {
	From         NodeType         `json:"from" yaml:"from"`
	To           NodeType         `json:"to" yaml:"to"`
	Relationship RelationshipType `json:"relationship" yaml:"relationship"`
}

// CompatibilityRules is an immutable table of allowed typed transitions.
// Anything not in the table is rejected.
type CompatibilityRules struct {
	rules map[CompatibilityRule]struct{}
}

// NewCompatibilityRules builds a table from the given rules
func NewCompatibilityRules(rules ...CompatibilityRule) CompatibilityRules {
	return CompatibilityRules{}.With(rules...)
}

// DefaultCompatibilityRules returns the built-in planning rules
func DefaultCompatibilityRules() CompatibilityRules {
	return NewCompatibilityRules(
		CompatibilityRule{From: NodeTypeProject, To: NodeTypeBacklog, Relationship: RelationshipDependsOn},
		CompatibilityRule{From: NodeTypeBacklog, To: NodeTypeTask, Relationship: RelationshipContains},
		CompatibilityRule{From: NodeTypeProject, To: NodeTypeTask, Relationship: RelationshipImplements},
	)
}

// Allows reports whether the transition is tabulated
func (c CompatibilityRules) Allows(from, to NodeType, rel RelationshipType) bool {
	_, ok := c.rules[CompatibilityRule{From: from, To: to, Relationship: rel}]
	return ok
}

// With returns a copy extended with rules
func (c CompatibilityRules) With(rules ...CompatibilityRule) CompatibilityRules {
	next := make(map[CompatibilityRule]struct{}, len(c.rules)+len(rules))
	for r := range c.rules {
		next[r] = struct{}{}
	}
	for _, r := range rules {
		next[r] = struct{}{}
	}
	return CompatibilityRules{rules: next}
}

// Len returns the number of rules
func (c CompatibilityRules) Len() int { return len(c.rules) }

// Rules lists the table in a stable order
func (c CompatibilityRules) Rules() []CompatibilityRule {
	out := make([]CompatibilityRule, 0, len(c.rules))
	for r := range c.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].Relationship < out[j].Relationship
	})
	return out
}
