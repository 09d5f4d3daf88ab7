package entities

import (
	"fmt"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
)

// Edge is a directed, weighted relationship between two nodes
type Edge struct {
	id           string
	sourceID     string
	targetID     string
	relationship valueobjects.RelationshipType
	strength     valueobjects.Strength
	description  string
	sources      []string
	updatedAt    time.Time
}

// NewEdge creates an edge with the default strength
func NewEdge(id, sourceID, targetID string, rel valueobjects.RelationshipType, description string) *Edge {
	return NewWeightedEdge(id, sourceID, targetID, rel, valueobjects.DefaultStrength.Float64(), description)
}

// NewWeightedEdge creates an edge with an explicit strength, clamped into [0,1]
func NewWeightedEdge(id, sourceID, targetID string, rel valueobjects.RelationshipType, strength float64, description string) *Edge {
	return &Edge{
		id:           id,
		sourceID:     sourceID,
		targetID:     targetID,
		relationship: rel,
		strength:     valueobjects.NewStrength(strength),
		description:  description,
		sources:      []string{},
		updatedAt:    time.Now().UTC(),
	}
}

func (e *Edge) ID() string {
	return e.id
}

func (e *Edge) SourceID() string {
	return e.sourceID
}

func (e *Edge) TargetID() string {
	return e.targetID
}

func (e *Edge) Relationship() valueobjects.RelationshipType {
	return e.relationship
}

func (e *Edge) Strength() valueobjects.Strength {
	return e.strength
}

func (e *Edge) Description() string {
	return e.description
}

func (e *Edge) UpdatedAt() time.Time {
	return e.updatedAt
}

// Sources returns a copy of the provenance list
func (e *Edge) Sources() []string {
	return append([]string{}, e.sources...)
}

// SetStrength clamps into [0,1]
func (e *Edge) SetStrength(s float64) {
	e.strength = valueobjects.NewStrength(s)
	e.touch()
}

func (e *Edge) SetDescription(description string) {
	e.description = description
	e.touch()
}

// AddSource ignores empty and repeated sources
func (e *Edge) AddSource(source string) {
	if source == "" || containsString(e.sources, source) {
		return
	}
	e.sources = append(e.sources, source)
	e.touch()
}

func (e *Edge) RemoveSource(source string) bool {
	var ok bool
	if e.sources, ok = removeString(e.sources, source); ok {
		e.touch()
	}
	return ok
}

// IsValid rejects empty ids, self loops, non-concrete relationships and out of range strength
func (e *Edge) IsValid() bool {
	if e == nil || e.id == "" || e.sourceID == "" || e.targetID == "" {
		return false
	}
	if e.sourceID == e.targetID {
		return false
	}
	return e.relationship.IsConcrete() && e.strength.Valid()
}

// ConnectsNodes ignores direction
func (e *Edge) ConnectsNodes(a, b string) bool {
	return (e.sourceID == a && e.targetID == b) || (e.sourceID == b && e.targetID == a)
}

func (e *Edge) InvolvesNode(id string) bool {
	return id != "" && (e.sourceID == id || e.targetID == id)
}

// OtherNode returns the opposite endpoint, or "" when id is not an endpoint
func (e *Edge) OtherNode(id string) string {
	if id == "" {
		return ""
	}
	switch id {
	case e.sourceID:
		return e.targetID
	case e.targetID:
		return e.sourceID
	default:
		return ""
	}
}

// Clone returns a copy
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	c := *e
	c.sources = e.Sources()
	return &c
}

// String renders "source --REL(0.50)--> target"
func (e *Edge) String() string {
	return fmt.Sprintf("Edge(id=%s): %s --%s(%s)--> %s", e.id, e.sourceID, e.relationship, e.strength, e.targetID)
}

func (e *Edge) touch() {
	e.updatedAt = time.Now().UTC()
}
