package entities

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
)

// DefaultConfidence is the confidence of a freshly created attribute
const DefaultConfidence valueobjects.Strength = 0.5

// StructuredAttribute is a typed, sourced piece of information attached to a node.
// Content may be keyed values, a list, nested attributes, or all of them when MIXED.
type StructuredAttribute struct {
	id          string
	name        string
	description string
	attrType    valueobjects.AttributeType
	contentType valueobjects.ContentType
	confidence  valueobjects.Strength
	sources     []string
	values      map[string]valueobjects.Value
	items       []valueobjects.Value
	nested      []*StructuredAttribute
	updatedAt   time.Time
}

// NewStructuredAttribute creates an attribute with a generated id and default confidence
func NewStructuredAttribute(name string, attrType valueobjects.AttributeType, contentType valueobjects.ContentType) *StructuredAttribute {
	return &StructuredAttribute{
		id:          valueobjects.NewAttributeID(),
		name:        name,
		attrType:    attrType,
		contentType: contentType,
		confidence:  DefaultConfidence,
		sources:     []string{},
		values:      make(map[string]valueobjects.Value),
		items:       []valueobjects.Value{},
		nested:      []*StructuredAttribute{},
		updatedAt:   time.Now().UTC(),
	}
}

func (a *StructuredAttribute) ID() string { return a.id }
func (a *StructuredAttribute) Name() string { return a.name }
func (a *StructuredAttribute) Description() string { return a.description }
func (a *StructuredAttribute) Type() valueobjects.AttributeType { return a.attrType }
func (a *StructuredAttribute) ContentType() valueobjects.ContentType { return a.contentType }
func (a *StructuredAttribute) Confidence() valueobjects.Strength { return a.confidence }
func (a *StructuredAttribute) UpdatedAt() time.Time { return a.updatedAt }

// Sources returns a copy of the source references
func (a *StructuredAttribute) Sources() []string {
	return append([]string(nil), a.sources...)
}

func (a *StructuredAttribute) SetName(name string) {
	a.name = name
	a.touch()
}

func (a *StructuredAttribute) SetDescription(description string) {
	a.description = description
	a.touch()
}

// SetConfidence clamps the score into [0,1]
func (a *StructuredAttribute) SetConfidence(c float64) {
	a.confidence = valueobjects.NewStrength(c)
	a.touch()
}

// AddSource records a source reference. Empty and repeated sources are ignored.
func (a *StructuredAttribute) AddSource(source string) {
	if source == "" || containsString(a.sources, source) {
		return
	}
	a.sources = append(a.sources, source)
	a.touch()
}

// RemoveSource reports whether the source was present
func (a *StructuredAttribute) RemoveSource(source string) bool {
	var ok bool
	a.sources, ok = removeString(a.sources, source)
	if ok {
		a.touch()
	}
	return ok
}

// SetValue stores a keyed value
func (a *StructuredAttribute) SetValue(key string, v valueobjects.Value) error {
	if key == "" {
		return pkgerrors.NewInvalidEntity("attribute", "value key cannot be empty")
	}
	a.values[key] = v.Clone()
	a.touch()
	return nil
}

// Value looks up a keyed value
func (a *StructuredAttribute) Value(key string) (valueobjects.Value, bool) {
	v, ok := a.values[key]
	if !ok {
		return valueobjects.Value{}, false
	}
	return v.Clone(), true
}

// Keys returns the value keys in sorted order
func (a *StructuredAttribute) Keys() []string {
	keys := make([]string, 0, len(a.values))
	for k := range a.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a *StructuredAttribute) AddListItem(v valueobjects.Value) {
	a.items = append(a.items, v.Clone())
	a.touch()
}

// ListItems returns a copy of the list content
func (a *StructuredAttribute) ListItems() []valueobjects.Value {
	out := make([]valueobjects.Value, len(a.items))
	for i, v := range a.items {
		out[i] = v.Clone()
	}
	return out
}

// AddNestedStructure attaches a copy of a valid child attribute
func (a *StructuredAttribute) AddNestedStructure(child *StructuredAttribute) error {
	if child == nil {
		return pkgerrors.NewInvalidEntity("attribute", "nested attribute cannot be nil")
	}
	if !child.IsValid() {
		return pkgerrors.NewInvalidEntity("attribute", fmt.Sprintf("nested attribute %q is invalid", child.name))
	}
	a.nested = append(a.nested, child.Clone())
	a.touch()
	return nil
}

// NestedStructures returns deep copies of the nested attributes
func (a *StructuredAttribute) NestedStructures() []*StructuredAttribute {
	out := make([]*StructuredAttribute, len(a.nested))
	for i, n := range a.nested {
		out[i] = n.Clone()
	}
	return out
}

// IsValid checks identity, classification, confidence and every nested attribute
func (a *StructuredAttribute) IsValid() bool {
	if a == nil || a.id == "" || a.name == "" {
		return false
	}
	if !a.attrType.IsKnown() || !a.contentType.IsKnown() {
		return false
	}
	if !a.confidence.Valid() {
		return false
	}
	for _, n := range a.nested {
		if !n.IsValid() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy
func (a *StructuredAttribute) Clone() *StructuredAttribute {
	if a == nil {
		return nil
	}
	c := *a
	c.sources = append([]string{}, a.sources...)
	c.values = make(map[string]valueobjects.Value, len(a.values))
	for k, v := range a.values {
		c.values[k] = v.Clone()
	}
	c.items = make([]valueobjects.Value, len(a.items))
	for i, v := range a.items {
		c.items[i] = v.Clone()
	}
	c.nested = make([]*StructuredAttribute, len(a.nested))
	for i, n := range a.nested {
		c.nested[i] = n.Clone()
	}
	return &c
}

// String renders "name(TYPE/CONTENT, confidence=0.50): key=value; ..."
func (a *StructuredAttribute) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s(%s/%s, confidence=%s)", a.name, a.attrType, a.contentType, a.confidence)

	var parts []string
	for _, k := range a.Keys() {
		parts = append(parts, k+"="+a.values[k].String())
	}
	for _, v := range a.items {
		parts = append(parts, v.String())
	}
	for _, n := range a.nested {
		parts = append(parts, n.String())
	}
	if len(parts) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(parts, "; "))
	}
	return sb.String()
}

func (a *StructuredAttribute) touch() {
	a.updatedAt = time.Now().UTC()
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) ([]string, bool) {
	for i, v := range list {
		if v == s {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}
