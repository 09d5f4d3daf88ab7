package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AttributeDocument is the serialised form of a StructuredAttribute
type AttributeDocument struct {
	ID          string                        `json:"id" yaml:"id"`
	Name        string                        `json:"name" yaml:"name"`
	Description string                        `json:"description,omitempty" yaml:"description,omitempty"`
	Type        valueobjects.AttributeType    `json:"type" yaml:"type"`
	ContentType valueobjects.ContentType      `json:"content_type" yaml:"content_type"`
	Confidence  valueobjects.Strength         `json:"confidence" yaml:"confidence"`
	Sources     []string                      `json:"sources,omitempty" yaml:"sources,omitempty"`
	Values      map[string]valueobjects.Value `json:"values,omitempty" yaml:"values,omitempty"`
	Items       []valueobjects.Value          `json:"items,omitempty" yaml:"items,omitempty"`
	Nested      []AttributeDocument           `json:"nested,omitempty" yaml:"nested,omitempty"`
	UpdatedAt   time.Time                     `json:"updated_at" yaml:"updated_at"`
}

// NodeDocument is the serialised form of a Node
type NodeDocument struct {
	ID              string                `json:"id" yaml:"id"`
	Type            valueobjects.NodeType `json:"type" yaml:"type"`
	Description     string                `json:"description,omitempty" yaml:"description,omitempty"`
	Attributes      []AttributeDocument   `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	IncomingEdgeIDs []string              `json:"incoming_edge_ids,omitempty" yaml:"incoming_edge_ids,omitempty"`
	OutgoingEdgeIDs []string              `json:"outgoing_edge_ids,omitempty" yaml:"outgoing_edge_ids,omitempty"`
	PathIDs         []string              `json:"path_ids,omitempty" yaml:"path_ids,omitempty"`
}

// EdgeDocument is the serialised form of an Edge
type EdgeDocument struct {
	ID          string                        `json:"id" yaml:"id"`
	Source      string                        `json:"source" yaml:"source"`
	Target      string                        `json:"target" yaml:"target"`
	Type        valueobjects.RelationshipType `json:"type" yaml:"type"`
	Strength    valueobjects.Strength         `json:"strength" yaml:"strength"`
	UpdatedAt   time.Time                     `json:"updated_at" yaml:"updated_at"`
	Description string                        `json:"description,omitempty" yaml:"description,omitempty"`
	Sources     []string                      `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// PathEdgeDocument is one hop of a PathDocument
type PathEdgeDocument struct {
	ID           string                        `json:"id" yaml:"id"`
	From         string                        `json:"from" yaml:"from"`
	To           string                        `json:"to" yaml:"to"`
	Relationship valueobjects.RelationshipType `json:"relationship" yaml:"relationship"`
	Confidence   valueobjects.Strength         `json:"confidence" yaml:"confidence"`
}

// PathDocument is the serialised form of a Path
type PathDocument struct {
	ID            string                `json:"id" yaml:"id"`
	Type          valueobjects.PathType `json:"type" yaml:"type"`
	Description   string                `json:"description" yaml:"description"`
	Depth         int                   `json:"depth" yaml:"depth"`
	TotalStrength valueobjects.Strength `json:"total_strength" yaml:"total_strength"`
	Nodes         []string              `json:"nodes" yaml:"nodes"`
	Edges         []PathEdgeDocument    `json:"edges" yaml:"edges"`
}

// Document converts the attribute for serialisation
func (a *StructuredAttribute) Document() AttributeDocument {
	doc := AttributeDocument{
		ID:          a.id,
		Name:        a.name,
		Description: a.description,
		Type:        a.attrType,
		ContentType: a.contentType,
		Confidence:  a.confidence,
		Sources:     a.Sources(),
		UpdatedAt:   a.updatedAt,
	}
	if len(a.values) > 0 {
		doc.Values = make(map[string]valueobjects.Value, len(a.values))
		for k, v := range a.values {
			doc.Values[k] = v.Clone()
		}
	}
	if len(a.items) > 0 {
		doc.Items = a.ListItems()
	}
	for _, n := range a.nested {
		doc.Nested = append(doc.Nested, n.Document())
	}
	return doc
}

// AttributeFromDocument rebuilds an attribute and rejects invalid input
func AttributeFromDocument(doc AttributeDocument) (*StructuredAttribute, error) {
	a := &StructuredAttribute{
		id:          doc.ID,
		name:        doc.Name,
		description: doc.Description,
		attrType:    doc.Type,
		contentType: doc.ContentType,
		confidence:  doc.Confidence,
		sources:     append([]string{}, doc.Sources...),
		values:      make(map[string]valueobjects.Value, len(doc.Values)),
		items:       make([]valueobjects.Value, 0, len(doc.Items)),
		nested:      make([]*StructuredAttribute, 0, len(doc.Nested)),
		updatedAt:   doc.UpdatedAt,
	}
	for k, v := range doc.Values {
		a.values[k] = v.Clone()
	}
	for _, v := range doc.Items {
		a.items = append(a.items, v.Clone())
	}
	for _, nd := range doc.Nested {
		n, err := AttributeFromDocument(nd)
		if err != nil {
			return nil, err
		}
		a.nested = append(a.nested, n)
	}
	if !a.IsValid() {
		return nil, pkgerrors.NewInvalidEntity("attribute", fmt.Sprintf("attribute %q is invalid", doc.ID))
	}
	return a, nil
}

// Document converts the node for serialisation
func (n *Node) Document() NodeDocument {
	doc := NodeDocument{
		ID:              n.id,
		Type:            n.nodeType,
		Description:     n.description,
		IncomingEdgeIDs: n.IncomingEdgeIDs(),
		OutgoingEdgeIDs: n.OutgoingEdgeIDs(),
		PathIDs:         n.PathIDs(),
	}
	for _, a := range n.attributes {
		doc.Attributes = append(doc.Attributes, a.Document())
	}
	return doc
}

// NodeFromDocument rebuilds a node with its attributes. Edge and path ids
// are not restored; the orchestrator re-links them.
func NodeFromDocument(doc NodeDocument) (*Node, error) {
	n := NewNodeWithID(doc.ID, doc.Type, doc.Description)
	for _, ad := range doc.Attributes {
		a, err := AttributeFromDocument(ad)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "node %s", doc.ID)
		}
		n.attributes = append(n.attributes, a)
	}
	if !n.IsValid() {
		return nil, pkgerrors.NewInvalidEntity("node", fmt.Sprintf("node %q is invalid", doc.ID))
	}
	return n, nil
}

// Document converts the edge for serialisation
func (e *Edge) Document() EdgeDocument {
	return EdgeDocument{
		ID:          e.id,
		Source:      e.sourceID,
		Target:      e.targetID,
		Type:        e.relationship,
		Strength:    e.strength,
		UpdatedAt:   e.updatedAt,
		Description: e.description,
		Sources:     e.Sources(),
	}
}

// EdgeFromDocument rebuilds an edge and rejects invalid input
func EdgeFromDocument(doc EdgeDocument) (*Edge, error) {
	e := NewWeightedEdge(doc.ID, doc.Source, doc.Target, doc.Type, doc.Strength.Float64(), doc.Description)
	for _, s := range doc.Sources {
		e.AddSource(s)
	}
	if !doc.UpdatedAt.IsZero() {
		e.updatedAt = doc.UpdatedAt
	}
	if !e.IsValid() {
		return nil, pkgerrors.NewInvalidEntity("edge", fmt.Sprintf("edge %q is invalid", doc.ID))
	}
	return e, nil
}

// Document converts the path for serialisation
func (p *Path) Document() PathDocument {
	doc := PathDocument{
		ID:            p.id,
		Type:          p.pathType,
		Description:   p.description,
		Depth:         p.Depth(),
		TotalStrength: p.TotalStrength(),
		Nodes:         p.NodeIDs(),
		Edges:         make([]PathEdgeDocument, len(p.edges)),
	}
	for i, e := range p.edges {
		doc.Edges[i] = PathEdgeDocument{
			ID:           e.id,
			From:         e.sourceID,
			To:           e.targetID,
			Relationship: e.relationship,
			Confidence:   e.strength,
		}
	}
	return doc
}

func (a *StructuredAttribute) ToYAML() (string, error) { return RenderYAML(a.Document()) }
func (a *StructuredAttribute) ToJSON() (string, error) { return RenderJSON(a.Document()) }

func (n *Node) ToYAML() (string, error) { return RenderYAML(n.Document()) }
func (n *Node) ToJSON() (string, error) { return RenderJSON(n.Document()) }

func (e *Edge) ToYAML() (string, error) { return RenderYAML(e.Document()) }
func (e *Edge) ToJSON() (string, error) { return RenderJSON(e.Document()) }

func (p *Path) ToYAML() (string, error) { return RenderYAML(p.Document()) }
func (p *Path) ToJSON() (string, error) { return RenderJSON(p.Document()) }

// RenderYAML renders v with yaml.v3
func RenderYAML(v interface{}) (string, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to render yaml")
	}
	return string(b), nil
}

// RenderJSON renders v as indented JSON
func RenderJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to render json")
	}
	return string(b), nil
}
