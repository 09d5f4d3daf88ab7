package entities

import (
	"strings"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
)

// NodeTypeLookup resolves a node id to its type. A nil lookup disables
// compatibility checking in AddSegment.
type NodeTypeLookup func(nodeID string) (valueobjects.NodeType, bool)

// Path is an ordered, contiguous walk over edge copies.
// nodeIDs always holds len(edges)+1 entries unless the path is empty.
type Path struct {
	id            string
	edges         []*Edge
	nodeIDs       []string
	description   string
	totalStrength float64
	pathType      valueobjects.PathType
	updatedAt     time.Time
}

// NewPath creates an empty path with a generated id
func NewPath(description string) *Path {
	return &Path{
		id:          valueobjects.NewPathID(),
		edges:       []*Edge{},
		nodeIDs:     []string{},
		description: description,
		pathType:    valueobjects.PathTypeUnknown,
		updatedAt:   time.Now().UTC(),
	}
}

// NewPathFromEdges derives node ids and the mean strength from edges.
// It performs no validation; call IsValid on the result.
func NewPathFromEdges(id string, edges []*Edge, pathType valueobjects.PathType, description string) *Path {
	if id == "" {
		id = valueobjects.NewPathID()
	}
	p := &Path{
		id:          id,
		edges:       make([]*Edge, 0, len(edges)),
		nodeIDs:     make([]string, 0, len(edges)+1),
		description: description,
		pathType:    pathType,
		updatedAt:   time.Now().UTC(),
	}
	var sum float64
	for i, e := range edges {
		if i == 0 {
			p.nodeIDs = append(p.nodeIDs, e.SourceID())
		}
		p.edges = append(p.edges, e.Clone())
		p.nodeIDs = append(p.nodeIDs, e.TargetID())
		sum += e.Strength().Float64()
	}
	if len(p.edges) > 0 {
		p.totalStrength = sum / float64(len(p.edges))
	}
	return p
}

func (p *Path) ID() string { return p.id }
func (p *Path) Description() string { return p.description }
func (p *Path) Type() valueobjects.PathType { return p.pathType }
func (p *Path) Depth() int { return len(p.edges) }
func (p *Path) UpdatedAt() time.Time { return p.updatedAt }
func (p *Path) IsEmpty() bool { return len(p.edges) == 0 }

// TotalStrength is the mean strength of the edges
func (p *Path) TotalStrength() valueobjects.Strength {
	return valueobjects.Strength(p.totalStrength)
}

func (p *Path) SetDescription(description string) {
	p.description = description
	p.touch()
}

func (p *Path) SetType(t valueobjects.PathType) {
	p.pathType = t
	p.touch()
}

// Edges returns copies of the edges in walk order
func (p *Path) Edges() []*Edge {
	out := make([]*Edge, len(p.edges))
	for i, e := range p.edges {
		out[i] = e.Clone()
	}
	return out
}

// EdgeIDs returns the edge ids in walk order
func (p *Path) EdgeIDs() []string {
	out := make([]string, len(p.edges))
	for i, e := range p.edges {
		out[i] = e.ID()
	}
	return out
}

// NodeIDs returns the visited node ids in walk order
func (p *Path) NodeIDs() []string {
	return append([]string{}, p.nodeIDs...)
}

// StartNodeID returns "" for an empty path
func (p *Path) StartNodeID() string {
	if len(p.nodeIDs) == 0 {
		return ""
	}
	return p.nodeIDs[0]
}

// EndNodeID returns "" for an empty path
func (p *Path) EndNodeID() string {
	if len(p.nodeIDs) == 0 {
		return ""
	}
	return p.nodeIDs[len(p.nodeIDs)-1]
}

func (p *Path) ContainsNode(id string) bool {
	return containsString(p.nodeIDs, id)
}

func (p *Path) ContainsEdge(id string) bool {
	for _, e := range p.edges {
		if e.ID() == id {
			return true
		}
	}
	return false
}

// AddSegment appends edge when it continues the walk from the current
// terminal node and, if lookup is non-nil, when rules allow the typed
// transition. On rejection the path is left unchanged.
func (p *Path) AddSegment(edge *Edge, lookup NodeTypeLookup, rules valueobjects.CompatibilityRules) bool {
	if edge == nil {
		return false
	}
	if len(p.edges) > 0 && p.EndNodeID() != edge.SourceID() {
		return false
	}
	if lookup != nil {
		from, ok := lookup(edge.SourceID())
		if !ok {
			return false
		}
		to, ok := lookup(edge.TargetID())
		if !ok {
			return false
		}
		if !rules.Allows(from, to, edge.Relationship()) {
			return false
		}
	}

	if len(p.nodeIDs) == 0 {
		p.nodeIDs = append(p.nodeIDs, edge.SourceID())
	}
	p.edges = append(p.edges, edge.Clone())
	p.nodeIDs = append(p.nodeIDs, edge.TargetID())

	n := float64(len(p.edges))
	p.totalStrength += (edge.Strength().Float64() - p.totalStrength) / n
	p.touch()
	return true
}

// RemoveLastSegment undoes the most recent AddSegment
func (p *Path) RemoveLastSegment() bool {
	if len(p.edges) == 0 {
		return false
	}
	last := p.edges[len(p.edges)-1]
	p.edges = p.edges[:len(p.edges)-1]
	p.nodeIDs = p.nodeIDs[:len(p.nodeIDs)-1]

	if len(p.edges) == 0 {
		p.nodeIDs = p.nodeIDs[:0]
		p.totalStrength = 0
	} else {
		n := float64(len(p.edges))
		p.totalStrength = (p.totalStrength*(n+1) - last.Strength().Float64()) / n
	}
	p.touch()
	return true
}

// IsValid checks that node ids and edges describe one contiguous walk
func (p *Path) IsValid() bool {
	if p == nil || len(p.edges) == 0 {
		return false
	}
	if len(p.nodeIDs) != len(p.edges)+1 {
		return false
	}
	for i, e := range p.edges {
		if p.nodeIDs[i] != e.SourceID() || p.nodeIDs[i+1] != e.TargetID() {
			return false
		}
	}
	return true
}

// IsCyclic reports whether the walk returns to a node it already visited
func (p *Path) IsCyclic() bool {
	if len(p.nodeIDs) < 2 {
		return false
	}
	end := p.EndNodeID()
	return containsString(p.nodeIDs[:len(p.nodeIDs)-1], end)
}

// FindSubPath extracts the walk from the first edge leaving start to the
// first edge arriving at end. Returns an empty path when no such walk exists.
func (p *Path) FindSubPath(start, end string) *Path {
	sub := NewPath("Sub-path of " + p.id)
	sub.pathType = p.pathType

	started, reached := false, false
	for _, e := range p.edges {
		if !started && e.SourceID() == start {
			started = true
		}
		if !started {
			continue
		}
		if !sub.AddSegment(e, nil, valueobjects.CompatibilityRules{}) {
			break
		}
		if e.TargetID() == end {
			reached = true
			break
		}
	}

	if !reached || !sub.IsValid() {
		empty := NewPath("")
		empty.pathType = p.pathType
		return empty
	}
	return sub
}

// Clone returns a deep copy
func (p *Path) Clone() *Path {
	if p == nil {
		return nil
	}
	c := *p
	c.edges = p.Edges()
	c.nodeIDs = p.NodeIDs()
	return &c
}

// String renders "Path: A --REL--> B (Strength: 0.80)"
func (p *Path) String() string {
	if len(p.edges) == 0 {
		return "Empty Path"
	}
	var sb strings.Builder
	sb.WriteString("Path: ")
	sb.WriteString(p.nodeIDs[0])
	for _, e := range p.edges {
		sb.WriteString(" --")
		sb.WriteString(e.Relationship().String())
		sb.WriteString("--> ")
		sb.WriteString(e.TargetID())
	}
	sb.WriteString(" (Strength: ")
	sb.WriteString(p.TotalStrength().String())
	sb.WriteString(")")
	return sb.String()
}

func (p *Path) touch() {
	p.updatedAt = time.Now().UTC()
}
