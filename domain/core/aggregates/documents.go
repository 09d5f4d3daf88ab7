package aggregates

import (
	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
)

// GraphDocument renders the whole graph
type GraphDocument struct {
	Graph GraphBody `json:"graph" yaml:"graph"`
}

// GraphBody lists every entity sorted by id
type GraphBody struct {
	Nodes []entities.NodeDocument `json:"nodes" yaml:"nodes"`
	Edges []entities.EdgeDocument `json:"edges" yaml:"edges"`
	Paths []entities.PathDocument `json:"paths" yaml:"paths"`
}

// SubgraphDocument renders selected nodes together with their incident edges and paths
type SubgraphDocument struct {
	Subgraph []SubgraphEntry `json:"subgraph" yaml:"subgraph"`
}

// SubgraphEntry is one node of a SubgraphDocument
type SubgraphEntry struct {
	Node  entities.NodeDocument   `json:"node" yaml:"node"`
	Edges []entities.EdgeDocument `json:"edges,omitempty" yaml:"edges,omitempty"`
	Paths []entities.PathDocument `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// NodeIDs lists the nodes in the subgraph in document order
func (d SubgraphDocument) NodeIDs() []string {
	out := make([]string, len(d.Subgraph))
	for i, e := range d.Subgraph {
		out[i] = e.Node.ID
	}
	return out
}

// Document renders the whole graph
func (o *Orchestrator) Document() (GraphDocument, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return GraphDocument{}, pkgerrors.NewClosed()
	}
	body := GraphBody{
		Nodes: make([]entities.NodeDocument, 0, len(o.nodes)),
		Edges: make([]entities.EdgeDocument, 0, len(o.edges)),
		Paths: make([]entities.PathDocument, 0, len(o.paths)),
	}
	for _, id := range sortedKeys(o.nodes) {
		body.Nodes = append(body.Nodes, o.nodes[id].Document())
	}
	for _, id := range sortedKeys(o.edges) {
		body.Edges = append(body.Edges, o.edges[id].Document())
	}
	for _, id := range sortedKeys(o.paths) {
		body.Paths = append(body.Paths, o.paths[id].Document())
	}
	return GraphDocument{Graph: body}, nil
}

// ToYAML renders the whole graph as YAML
func (o *Orchestrator) ToYAML() (string, error) {
	doc, err := o.Document()
	if err != nil {
		return "", err
	}
	return entities.RenderYAML(doc)
}

// ToJSON renders the whole graph as JSON
func (o *Orchestrator) ToJSON() (string, error) {
	doc, err := o.Document()
	if err != nil {
		return "", err
	}
	return entities.RenderJSON(doc)
}

// GetSubgraph renders the requested nodes in the given order. Unknown ids are skipped.
func (o *Orchestrator) GetSubgraph(ids []string) SubgraphDocument {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return SubgraphDocument{}
	}
	return o.subgraphLocked(uniqueStrings(ids))
}

// SubgraphYAML renders GetSubgraph as YAML
func (o *Orchestrator) SubgraphYAML(ids []string) (string, error) {
	if o.IsClosed() {
		return "", pkgerrors.NewClosed()
	}
	return entities.RenderYAML(o.GetSubgraph(ids))
}

func (o *Orchestrator) subgraphLocked(ids []string) SubgraphDocument {
	doc := SubgraphDocument{Subgraph: []SubgraphEntry{}}
	for _, id := range ids {
		node, ok := o.nodes[id]
		if !ok {
			continue
		}
		entry := SubgraphEntry{Node: node.Document()}
		for _, edgeID := range uniqueStrings(node.EdgeIDs()) {
			if edge, ok := o.edges[edgeID]; ok {
				entry.Edges = append(entry.Edges, edge.Document())
			}
		}
		for _, pathID := range node.PathIDs() {
			if path, ok := o.paths[pathID]; ok {
				entry.Paths = append(entry.Paths, path.Document())
			}
		}
		doc.Subgraph = append(doc.Subgraph, entry)
	}
	return doc
}
