package aggregates

import (
	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
)

// ShortestPathDescription labels paths produced by FindPathBetween
const ShortestPathDescription = "Shortest path"

// FindPathBetween runs a BFS over outgoing edges. The first arrival at end wins.
// It returns (nil, nil) when end is unreachable or equals start. The result is
// not registered in the graph.
func (o *Orchestrator) FindPathBetween(startID, endID string) (*entities.Path, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return nil, pkgerrors.NewClosed()
	}
	if _, ok := o.nodes[startID]; !ok {
		return nil, pkgerrors.NewNodeNotFound(startID)
	}
	if _, ok := o.nodes[endID]; !ok {
		return nil, pkgerrors.NewNodeNotFound(endID)
	}
	if startID == endID {
		return nil, nil
	}

	visited := map[string]bool{startID: true}
	via := make(map[string]*entities.Edge)
	queue := []string{startID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edgeID := range o.nodes[current].OutgoingEdgeIDs() {
			edge, ok := o.edges[edgeID]
			if !ok {
				continue
			}
			next := edge.TargetID()
			if visited[next] {
				continue
			}
			visited[next] = true
			via[next] = edge

			if next == endID {
				return o.tracePathLocked(startID, endID, via), nil
			}
			queue = append(queue, next)
		}
	}
	return nil, nil
}

func (o *Orchestrator) tracePathLocked(startID, endID string, via map[string]*entities.Edge) *entities.Path {
	var reversed []*entities.Edge
	for n := endID; n != startID; {
		edge := via[n]
		reversed = append(reversed, edge)
		n = edge.SourceID()
	}
	walk := make([]*entities.Edge, len(reversed))
	for i, e := range reversed {
		walk[len(reversed)-1-i] = e
	}

	path := entities.NewPath(ShortestPathDescription)
	path.SetType(valueobjects.PathTypeDependency)
	for _, e := range walk {
		path.AddSegment(e, nil, o.rules)
	}
	return path
}

// QueryNodesByType returns copies of matching nodes sorted by id
func (o *Orchestrator) QueryNodesByType(t valueobjects.NodeType) []*entities.Node {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return nil
	}
	var out []*entities.Node
	for _, id := range sortedKeys(o.nodes) {
		if node := o.nodes[id]; node.Type() == t {
			out = append(out, node.Clone())
		}
	}
	return out
}

// QueryEdgesByType returns copies of matching edges sorted by id. ANY matches all.
func (o *Orchestrator) QueryEdgesByType(rel valueobjects.RelationshipType) []*entities.Edge {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return nil
	}
	var out []*entities.Edge
	for _, id := range sortedKeys(o.edges) {
		if edge := o.edges[id]; edge.Relationship().Matches(rel) {
			out = append(out, edge.Clone())
		}
	}
	return out
}

// QueryPathsByType returns copies of matching paths sorted by id
func (o *Orchestrator) QueryPathsByType(t valueobjects.PathType) []*entities.Path {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return nil
	}
	var out []*entities.Path
	for _, id := range sortedKeys(o.paths) {
		if path := o.paths[id]; path.Type() == t {
			out = append(out, path.Clone())
		}
	}
	return out
}
