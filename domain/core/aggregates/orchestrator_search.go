package aggregates

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
)

// GraphStatistics summarises the graph
type GraphStatistics struct {
	NodeCount     int            `json:"node_count" yaml:"node_count"`
	EdgeCount     int            `json:"edge_count" yaml:"edge_count"`
	PathCount     int            `json:"path_count" yaml:"path_count"`
	NodesByType   map[string]int `json:"nodes_by_type" yaml:"nodes_by_type"`
	EdgesByType   map[string]int `json:"edges_by_type" yaml:"edges_by_type"`
	PathsByType   map[string]int `json:"paths_by_type" yaml:"paths_by_type"`
	AverageDegree float64        `json:"average_degree" yaml:"average_degree"`
	OrphanCount   int            `json:"orphan_count" yaml:"orphan_count"`
}

// FindAllPaths enumerates simple paths from source to target by DFS.
// Edges weaker than minStrength are skipped and no branch exceeds maxDepth edges.
func (o *Orchestrator) FindAllPaths(sourceID, targetID string, maxDepth int, minStrength float64) []*entities.Path {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.findAllPathsLocked(sourceID, targetID, maxDepth, minStrength)
}

func (o *Orchestrator) findAllPathsLocked(sourceID, targetID string, maxDepth int, minStrength float64) []*entities.Path {
	if o.closed || maxDepth <= 0 {
		return nil
	}
	if _, ok := o.nodes[sourceID]; !ok {
		return nil
	}
	if _, ok := o.nodes[targetID]; !ok {
		return nil
	}

	var found []*entities.Path
	visited := make(map[string]bool)
	var stack []*entities.Edge

	var walk func(current string)
	walk = func(current string) {
		visited[current] = true
		defer func() { visited[current] = false }()

		if current == targetID && len(stack) > 0 {
			found = append(found, entities.NewPathFromEdges("", stack, valueobjects.PathTypeDependency,
				fmt.Sprintf("Path from %s to %s", sourceID, targetID)))
			return
		}
		if len(stack) >= maxDepth {
			return
		}
		for _, edgeID := range o.nodes[current].OutgoingEdgeIDs() {
			edge, ok := o.edges[edgeID]
			if !ok || edge.Strength().Float64() < minStrength {
				continue
			}
			if visited[edge.TargetID()] {
				continue
			}
			stack = append(stack, edge)
			walk(edge.TargetID())
			stack = stack[:len(stack)-1]
		}
	}
	walk(sourceID)
	return found
}

// FindShortestPath returns the path with the fewest edges, bounded by the
// configured default depth. Ties go to the first path found.
func (o *Orchestrator) FindShortestPath(sourceID, targetID string, minStrength float64) *entities.Path {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var best *entities.Path
	for _, p := range o.findAllPathsLocked(sourceID, targetID, o.config.DefaultMaxDepth, minStrength) {
		if best == nil || p.Depth() < best.Depth() {
			best = p
		}
	}
	return best
}

// FindStrongestPath returns the path with the highest mean strength among
// edges at least as strong as StrongestPathMinStrength
func (o *Orchestrator) FindStrongestPath(sourceID, targetID string, maxDepth int) *entities.Path {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var best *entities.Path
	for _, p := range o.findAllPathsLocked(sourceID, targetID, maxDepth, o.config.StrongestPathMinStrength) {
		if best == nil || p.TotalStrength() > best.TotalStrength() {
			best = p
		}
	}
	return best
}

// FindPathsByType keeps the paths whose every edge carries rel
func (o *Orchestrator) FindPathsByType(sourceID, targetID string, rel valueobjects.RelationshipType, maxDepth int) []*entities.Path {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var out []*entities.Path
	for _, p := range o.findAllPathsLocked(sourceID, targetID, maxDepth, o.config.DefaultMinStrength) {
		matches := true
		for _, e := range p.Edges() {
			if !e.Relationship().Matches(rel) {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, p)
		}
	}
	return out
}

// HasDirectConnection reports whether an edge a->b exists
func (o *Orchestrator) HasDirectConnection(a, b string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.edgesBetweenLocked(a, b)) > 0
}

// HasConnection reports whether b is reachable from a within maxDepth edges
func (o *Orchestrator) HasConnection(a, b string, maxDepth int) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed || maxDepth <= 0 {
		return false
	}
	if _, ok := o.nodes[a]; !ok {
		return false
	}
	if _, ok := o.nodes[b]; !ok {
		return false
	}

	depth := map[string]int{a: 0}
	queue := []string{a}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if depth[current] >= maxDepth {
			continue
		}
		for _, edgeID := range o.nodes[current].OutgoingEdgeIDs() {
			edge, ok := o.edges[edgeID]
			if !ok {
				continue
			}
			next := edge.TargetID()
			if next == b {
				return true
			}
			if _, seen := depth[next]; !seen {
				depth[next] = depth[current] + 1
				queue = append(queue, next)
			}
		}
	}
	return false
}

// Neighbors returns the distinct targets of outgoing edges matching filter
func (o *Orchestrator) Neighbors(id string, filter valueobjects.RelationshipType) ([]string, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	edges, err := o.edgesFromLocked(id, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.TargetID())
	}
	return uniqueStrings(ids), nil
}

// EdgesBetween returns the edges directed from a to b
func (o *Orchestrator) EdgesBetween(a, b string) []*entities.Edge {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.edgesBetweenLocked(a, b)
}

// EdgesFrom returns the node's outgoing edges matching filter
func (o *Orchestrator) EdgesFrom(id string, filter valueobjects.RelationshipType) ([]*entities.Edge, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.edgesFromLocked(id, filter)
}

// EdgesTo returns the node's incoming edges matching filter
func (o *Orchestrator) EdgesTo(id string, filter valueobjects.RelationshipType) ([]*entities.Edge, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return nil, pkgerrors.NewClosed()
	}
	node, ok := o.nodes[id]
	if !ok {
		return nil, pkgerrors.NewNodeNotFound(id)
	}
	var out []*entities.Edge
	for _, e := range o.edgesByIDLocked(node.IncomingEdgeIDs()) {
		if e.Relationship().Matches(filter) {
			out = append(out, e)
		}
	}
	return out, nil
}

// RemoveRelationships removes the node's outgoing edges of type rel and
// returns how many were removed
func (o *Orchestrator) RemoveRelationships(id string, rel valueobjects.RelationshipType) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	edges, err := o.edgesFromLocked(id, rel)
	if err != nil {
		return 0, err
	}
	for _, e := range edges {
		o.removeEdgeLocked(e.ID())
	}
	return len(edges), nil
}

// RemoveAllRelationships removes every edge incident to the node
func (o *Orchestrator) RemoveAllRelationships(id string) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return 0, pkgerrors.NewClosed()
	}
	node, ok := o.nodes[id]
	if !ok {
		return 0, pkgerrors.NewNodeNotFound(id)
	}
	count := 0
	for _, edgeID := range uniqueStrings(node.EdgeIDs()) {
		if _, ok := o.edges[edgeID]; ok {
			o.removeEdgeLocked(edgeID)
			count++
		}
	}
	return count, nil
}

// FindCycles returns one witness path per back edge found by a depth-bounded
// DFS. Witnesses are built from real edges and deduplicated by edge set.
func (o *Orchestrator) FindCycles() []*entities.Path {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.findCyclesLocked()
}

func (o *Orchestrator) findCyclesLocked() []*entities.Path {
	if o.closed {
		return nil
	}
	maxDepth := o.config.DefaultMaxDepth

	var cycles []*entities.Path
	seen := make(map[string]bool)
	visited := make(map[string]bool)
	position := make(map[string]int)
	var nodeStack []string
	var edgeStack []*entities.Edge

	var walk func(current string)
	walk = func(current string) {
		visited[current] = true
		position[current] = len(nodeStack)
		nodeStack = append(nodeStack, current)
		defer func() {
			nodeStack = nodeStack[:len(nodeStack)-1]
			delete(position, current)
		}()

		for _, edgeID := range o.nodes[current].OutgoingEdgeIDs() {
			edge, ok := o.edges[edgeID]
			if !ok {
				continue
			}
			next := edge.TargetID()
			if idx, onStack := position[next]; onStack {
				witness := append(append([]*entities.Edge{}, edgeStack[idx:]...), edge)
				key := edgeSetKey(witness)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, entities.NewPathFromEdges("", witness,
						valueobjects.PathTypeDependency, "Cycle through "+next))
				}
				continue
			}
			if visited[next] || len(edgeStack) >= maxDepth {
				continue
			}
			edgeStack = append(edgeStack, edge)
			walk(next)
			edgeStack = edgeStack[:len(edgeStack)-1]
		}
	}

	for _, id := range sortedKeys(o.nodes) {
		if !visited[id] {
			walk(id)
		}
	}
	return cycles
}

// FindCyclesInvolvingNode filters FindCycles to witnesses visiting id
func (o *Orchestrator) FindCyclesInvolvingNode(id string) []*entities.Path {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var out []*entities.Path
	for _, c := range o.findCyclesLocked() {
		if c.ContainsNode(id) {
			out = append(out, c)
		}
	}
	return out
}

// ValidateGraph checks referential integrity and reports the first violation
func (o *Orchestrator) ValidateGraph() error {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return pkgerrors.NewClosed()
	}
	for _, id := range sortedKeys(o.edges) {
		edge := o.edges[id]
		if !edge.IsValid() {
			return pkgerrors.NewInvalidEntity("edge", fmt.Sprintf("edge %s is invalid", id))
		}
		source, ok := o.nodes[edge.SourceID()]
		if !ok {
			return pkgerrors.NewInvalidEndpoints(fmt.Sprintf("edge %s references missing source %s", id, edge.SourceID()))
		}
		target, ok := o.nodes[edge.TargetID()]
		if !ok {
			return pkgerrors.NewInvalidEndpoints(fmt.Sprintf("edge %s references missing target %s", id, edge.TargetID()))
		}
		if !slices.Contains(source.OutgoingEdgeIDs(), id) || !slices.Contains(target.IncomingEdgeIDs(), id) {
			return pkgerrors.NewInvalidEntity("edge", fmt.Sprintf("edge %s is not linked from both endpoints", id))
		}
	}
	for _, id := range sortedKeys(o.nodes) {
		node := o.nodes[id]
		for _, edgeID := range node.EdgeIDs() {
			edge, ok := o.edges[edgeID]
			if !ok || !edge.InvolvesNode(id) {
				return pkgerrors.NewInvalidEntity("node", fmt.Sprintf("node %s references unknown edge %s", id, edgeID))
			}
		}
		for _, edgeID := range node.IncomingEdgeIDs() {
			if o.edges[edgeID].TargetID() != id {
				return pkgerrors.NewInvalidEntity("node", fmt.Sprintf("node %s lists outgoing edge %s as incoming", id, edgeID))
			}
		}
		for _, edgeID := range node.OutgoingEdgeIDs() {
			if o.edges[edgeID].SourceID() != id {
				return pkgerrors.NewInvalidEntity("node", fmt.Sprintf("node %s lists incoming edge %s as outgoing", id, edgeID))
			}
		}
		for _, pathID := range node.PathIDs() {
			path, ok := o.paths[pathID]
			if !ok || !path.ContainsNode(id) {
				return pkgerrors.NewInvalidEntity("node", fmt.Sprintf("node %s references unknown path %s", id, pathID))
			}
		}
	}
	for _, id := range sortedKeys(o.paths) {
		if !o.isValidPathLocked(id) {
			return pkgerrors.NewInvalidEntity("path", fmt.Sprintf("path %s is invalid", id))
		}
	}
	return nil
}

// FindOrphanedNodes returns the ids of nodes without any edge, sorted
func (o *Orchestrator) FindOrphanedNodes() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.orphansLocked()
}

func (o *Orchestrator) orphansLocked() []string {
	var out []string
	for _, id := range sortedKeys(o.nodes) {
		if o.nodes[id].Degree() == 0 {
			out = append(out, id)
		}
	}
	return out
}

// FindConnectedComponents groups nodes by weak connectivity. Members and
// groups are sorted.
func (o *Orchestrator) FindConnectedComponents() [][]string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return nil
	}
	visited := make(map[string]bool)
	var components [][]string
	for _, id := range sortedKeys(o.nodes) {
		if visited[id] {
			continue
		}
		component := o.reachUndirectedLocked(id, -1, visited)
		sort.Strings(component)
		components = append(components, component)
	}
	return components
}

// ExtractNeighborhood renders every node within radius hops of id, ignoring direction
func (o *Orchestrator) ExtractNeighborhood(id string, radius int) (SubgraphDocument, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return SubgraphDocument{}, pkgerrors.NewClosed()
	}
	if _, ok := o.nodes[id]; !ok {
		return SubgraphDocument{}, pkgerrors.NewNodeNotFound(id)
	}
	if radius < 0 {
		radius = 0
	}
	members := o.reachUndirectedLocked(id, radius, make(map[string]bool))
	sort.Strings(members)
	return o.subgraphLocked(members), nil
}

// Statistics reports counts and degree information
func (o *Orchestrator) Statistics() GraphStatistics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	stats := GraphStatistics{
		NodeCount:   len(o.nodes),
		EdgeCount:   len(o.edges),
		PathCount:   len(o.paths),
		NodesByType: make(map[string]int),
		EdgesByType: make(map[string]int),
		PathsByType: make(map[string]int),
		OrphanCount: len(o.orphansLocked()),
	}
	for _, n := range o.nodes {
		stats.NodesByType[n.Type().String()]++
	}
	for _, e := range o.edges {
		stats.EdgesByType[e.Relationship().String()]++
	}
	for _, p := range o.paths {
		stats.PathsByType[p.Type().String()]++
	}
	if len(o.nodes) > 0 {
		stats.AverageDegree = float64(2*len(o.edges)) / float64(len(o.nodes))
	}
	return stats
}

func (o *Orchestrator) edgesFromLocked(id string, filter valueobjects.RelationshipType) ([]*entities.Edge, error) {
	if o.closed {
		return nil, pkgerrors.NewClosed()
	}
	node, ok := o.nodes[id]
	if !ok {
		return nil, pkgerrors.NewNodeNotFound(id)
	}
	var out []*entities.Edge
	for _, e := range o.edgesByIDLocked(node.OutgoingEdgeIDs()) {
		if e.Relationship().Matches(filter) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (o *Orchestrator) edgesBetweenLocked(a, b string) []*entities.Edge {
	if o.closed {
		return nil
	}
	node, ok := o.nodes[a]
	if !ok {
		return nil
	}
	var out []*entities.Edge
	for _, e := range o.edgesByIDLocked(node.OutgoingEdgeIDs()) {
		if e.TargetID() == b {
			out = append(out, e)
		}
	}
	return out
}

// reachUndirectedLocked collects nodes reachable from start ignoring edge
// direction. A negative radius means unbounded.
func (o *Orchestrator) reachUndirectedLocked(start string, radius int, visited map[string]bool) []string {
	visited[start] = true
	dist := map[string]int{start: 0}
	members := []string{start}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if radius >= 0 && dist[current] >= radius {
			continue
		}
		for _, edgeID := range o.nodes[current].EdgeIDs() {
			edge, ok := o.edges[edgeID]
			if !ok {
				continue
			}
			next := edge.OtherNode(current)
			if next == "" || visited[next] {
				continue
			}
			if _, live := o.nodes[next]; !live {
				continue
			}
			visited[next] = true
			dist[next] = dist[current] + 1
			members = append(members, next)
			queue = append(queue, next)
		}
	}
	return members
}

func edgeSetKey(edges []*entities.Edge) string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID()
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}
