package aggregates

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/config"
	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	"github.com/AlotfyDev/ArchiNote/domain/events"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"go.uber.org/zap"
)

// Orchestrator is the aggregate root of the knowledge graph. It owns every
// node, edge and path and is the only component that links them together.
//
// A single RWMutex guards all state. Exported methods take the lock; the
// unexported *Locked helpers assume it is already held.
type Orchestrator struct {
	mu sync.RWMutex

	nodes map[string]*entities.Node
	edges map[string]*entities.Edge
	paths map[string]*entities.Path

	config *config.DomainConfig
	rules  valueobjects.CompatibilityRules
	logger *zap.Logger

	events []events.DomainEvent
	closed bool
}

// NewOrchestrator creates an empty graph. Nil arguments fall back to defaults.
func NewOrchestrator(cfg *config.DomainConfig, logger *zap.Logger) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		nodes:  make(map[string]*entities.Node),
		edges:  make(map[string]*entities.Edge),
		paths:  make(map[string]*entities.Path),
		config: cfg.Clone(),
		rules:  cfg.CompatibilityRules(),
		logger: logger.Named("orchestrator"),
		events: []events.DomainEvent{},
	}
}

// Config returns a copy of the domain configuration
func (o *Orchestrator) Config() *config.DomainConfig {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.config.Clone()
}

// Rules returns the compatibility table used for typed paths
func (o *Orchestrator) Rules() valueobjects.CompatibilityRules {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.rules
}

// UpdateRules swaps the compatibility table
func (o *Orchestrator) UpdateRules(rules valueobjects.CompatibilityRules) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return pkgerrors.NewClosed()
	}
	o.rules = rules
	o.logger.Info("Compatibility rules updated", zap.Int("rules", rules.Len()))
	return nil
}

// ApplyConfig swaps the limits, search defaults and compatibility rules.
// Lowered limits do not evict anything; they only reject further additions.
func (o *Orchestrator) ApplyConfig(cfg *config.DomainConfig) error {
	if cfg == nil {
		return pkgerrors.NewValidationError("domain config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return pkgerrors.NewClosed()
	}
	o.config = cfg.Clone()
	o.rules = cfg.CompatibilityRules()

	if (cfg.MaxNodes > 0 && len(o.nodes) > cfg.MaxNodes) || (cfg.MaxEdges > 0 && len(o.edges) > cfg.MaxEdges) {
		o.logger.Warn("Graph exceeds the new limits",
			zap.Int("nodes", len(o.nodes)),
			zap.Int("max_nodes", cfg.MaxNodes),
			zap.Int("edges", len(o.edges)),
			zap.Int("max_edges", cfg.MaxEdges),
		)
	}
	o.logger.Info("Domain config applied",
		zap.Int("rules", o.rules.Len()),
		zap.Bool("enforce_path_compatibility", cfg.EnforcePathCompatibility),
	)
	return nil
}

// Close marks the graph closed. Every later operation fails with GRAPH_CLOSED.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

func (o *Orchestrator) IsClosed() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.closed
}

// Node operations

// AddNode stores a copy of node. Reference lists on the copy are reset.
func (o *Orchestrator) AddNode(node *entities.Node) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return pkgerrors.NewClosed()
	}
	if node == nil {
		return pkgerrors.NewInvalidEntity("node", "node cannot be nil")
	}
	if !node.IsValid() {
		o.logger.Debug("Rejected invalid node", zap.String("node_id", node.ID()))
		return pkgerrors.NewInvalidEntity("node", fmt.Sprintf("node %q is invalid", node.ID()))
	}
	if _, exists := o.nodes[node.ID()]; exists {
		return pkgerrors.NewDuplicateID("node", node.ID())
	}
	if o.config.MaxNodes > 0 && len(o.nodes) >= o.config.MaxNodes {
		return pkgerrors.NewLimitExceeded("nodes", o.config.MaxNodes)
	}

	stored := node.Clone()
	stored.ClearReferences()
	o.nodes[stored.ID()] = stored

	o.addEvent(events.NewNodeAdded(stored.ID(), stored.Type(), time.Now()))
	return nil
}

// RemoveNode removes the node, every incident edge and every path through it
func (o *Orchestrator) RemoveNode(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return pkgerrors.NewClosed()
	}
	node, exists := o.nodes[id]
	if !exists {
		return pkgerrors.NewNodeNotFound(id)
	}

	var removedEdges, removedPaths []string
	for _, edgeID := range uniqueStrings(node.EdgeIDs()) {
		if _, ok := o.edges[edgeID]; !ok {
			continue
		}
		removedPaths = append(removedPaths, o.removeEdgeLocked(edgeID)...)
		removedEdges = append(removedEdges, edgeID)
	}
	for _, pathID := range node.PathIDs() {
		if _, ok := o.paths[pathID]; ok {
			o.removePathLocked(pathID)
			removedPaths = append(removedPaths, pathID)
		}
	}
	delete(o.nodes, id)

	o.logger.Debug("Node removed with cascade",
		zap.String("node_id", id),
		zap.Int("edges_removed", len(removedEdges)),
		zap.Int("paths_removed", len(removedPaths)),
	)
	o.addEvent(events.NewNodeRemoved(id, removedEdges, removedPaths, time.Now()))
	return nil
}

// GetNode returns a copy of the node
func (o *Orchestrator) GetNode(id string) (*entities.Node, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return nil, pkgerrors.NewClosed()
	}
	node, ok := o.nodes[id]
	if !ok {
		return nil, pkgerrors.NewNodeNotFound(id)
	}
	return node.Clone(), nil
}

func (o *Orchestrator) HasNode(id string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.nodes[id]
	return ok && !o.closed
}

func (o *Orchestrator) NodeCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.nodes)
}

func (o *Orchestrator) EdgeCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.edges)
}

func (o *Orchestrator) PathCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.paths)
}

// NodeIDs returns every node id in sorted order
func (o *Orchestrator) NodeIDs() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return sortedKeys(o.nodes)
}

// Edge operations

// AddEdge connects two existing nodes with the configured default strength
func (o *Orchestrator) AddEdge(sourceID, targetID string, rel valueobjects.RelationshipType, description string) (*entities.Edge, error) {
	o.mu.RLock()
	strength := o.config.DefaultEdgeStrength
	o.mu.RUnlock()
	return o.AddWeightedEdge(sourceID, targetID, rel, strength, description)
}

// AddWeightedEdge connects two existing nodes with an explicit strength
func (o *Orchestrator) AddWeightedEdge(sourceID, targetID string, rel valueobjects.RelationshipType, strength float64, description string) (*entities.Edge, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, pkgerrors.NewClosed()
	}
	source, ok := o.nodes[sourceID]
	if !ok {
		return nil, pkgerrors.NewNodeNotFound(sourceID)
	}
	target, ok := o.nodes[targetID]
	if !ok {
		return nil, pkgerrors.NewNodeNotFound(targetID)
	}

	edge := entities.NewWeightedEdge(valueobjects.NewEdgeID(), sourceID, targetID, rel, strength, description)
	if !edge.IsValid() {
		o.logger.Debug("Rejected invalid edge",
			zap.String("source", sourceID),
			zap.String("target", targetID),
			zap.String("relationship", rel.String()),
		)
		return nil, pkgerrors.NewInvalidEndpoints(
			fmt.Sprintf("cannot connect %s to %s via %s", sourceID, targetID, rel))
	}
	if o.config.MaxEdges > 0 && len(o.edges) >= o.config.MaxEdges {
		return nil, pkgerrors.NewLimitExceeded("edges", o.config.MaxEdges)
	}

	o.edges[edge.ID()] = edge
	source.AddOutgoingEdgeID(edge.ID())
	target.AddIncomingEdgeID(edge.ID())

	o.addEvent(events.NewEdgeAdded(edge.ID(), sourceID, targetID, rel, edge.Strength(), time.Now()))
	return edge.Clone(), nil
}

// RemoveEdge detaches the edge from its nodes and removes every path that uses it
func (o *Orchestrator) RemoveEdge(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return pkgerrors.NewClosed()
	}
	if _, ok := o.edges[id]; !ok {
		return pkgerrors.NewEdgeNotFound(id)
	}
	removed := o.removeEdgeLocked(id)
	if len(removed) > 0 {
		o.logger.Debug("Edge removal cascaded to paths", zap.String("edge_id", id), zap.Int("paths_removed", len(removed)))
	}
	return nil
}

// GetEdge returns a copy of the edge
func (o *Orchestrator) GetEdge(id string) (*entities.Edge, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return nil, pkgerrors.NewClosed()
	}
	edge, ok := o.edges[id]
	if !ok {
		return nil, pkgerrors.NewEdgeNotFound(id)
	}
	return edge.Clone(), nil
}

// EdgesForNode returns copies of the node's incoming then outgoing edges
func (o *Orchestrator) EdgesForNode(id string) ([]*entities.Edge, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return nil, pkgerrors.NewClosed()
	}
	node, ok := o.nodes[id]
	if !ok {
		return nil, pkgerrors.NewNodeNotFound(id)
	}
	return o.edgesByIDLocked(uniqueStrings(node.EdgeIDs())), nil
}

// IsValidEdge reports whether the edge exists, is valid and both endpoints are live
func (o *Orchestrator) IsValidEdge(id string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return !o.closed && o.isValidEdgeLocked(id)
}

// Path operations

// AddPath registers a path over existing edges. The edges must form one
// contiguous, acyclic walk; with EnforcePathCompatibility each hop must
// also satisfy the compatibility rules.
func (o *Orchestrator) AddPath(edgeIDs []string, pathType valueobjects.PathType, description string) (*entities.Path, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, pkgerrors.NewClosed()
	}
	if len(edgeIDs) == 0 {
		return nil, pkgerrors.NewInvalidEntity("path", "path requires at least one edge")
	}

	resolved := make([]*entities.Edge, 0, len(edgeIDs))
	for _, id := range edgeIDs {
		edge, ok := o.edges[id]
		if !ok {
			return nil, pkgerrors.NewEdgeNotFound(id)
		}
		resolved = append(resolved, edge)
	}

	if hasCycle(resolved) {
		o.logger.Debug("Rejected cyclic path", zap.Strings("edge_ids", edgeIDs))
		return nil, pkgerrors.NewCycleDetected("path edges form a cycle")
	}

	var lookup entities.NodeTypeLookup
	if o.config.EnforcePathCompatibility {
		lookup = o.nodeTypeLookupLocked()
	}

	path := entities.NewPath(description)
	path.SetType(pathType)
	for i, edge := range resolved {
		if path.AddSegment(edge, lookup, o.rules) {
			continue
		}
		if lookup == nil || (i > 0 && resolved[i-1].TargetID() != edge.SourceID()) {
			return nil, pkgerrors.NewInvalidEndpoints(
				fmt.Sprintf("edge %s does not continue from %s", edge.ID(), path.EndNodeID()))
		}
		from, _ := lookup(edge.SourceID())
		to, _ := lookup(edge.TargetID())
		return nil, pkgerrors.NewTypeMismatch(from.String(), to.String(), edge.Relationship().String())
	}
	if !path.IsValid() {
		return nil, pkgerrors.NewInvalidEntity("path", "path is not a contiguous walk")
	}

	o.paths[path.ID()] = path
	for _, nodeID := range path.NodeIDs() {
		if node, ok := o.nodes[nodeID]; ok {
			node.AddPathID(path.ID())
		}
	}

	o.addEvent(events.NewPathAdded(path.ID(), pathType, path.EdgeIDs(), time.Now()))
	return path.Clone(), nil
}

// RemovePath detaches the path from its nodes and erases it
func (o *Orchestrator) RemovePath(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return pkgerrors.NewClosed()
	}
	if _, ok := o.paths[id]; !ok {
		return pkgerrors.NewPathNotFound(id)
	}
	o.removePathLocked(id)
	return nil
}

// GetPath returns a copy of the path
func (o *Orchestrator) GetPath(id string) (*entities.Path, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return nil, pkgerrors.NewClosed()
	}
	path, ok := o.paths[id]
	if !ok {
		return nil, pkgerrors.NewPathNotFound(id)
	}
	return path.Clone(), nil
}

// PathsForNode returns copies of the paths recorded on the node
func (o *Orchestrator) PathsForNode(id string) ([]*entities.Path, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return nil, pkgerrors.NewClosed()
	}
	node, ok := o.nodes[id]
	if !ok {
		return nil, pkgerrors.NewNodeNotFound(id)
	}
	var out []*entities.Path
	for _, pid := range node.PathIDs() {
		if p, ok := o.paths[pid]; ok {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

// IsValidPath reports whether the path exists and still describes a live,
// contiguous, acyclic walk
func (o *Orchestrator) IsValidPath(id string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return !o.closed && o.isValidPathLocked(id)
}

// HasCycle reports whether the live edges among edgeIDs contain a directed cycle.
// Unknown ids are ignored.
func (o *Orchestrator) HasCycle(edgeIDs []string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return hasCycle(o.edgesByIDLocked(edgeIDs))
}

// Events

// GetUncommittedEvents returns all uncommitted domain events
func (o *Orchestrator) GetUncommittedEvents() []events.DomainEvent {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]events.DomainEvent, len(o.events))
	copy(out, o.events)
	return out
}

// MarkEventsAsCommitted clears all uncommitted events
func (o *Orchestrator) MarkEventsAsCommitted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = []events.DomainEvent{}
}

// Node pipeline support. These take the write lock themselves.

func (o *Orchestrator) linkNodeEdge(nodeID, edgeID string, incoming bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return pkgerrors.NewClosed()
	}
	node, ok := o.nodes[nodeID]
	if !ok {
		return pkgerrors.NewNodeNotFound(nodeID)
	}
	if !o.isValidEdgeLocked(edgeID) || !o.edges[edgeID].InvolvesNode(nodeID) {
		return pkgerrors.NewInvalidEndpoints(fmt.Sprintf("edge %s does not touch node %s", edgeID, nodeID))
	}
	edge := o.edges[edgeID]
	if incoming && edge.TargetID() != nodeID {
		return pkgerrors.NewInvalidEndpoints(fmt.Sprintf("edge %s does not end at node %s", edgeID, nodeID))
	}
	if !incoming && edge.SourceID() != nodeID {
		return pkgerrors.NewInvalidEndpoints(fmt.Sprintf("edge %s does not start at node %s", edgeID, nodeID))
	}
	if incoming {
		node.AddIncomingEdgeID(edgeID)
	} else {
		node.AddOutgoingEdgeID(edgeID)
	}
	return nil
}

func (o *Orchestrator) unlinkNodeEdge(nodeID, edgeID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return pkgerrors.NewClosed()
	}
	node, ok := o.nodes[nodeID]
	if !ok {
		return pkgerrors.NewNodeNotFound(nodeID)
	}
	// A live edge stays linked until the edge itself is removed.
	if edge, live := o.edges[edgeID]; live && edge.InvolvesNode(nodeID) {
		return pkgerrors.NewInvalidEndpoints(fmt.Sprintf("edge %s is still attached to node %s", edgeID, nodeID))
	}
	node.RemoveEdgeID(edgeID)
	return nil
}

func (o *Orchestrator) linkNodePath(nodeID, pathID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return pkgerrors.NewClosed()
	}
	node, ok := o.nodes[nodeID]
	if !ok {
		return pkgerrors.NewNodeNotFound(nodeID)
	}
	if !o.isValidPathLocked(pathID) {
		return pkgerrors.NewInvalidEndpoints(fmt.Sprintf("path %s is not valid", pathID))
	}
	if !o.paths[pathID].ContainsNode(nodeID) {
		return pkgerrors.NewInvalidEndpoints(fmt.Sprintf("path %s does not touch node %s", pathID, nodeID))
	}
	node.AddPathID(pathID)
	return nil
}

func (o *Orchestrator) unlinkNodePath(nodeID, pathID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return pkgerrors.NewClosed()
	}
	node, ok := o.nodes[nodeID]
	if !ok {
		return pkgerrors.NewNodeNotFound(nodeID)
	}
	if path, live := o.paths[pathID]; live && path.ContainsNode(nodeID) {
		return pkgerrors.NewInvalidEndpoints(fmt.Sprintf("path %s is still attached to node %s", pathID, nodeID))
	}
	node.RemovePathID(pathID)
	return nil
}

// Private helper methods

func (o *Orchestrator) addEvent(event events.DomainEvent) {
	o.events = append(o.events, event)
}

// removeEdgeLocked erases the edge and the paths using it, returning the removed path ids
func (o *Orchestrator) removeEdgeLocked(id string) []string {
	edge := o.edges[id]
	if source, ok := o.nodes[edge.SourceID()]; ok {
		source.RemoveEdgeID(id)
	}
	if target, ok := o.nodes[edge.TargetID()]; ok {
		target.RemoveEdgeID(id)
	}
	delete(o.edges, id)

	var removed []string
	for _, pathID := range sortedKeys(o.paths) {
		if o.paths[pathID].ContainsEdge(id) {
			o.removePathLocked(pathID)
			removed = append(removed, pathID)
		}
	}

	o.addEvent(events.NewEdgeRemoved(id, edge.SourceID(), edge.TargetID(), removed, time.Now()))
	return removed
}

func (o *Orchestrator) removePathLocked(id string) {
	path := o.paths[id]
	for _, nodeID := range path.NodeIDs() {
		if node, ok := o.nodes[nodeID]; ok {
			node.RemovePathID(id)
		}
	}
	delete(o.paths, id)
	o.addEvent(events.NewPathRemoved(id, time.Now()))
}

func (o *Orchestrator) isValidEdgeLocked(id string) bool {
	edge, ok := o.edges[id]
	if !ok || !edge.IsValid() {
		return false
	}
	_, sourceOK := o.nodes[edge.SourceID()]
	_, targetOK := o.nodes[edge.TargetID()]
	return sourceOK && targetOK
}

func (o *Orchestrator) isValidPathLocked(id string) bool {
	path, ok := o.paths[id]
	if !ok || path.IsEmpty() {
		return false
	}
	live := make([]*entities.Edge, 0, path.Depth())
	for _, edgeID := range path.EdgeIDs() {
		if !o.isValidEdgeLocked(edgeID) {
			return false
		}
		live = append(live, o.edges[edgeID])
	}
	return path.IsValid() && !hasCycle(live)
}

func (o *Orchestrator) nodeTypeLookupLocked() entities.NodeTypeLookup {
	return func(id string) (valueobjects.NodeType, bool) {
		node, ok := o.nodes[id]
		if !ok {
			return valueobjects.NodeTypeUnknown, false
		}
		return node.Type(), true
	}
}

// edgesByIDLocked resolves ids to copies, skipping unknown ids
func (o *Orchestrator) edgesByIDLocked(ids []string) []*entities.Edge {
	out := make([]*entities.Edge, 0, len(ids))
	for _, id := range ids {
		if edge, ok := o.edges[id]; ok {
			out = append(out, edge.Clone())
		}
	}
	return out
}

// hasCycle runs a DFS with a recursion stack over the adjacency induced by edges
func hasCycle(edges []*entities.Edge) bool {
	adjacency := make(map[string][]string)
	var order []string
	for _, e := range edges {
		if _, seen := adjacency[e.SourceID()]; !seen {
			order = append(order, e.SourceID())
		}
		adjacency[e.SourceID()] = append(adjacency[e.SourceID()], e.TargetID())
	}

	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var visit func(string) bool
	visit = func(n string) bool {
		visited[n] = true
		onStack[n] = true
		for _, next := range adjacency[n] {
			if onStack[next] {
				return true
			}
			if !visited[next] && visit(next) {
				return true
			}
		}
		onStack[n] = false
		return false
	}

	for _, n := range order {
		if !visited[n] && visit(n) {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
