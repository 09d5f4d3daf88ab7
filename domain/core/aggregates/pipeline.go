package aggregates

import (
	"fmt"
	"sync"

	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
)

// NodePipeline is a per-node view that caches the node's edge and path ids
// and forwards link changes through the orchestrator. Reads re-validate the
// cache against the live graph.
type NodePipeline struct {
	nodeID string
	orch   *Orchestrator

	mu      sync.Mutex
	edgeIDs []string
	pathIDs []string
}

// PipelineDocument is the rendered form of a pipeline
type PipelineDocument struct {
	NodePipeline PipelineBody `json:"node_pipeline" yaml:"node_pipeline"`
}

// PipelineBody holds either the node with its live references or a not-found status
type PipelineBody struct {
	ID     string                 `json:"id" yaml:"id"`
	Status string                 `json:"status,omitempty" yaml:"status,omitempty"`
	Node   *entities.NodeDocument `json:"node,omitempty" yaml:"node,omitempty"`
	Edges  []string               `json:"edge_ids,omitempty" yaml:"edge_ids,omitempty"`
	Paths  []string               `json:"path_ids,omitempty" yaml:"path_ids,omitempty"`
}

// NewNodePipeline opens a pipeline for an existing node
func NewNodePipeline(nodeID string, orch *Orchestrator) (*NodePipeline, error) {
	if orch == nil {
		return nil, pkgerrors.NewClosed()
	}
	node, err := orch.GetNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &NodePipeline{
		nodeID:  nodeID,
		orch:    orch,
		edgeIDs: uniqueStrings(node.EdgeIDs()),
		pathIDs: node.PathIDs(),
	}, nil
}

func (p *NodePipeline) NodeID() string {
	return p.nodeID
}

func (p *NodePipeline) checkHandle() error {
	if p.orch == nil || p.orch.IsClosed() {
		return pkgerrors.NewClosed()
	}
	return nil
}

// AddEdgeID caches the edge and links it on the node in the given direction
func (p *NodePipeline) AddEdgeID(id string, incoming bool) error {
	if err := p.checkHandle(); err != nil {
		return err
	}
	if id == "" {
		return pkgerrors.NewInvalidEntity("edge", "edge id cannot be empty")
	}
	if !p.IsValidEdgeID(id) {
		return pkgerrors.NewInvalidEndpoints(fmt.Sprintf("edge %s does not touch node %s", id, p.nodeID))
	}
	if err := p.orch.linkNodeEdge(p.nodeID, id, incoming); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !containsID(p.edgeIDs, id) {
		p.edgeIDs = append(p.edgeIDs, id)
	}
	return nil
}

// RemoveEdgeID drops a stale edge id from the cache and the node. Live edges
// must be removed through the orchestrator so the cascade runs.
func (p *NodePipeline) RemoveEdgeID(id string) error {
	if err := p.checkHandle(); err != nil {
		return err
	}
	if err := p.orch.unlinkNodeEdge(p.nodeID, id); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.edgeIDs = removeID(p.edgeIDs, id)
	return nil
}

// AddPathID caches the path and records it on the node
func (p *NodePipeline) AddPathID(id string) error {
	if err := p.checkHandle(); err != nil {
		return err
	}
	if id == "" {
		return pkgerrors.NewInvalidEntity("path", "path id cannot be empty")
	}
	if !p.IsValidPathID(id) {
		return pkgerrors.NewInvalidEndpoints(fmt.Sprintf("path %s does not touch node %s", id, p.nodeID))
	}
	if err := p.orch.linkNodePath(p.nodeID, id); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !containsID(p.pathIDs, id) {
		p.pathIDs = append(p.pathIDs, id)
	}
	return nil
}

// RemovePathID drops a stale path id from the cache and the node. Live paths
// through the node are refused.
func (p *NodePipeline) RemovePathID(id string) error {
	if err := p.checkHandle(); err != nil {
		return err
	}
	if err := p.orch.unlinkNodePath(p.nodeID, id); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pathIDs = removeID(p.pathIDs, id)
	return nil
}

// EdgeIDs returns the cached edge ids that are still valid. Stale ids stay cached.
func (p *NodePipeline) EdgeIDs() []string {
	if p.checkHandle() != nil {
		return nil
	}
	out := []string{}
	for _, id := range p.cachedEdgeIDs() {
		if p.IsValidEdgeID(id) {
			out = append(out, id)
		}
	}
	return out
}

// PathIDs returns the cached path ids that are still valid. Stale ids stay cached.
func (p *NodePipeline) PathIDs() []string {
	if p.checkHandle() != nil {
		return nil
	}
	out := []string{}
	for _, id := range p.cachedPathIDs() {
		if p.IsValidPathID(id) {
			out = append(out, id)
		}
	}
	return out
}

// IsValidEdgeID reports whether the edge is live, valid and touches the node
func (p *NodePipeline) IsValidEdgeID(id string) bool {
	if p.checkHandle() != nil || !p.orch.IsValidEdge(id) {
		return false
	}
	edge, err := p.orch.GetEdge(id)
	return err == nil && edge.InvolvesNode(p.nodeID)
}

// IsValidPathID reports whether the path is live, valid and one of its edges touches the node
func (p *NodePipeline) IsValidPathID(id string) bool {
	if p.checkHandle() != nil || !p.orch.IsValidPath(id) {
		return false
	}
	path, err := p.orch.GetPath(id)
	if err != nil {
		return false
	}
	for _, e := range path.Edges() {
		if e.InvolvesNode(p.nodeID) {
			return true
		}
	}
	return false
}

// FetchEdge returns a copy of a cached, valid edge
func (p *NodePipeline) FetchEdge(id string) (*entities.Edge, error) {
	if err := p.checkHandle(); err != nil {
		return nil, err
	}
	if !containsID(p.cachedEdgeIDs(), id) || !p.IsValidEdgeID(id) {
		return nil, pkgerrors.NewEdgeNotFound(id)
	}
	return p.orch.GetEdge(id)
}

// FetchPath returns a copy of a cached, valid path
func (p *NodePipeline) FetchPath(id string) (*entities.Path, error) {
	if err := p.checkHandle(); err != nil {
		return nil, err
	}
	if !containsID(p.cachedPathIDs(), id) || !p.IsValidPathID(id) {
		return nil, pkgerrors.NewPathNotFound(id)
	}
	return p.orch.GetPath(id)
}

// Node returns a copy of the underlying node
func (p *NodePipeline) Node() (*entities.Node, error) {
	if err := p.checkHandle(); err != nil {
		return nil, err
	}
	return p.orch.GetNode(p.nodeID)
}

func (p *NodePipeline) NodeExists() bool {
	return p.checkHandle() == nil && p.orch.HasNode(p.nodeID)
}

// Describe returns the node's String form
func (p *NodePipeline) Describe() (string, error) {
	node, err := p.Node()
	if err != nil {
		return "", err
	}
	return node.String(), nil
}

// Document renders the pipeline. A removed node renders with status "not found".
func (p *NodePipeline) Document() (PipelineDocument, error) {
	if err := p.checkHandle(); err != nil {
		return PipelineDocument{}, err
	}
	node, err := p.orch.GetNode(p.nodeID)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNodeNotFound) {
			return PipelineDocument{NodePipeline: PipelineBody{ID: p.nodeID, Status: "not found"}}, nil
		}
		return PipelineDocument{}, err
	}
	doc := node.Document()
	return PipelineDocument{NodePipeline: PipelineBody{
		ID:    p.nodeID,
		Node:  &doc,
		Edges: p.EdgeIDs(),
		Paths: p.PathIDs(),
	}}, nil
}

func (p *NodePipeline) ToYAML() (string, error) {
	doc, err := p.Document()
	if err != nil {
		return "", err
	}
	return entities.RenderYAML(doc)
}

func (p *NodePipeline) ToJSON() (string, error) {
	doc, err := p.Document()
	if err != nil {
		return "", err
	}
	return entities.RenderJSON(doc)
}

func (p *NodePipeline) cachedEdgeIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.edgeIDs...)
}

func (p *NodePipeline) cachedPathIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.pathIDs...)
}

func containsID(ids []string, id string) bool {
	for _, s := range ids {
		if s == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, s := range ids {
		if s != id {
			out = append(out, s)
		}
	}
	return out
}
