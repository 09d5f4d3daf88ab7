package aggregates

import (
	"fmt"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"go.uber.org/zap"
)

// SnapshotVersion is bumped whenever the snapshot layout changes
const SnapshotVersion = 1

// Snapshot is a complete, ordered dump of the graph. Node documents keep
// their reference lists so restoring reproduces traversal order exactly.
// Strengths and confidences are stored at full precision, unlike the
// rendered documents.
type Snapshot struct {
	Version int                     `json:"version"`
	Nodes   []NodeRecord            `json:"nodes"`
	Edges   []EdgeRecord            `json:"edges"`
	Paths   []entities.PathDocument `json:"paths"`
	TakenAt time.Time               `json:"taken_at"`
}

// EdgeRecord is an edge document whose strength field is a plain float
type EdgeRecord struct {
	entities.EdgeDocument
	Strength float64 `json:"strength"`
}

// NodeRecord is a node document with full precision attribute confidences
type NodeRecord struct {
	entities.NodeDocument
	Attributes []AttributeRecord `json:"attributes,omitempty"`
}

// AttributeRecord is an attribute document with a plain float confidence
type AttributeRecord struct {
	entities.AttributeDocument
	Confidence float64           `json:"confidence"`
	Nested     []AttributeRecord `json:"nested,omitempty"`
}

func newEdgeRecord(doc entities.EdgeDocument) EdgeRecord {
	return EdgeRecord{EdgeDocument: doc, Strength: doc.Strength.Float64()}
}

func (r EdgeRecord) document() entities.EdgeDocument {
	doc := r.EdgeDocument
	doc.Strength = valueobjects.Strength(r.Strength)
	return doc
}

func newNodeRecord(doc entities.NodeDocument) NodeRecord {
	rec := NodeRecord{NodeDocument: doc, Attributes: newAttributeRecords(doc.Attributes)}
	rec.NodeDocument.Attributes = nil
	return rec
}

func (r NodeRecord) document() entities.NodeDocument {
	doc := r.NodeDocument
	doc.Attributes = attributeDocuments(r.Attributes)
	return doc
}

func newAttributeRecords(docs []entities.AttributeDocument) []AttributeRecord {
	if len(docs) == 0 {
		return nil
	}
	out := make([]AttributeRecord, 0, len(docs))
	for _, doc := range docs {
		rec := AttributeRecord{
			AttributeDocument: doc,
			Confidence:        doc.Confidence.Float64(),
			Nested:            newAttributeRecords(doc.Nested),
		}
		rec.AttributeDocument.Nested = nil
		out = append(out, rec)
	}
	return out
}

func attributeDocuments(recs []AttributeRecord) []entities.AttributeDocument {
	if len(recs) == 0 {
		return nil
	}
	out := make([]entities.AttributeDocument, 0, len(recs))
	for _, rec := range recs {
		doc := rec.AttributeDocument
		doc.Confidence = valueobjects.Strength(rec.Confidence)
		doc.Nested = attributeDocuments(rec.Nested)
		out = append(out, doc)
	}
	return out
}

// Snapshot dumps the graph sorted by id
func (o *Orchestrator) Snapshot() (Snapshot, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return Snapshot{}, pkgerrors.NewClosed()
	}
	snap := Snapshot{
		Version: SnapshotVersion,
		Nodes:   make([]NodeRecord, 0, len(o.nodes)),
		Edges:   make([]EdgeRecord, 0, len(o.edges)),
		Paths:   make([]entities.PathDocument, 0, len(o.paths)),
		TakenAt: time.Now().UTC(),
	}
	for _, id := range sortedKeys(o.nodes) {
		snap.Nodes = append(snap.Nodes, newNodeRecord(o.nodes[id].Document()))
	}
	for _, id := range sortedKeys(o.edges) {
		snap.Edges = append(snap.Edges, newEdgeRecord(o.edges[id].Document()))
	}
	for _, id := range sortedKeys(o.paths) {
		snap.Paths = append(snap.Paths, o.paths[id].Document())
	}
	return snap, nil
}

// RestoreSnapshot replaces the whole graph with snap. Everything is
// validated before the swap; on error the current graph is left untouched.
// No domain events are recorded for restored entities.
func (o *Orchestrator) RestoreSnapshot(snap Snapshot) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return pkgerrors.NewClosed()
	}
	if snap.Version != SnapshotVersion {
		return pkgerrors.NewValidationError(fmt.Sprintf("unsupported snapshot version %d", snap.Version))
	}
	if o.config.MaxNodes > 0 && len(snap.Nodes) > o.config.MaxNodes {
		return pkgerrors.NewLimitExceeded("nodes", o.config.MaxNodes)
	}
	if o.config.MaxEdges > 0 && len(snap.Edges) > o.config.MaxEdges {
		return pkgerrors.NewLimitExceeded("edges", o.config.MaxEdges)
	}

	nodes := make(map[string]*entities.Node, len(snap.Nodes))
	for _, rec := range snap.Nodes {
		node, err := entities.NodeFromDocument(rec.document())
		if err != nil {
			return err
		}
		if _, dup := nodes[node.ID()]; dup {
			return pkgerrors.NewDuplicateID("node", node.ID())
		}
		nodes[node.ID()] = node
	}

	edges := make(map[string]*entities.Edge, len(snap.Edges))
	for _, rec := range snap.Edges {
		edge, err := entities.EdgeFromDocument(rec.document())
		if err != nil {
			return err
		}
		if _, dup := edges[edge.ID()]; dup {
			return pkgerrors.NewDuplicateID("edge", edge.ID())
		}
		if _, ok := nodes[edge.SourceID()]; !ok {
			return pkgerrors.NewNodeNotFound(edge.SourceID())
		}
		if _, ok := nodes[edge.TargetID()]; !ok {
			return pkgerrors.NewNodeNotFound(edge.TargetID())
		}
		edges[edge.ID()] = edge
	}

	// Re-link in recorded order first, then catch edges the documents omitted.
	for _, doc := range snap.Nodes {
		node := nodes[doc.ID]
		for _, edgeID := range doc.IncomingEdgeIDs {
			edge, ok := edges[edgeID]
			if !ok || edge.TargetID() != doc.ID {
				return pkgerrors.NewInvalidEntity("node", fmt.Sprintf("node %s lists foreign incoming edge %s", doc.ID, edgeID))
			}
			node.AddIncomingEdgeID(edgeID)
		}
		for _, edgeID := range doc.OutgoingEdgeIDs {
			edge, ok := edges[edgeID]
			if !ok || edge.SourceID() != doc.ID {
				return pkgerrors.NewInvalidEntity("node", fmt.Sprintf("node %s lists foreign outgoing edge %s", doc.ID, edgeID))
			}
			node.AddOutgoingEdgeID(edgeID)
		}
	}
	for _, doc := range snap.Edges {
		nodes[doc.Source].AddOutgoingEdgeID(doc.ID)
		nodes[doc.Target].AddIncomingEdgeID(doc.ID)
	}

	paths := make(map[string]*entities.Path, len(snap.Paths))
	for _, doc := range snap.Paths {
		if _, dup := paths[doc.ID]; dup {
			return pkgerrors.NewDuplicateID("path", doc.ID)
		}
		walk := make([]*entities.Edge, 0, len(doc.Edges))
		for _, hop := range doc.Edges {
			edge, ok := edges[hop.ID]
			if !ok {
				return pkgerrors.NewEdgeNotFound(hop.ID)
			}
			walk = append(walk, edge)
		}
		if hasCycle(walk) {
			return pkgerrors.NewCycleDetected(fmt.Sprintf("path %s forms a cycle", doc.ID))
		}
		path := entities.NewPathFromEdges(doc.ID, walk, doc.Type, doc.Description)
		if !path.IsValid() {
			return pkgerrors.NewInvalidEntity("path", fmt.Sprintf("path %s is not a contiguous walk", doc.ID))
		}
		paths[path.ID()] = path
	}

	for _, doc := range snap.Nodes {
		node := nodes[doc.ID]
		for _, pathID := range doc.PathIDs {
			path, ok := paths[pathID]
			if !ok || !path.ContainsNode(doc.ID) {
				return pkgerrors.NewInvalidEntity("node", fmt.Sprintf("node %s lists foreign path %s", doc.ID, pathID))
			}
			node.AddPathID(pathID)
		}
	}
	for _, id := range sortedKeys(paths) {
		for _, nodeID := range paths[id].NodeIDs() {
			nodes[nodeID].AddPathID(id)
		}
	}

	o.nodes = nodes
	o.edges = edges
	o.paths = paths

	o.logger.Info("Snapshot restored",
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(edges)),
		zap.Int("paths", len(paths)),
	)
	return nil
}
