package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AlotfyDev/ArchiNote/application/ports"
	"github.com/AlotfyDev/ArchiNote/domain/config"
	"github.com/AlotfyDev/ArchiNote/domain/core/aggregates"
	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// PathStrategy selects the search used by FindPath
type PathStrategy string

const (
	StrategyBFS       PathStrategy = "bfs"
	StrategyShortest  PathStrategy = "shortest"
	StrategyStrongest PathStrategy = "strongest"
)

// KnowledgeGraphService is the application facade over the orchestrator.
// Every call is traced and measured; successful mutations drain the
// orchestrator's domain events to the publisher.
type KnowledgeGraphService struct {
	// mu serialises mutations and multi-step operations so that events
	// drained after a mutation belong to that mutation
	mu sync.Mutex

	orch      *aggregates.Orchestrator
	store     ports.SnapshotStore
	publisher ports.EventPublisher
	metrics   ports.MetricsRecorder
	tracer    trace.Tracer
	logger    *zap.Logger
}

// NewKnowledgeGraphService creates a new knowledge graph service
func NewKnowledgeGraphService(
	orch *aggregates.Orchestrator,
	store ports.SnapshotStore,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	tracer trace.Tracer,
	logger *zap.Logger,
) *KnowledgeGraphService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("knowledge-graph")
	}
	return &KnowledgeGraphService{
		orch:      orch,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger.Named("kg_service"),
	}
}

// Orchestrator exposes the underlying aggregate
func (s *KnowledgeGraphService) Orchestrator() *aggregates.Orchestrator {
	return s.orch
}

// Nodes

// AddNode stores node and returns the stored copy
func (s *KnowledgeGraphService) AddNode(ctx context.Context, node *entities.Node) (*entities.Node, error) {
	var stored *entities.Node
	err := s.mutate(ctx, "AddNode", func(ctx context.Context) error {
		if err := s.orch.AddNode(node); err != nil {
			return err
		}
		var err error
		stored, err = s.orch.GetNode(node.ID())
		return err
	}, attribute.String("node.type", nodeTypeOf(node)))
	return stored, err
}

func (s *KnowledgeGraphService) RemoveNode(ctx context.Context, id string) error {
	return s.mutate(ctx, "RemoveNode", func(context.Context) error {
		return s.orch.RemoveNode(id)
	}, attribute.String("node.id", id))
}

func (s *KnowledgeGraphService) GetNode(ctx context.Context, id string) (*entities.Node, error) {
	var node *entities.Node
	err := s.observe(ctx, "GetNode", func(context.Context) error {
		var err error
		node, err = s.orch.GetNode(id)
		return err
	}, attribute.String("node.id", id))
	return node, err
}

// ListNodes returns every node sorted by id, or only those of nodeType when it is known
func (s *KnowledgeGraphService) ListNodes(ctx context.Context, nodeType valueobjects.NodeType) ([]*entities.Node, error) {
	var nodes []*entities.Node
	err := s.observe(ctx, "ListNodes", func(context.Context) error {
		if s.orch.IsClosed() {
			return pkgerrors.NewClosed()
		}
		if nodeType.IsKnown() {
			nodes = s.orch.QueryNodesByType(nodeType)
			return nil
		}
		for _, id := range s.orch.NodeIDs() {
			if node, err := s.orch.GetNode(id); err == nil {
				nodes = append(nodes, node)
			}
		}
		return nil
	})
	return nodes, err
}

// Neighbors returns the targets of the node's outgoing edges matching filter
func (s *KnowledgeGraphService) Neighbors(ctx context.Context, id string, filter valueobjects.RelationshipType) ([]string, error) {
	var ids []string
	err := s.observe(ctx, "Neighbors", func(context.Context) error {
		var err error
		ids, err = s.orch.Neighbors(id, filter)
		return err
	}, attribute.String("node.id", id))
	return ids, err
}

// Edges

func (s *KnowledgeGraphService) AddEdge(ctx context.Context, source, target string, rel valueobjects.RelationshipType, description string) (*entities.Edge, error) {
	var edge *entities.Edge
	err := s.mutate(ctx, "AddEdge", func(context.Context) error {
		var err error
		edge, err = s.orch.AddEdge(source, target, rel, description)
		return err
	}, attribute.String("edge.source", source), attribute.String("edge.target", target))
	return edge, err
}

func (s *KnowledgeGraphService) AddWeightedEdge(ctx context.Context, source, target string, rel valueobjects.RelationshipType, strength float64, description string) (*entities.Edge, error) {
	var edge *entities.Edge
	err := s.mutate(ctx, "AddWeightedEdge", func(context.Context) error {
		var err error
		edge, err = s.orch.AddWeightedEdge(source, target, rel, strength, description)
		return err
	}, attribute.String("edge.source", source), attribute.String("edge.target", target))
	return edge, err
}

func (s *KnowledgeGraphService) RemoveEdge(ctx context.Context, id string) error {
	return s.mutate(ctx, "RemoveEdge", func(context.Context) error {
		return s.orch.RemoveEdge(id)
	}, attribute.String("edge.id", id))
}

// RemoveRelationships removes the node's outgoing edges of type rel
func (s *KnowledgeGraphService) RemoveRelationships(ctx context.Context, id string, rel valueobjects.RelationshipType) (int, error) {
	var removed int
	err := s.mutate(ctx, "RemoveRelationships", func(context.Context) error {
		var err error
		removed, err = s.orch.RemoveRelationships(id, rel)
		return err
	}, attribute.String("node.id", id))
	return removed, err
}

func (s *KnowledgeGraphService) ListEdges(ctx context.Context, rel valueobjects.RelationshipType) ([]*entities.Edge, error) {
	var edges []*entities.Edge
	err := s.observe(ctx, "ListEdges", func(context.Context) error {
		if s.orch.IsClosed() {
			return pkgerrors.NewClosed()
		}
		if rel == valueobjects.RelationshipUnknown || rel == "" {
			rel = valueobjects.RelationshipAny
		}
		edges = s.orch.QueryEdgesByType(rel)
		return nil
	})
	return edges, err
}

// Paths

func (s *KnowledgeGraphService) AddPath(ctx context.Context, edgeIDs []string, pathType valueobjects.PathType, description string) (*entities.Path, error) {
	var path *entities.Path
	err := s.mutate(ctx, "AddPath", func(context.Context) error {
		var err error
		path, err = s.orch.AddPath(edgeIDs, pathType, description)
		return err
	}, attribute.Int("path.edges", len(edgeIDs)))
	return path, err
}

func (s *KnowledgeGraphService) RemovePath(ctx context.Context, id string) error {
	return s.mutate(ctx, "RemovePath", func(context.Context) error {
		return s.orch.RemovePath(id)
	}, attribute.String("path.id", id))
}

func (s *KnowledgeGraphService) GetPath(ctx context.Context, id string) (*entities.Path, error) {
	var path *entities.Path
	err := s.observe(ctx, "GetPath", func(context.Context) error {
		var err error
		path, err = s.orch.GetPath(id)
		return err
	}, attribute.String("path.id", id))
	return path, err
}

func (s *KnowledgeGraphService) ListPaths(ctx context.Context, pathType valueobjects.PathType) ([]*entities.Path, error) {
	var paths []*entities.Path
	err := s.observe(ctx, "ListPaths", func(context.Context) error {
		if s.orch.IsClosed() {
			return pkgerrors.NewClosed()
		}
		if pathType != valueobjects.PathTypeUnknown && pathType != "" {
			paths = s.orch.QueryPathsByType(pathType)
			return nil
		}
		for _, t := range valueobjects.AllPathTypes() {
			paths = append(paths, s.orch.QueryPathsByType(t)...)
		}
		return nil
	})
	return paths, err
}

// FindPath searches for a single unregistered path. A nil path with a nil
// error means the target is unreachable under the chosen strategy.
func (s *KnowledgeGraphService) FindPath(ctx context.Context, from, to string, strategy PathStrategy, maxDepth int, minStrength float64) (*entities.Path, error) {
	var path *entities.Path
	err := s.observe(ctx, "FindPath", func(context.Context) error {
		if !s.orch.HasNode(from) {
			return s.missingNode(from)
		}
		if !s.orch.HasNode(to) {
			return s.missingNode(to)
		}
		cfg := s.orch.Config()
		if maxDepth <= 0 {
			maxDepth = cfg.DefaultMaxDepth
		}
		switch strategy {
		case StrategyBFS, "":
			var err error
			path, err = s.orch.FindPathBetween(from, to)
			return err
		case StrategyShortest:
			path = s.orch.FindShortestPath(from, to, minStrength)
		case StrategyStrongest:
			path = s.orch.FindStrongestPath(from, to, maxDepth)
		default:
			return pkgerrors.NewValidationError(fmt.Sprintf("unknown path strategy %q", strategy))
		}
		return nil
	}, attribute.String("path.from", from), attribute.String("path.to", to), attribute.String("path.strategy", string(strategy)))
	return path, err
}

// FindAllPaths enumerates simple paths between two nodes. A non-positive
// maxDepth uses the configured default.
func (s *KnowledgeGraphService) FindAllPaths(ctx context.Context, from, to string, maxDepth int, minStrength float64) ([]*entities.Path, error) {
	var paths []*entities.Path
	err := s.observe(ctx, "FindAllPaths", func(context.Context) error {
		if s.orch.IsClosed() {
			return pkgerrors.NewClosed()
		}
		if maxDepth <= 0 {
			maxDepth = s.orch.Config().DefaultMaxDepth
		}
		paths = s.orch.FindAllPaths(from, to, maxDepth, minStrength)
		return nil
	})
	return paths, err
}

// Analysis

func (s *KnowledgeGraphService) FindCycles(ctx context.Context) ([]*entities.Path, error) {
	var cycles []*entities.Path
	err := s.observe(ctx, "FindCycles", func(context.Context) error {
		if s.orch.IsClosed() {
			return pkgerrors.NewClosed()
		}
		cycles = s.orch.FindCycles()
		return nil
	})
	return cycles, err
}

func (s *KnowledgeGraphService) ValidateGraph(ctx context.Context) error {
	return s.observe(ctx, "ValidateGraph", func(context.Context) error {
		return s.orch.ValidateGraph()
	})
}

func (s *KnowledgeGraphService) FindOrphanedNodes(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.observe(ctx, "FindOrphanedNodes", func(context.Context) error {
		if s.orch.IsClosed() {
			return pkgerrors.NewClosed()
		}
		ids = s.orch.FindOrphanedNodes()
		return nil
	})
	return ids, err
}

func (s *KnowledgeGraphService) FindConnectedComponents(ctx context.Context) ([][]string, error) {
	var groups [][]string
	err := s.observe(ctx, "FindConnectedComponents", func(context.Context) error {
		if s.orch.IsClosed() {
			return pkgerrors.NewClosed()
		}
		groups = s.orch.FindConnectedComponents()
		return nil
	})
	return groups, err
}

// Subgraph renders the given nodes with their incident edges and paths
func (s *KnowledgeGraphService) Subgraph(ctx context.Context, ids []string) (aggregates.SubgraphDocument, error) {
	var doc aggregates.SubgraphDocument
	err := s.observe(ctx, "Subgraph", func(context.Context) error {
		if s.orch.IsClosed() {
			return pkgerrors.NewClosed()
		}
		doc = s.orch.GetSubgraph(ids)
		return nil
	}, attribute.Int("subgraph.requested", len(ids)))
	return doc, err
}

// Neighborhood renders every node within radius hops of id
func (s *KnowledgeGraphService) Neighborhood(ctx context.Context, id string, radius int) (aggregates.SubgraphDocument, error) {
	var doc aggregates.SubgraphDocument
	err := s.observe(ctx, "Neighborhood", func(context.Context) error {
		var err error
		doc, err = s.orch.ExtractNeighborhood(id, radius)
		return err
	}, attribute.String("node.id", id), attribute.Int("radius", radius))
	return doc, err
}

func (s *KnowledgeGraphService) Stats(ctx context.Context) (aggregates.GraphStatistics, error) {
	var stats aggregates.GraphStatistics
	err := s.observe(ctx, "Stats", func(context.Context) error {
		if s.orch.IsClosed() {
			return pkgerrors.NewClosed()
		}
		stats = s.orch.Statistics()
		return nil
	})
	return stats, err
}

// CreateNodePipeline opens a pipeline for an existing node
func (s *KnowledgeGraphService) CreateNodePipeline(ctx context.Context, id string) (*aggregates.NodePipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pipeline *aggregates.NodePipeline
	err := s.observe(ctx, "CreateNodePipeline", func(context.Context) error {
		var err error
		pipeline, err = aggregates.NewNodePipeline(id, s.orch)
		return err
	}, attribute.String("node.id", id))
	return pipeline, err
}

// UpdateRules swaps the compatibility table, typically after a config reload
func (s *KnowledgeGraphService) UpdateRules(rules valueobjects.CompatibilityRules) error {
	return s.orch.UpdateRules(rules)
}

// ApplyConfig replaces the whole domain config after a reload
func (s *KnowledgeGraphService) ApplyConfig(cfg *config.DomainConfig) error {
	return s.orch.ApplyConfig(cfg)
}

// Persistence

// Save snapshots the graph to the store under graphID
func (s *KnowledgeGraphService) Save(ctx context.Context, graphID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.observe(ctx, "Save", func(ctx context.Context) error {
		if s.store == nil {
			return pkgerrors.NewUnavailableError("snapshot store")
		}
		snap, err := s.orch.Snapshot()
		if err != nil {
			return err
		}
		if err := s.store.Save(ctx, graphID, snap); err != nil {
			return err
		}
		s.logger.Info("Graph saved",
			zap.String("graph_id", graphID),
			zap.Int("nodes", len(snap.Nodes)),
			zap.Int("edges", len(snap.Edges)),
			zap.Int("paths", len(snap.Paths)),
		)
		return nil
	}, attribute.String("graph.id", graphID))
}

// Load replaces the graph with the snapshot stored under graphID
func (s *KnowledgeGraphService) Load(ctx context.Context, graphID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.observe(ctx, "Load", func(ctx context.Context) error {
		if s.store == nil {
			return pkgerrors.NewUnavailableError("snapshot store")
		}
		snap, err := s.store.Load(ctx, graphID)
		if err != nil {
			return err
		}
		if err := s.orch.RestoreSnapshot(snap); err != nil {
			return pkgerrors.Wrapf(err, "restore graph %s", graphID)
		}
		s.updateGauges()
		return nil
	}, attribute.String("graph.id", graphID))
}

// Export

func (s *KnowledgeGraphService) ExportYAML(ctx context.Context) (string, error) {
	var out string
	err := s.observe(ctx, "ExportYAML", func(context.Context) error {
		var err error
		out, err = s.orch.ToYAML()
		return err
	})
	return out, err
}

func (s *KnowledgeGraphService) ExportJSON(ctx context.Context) (string, error) {
	var out string
	err := s.observe(ctx, "ExportJSON", func(context.Context) error {
		var err error
		out, err = s.orch.ToJSON()
		return err
	})
	return out, err
}

// ExportRAG renders the graph as plain text for retrieval-augmented prompts:
// one block per node with its outgoing relationships, then every path.
func (s *KnowledgeGraphService) ExportRAG(ctx context.Context) (string, error) {
	var out string
	err := s.observe(ctx, "ExportRAG", func(context.Context) error {
		doc, err := s.orch.Document()
		if err != nil {
			return err
		}
		out = renderRAG(doc)
		return nil
	})
	return out, err
}

func renderRAG(doc aggregates.GraphDocument) string {
	edgesBySource := make(map[string][]entities.EdgeDocument)
	for _, e := range doc.Graph.Edges {
		edgesBySource[e.Source] = append(edgesBySource[e.Source], e)
	}

	var sb strings.Builder
	sb.WriteString("# Knowledge graph\n")
	for _, n := range doc.Graph.Nodes {
		fmt.Fprintf(&sb, "\n[%s] %s", n.Type, n.ID)
		if n.Description != "" {
			fmt.Fprintf(&sb, ": %s", n.Description)
		}
		sb.WriteString("\n")
		for _, a := range n.Attributes {
			fmt.Fprintf(&sb, "  * %s (%s)\n", a.Name, a.Type)
		}
		for _, e := range edgesBySource[n.ID] {
			fmt.Fprintf(&sb, "  - %s -> %s (strength %s)\n", e.Type, e.Target, e.Strength)
		}
	}
	if len(doc.Graph.Paths) > 0 {
		sb.WriteString("\n# Paths\n")
		for _, p := range doc.Graph.Paths {
			fmt.Fprintf(&sb, "- %s", strings.Join(pathHops(p), " "))
			fmt.Fprintf(&sb, " (Strength: %s)", p.TotalStrength)
			if p.Description != "" {
				fmt.Fprintf(&sb, " %s", p.Description)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func pathHops(p entities.PathDocument) []string {
	if len(p.Edges) == 0 {
		return nil
	}
	hops := []string{p.Edges[0].From}
	for _, e := range p.Edges {
		hops = append(hops, fmt.Sprintf("--%s--> %s", e.Relationship, e.To))
	}
	return hops
}

// Close closes the orchestrator; later calls fail with GRAPH_CLOSED
func (s *KnowledgeGraphService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orch.Close()
}

// Private helper methods

// observe wraps fn in a kg.<operation> span and records its outcome
func (s *KnowledgeGraphService) observe(ctx context.Context, operation string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := s.tracer.Start(ctx, "kg."+operation, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.metrics.RecordGraphOperation(operation, err == nil, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Debug("Graph operation failed", zap.String("operation", operation), zap.Error(err))
	}
	return err
}

// mutate runs fn under the facade lock and publishes the resulting events
func (s *KnowledgeGraphService) mutate(ctx context.Context, operation string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.observe(ctx, operation, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		s.publishPending(ctx)
		s.updateGauges()
		return nil
	}, attrs...)
}

// publishPending drains uncommitted events. Publish failures are logged only.
func (s *KnowledgeGraphService) publishPending(ctx context.Context) {
	pending := s.orch.GetUncommittedEvents()
	if len(pending) == 0 {
		return
	}
	s.orch.MarkEventsAsCommitted()
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBatch(ctx, pending); err != nil {
		s.logger.Error("Failed to publish domain events",
			zap.Int("events", len(pending)),
			zap.Error(err),
		)
	}
}

func (s *KnowledgeGraphService) updateGauges() {
	s.metrics.SetGraphEntities(s.orch.NodeCount(), s.orch.EdgeCount(), s.orch.PathCount())
}

func (s *KnowledgeGraphService) missingNode(id string) error {
	if s.orch.IsClosed() {
		return pkgerrors.NewClosed()
	}
	return pkgerrors.NewNodeNotFound(id)
}

func nodeTypeOf(node *entities.Node) string {
	if node == nil {
		return ""
	}
	return node.Type().String()
}
