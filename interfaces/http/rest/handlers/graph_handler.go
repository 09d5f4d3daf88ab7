package handlers

import (
	"fmt"
	"net/http"

	"github.com/AlotfyDev/ArchiNote/application/services"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"github.com/AlotfyDev/ArchiNote/pkg/utils"

	"go.uber.org/zap"
)

// GraphHandler handles whole-graph queries, exports and persistence
type GraphHandler struct {
	service *services.KnowledgeGraphService
	errors  *pkgerrors.ErrorHandler
	graphID string
	logger  *zap.Logger
}

// NewGraphHandler creates a new graph handler. graphID is the snapshot used
// by save and load when the request names none.
func NewGraphHandler(
	service *services.KnowledgeGraphService,
	errors *pkgerrors.ErrorHandler,
	graphID string,
	logger *zap.Logger,
) *GraphHandler {
	return &GraphHandler{
		service: service,
		errors:  errors,
		graphID: graphID,
		logger:  logger,
	}
}

// SubgraphRequest names the nodes to extract
type SubgraphRequest struct {
	NodeIDs []string `json:"node_ids" validate:"required,min=1"`
}

// SnapshotRequest optionally overrides the snapshot id
type SnapshotRequest struct {
	GraphID string `json:"graph_id,omitempty" validate:"omitempty,max=200"`
}

// ValidationResponse reports the outcome of a consistency check
type ValidationResponse struct {
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// FindPath handles GET /graph/path?from=&to=&strategy=&max_depth=&min_strength=
func (h *GraphHandler) FindPath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("from and to are required"))
		return
	}
	maxDepth, err := queryInt(r, "max_depth", 0)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	minStrength, err := queryFloat(r, "min_strength", 0)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	path, err := h.service.FindPath(r.Context(), from, to, services.PathStrategy(q.Get("strategy")), maxDepth, minStrength)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if path == nil {
		h.errors.Handle(w, r, pkgerrors.NewNotFoundError(fmt.Sprintf("path from '%s' to '%s'", from, to)).
			WithCode(pkgerrors.CodePathNotFound))
		return
	}
	respondJSON(w, h.logger, http.StatusOK, path.Document())
}

// FindAllPaths handles GET /graph/paths?from=&to=&max_depth=&min_strength=
func (h *GraphHandler) FindAllPaths(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	maxDepth, err := queryInt(r, "max_depth", 0)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	minStrength, err := queryFloat(r, "min_strength", 0)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	paths, err := h.service.FindAllPaths(r.Context(), q.Get("from"), q.Get("to"), maxDepth, minStrength)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, pathList(paths))
}

// Cycles handles GET /graph/cycles
func (h *GraphHandler) Cycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.service.FindCycles(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, pathList(cycles))
}

// Validate handles GET /graph/validate. An inconsistent graph is a result,
// not a request failure, so it is reported with 200.
func (h *GraphHandler) Validate(w http.ResponseWriter, r *http.Request) {
	err := h.service.ValidateGraph(r.Context())
	if err == nil {
		respondJSON(w, h.logger, http.StatusOK, ValidationResponse{Valid: true})
		return
	}
	if pkgerrors.HasCode(err, pkgerrors.CodeClosed) {
		h.errors.Handle(w, r, err)
		return
	}

	resp := ValidationResponse{Message: err.Error()}
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		resp.Code = appErr.Code
		resp.Message = appErr.Message
	}
	respondJSON(w, h.logger, http.StatusOK, resp)
}

// Orphans handles GET /graph/orphans
func (h *GraphHandler) Orphans(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.FindOrphanedNodes(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	respondJSON(w, h.logger, http.StatusOK, ListResponse{Items: ids, Count: len(ids)})
}

// Components handles GET /graph/components
func (h *GraphHandler) Components(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.FindConnectedComponents(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if groups == nil {
		groups = [][]string{}
	}
	respondJSON(w, h.logger, http.StatusOK, ListResponse{Items: groups, Count: len(groups)})
}

// Stats handles GET /graph/stats
func (h *GraphHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, stats)
}

// Subgraph handles POST /graph/subgraph
func (h *GraphHandler) Subgraph(w http.ResponseWriter, r *http.Request) {
	var req SubgraphRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	doc, err := h.service.Subgraph(r.Context(), req.NodeIDs)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, doc)
}

// Export handles GET /graph/export?format=yaml|json|rag
func (h *GraphHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	var (
		body        string
		contentType string
		err         error
	)
	switch format {
	case "json":
		body, err = h.service.ExportJSON(r.Context())
		contentType = "application/json"
	case "yaml":
		body, err = h.service.ExportYAML(r.Context())
		contentType = "application/yaml"
	case "rag":
		body, err = h.service.ExportRAG(r.Context())
		contentType = "text/plain; charset=utf-8"
	default:
		err = pkgerrors.NewValidationError("format must be one of: yaml json rag")
	}
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondText(w, h.logger, contentType, body)
}

// Save handles POST /graph/save
func (h *GraphHandler) Save(w http.ResponseWriter, r *http.Request) {
	graphID, err := h.snapshotID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := h.service.Save(r.Context(), graphID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, MessageResponse{Message: "graph saved", ID: graphID})
}

// Load handles POST /graph/load
func (h *GraphHandler) Load(w http.ResponseWriter, r *http.Request) {
	graphID, err := h.snapshotID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := h.service.Load(r.Context(), graphID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, MessageResponse{Message: "graph loaded", ID: graphID})
}

// snapshotID reads the optional body; an empty body selects the default graph
func (h *GraphHandler) snapshotID(r *http.Request) (string, error) {
	var req SnapshotRequest
	if r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody {
		if err := decodeJSON(r, &req); err != nil {
			return "", err
		}
		if err := utils.ValidateStruct(req); err != nil {
			return "", err
		}
	}
	if req.GraphID == "" {
		return h.graphID, nil
	}
	return req.GraphID, nil
}
