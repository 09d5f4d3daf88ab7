package handlers

import (
	"net/http"

	"github.com/AlotfyDev/ArchiNote/application/services"
	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"github.com/AlotfyDev/ArchiNote/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EdgeHandler handles edge-related HTTP requests
type EdgeHandler struct {
	service *services.KnowledgeGraphService
	errors  *pkgerrors.ErrorHandler
	logger  *zap.Logger
}

// NewEdgeHandler creates a new edge handler
func NewEdgeHandler(
	service *services.KnowledgeGraphService,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *EdgeHandler {
	return &EdgeHandler{
		service: service,
		errors:  errors,
		logger:  logger,
	}
}

// CreateEdgeRequest represents the request body for creating an edge.
// Strength defaults to 1.0 when omitted.
type CreateEdgeRequest struct {
	Source       string   `json:"source" validate:"required"`
	Target       string   `json:"target" validate:"required"`
	Relationship string   `json:"relationship" validate:"required,concrete_relationship"`
	Strength     *float64 `json:"strength,omitempty" validate:"omitempty,gte=0,lte=1"`
	Description  string   `json:"description,omitempty"`
}

// CreateEdge handles POST /edges
func (h *EdgeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req CreateEdgeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	rel := valueobjects.ParseRelationship(req.Relationship)
	var (
		edge *entities.Edge
		err  error
	)
	if req.Strength != nil {
		edge, err = h.service.AddWeightedEdge(r.Context(), req.Source, req.Target, rel, *req.Strength, req.Description)
	} else {
		edge, err = h.service.AddEdge(r.Context(), req.Source, req.Target, rel, req.Description)
	}
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, edge.Document())
}

// ListEdges handles GET /edges?type=
func (h *EdgeHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	rel := valueobjects.RelationshipAny
	if raw := r.URL.Query().Get("type"); raw != "" {
		rel = valueobjects.ParseRelationship(raw)
		if rel == valueobjects.RelationshipUnknown {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("unknown relationship "+raw))
			return
		}
	}

	edges, err := h.service.ListEdges(r.Context(), rel)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	docs := make([]entities.EdgeDocument, 0, len(edges))
	for _, e := range edges {
		docs = append(docs, e.Document())
	}
	respondJSON(w, h.logger, http.StatusOK, ListResponse{Items: docs, Count: len(docs)})
}

// DeleteEdge handles DELETE /edges/{edgeID}
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveEdge(r.Context(), chi.URLParam(r, "edgeID")); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveRelationships handles DELETE /nodes/{nodeID}/relationships?type=
func (h *EdgeHandler) RemoveRelationships(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("type")
	rel := valueobjects.ParseRelationship(raw)
	if !rel.IsConcrete() {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("type must be a concrete relationship"))
		return
	}

	nodeID := chi.URLParam(r, "nodeID")
	removed, err := h.service.RemoveRelationships(r.Context(), nodeID, rel)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"node_id": nodeID,
		"removed": removed,
	})
}
