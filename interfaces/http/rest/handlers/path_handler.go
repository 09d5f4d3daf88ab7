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

// PathHandler handles registered paths
type PathHandler struct {
	service *services.KnowledgeGraphService
	errors  *pkgerrors.ErrorHandler
	logger  *zap.Logger
}

// NewPathHandler creates a new path handler
func NewPathHandler(
	service *services.KnowledgeGraphService,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *PathHandler {
	return &PathHandler{
		service: service,
		errors:  errors,
		logger:  logger,
	}
}

// CreatePathRequest lists the edges of a path in walking order
type CreatePathRequest struct {
	EdgeIDs     []string `json:"edge_ids" validate:"required,min=1,dive,required"`
	Type        string   `json:"type" validate:"required,path_type"`
	Description string   `json:"description,omitempty"`
}

// CreatePath handles POST /paths
func (h *PathHandler) CreatePath(w http.ResponseWriter, r *http.Request) {
	var req CreatePathRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	path, err := h.service.AddPath(r.Context(), req.EdgeIDs, valueobjects.ParsePathType(req.Type), req.Description)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, path.Document())
}

// GetPath handles GET /paths/{pathID}
func (h *PathHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	path, err := h.service.GetPath(r.Context(), chi.URLParam(r, "pathID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, path.Document())
}

// ListPaths handles GET /paths?type=
func (h *PathHandler) ListPaths(w http.ResponseWriter, r *http.Request) {
	var pathType valueobjects.PathType
	if raw := r.URL.Query().Get("type"); raw != "" {
		pathType = valueobjects.ParsePathType(raw)
		if pathType == valueobjects.PathTypeUnknown {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("unknown path type "+raw))
			return
		}
	}

	paths, err := h.service.ListPaths(r.Context(), pathType)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, pathList(paths))
}

// DeletePath handles DELETE /paths/{pathID}
func (h *PathHandler) DeletePath(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemovePath(r.Context(), chi.URLParam(r, "pathID")); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathList(paths []*entities.Path) ListResponse {
	docs := make([]entities.PathDocument, 0, len(paths))
	for _, p := range paths {
		docs = append(docs, p.Document())
	}
	return ListResponse{Items: docs, Count: len(docs)}
}
