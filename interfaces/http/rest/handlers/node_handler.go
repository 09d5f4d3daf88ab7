package handlers

import (
	"net/http"
	"sort"

	"github.com/AlotfyDev/ArchiNote/application/services"
	"github.com/AlotfyDev/ArchiNote/domain/core/entities"
	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"
	"github.com/AlotfyDev/ArchiNote/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	service *services.KnowledgeGraphService
	errors  *pkgerrors.ErrorHandler
	logger  *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	service *services.KnowledgeGraphService,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{
		service: service,
		errors:  errors,
		logger:  logger,
	}
}

// AttributeRequest describes a structured attribute attached at creation
type AttributeRequest struct {
	Name        string                        `json:"name" validate:"required,max=200"`
	Description string                        `json:"description,omitempty"`
	Type        string                        `json:"type,omitempty"`
	ContentType string                        `json:"content_type,omitempty"`
	Confidence  *float64                      `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
	Values      map[string]valueobjects.Value `json:"values,omitempty"`
	Items       []valueobjects.Value          `json:"items,omitempty"`
	Nested      []AttributeRequest            `json:"nested,omitempty" validate:"omitempty,dive"`
}

// CreateNodeRequest represents the request body for creating a node
type CreateNodeRequest struct {
	ID          string             `json:"id,omitempty" validate:"omitempty,max=200"`
	Type        string             `json:"type" validate:"required,node_type"`
	Description string             `json:"description,omitempty"`
	Attributes  []AttributeRequest `json:"attributes,omitempty" validate:"omitempty,dive"`
}

// build turns the request into an attribute. Type and content type default
// to DATAMEMBER and KEY_VALUE.
func (a AttributeRequest) build() (*entities.StructuredAttribute, error) {
	attrType := valueobjects.AttributeTypeDataMember
	if a.Type != "" {
		attrType = valueobjects.ParseAttributeType(a.Type)
	}
	contentType := valueobjects.ContentTypeKeyValue
	if a.ContentType != "" {
		contentType = valueobjects.ParseContentType(a.ContentType)
	}

	attr := entities.NewStructuredAttribute(a.Name, attrType, contentType)
	attr.SetDescription(a.Description)
	if a.Confidence != nil {
		attr.SetConfidence(*a.Confidence)
	}

	keys := make([]string, 0, len(a.Values))
	for k := range a.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := attr.SetValue(k, a.Values[k]); err != nil {
			return nil, err
		}
	}
	for _, item := range a.Items {
		attr.AddListItem(item)
	}
	for _, nr := range a.Nested {
		child, err := nr.build()
		if err != nil {
			return nil, err
		}
		if err := attr.AddNestedStructure(child); err != nil {
			return nil, err
		}
	}
	return attr, nil
}

// CreateNode handles POST /nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	nodeType := valueobjects.ParseNodeType(req.Type)
	var node *entities.Node
	if req.ID == "" {
		node = entities.NewNode(nodeType, req.Description)
	} else {
		node = entities.NewNodeWithID(req.ID, nodeType, req.Description)
	}
	for _, ar := range req.Attributes {
		attr, err := ar.build()
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		if err := node.AddAttribute(attr); err != nil {
			h.errors.Handle(w, r, err)
			return
		}
	}

	created, err := h.service.AddNode(r.Context(), node)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, created.Document())
}

// GetNode handles GET /nodes/{nodeID}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.service.GetNode(r.Context(), chi.URLParam(r, "nodeID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, node.Document())
}

// ListNodes handles GET /nodes?type=
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	var nodeType valueobjects.NodeType
	if raw := r.URL.Query().Get("type"); raw != "" {
		nodeType = valueobjects.ParseNodeType(raw)
		if !nodeType.IsKnown() {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("unknown node type "+raw))
			return
		}
	}

	nodes, err := h.service.ListNodes(r.Context(), nodeType)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	docs := make([]entities.NodeDocument, 0, len(nodes))
	for _, n := range nodes {
		docs = append(docs, n.Document())
	}
	respondJSON(w, h.logger, http.StatusOK, ListResponse{Items: docs, Count: len(docs)})
}

// DeleteNode handles DELETE /nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if err := h.service.RemoveNode(r.Context(), nodeID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Neighbors handles GET /nodes/{nodeID}/neighbors?relationship=
func (h *NodeHandler) Neighbors(w http.ResponseWriter, r *http.Request) {
	filter := valueobjects.RelationshipAny
	if raw := r.URL.Query().Get("relationship"); raw != "" {
		filter = valueobjects.ParseRelationship(raw)
		if filter == valueobjects.RelationshipUnknown {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("unknown relationship "+raw))
			return
		}
	}

	ids, err := h.service.Neighbors(r.Context(), chi.URLParam(r, "nodeID"), filter)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	respondJSON(w, h.logger, http.StatusOK, ListResponse{Items: ids, Count: len(ids)})
}

// Neighborhood handles GET /nodes/{nodeID}/neighborhood?radius=
func (h *NodeHandler) Neighborhood(w http.ResponseWriter, r *http.Request) {
	radius, err := queryInt(r, "radius", 1)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	doc, err := h.service.Neighborhood(r.Context(), chi.URLParam(r, "nodeID"), radius)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, doc)
}

// Pipeline handles GET /nodes/{nodeID}/pipeline
func (h *NodeHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	pipeline, err := h.service.CreateNodePipeline(r.Context(), chi.URLParam(r, "nodeID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	doc, err := pipeline.Document()
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, doc)
}
