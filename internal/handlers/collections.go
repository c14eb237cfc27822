package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docbase/internal/service"
	"docbase/internal/storage"
)

// CollectionHandler handles HTTP requests for collections.
type CollectionHandler struct {
	collections *service.CollectionService
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(collections *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{collections: collections}
}

// CollectionRequest represents the HTTP request payload for creating or
// updating a collection.
type CollectionRequest struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	EmbeddingProvider   string `json:"embedding_provider"`
	EmbeddingModel      string `json:"embedding_model"`
	EmbeddingEndpoint   string `json:"embedding_endpoint,omitempty"`
	EmbeddingDimensions int    `json:"embedding_dimensions,omitempty"`
}

// CollectionResponse represents a collection in HTTP responses.
type CollectionResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description,omitempty"`
	EmbeddingProvider   string    `json:"embedding_provider"`
	EmbeddingModel      string    `json:"embedding_model"`
	EmbeddingEndpoint   string    `json:"embedding_endpoint,omitempty"`
	EmbeddingDimensions int       `json:"embedding_dimensions"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func collectionResponse(c *storage.CollectionRecord) CollectionResponse {
	return CollectionResponse{
		ID:                  c.ID,
		Name:                c.Name,
		Description:         c.Description,
		EmbeddingProvider:   c.EmbeddingProvider,
		EmbeddingModel:      c.EmbeddingModel,
		EmbeddingEndpoint:   c.EmbeddingEndpoint,
		EmbeddingDimensions: c.EmbeddingDimensions,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func (req CollectionRequest) input() service.CollectionInput {
	return service.CollectionInput{
		Name:                req.Name,
		Description:         req.Description,
		EmbeddingProvider:   req.EmbeddingProvider,
		EmbeddingModel:      req.EmbeddingModel,
		EmbeddingEndpoint:   req.EmbeddingEndpoint,
		EmbeddingDimensions: req.EmbeddingDimensions,
	}
}

// Create handles POST /api/collections.
func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.collections.Create(ctx, req.input())
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to create collection")
		return
	}
	writeJSON(w, http.StatusCreated, collectionResponse(record))
}

// List handles GET /api/collections.
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	filter := storage.CollectionFilter{
		Name:           q.Get("name"),
		EmbeddingModel: q.Get("embedding_model"),
	}
	page := pageFromQuery(r)

	records, total, err := h.collections.List(ctx, filter, page)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list collections")
		return
	}

	items := make([]CollectionResponse, len(records))
	for i := range records {
		items[i] = collectionResponse(&records[i])
	}
	writeJSON(w, http.StatusOK, PagedResponse{Items: items, Total: total, Limit: page.Limit, Offset: page.Offset})
}

// Get handles GET /api/collections/{collectionID}.
func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := h.collections.Get(ctx, chi.URLParam(r, "collectionID"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load collection")
		return
	}
	writeJSON(w, http.StatusOK, collectionResponse(record))
}

// Update handles PUT /api/collections/{collectionID}.
func (h *CollectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.collections.Update(ctx, chi.URLParam(r, "collectionID"), req.input())
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to update collection")
		return
	}
	writeJSON(w, http.StatusOK, collectionResponse(record))
}

// Delete handles DELETE /api/collections/{collectionID}.
func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := h.collections.Delete(ctx, chi.URLParam(r, "collectionID")); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete collection")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
