package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docbase/internal/search"
)

// SearchHandler handles HTTP requests for similarity search.
type SearchHandler struct {
	engine *search.Engine
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine *search.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// SearchRequest represents the HTTP request payload for search.
type SearchRequest struct {
	Query     string   `json:"query"`
	TopK      int      `json:"top_k"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// SearchResponse represents the HTTP response payload for search.
type SearchResponse struct {
	Results []search.Result `json:"results"`
}

// Search handles POST /api/collections/{collectionID}/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TopK == 0 {
		req.TopK = 10
	}

	results, err := h.engine.Search(ctx, chi.URLParam(r, "collectionID"), req.Query, req.TopK, req.Threshold)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to run search")
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
