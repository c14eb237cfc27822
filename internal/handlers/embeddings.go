package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"docbase/internal/embedding"
)

// EmbeddingHandler serves the provider catalog and ad-hoc embedding
// requests.
type EmbeddingHandler struct {
	factory embedding.Factory
}

// NewEmbeddingHandler creates a new EmbeddingHandler.
func NewEmbeddingHandler(factory embedding.Factory) *EmbeddingHandler {
	return &EmbeddingHandler{factory: factory}
}

// Providers handles GET /api/embeddings/providers.
func (h *EmbeddingHandler) Providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"providers": h.factory.Providers()})
}

// EmbedRequest represents the HTTP request payload for ad-hoc embedding.
type EmbedRequest struct {
	Provider   string   `json:"provider"`
	Model      string   `json:"model"`
	Endpoint   string   `json:"endpoint,omitempty"`
	Dimensions int      `json:"dimensions,omitempty"`
	Input      []string `json:"input"`
}

// EmbedResponse represents the HTTP response payload for ad-hoc embedding.
type EmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Dimensions int         `json:"dimensions"`
}

// Embed handles POST /api/embeddings.
func (h *EmbeddingHandler) Embed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Input) == 0 {
		writeError(w, http.StatusBadRequest, "Input must not be empty")
		return
	}

	embedder, err := h.factory.New(embedding.ModelConfig{
		Provider:   req.Provider,
		Model:      req.Model,
		Endpoint:   req.Endpoint,
		Dimensions: req.Dimensions,
	})
	if err != nil {
		var cfgErr *embedding.ConfigError
		switch {
		case errors.As(err, &cfgErr):
			writeError(w, http.StatusUnprocessableEntity, cfgErr.Error())
		case errors.Is(err, embedding.ErrUnknownProvider), errors.Is(err, embedding.ErrUnknownModel):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			handleServiceError(w, ctx, err, "Failed to build embedder")
		}
		return
	}

	vecs, err := embedder.EmbedTexts(ctx, req.Input)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Embedding provider request failed")
		return
	}
	writeJSON(w, http.StatusOK, EmbedResponse{Embeddings: vecs, Dimensions: embedder.Dimensions()})
}
