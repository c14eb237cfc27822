package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Provider names accepted in a collection's embedding configuration.
const (
	ProviderGoogle      = "google"
	ProviderOpenAI      = "openai"
	ProviderAzureOpenAI = "azure_openai"
)

// ErrUnknownProvider is returned for a provider name outside the catalog.
var ErrUnknownProvider = errors.New("unknown embedding provider")

// ErrUnknownModel is returned when a model's output dimensionality cannot
// be determined from the catalog and none was configured.
var ErrUnknownModel = errors.New("unknown embedding model")

// ConfigError reports an embedder that cannot be constructed from the
// available credentials or model configuration.
type ConfigError struct {
	Provider string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("embedding provider %s: %s", e.Provider, e.Reason)
}

// ModelConfig is the embedding configuration a collection is bound to.
type ModelConfig struct {
	Provider   string
	Model      string
	Endpoint   string // optional base URL override
	Dimensions int    // optional; resolved from the catalog when zero
}

// Embedder computes embedding vectors for text. Implementations are safe
// for concurrent use.
type Embedder interface {
	// EmbedTexts embeds a batch, one vector per input, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single text.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Dimensions returns the vector size every returned embedding has.
	Dimensions() int
}

// embedOne adapts a batch call to the single-text form shared by all
// provider clients.
func embedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
	}
	return vecs[0], nil
}

// validateVectors checks count and per-vector size of a provider response.
func validateVectors(vecs [][]float32, wantCount, wantSize int) error {
	if len(vecs) != wantCount {
		return fmt.Errorf("expected %d embeddings, got %d", wantCount, len(vecs))
	}
	for i, vec := range vecs {
		if len(vec) != wantSize {
			return fmt.Errorf("embedding %d has size %d, expected %d", i, len(vec), wantSize)
		}
	}
	return nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
