// Package search answers similarity queries against a collection's
// vector table.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docbase/internal/contextutil"
	"docbase/internal/embedding"
	"docbase/internal/storage"
	"docbase/internal/vectorstore"
)

// ErrInvalidQuery is returned for queries the engine refuses to run.
var ErrInvalidQuery = errors.New("invalid search query")

// Result is one ranked match.
type Result struct {
	DocumentID string         `json:"document_id"`
	Text       string         `json:"text"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Similarity float64        `json:"similarity"`
}

// Engine embeds a query with the collection's own model and ranks the
// collection's documents by cosine similarity.
type Engine struct {
	collections storage.CollectionStore
	docs        vectorstore.DocumentStore
	factory     embedding.Factory
}

// NewEngine creates an Engine.
func NewEngine(collections storage.CollectionStore, docs vectorstore.DocumentStore, factory embedding.Factory) *Engine {
	return &Engine{collections: collections, docs: docs, factory: factory}
}

// Search returns up to topK documents of the collection ranked by
// similarity to the query text. threshold, when given, drops results
// scoring below it. topK must be positive and the query non-empty.
func (e *Engine) Search(ctx context.Context, collectionID, query string, topK int, threshold *float64) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidQuery)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidQuery, topK)
	}
	if threshold != nil && (*threshold < -1 || *threshold > 1) {
		return nil, fmt.Errorf("%w: threshold %v outside [-1, 1]", ErrInvalidQuery, *threshold)
	}

	collection, err := e.collections.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	embedder, err := e.factory.New(embedding.ModelConfig{
		Provider:   collection.EmbeddingProvider,
		Model:      collection.EmbeddingModel,
		Endpoint:   collection.EmbeddingEndpoint,
		Dimensions: collection.EmbeddingDimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("embedder for collection %s unavailable: %w", collectionID, err)
	}

	vec, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	table := vectorstore.TableNameFor(collectionID)
	rows, err := e.docs.Search(ctx, table, vec, topK, threshold)
	if err != nil {
		return nil, fmt.Errorf("search in collection %s failed: %w", collectionID, err)
	}

	results := make([]Result, len(rows))
	for i, row := range rows {
		results[i] = Result{
			DocumentID: row.ID,
			Text:       row.Text,
			Metadata:   row.Metadata,
			Similarity: row.Similarity,
		}
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "similarity search served",
		"collection_id", collectionID, "top_k", topK, "results", len(results))
	return results, nil
}
