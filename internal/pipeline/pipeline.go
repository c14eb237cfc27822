// Package pipeline runs the asynchronous ingestion flow: uploaded files
// are extracted and chunked, chunks are embedded one document at a time,
// and the owning file's status is reconciled from the per-document
// outcomes.
package pipeline

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_enqueuer.go -package=mocks docbase/internal/pipeline Enqueuer

import (
	"docbase/internal/embedding"
	"docbase/internal/scheduler"
	"docbase/internal/storage"
)

// Job names dispatched through the scheduler.
const (
	JobExtractFile    = "extract_file"
	JobEmbedDocuments = "embed_documents"
	JobEmbedDocument  = "embed_document"
	JobSweepOrphans   = "sweep_orphan_tables"
)

// Enqueuer submits jobs for asynchronous execution.
type Enqueuer interface {
	Enqueue(name string, args scheduler.Args) error
}

// modelConfigFor maps a collection's stored embedding configuration to the
// provider factory's input.
func modelConfigFor(c *storage.CollectionRecord) embedding.ModelConfig {
	return embedding.ModelConfig{
		Provider:   c.EmbeddingProvider,
		Model:      c.EmbeddingModel,
		Endpoint:   c.EmbeddingEndpoint,
		Dimensions: c.EmbeddingDimensions,
	}
}
