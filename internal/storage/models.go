package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidSort is returned when a list query asks for a sort field or order
// outside the allow-list.
var ErrInvalidSort = errors.New("invalid sort")

// FileStatus tracks a file through the ingestion pipeline.
type FileStatus string

const (
	// FileStatusUploaded means the file is saved and waiting for chunking.
	FileStatusUploaded FileStatus = "uploaded"
	// FileStatusChunked means documents have been staged for embedding.
	FileStatusChunked FileStatus = "chunked"
	// FileStatusChunkFailed means extraction or chunking failed.
	FileStatusChunkFailed FileStatus = "chunk_failed"
	// FileStatusEmbedding means embedding jobs are in flight.
	FileStatusEmbedding FileStatus = "embedding"
	// FileStatusSuccess means every document embedded successfully.
	FileStatusSuccess FileStatus = "success"
	// FileStatusFailed means embedding failed outright.
	FileStatusFailed FileStatus = "failed"
	// FileStatusPartialFailed means some documents failed to embed.
	FileStatusPartialFailed FileStatus = "embedding_partial_failed"
)

// RetryableStatuses lists the file statuses from which a retry may re-enter
// the pipeline. Uploaded and success are not retryable; everything in a
// failure state is.
var RetryableStatuses = []FileStatus{
	FileStatusChunkFailed,
	FileStatusFailed,
	FileStatusPartialFailed,
}

// Retryable reports whether a retry request is allowed for this status.
func (s FileStatus) Retryable() bool {
	for _, rs := range RetryableStatuses {
		if s == rs {
			return true
		}
	}
	return false
}

// CollectionRecord is a named grouping of files bound to one embedding-model
// configuration. The configuration decides the dimensionality of the
// collection's vector table.
type CollectionRecord struct {
	ID          string
	Name        string
	Description string

	EmbeddingProvider   string
	EmbeddingModel      string
	EmbeddingEndpoint   string // optional, provider dependent
	EmbeddingDimensions int    // 0 means derived from the model catalog

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FileRecord is an uploaded file owned by a collection.
type FileRecord struct {
	ID           string
	Filename     string
	Size         int64
	ContentType  string
	Path         string
	CollectionID string
	Status       FileStatus
	CreatedAt    time.Time
}
