package pipeline

import (
	"context"
	"errors"
	"fmt"

	"docbase/internal/chunk"
	"docbase/internal/contextutil"
	"docbase/internal/extract"
	"docbase/internal/scheduler"
	"docbase/internal/storage"
	"docbase/internal/vectorstore"
)

// Ingestor turns an uploaded file into staged documents in its
// collection's vector table.
type Ingestor struct {
	files     storage.FileStore
	docs      vectorstore.DocumentStore
	converter extract.Converter
	splitter  *chunk.Splitter
	queue     Enqueuer
}

// NewIngestor creates an Ingestor.
func NewIngestor(files storage.FileStore, docs vectorstore.DocumentStore, converter extract.Converter, splitter *chunk.Splitter, queue Enqueuer) *Ingestor {
	return &Ingestor{
		files:     files,
		docs:      docs,
		converter: converter,
		splitter:  splitter,
		queue:     queue,
	}
}

// ExtractFile converts the file to text, chunks it, and stages the chunks
// as pending documents. The job runs at-least-once: stale documents from a
// previous attempt are cleared first. On success the file moves to chunked
// and an embedding dispatch job is queued; on failure it moves to
// chunk_failed.
func (i *Ingestor) ExtractFile(ctx context.Context, fileID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	file, err := i.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted between upload and job pickup.
			logger.InfoContext(ctx, "file vanished before extraction", "file_id", fileID)
			return nil
		}
		return fmt.Errorf("failed to load file %s: %w", fileID, err)
	}

	text, err := i.converter.Convert(ctx, file.Path)
	if err != nil {
		i.markChunkFailed(ctx, fileID)
		// Unreadable content does not get better on retry.
		return scheduler.Permanent(fmt.Errorf("extraction of %s failed: %w", file.Filename, err))
	}

	chunks := i.splitter.Split(text)
	table := vectorstore.TableNameFor(file.CollectionID)

	// Clear any documents staged by a previous attempt of this job.
	if err := i.docs.DeleteByFile(ctx, table, fileID); err != nil {
		i.markChunkFailed(ctx, fileID)
		return fmt.Errorf("failed to clear stale documents for file %s: %w", fileID, err)
	}

	docs := make([]*vectorstore.Document, len(chunks))
	for idx, c := range chunks {
		docs[idx] = &vectorstore.Document{
			Text:   c.Text,
			FileID: fileID,
			Metadata: map[string]any{
				"filename":     file.Filename,
				"content_type": file.ContentType,
				"chunk_index":  c.Index,
				"start":        c.Start,
				"end":          c.End,
			},
		}
	}
	if err := i.docs.InsertPending(ctx, table, docs); err != nil {
		i.markChunkFailed(ctx, fileID)
		return fmt.Errorf("failed to stage documents for file %s: %w", fileID, err)
	}

	if err := i.files.UpdateStatus(ctx, fileID, storage.FileStatusChunked); err != nil {
		return fmt.Errorf("failed to mark file %s chunked: %w", fileID, err)
	}

	logger.InfoContext(ctx, "file chunked", "file_id", fileID, "chunks", len(chunks))

	if err := i.queue.Enqueue(JobEmbedDocuments, scheduler.Args{"file_id": fileID}); err != nil {
		return fmt.Errorf("failed to queue embedding dispatch for file %s: %w", fileID, err)
	}
	return nil
}

func (i *Ingestor) markChunkFailed(ctx context.Context, fileID string) {
	if err := i.files.UpdateStatus(ctx, fileID, storage.FileStatusChunkFailed); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to mark file chunk_failed", "file_id", fileID, "error", err)
	}
}
