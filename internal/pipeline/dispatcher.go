package pipeline

import (
	"context"
	"errors"
	"fmt"

	"docbase/internal/contextutil"
	"docbase/internal/embedding"
	"docbase/internal/scheduler"
	"docbase/internal/storage"
	"docbase/internal/vectorstore"
)

// Dispatcher fans a chunked file out into one embedding job per document
// and executes those jobs.
type Dispatcher struct {
	files       storage.FileStore
	collections storage.CollectionStore
	docs        vectorstore.DocumentStore
	factory     embedding.Factory
	queue       Enqueuer
	reconciler  *Reconciler
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(files storage.FileStore, collections storage.CollectionStore, docs vectorstore.DocumentStore, factory embedding.Factory, queue Enqueuer, reconciler *Reconciler) *Dispatcher {
	return &Dispatcher{
		files:       files,
		collections: collections,
		docs:        docs,
		factory:     factory,
		queue:       queue,
		reconciler:  reconciler,
	}
}

// EmbedPendingDocuments moves the file to embedding and queues one
// embed_document job per un-embedded document. Re-running it after a
// partial failure re-dispatches only the documents still missing vectors.
func (d *Dispatcher) EmbedPendingDocuments(ctx context.Context, fileID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	file, err := d.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.InfoContext(ctx, "file vanished before embedding dispatch", "file_id", fileID)
			return nil
		}
		return fmt.Errorf("failed to load file %s: %w", fileID, err)
	}

	table := vectorstore.TableNameFor(file.CollectionID)
	notEmbedded := false
	pending, err := d.docs.ListByFile(ctx, table, fileID, &notEmbedded)
	if err != nil {
		if errors.Is(err, vectorstore.ErrTableNotFound) {
			// The collection and its table were dropped mid-flight.
			logger.InfoContext(ctx, "vector table vanished before embedding dispatch", "file_id", fileID, "table", table)
			return nil
		}
		return fmt.Errorf("failed to list pending documents for file %s: %w", fileID, err)
	}

	if len(pending) == 0 {
		// Nothing left to embed; settle the file status from what is stored.
		return d.reconciler.Reconcile(ctx, fileID)
	}

	if err := d.files.UpdateStatus(ctx, fileID, storage.FileStatusEmbedding); err != nil {
		return fmt.Errorf("failed to mark file %s embedding: %w", fileID, err)
	}

	for _, doc := range pending {
		args := scheduler.Args{"file_id": fileID, "document_id": doc.ID}
		if err := d.queue.Enqueue(JobEmbedDocument, args); err != nil {
			return fmt.Errorf("failed to queue embedding for document %s: %w", doc.ID, err)
		}
	}

	logger.InfoContext(ctx, "embedding jobs dispatched", "file_id", fileID, "documents", len(pending))
	return nil
}

// EmbedDocument embeds one document and records the outcome on the row.
// The file status is reconciled afterwards regardless of outcome, so the
// last finishing document settles the file.
func (d *Dispatcher) EmbedDocument(ctx context.Context, fileID, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	file, err := d.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.InfoContext(ctx, "file vanished before document embedding", "file_id", fileID)
			return nil
		}
		return fmt.Errorf("failed to load file %s: %w", fileID, err)
	}

	table := vectorstore.TableNameFor(file.CollectionID)

	doc, err := d.docs.GetByID(ctx, table, documentID)
	if err != nil {
		if errors.Is(err, vectorstore.ErrTableNotFound) || errors.Is(err, vectorstore.ErrDocumentNotFound) {
			logger.InfoContext(ctx, "document vanished before embedding", "file_id", fileID, "document_id", documentID)
			return nil
		}
		return fmt.Errorf("failed to load document %s: %w", documentID, err)
	}
	if doc.Status == vectorstore.EmbeddingSuccess {
		// A redelivered job; the vector is already stored.
		return d.reconciler.Reconcile(ctx, fileID)
	}

	defer func() {
		if rerr := d.reconciler.Reconcile(ctx, fileID); rerr != nil {
			logger.ErrorContext(ctx, "status reconciliation failed", "file_id", fileID, "error", rerr)
		}
	}()

	collection, err := d.collections.GetByID(ctx, file.CollectionID)
	if err != nil {
		d.markFailed(ctx, table, documentID)
		return fmt.Errorf("failed to load collection %s: %w", file.CollectionID, err)
	}

	embedder, err := d.factory.New(modelConfigFor(collection))
	if err != nil {
		d.markFailed(ctx, table, documentID)
		// Credentials or catalog problems need operator action, not retries.
		return scheduler.Permanent(fmt.Errorf("embedder for collection %s unavailable: %w", collection.ID, err))
	}

	vec, err := embedder.EmbedQuery(ctx, doc.Text)
	if err != nil {
		d.markFailed(ctx, table, documentID)
		return fmt.Errorf("embedding document %s failed: %w", documentID, err)
	}

	if err := d.docs.SetEmbedding(ctx, table, documentID, vec); err != nil {
		if errors.Is(err, vectorstore.ErrTableNotFound) || errors.Is(err, vectorstore.ErrDocumentNotFound) {
			logger.InfoContext(ctx, "document vanished while embedding", "file_id", fileID, "document_id", documentID)
			return nil
		}
		return fmt.Errorf("failed to store embedding for document %s: %w", documentID, err)
	}
	return nil
}

func (d *Dispatcher) markFailed(ctx context.Context, table, documentID string) {
	if err := d.docs.MarkFailed(ctx, table, documentID); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to mark document failed", "document_id", documentID, "error", err)
	}
}
