package pipeline

import (
	"context"
	"errors"
	"fmt"

	"docbase/internal/contextutil"
	"docbase/internal/storage"
	"docbase/internal/vectorstore"
)

// Reconciler derives a file's status from its documents' embedding
// outcomes. It only ever writes when the derived status differs from the
// stored one, so concurrent embedding jobs can all call it safely.
type Reconciler struct {
	files storage.FileStore
	docs  vectorstore.DocumentStore
}

// NewReconciler creates a Reconciler.
func NewReconciler(files storage.FileStore, docs vectorstore.DocumentStore) *Reconciler {
	return &Reconciler{files: files, docs: docs}
}

// Reconcile recomputes the file's status: every document success means
// success, any document failed means embedding_partial_failed, and
// anything still pending keeps the file at embedding. A file whose
// documents or table are gone is left untouched.
func (r *Reconciler) Reconcile(ctx context.Context, fileID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	file, err := r.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load file %s: %w", fileID, err)
	}

	table := vectorstore.TableNameFor(file.CollectionID)
	docs, err := r.docs.ListByFile(ctx, table, fileID, nil)
	if err != nil {
		if errors.Is(err, vectorstore.ErrTableNotFound) {
			logger.InfoContext(ctx, "vector table vanished during reconciliation", "file_id", fileID, "table", table)
			return nil
		}
		return fmt.Errorf("failed to list documents for file %s: %w", fileID, err)
	}
	if len(docs) == 0 {
		return nil
	}

	var pending, failed int
	for _, doc := range docs {
		switch doc.Status {
		case vectorstore.EmbeddingFailed:
			failed++
		case vectorstore.EmbeddingSuccess:
		default:
			pending++
		}
	}

	desired := storage.FileStatusSuccess
	switch {
	case failed > 0:
		desired = storage.FileStatusPartialFailed
	case pending > 0:
		desired = storage.FileStatusEmbedding
	}

	if file.Status == desired {
		return nil
	}
	if err := r.files.UpdateStatus(ctx, fileID, desired); err != nil {
		return fmt.Errorf("failed to update file %s status to %s: %w", fileID, desired, err)
	}
	logger.InfoContext(ctx, "file status reconciled", "file_id", fileID, "from", file.Status, "to", desired)
	return nil
}
