package pipeline

import (
	"context"

	"docbase/internal/scheduler"
)

// RegisterJobs binds the ingestion handlers to their job names on the
// pool. The orphan sweep job is registered separately by its owner.
func RegisterJobs(pool *scheduler.Pool, ingestor *Ingestor, dispatcher *Dispatcher) {
	pool.Register(JobExtractFile, func(ctx context.Context, args scheduler.Args) error {
		fileID, err := args.Get("file_id")
		if err != nil {
			return scheduler.Permanent(err)
		}
		return ingestor.ExtractFile(ctx, fileID)
	})

	pool.Register(JobEmbedDocuments, func(ctx context.Context, args scheduler.Args) error {
		fileID, err := args.Get("file_id")
		if err != nil {
			return scheduler.Permanent(err)
		}
		return dispatcher.EmbedPendingDocuments(ctx, fileID)
	})

	pool.Register(JobEmbedDocument, func(ctx context.Context, args scheduler.Args) error {
		fileID, err := args.Get("file_id")
		if err != nil {
			return scheduler.Permanent(err)
		}
		documentID, err := args.Get("document_id")
		if err != nil {
			return scheduler.Permanent(err)
		}
		return dispatcher.EmbedDocument(ctx, fileID, documentID)
	})
}
