package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"docbase/internal/contextutil"
	"docbase/internal/pipeline"
	"docbase/internal/scheduler"
	"docbase/internal/storage"
	"docbase/internal/vectorstore"
)

// FileSaver persists uploaded content and removes it again.
type FileSaver interface {
	Save(filename string, content io.Reader) (string, int64, error)
	Remove(path string) error
}

// FileService manages a collection's files and feeds them into the
// ingestion pipeline.
type FileService struct {
	collections storage.CollectionStore
	files       storage.FileStore
	docs        vectorstore.DocumentStore
	uploads     FileSaver
	queue       pipeline.Enqueuer
}

// NewFileService creates a FileService.
func NewFileService(collections storage.CollectionStore, files storage.FileStore, docs vectorstore.DocumentStore, uploads FileSaver, queue pipeline.Enqueuer) *FileService {
	return &FileService{
		collections: collections,
		files:       files,
		docs:        docs,
		uploads:     uploads,
		queue:       queue,
	}
}

// Upload stores the content, records the file as uploaded, and queues its
// extraction.
func (s *FileService) Upload(ctx context.Context, collectionID, filename, contentType string, content io.Reader) (*storage.FileRecord, error) {
	if filename == "" {
		return nil, &ValidationError{Field: "filename", Message: "must not be empty"}
	}

	if _, err := s.collections.GetByID(ctx, collectionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: collection %s", ErrNotFound, collectionID)
		}
		return nil, err
	}

	path, size, err := s.uploads.Save(filename, content)
	if err != nil {
		return nil, WrapError(err, "failed to store upload")
	}

	record := &storage.FileRecord{
		ID:           uuid.New().String(),
		Filename:     filename,
		Size:         size,
		ContentType:  contentType,
		Path:         path,
		CollectionID: collectionID,
		Status:       storage.FileStatusUploaded,
	}
	if err := s.files.Insert(ctx, record); err != nil {
		if rerr := s.uploads.Remove(path); rerr != nil {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to remove orphaned upload", "path", path, "error", rerr)
		}
		return nil, WrapError(err, "failed to insert file record")
	}

	if err := s.queue.Enqueue(pipeline.JobExtractFile, scheduler.Args{"file_id": record.ID}); err != nil {
		// Park the record where the retry endpoint can re-enter
		// extraction; status uploaded would strand it with no job.
		if serr := s.files.UpdateStatus(ctx, record.ID, storage.FileStatusChunkFailed); serr != nil {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to park unqueued file",
				"file_id", record.ID, "error", serr)
		}
		return nil, WrapError(err, "failed to queue extraction")
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "file uploaded",
		"file_id", record.ID, "collection_id", collectionID, "filename", filename, "size", size)
	return record, nil
}

// Get returns one file.
func (s *FileService) Get(ctx context.Context, id string) (*storage.FileRecord, error) {
	record, err := s.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: file %s", ErrNotFound, id)
		}
		return nil, err
	}
	return record, nil
}

// List returns a collection's files matching the filter.
func (s *FileService) List(ctx context.Context, collectionID string, filter storage.FileFilter, page storage.Page) ([]storage.FileRecord, int, error) {
	if _, err := s.collections.GetByID(ctx, collectionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, 0, fmt.Errorf("%w: collection %s", ErrNotFound, collectionID)
		}
		return nil, 0, err
	}

	records, total, err := s.files.ListByCollection(ctx, collectionID, filter, page)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidSort) {
			return nil, 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, 0, err
	}
	return records, total, nil
}

// Delete removes the file record, its documents, and the stored upload.
func (s *FileService) Delete(ctx context.Context, id string) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	table := vectorstore.TableNameFor(record.CollectionID)
	if err := s.docs.DeleteByFile(ctx, table, id); err != nil && !errors.Is(err, vectorstore.ErrTableNotFound) {
		return WrapError(err, "failed to delete documents")
	}
	if err := s.files.Delete(ctx, id); err != nil {
		return WrapError(err, "failed to delete file record")
	}
	if err := s.uploads.Remove(record.Path); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to remove uploaded file", "path", record.Path, "error", err)
	}
	return nil
}

// DeleteAll removes every file of a collection and reports the per-file
// outcome. One failing file does not stop the rest.
func (s *FileService) DeleteAll(ctx context.Context, collectionID string) ([]BatchItemResult, error) {
	records, _, err := s.files.ListByCollection(ctx, collectionID, storage.FileFilter{}, storage.Page{Limit: 10000})
	if err != nil {
		return nil, WrapError(err, "failed to list files")
	}

	results := make([]BatchItemResult, 0, len(records))
	for _, record := range records {
		item := BatchItemResult{ID: record.ID, OK: true}
		if err := s.Delete(ctx, record.ID); err != nil {
			item.OK = false
			item.Error = err.Error()
		}
		results = append(results, item)
	}
	return results, nil
}

// Retry re-enters a failed file into the pipeline. Chunking failures
// restart from extraction; embedding failures re-dispatch only the
// documents still missing vectors.
func (s *FileService) Retry(ctx context.Context, id string) (*storage.FileRecord, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.Status.Retryable() {
		return nil, &StatusNotRetryableError{
			FileID:    id,
			Status:    record.Status,
			Retryable: storage.RetryableStatuses,
		}
	}

	switch record.Status {
	case storage.FileStatusChunkFailed:
		if err := s.files.UpdateStatus(ctx, id, storage.FileStatusUploaded); err != nil {
			return nil, WrapError(err, "failed to reset file status")
		}
		record.Status = storage.FileStatusUploaded
		if err := s.queue.Enqueue(pipeline.JobExtractFile, scheduler.Args{"file_id": id}); err != nil {
			return nil, WrapError(err, "failed to queue extraction")
		}
	default: // failed, embedding_partial_failed
		if err := s.queue.Enqueue(pipeline.JobEmbedDocuments, scheduler.Args{"file_id": id}); err != nil {
			return nil, WrapError(err, "failed to queue embedding dispatch")
		}
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "file retry queued", "file_id", id, "from_status", record.Status)
	return record, nil
}
