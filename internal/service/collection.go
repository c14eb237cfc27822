package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"docbase/internal/contextutil"
	"docbase/internal/embedding"
	"docbase/internal/storage"
	"docbase/internal/vectorstore"
)

// TableManager is the slice of the vector-table registry the services
// need: creating, dropping, and listing per-collection tables.
type TableManager interface {
	CreateIfAbsent(ctx context.Context, name string, dimension int) (vectorstore.Handle, error)
	DropIfExists(ctx context.Context, name string) error
	ListTables(ctx context.Context) ([]string, error)
}

// Uploader persists and removes uploaded file content.
type Uploader interface {
	Remove(path string) error
}

// CollectionInput carries the writable collection fields.
type CollectionInput struct {
	Name        string
	Description string

	EmbeddingProvider   string
	EmbeddingModel      string
	EmbeddingEndpoint   string
	EmbeddingDimensions int
}

// CollectionService manages collections together with their vector
// tables. Creating a collection creates its table; deleting one drops the
// table, the file rows, and the stored uploads.
type CollectionService struct {
	collections storage.CollectionStore
	files       storage.FileStore
	docs        vectorstore.DocumentStore
	tables      TableManager
	uploads     Uploader
}

// NewCollectionService creates a CollectionService.
func NewCollectionService(collections storage.CollectionStore, files storage.FileStore, docs vectorstore.DocumentStore, tables TableManager, uploads Uploader) *CollectionService {
	return &CollectionService{
		collections: collections,
		files:       files,
		docs:        docs,
		tables:      tables,
		uploads:     uploads,
	}
}

// Create validates the embedding configuration, inserts the collection,
// and creates its vector table. If the table cannot be created the
// collection row is rolled back so the two stores stay consistent.
func (s *CollectionService) Create(ctx context.Context, in CollectionInput) (*storage.CollectionRecord, error) {
	dims, err := s.validate(&in)
	if err != nil {
		return nil, err
	}

	record := &storage.CollectionRecord{
		ID:                  uuid.New().String(),
		Name:                in.Name,
		Description:         in.Description,
		EmbeddingProvider:   in.EmbeddingProvider,
		EmbeddingModel:      in.EmbeddingModel,
		EmbeddingEndpoint:   in.EmbeddingEndpoint,
		EmbeddingDimensions: dims,
	}

	if err := s.collections.Insert(ctx, record); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: collection name %q already exists", ErrConflict, in.Name)
		}
		return nil, WrapError(err, "failed to insert collection")
	}

	table := vectorstore.TableNameFor(record.ID)
	if _, err := s.tables.CreateIfAbsent(ctx, table, dims); err != nil {
		// Roll the row back so a failed table create leaves no half-made
		// collection behind.
		if derr := s.collections.Delete(ctx, record.ID); derr != nil {
			contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to roll back collection after table create failure",
				"collection_id", record.ID, "error", derr)
		}
		return nil, WrapError(err, "failed to create vector table")
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "collection created",
		"collection_id", record.ID, "name", record.Name, "dimensions", dims)
	return record, nil
}

// Get returns one collection.
func (s *CollectionService) Get(ctx context.Context, id string) (*storage.CollectionRecord, error) {
	record, err := s.collections.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: collection %s", ErrNotFound, id)
		}
		return nil, err
	}
	return record, nil
}

// List returns collections matching the filter.
func (s *CollectionService) List(ctx context.Context, filter storage.CollectionFilter, page storage.Page) ([]storage.CollectionRecord, int, error) {
	records, total, err := s.collections.List(ctx, filter, page)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidSort) {
			return nil, 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, 0, err
	}
	return records, total, nil
}

// Update changes a collection's fields. The embedding configuration is
// immutable once the collection's table holds documents; changing it on
// an empty collection rebuilds the table at the new dimensionality.
func (s *CollectionService) Update(ctx context.Context, id string, in CollectionInput) (*storage.CollectionRecord, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	dims, err := s.validate(&in)
	if err != nil {
		return nil, err
	}

	table := vectorstore.TableNameFor(id)
	configChanged := in.EmbeddingProvider != record.EmbeddingProvider ||
		in.EmbeddingModel != record.EmbeddingModel ||
		in.EmbeddingEndpoint != record.EmbeddingEndpoint ||
		dims != record.EmbeddingDimensions

	if configChanged {
		count, err := s.docs.Count(ctx, table)
		if err != nil && !errors.Is(err, vectorstore.ErrTableNotFound) {
			return nil, WrapError(err, "failed to count documents")
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: embedding configuration is immutable while the collection holds %d documents", ErrConfiguration, count)
		}
		if err := s.tables.DropIfExists(ctx, table); err != nil {
			return nil, WrapError(err, "failed to drop vector table")
		}
		if _, err := s.tables.CreateIfAbsent(ctx, table, dims); err != nil {
			return nil, WrapError(err, "failed to recreate vector table")
		}
	}

	record.Name = in.Name
	record.Description = in.Description
	record.EmbeddingProvider = in.EmbeddingProvider
	record.EmbeddingModel = in.EmbeddingModel
	record.EmbeddingEndpoint = in.EmbeddingEndpoint
	record.EmbeddingDimensions = dims

	if err := s.collections.Update(ctx, record); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: collection name %q already exists", ErrConflict, in.Name)
		}
		return nil, WrapError(err, "failed to update collection")
	}
	return record, nil
}

// Delete removes the collection, its vector table, its file rows, and the
// stored uploads. It returns the physical file paths that belonged to the
// collection. Upload removal is best effort; a leftover file on disk is
// harmless and the caller holds the paths to clean up after.
func (s *CollectionService) Delete(ctx context.Context, id string) ([]string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	paths, err := s.files.PathsByCollection(ctx, id)
	if err != nil {
		return nil, WrapError(err, "failed to list file paths")
	}

	table := vectorstore.TableNameFor(id)
	if err := s.tables.DropIfExists(ctx, table); err != nil {
		return nil, WrapError(err, "failed to drop vector table")
	}
	if err := s.files.DeleteByCollection(ctx, id); err != nil {
		return nil, WrapError(err, "failed to delete file records")
	}
	if err := s.collections.Delete(ctx, id); err != nil {
		return nil, WrapError(err, "failed to delete collection")
	}

	logger := contextutil.LoggerFromContext(ctx)
	for _, path := range paths {
		if err := s.uploads.Remove(path); err != nil {
			logger.WarnContext(ctx, "failed to remove uploaded file", "path", path, "error", err)
		}
	}

	logger.InfoContext(ctx, "collection deleted", "collection_id", id, "files", len(paths))
	return paths, nil
}

// validate normalizes the input and resolves the vector dimensionality.
func (s *CollectionService) validate(in *CollectionInput) (int, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return 0, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if len(in.Name) > 255 {
		return 0, &ValidationError{Field: "name", Message: "must be at most 255 characters"}
	}
	if in.EmbeddingProvider == "" {
		return 0, &ValidationError{Field: "embedding_provider", Message: "must not be empty"}
	}
	if in.EmbeddingModel == "" {
		return 0, &ValidationError{Field: "embedding_model", Message: "must not be empty"}
	}
	if in.EmbeddingDimensions < 0 {
		return 0, &ValidationError{Field: "embedding_dimensions", Message: "must not be negative"}
	}

	dims, err := embedding.OutputDimensions(embedding.ModelConfig{
		Provider:   in.EmbeddingProvider,
		Model:      in.EmbeddingModel,
		Endpoint:   in.EmbeddingEndpoint,
		Dimensions: in.EmbeddingDimensions,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return dims, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
