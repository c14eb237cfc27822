package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_collection_store.go -package=mocks docbase/internal/storage CollectionStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CollectionFilter narrows collection list queries.
type CollectionFilter struct {
	Name           string // substring match
	EmbeddingModel string // exact match
}

// CollectionStore defines the interface for collection metadata persistence.
type CollectionStore interface {
	// Insert stores a new collection. The record's ID must be set.
	Insert(ctx context.Context, c *CollectionRecord) error
	// GetByID returns a collection by id. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*CollectionRecord, error)
	// List returns collections matching the filter plus the total count
	// before pagination.
	List(ctx context.Context, filter CollectionFilter, page Page) ([]CollectionRecord, int, error)
	// Update persists name, description and embedding configuration changes.
	Update(ctx context.Context, c *CollectionRecord) error
	// Delete removes a collection row. File rows cascade.
	Delete(ctx context.Context, id string) error
}

// CollectionRepo implements CollectionStore on the metadata database.
type CollectionRepo struct {
	db *sql.DB
}

// NewCollectionRepo creates a new CollectionRepo.
func NewCollectionRepo(db *sql.DB) *CollectionRepo {
	return &CollectionRepo{db: db}
}

const collectionColumns = "id, name, description, embedding_provider, embedding_model, embedding_endpoint, embedding_dimensions, created_at, updated_at"

// Insert stores a new collection. The record's ID must be set.
func (r *CollectionRepo) Insert(ctx context.Context, c *CollectionRecord) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO collections (id, name, description, embedding_provider, embedding_model, embedding_endpoint, embedding_dimensions, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Description, c.EmbeddingProvider, c.EmbeddingModel, c.EmbeddingEndpoint, c.EmbeddingDimensions, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert collection %s: %w", c.ID, err)
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// GetByID returns a collection by id. Returns ErrNotFound if absent.
func (r *CollectionRepo) GetByID(ctx context.Context, id string) (*CollectionRecord, error) {
	var c CollectionRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT "+collectionColumns+" FROM collections WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.EmbeddingProvider, &c.EmbeddingModel, &c.EmbeddingEndpoint, &c.EmbeddingDimensions, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", id, err)
	}
	return &c, nil
}

// List returns collections matching the filter plus the total count before pagination.
func (r *CollectionRepo) List(ctx context.Context, filter CollectionFilter, page Page) ([]CollectionRecord, int, error) {
	where := " WHERE 1=1"
	var args []any

	if filter.Name != "" {
		where += " AND name LIKE ?"
		args = append(args, "%"+filter.Name+"%")
	}
	if filter.EmbeddingModel != "" {
		where += " AND embedding_model = ?"
		args = append(args, filter.EmbeddingModel)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM collections"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count collections: %w", err)
	}

	order, err := page.orderClause("created_at", "name")
	if err != nil {
		return nil, 0, err
	}
	limit, offset := page.limitOffset()
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+collectionColumns+" FROM collections"+where+order+" LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query collections: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var collections []CollectionRecord
	for rows.Next() {
		var c CollectionRecord
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.EmbeddingProvider, &c.EmbeddingModel, &c.EmbeddingEndpoint, &c.EmbeddingDimensions, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}

	return collections, total, nil
}

// Update persists name, description and embedding configuration changes.
func (r *CollectionRepo) Update(ctx context.Context, c *CollectionRecord) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"UPDATE collections SET name = ?, description = ?, embedding_provider = ?, embedding_model = ?, embedding_endpoint = ?, embedding_dimensions = ?, updated_at = ? WHERE id = ?",
		c.Name, c.Description, c.EmbeddingProvider, c.EmbeddingModel, c.EmbeddingEndpoint, c.EmbeddingDimensions, now, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update collection %s: %w", c.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	c.UpdatedAt = now
	return nil
}

// Delete removes a collection row. File rows cascade.
func (r *CollectionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
