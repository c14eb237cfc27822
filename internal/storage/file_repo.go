package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_file_store.go -package=mocks docbase/internal/storage FileStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// FileFilter narrows file list queries within a collection.
type FileFilter struct {
	Filename    string // substring match
	ContentType string // substring match
}

// FileStore defines the interface for file metadata persistence.
type FileStore interface {
	// Insert stores a new file record. The record's ID must be set.
	Insert(ctx context.Context, f *FileRecord) error
	// GetByID returns a file by id. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*FileRecord, error)
	// ListByCollection returns a collection's files matching the filter plus
	// the total count before pagination.
	ListByCollection(ctx context.Context, collectionID string, filter FileFilter, page Page) ([]FileRecord, int, error)
	// PathsByCollection returns the storage paths of every file in a collection.
	PathsByCollection(ctx context.Context, collectionID string) ([]string, error)
	// UpdateStatus moves a file to the given pipeline status.
	UpdateStatus(ctx context.Context, id string, status FileStatus) error
	// Delete removes a file row. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
	// DeleteByCollection removes all file rows owned by a collection.
	DeleteByCollection(ctx context.Context, collectionID string) error
}

// FileRepo implements FileStore on the metadata database.
type FileRepo struct {
	db *sql.DB
}

// NewFileRepo creates a new FileRepo.
func NewFileRepo(db *sql.DB) *FileRepo {
	return &FileRepo{db: db}
}

const fileColumns = "id, filename, size, content_type, path, collection_id, status, created_at"

// Insert stores a new file record. The record's ID must be set.
func (r *FileRepo) Insert(ctx context.Context, f *FileRecord) error {
	if f.Status == "" {
		f.Status = FileStatusUploaded
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO files (id, filename, size, content_type, path, collection_id, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		f.ID, f.Filename, f.Size, f.ContentType, f.Path, f.CollectionID, string(f.Status), now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert file %s: %w", f.ID, err)
	}
	f.CreatedAt = now
	return nil
}

// GetByID returns a file by id. Returns ErrNotFound if absent.
func (r *FileRepo) GetByID(ctx context.Context, id string) (*FileRecord, error) {
	var f FileRecord
	var status string
	err := r.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE id = ?", id,
	).Scan(&f.ID, &f.Filename, &f.Size, &f.ContentType, &f.Path, &f.CollectionID, &status, &f.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file %s: %w", id, err)
	}
	f.Status = FileStatus(status)
	return &f, nil
}

// ListByCollection returns a collection's files matching the filter plus the
// total count before pagination.
func (r *FileRepo) ListByCollection(ctx context.Context, collectionID string, filter FileFilter, page Page) ([]FileRecord, int, error) {
	where := " WHERE collection_id = ?"
	args := []any{collectionID}

	if filter.Filename != "" {
		where += " AND filename LIKE ?"
		args = append(args, "%"+filter.Filename+"%")
	}
	if filter.ContentType != "" {
		where += " AND content_type LIKE ?"
		args = append(args, "%"+filter.ContentType+"%")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count files: %w", err)
	}

	order, err := page.orderClause("created_at", "filename", "content_type")
	if err != nil {
		return nil, 0, err
	}
	limit, offset := page.limitOffset()
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+fileColumns+" FROM files"+where+order+" LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query files: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		var status string
		if err := rows.Scan(&f.ID, &f.Filename, &f.Size, &f.ContentType, &f.Path, &f.CollectionID, &status, &f.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan file: %w", err)
		}
		f.Status = FileStatus(status)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}

	return files, total, nil
}

// PathsByCollection returns the storage paths of every file in a collection.
func (r *FileRepo) PathsByCollection(ctx context.Context, collectionID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT path FROM files WHERE collection_id = ?", collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query file paths: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan file path: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return paths, nil
}

// UpdateStatus moves a file to the given pipeline status.
func (r *FileRepo) UpdateStatus(ctx context.Context, id string, status FileStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE files SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update file %s status: %w", id, err)
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

// Delete removes a file row. Returns ErrNotFound if absent.
func (r *FileRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM files WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", id, err)
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

// DeleteByCollection removes all file rows owned by a collection.
func (r *FileRepo) DeleteByCollection(ctx context.Context, collectionID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM files WHERE collection_id = ?", collectionID)
	if err != nil {
		return fmt.Errorf("failed to delete files for collection %s: %w", collectionID, err)
	}
	return nil
}
