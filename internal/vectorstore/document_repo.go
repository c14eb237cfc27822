package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks docbase/internal/vectorstore DocumentStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// EmbeddingStatus is the per-document embedding state.
type EmbeddingStatus string

const (
	// EmbeddingPending means the document is staged and has no vector yet.
	EmbeddingPending EmbeddingStatus = "pending"
	// EmbeddingSuccess means the vector is computed and stored.
	EmbeddingSuccess EmbeddingStatus = "success"
	// EmbeddingFailed means the last embedding attempt failed; the vector
	// stays null so a retry picks the document up again.
	EmbeddingFailed EmbeddingStatus = "failed"
)

// Document is one text chunk of a file stored in a collection's vector table.
type Document struct {
	ID        string
	Text      string
	Embedding []float32 // nil until computed
	Status    EmbeddingStatus
	FileID    string
	Metadata  map[string]any
}

// SearchResult is one ranked row from a similarity query.
type SearchResult struct {
	ID         string
	Text       string
	Metadata   map[string]any
	Similarity float64
}

// DocumentStore defines per-table document operations. Every method
// validates the table identifier and resolves the table before touching it.
type DocumentStore interface {
	// InsertPending bulk-inserts staged documents with status pending and a
	// null embedding. Missing ids are generated.
	InsertPending(ctx context.Context, table string, docs []*Document) error
	// GetByID returns one document. Returns ErrNotFound if the row is
	// absent, ErrTableNotFound if the table is.
	GetByID(ctx context.Context, table, id string) (*Document, error)
	// ListByFile returns a file's documents. embedded filters on embedding
	// presence: nil = all, true = embedded only, false = un-embedded only.
	ListByFile(ctx context.Context, table, fileID string, embedded *bool) ([]*Document, error)
	// SetEmbedding stores the computed vector and marks the document success.
	SetEmbedding(ctx context.Context, table, id string, vec []float32) error
	// MarkFailed marks the document failed, leaving the embedding null.
	MarkFailed(ctx context.Context, table, id string) error
	// DeleteByFile removes all documents belonging to a file.
	DeleteByFile(ctx context.Context, table, fileID string) error
	// Count returns the number of documents in the table.
	Count(ctx context.Context, table string) (int, error)
	// Search ranks embedded documents by cosine similarity to the query
	// vector, filters below threshold when given, and returns at most topK
	// rows. Tie order is store-native and non-deterministic.
	Search(ctx context.Context, table string, query []float32, topK int, threshold *float64) ([]SearchResult, error)
}

// ErrDocumentNotFound is returned when a document row is absent from an
// existing table.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepo implements DocumentStore on the vector database.
type DocumentRepo struct {
	db       *sql.DB
	registry *Registry
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB, registry *Registry) *DocumentRepo {
	return &DocumentRepo{db: db, registry: registry}
}

// resolve validates the identifier and confirms the table exists.
func (r *DocumentRepo) resolve(ctx context.Context, table string) (Handle, error) {
	return r.registry.Resolve(ctx, table)
}

// InsertPending bulk-inserts staged documents with status pending and a null
// embedding. Missing ids are generated.
func (r *DocumentRepo) InsertPending(ctx context.Context, table string, docs []*Document) error {
	if _, err := r.resolve(ctx, table); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf("INSERT INTO %s (id, text, embedding, status, file_id, metadata) VALUES (?, ?, NULL, ?, ?, ?)", table))
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %s: %w", table, err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.New().String()
		}
		doc.Status = EmbeddingPending

		meta, err := encodeMetadata(doc.Metadata)
		if err != nil {
			return fmt.Errorf("document %s: %w", doc.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, doc.ID, doc.Text, string(EmbeddingPending), doc.FileID, meta); err != nil {
			return fmt.Errorf("failed to insert document %s into %s: %w", doc.ID, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit documents into %s: %w", table, err)
	}
	return nil
}

// GetByID returns one document.
func (r *DocumentRepo) GetByID(ctx context.Context, table, id string) (*Document, error) {
	if _, err := r.resolve(ctx, table); err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT id, text, embedding, status, file_id, metadata FROM %s WHERE id = ?", table), id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s in %s", ErrDocumentNotFound, id, table)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document %s from %s: %w", id, table, err)
	}
	return doc, nil
}

// ListByFile returns a file's documents, optionally filtered on embedding
// presence.
func (r *DocumentRepo) ListByFile(ctx context.Context, table, fileID string, embedded *bool) ([]*Document, error) {
	if _, err := r.resolve(ctx, table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT id, text, embedding, status, file_id, metadata FROM %s WHERE file_id = ?", table)
	if embedded != nil {
		if *embedded {
			query += " AND embedding IS NOT NULL"
		} else {
			query += " AND embedding IS NULL"
		}
	}

	rows, err := r.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents for file %s in %s: %w", fileID, table, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return docs, nil
}

// SetEmbedding stores the computed vector and marks the document success.
func (r *DocumentRepo) SetEmbedding(ctx context.Context, table, id string, vec []float32) error {
	handle, err := r.resolve(ctx, table)
	if err != nil {
		return err
	}
	if len(vec) != handle.Dimension {
		return fmt.Errorf("table %s expects %d-dimensional vectors, got %d", table, handle.Dimension, len(vec))
	}

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET embedding = ?, status = ? WHERE id = ?", table),
		EncodeVector(vec), string(EmbeddingSuccess), id)
	if err != nil {
		return fmt.Errorf("failed to store embedding for document %s in %s: %w", id, table, err)
	}
	return requireRow(res, id, table)
}

// MarkFailed marks the document failed, leaving the embedding null.
func (r *DocumentRepo) MarkFailed(ctx context.Context, table, id string) error {
	if _, err := r.resolve(ctx, table); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET status = ? WHERE id = ?", table),
		string(EmbeddingFailed), id)
	if err != nil {
		return fmt.Errorf("failed to mark document %s failed in %s: %w", id, table, err)
	}
	return requireRow(res, id, table)
}

// DeleteByFile removes all documents belonging to a file.
func (r *DocumentRepo) DeleteByFile(ctx context.Context, table, fileID string) error {
	if _, err := r.resolve(ctx, table); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE file_id = ?", table), fileID); err != nil {
		return fmt.Errorf("failed to delete documents for file %s in %s: %w", fileID, table, err)
	}
	return nil
}

// Count returns the number of documents in the table.
func (r *DocumentRepo) Count(ctx context.Context, table string) (int, error) {
	if _, err := r.resolve(ctx, table); err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents in %s: %w", table, err)
	}
	return n, nil
}

// Search ranks embedded documents by cosine similarity to the query vector.
func (r *DocumentRepo) Search(ctx context.Context, table string, query []float32, topK int, threshold *float64) ([]SearchResult, error) {
	handle, err := r.resolve(ctx, table)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if len(query) != handle.Dimension {
		return nil, fmt.Errorf("table %s expects %d-dimensional vectors, got %d", table, handle.Dimension, len(query))
	}

	blob := EncodeVector(query)
	sqlQuery := fmt.Sprintf(
		"SELECT id, text, metadata, vec_cosine(embedding, ?) AS similarity FROM %s WHERE embedding IS NOT NULL", table)
	args := []any{blob}

	if threshold != nil {
		sqlQuery += " AND vec_cosine(embedding, ?) >= ?"
		args = append(args, blob, *threshold)
	}

	sqlQuery += " ORDER BY similarity DESC LIMIT ?"
	args = append(args, topK)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("similarity search on %s failed: %w", table, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var results []SearchResult
	for rows.Next() {
		var res SearchResult
		var meta sql.NullString
		if err := rows.Scan(&res.ID, &res.Text, &meta, &res.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &res.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for %s: %w", res.ID, err)
			}
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var embedding []byte
	var status string
	var meta sql.NullString

	if err := row.Scan(&doc.ID, &doc.Text, &embedding, &status, &doc.FileID, &meta); err != nil {
		return nil, err
	}

	doc.Status = EmbeddingStatus(status)
	if len(embedding) > 0 {
		vec, err := DecodeVector(embedding)
		if err != nil {
			return nil, err
		}
		doc.Embedding = vec
	}
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &doc.Metadata); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

func encodeMetadata(meta map[string]any) (any, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return string(raw), nil
}

func requireRow(res sql.Result, id, table string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s in %s", ErrDocumentNotFound, id, table)
	}
	return nil
}
