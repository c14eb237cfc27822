package vectorstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrTableNotFound is returned when a vector table does not exist.
	ErrTableNotFound = errors.New("vector table not found")
	// ErrInvalidTableName is returned when a table identifier contains
	// characters outside [A-Za-z0-9_]. The identifier is interpolated into
	// schema statements, so this is the injection guard.
	ErrInvalidTableName = errors.New("invalid table name")
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

const tablePrefix = "collection_"

// TableNameFor maps a collection id to its vector table name. The mapping is
// deterministic and injective: ids differ only in separators never collide
// because every separator maps to the same position's underscore. Hyphens are
// replaced since they are not valid in identifiers.
func TableNameFor(collectionID string) string {
	return tablePrefix + strings.ReplaceAll(collectionID, "-", "_")
}

// ValidateTableName rejects any identifier that could carry SQL into a
// dynamically constructed schema statement.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q (only alphanumeric characters and underscores are allowed)", ErrInvalidTableName, name)
	}
	return nil
}

// Handle describes one physical vector table. Handles are cached per process
// and rebuilt from introspection on cache miss, so they are always
// reconstructible from the schema alone.
type Handle struct {
	Name      string
	Dimension int
}

// Registry mediates the lifecycle of per-collection vector tables: creation,
// introspection, dropping, and the LRU handle cache in front of them.
type Registry struct {
	db    *sql.DB
	cache *handleCache
}

// NewRegistry creates a Registry over the vector database. cacheSize bounds
// the handle cache; evicted handles are rebuilt by introspection on demand.
func NewRegistry(db *sql.DB, cacheSize int) *Registry {
	return &Registry{
		db:    db,
		cache: newHandleCache(cacheSize),
	}
}

// Every per-collection table shares this schema. The embedding column is
// declared VECTOR(n) so the dimension survives in the schema and can be
// recovered by PRAGMA introspection after a cache miss.
const createTableTemplate = `CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	embedding VECTOR(%d),
	status TEXT NOT NULL DEFAULT 'pending',
	file_id TEXT NOT NULL,
	metadata TEXT
);`

// CreateIfAbsent creates the vector table if it does not already exist and
// returns its handle. It is idempotent and safe to call concurrently for the
// same name: an existing table is success, not an error.
func (r *Registry) CreateIfAbsent(ctx context.Context, name string, dimension int) (Handle, error) {
	if err := ValidateTableName(name); err != nil {
		return Handle{}, err
	}
	if dimension <= 0 {
		return Handle{}, fmt.Errorf("table %s: dimension must be positive, got %d", name, dimension)
	}

	if h, ok := r.cache.get(name); ok {
		return h, nil
	}

	if _, err := r.db.ExecContext(ctx, fmt.Sprintf(createTableTemplate, name, dimension)); err != nil {
		return Handle{}, fmt.Errorf("failed to create vector table %s: %w", name, err)
	}

	// The table may predate this call with a different dimension; trust the
	// schema, not the argument.
	h, err := r.introspect(ctx, name)
	if err != nil {
		return Handle{}, err
	}
	r.cache.set(name, h)
	return h, nil
}

// Resolve returns the handle for an existing table, rebuilding it from
// introspection on cache miss. Returns ErrTableNotFound if the table does
// not exist.
func (r *Registry) Resolve(ctx context.Context, name string) (Handle, error) {
	if err := ValidateTableName(name); err != nil {
		return Handle{}, err
	}

	if h, ok := r.cache.get(name); ok {
		return h, nil
	}

	h, err := r.introspect(ctx, name)
	if err != nil {
		return Handle{}, err
	}
	r.cache.set(name, h)
	return h, nil
}

// DropIfExists drops the table if present. The cache entry is evicted before
// the drop so concurrent readers cannot be served a handle to a table that is
// about to vanish. A missing table is not an error.
func (r *Registry) DropIfExists(ctx context.Context, name string) error {
	if err := ValidateTableName(name); err != nil {
		return err
	}

	r.cache.drop(name)

	if _, err := r.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", name)); err != nil {
		return fmt.Errorf("failed to drop vector table %s: %w", name, err)
	}
	return nil
}

// ListTables returns the names of all per-collection vector tables currently
// present in the database. Used by the orphan sweep.
func (r *Registry) ListTables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE ?", tablePrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list vector tables: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return names, nil
}

// introspect confirms the table exists and recovers the embedding dimension
// from the declared column type.
func (r *Registry) introspect(ctx context.Context, name string) (Handle, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s);", name))
	if err != nil {
		return Handle{}, fmt.Errorf("failed to introspect table %s: %w", name, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	dimension := 0
	found := false
	for rows.Next() {
		var cid int
		var colName, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
			return Handle{}, fmt.Errorf("failed to scan column info for %s: %w", name, err)
		}
		found = true
		if colName == "embedding" {
			if _, err := fmt.Sscanf(colType, "VECTOR(%d)", &dimension); err != nil {
				return Handle{}, fmt.Errorf("table %s: cannot parse embedding column type %q: %w", name, colType, err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return Handle{}, fmt.Errorf("row iteration error: %w", err)
	}

	// PRAGMA table_info returns no rows for a missing table.
	if !found {
		return Handle{}, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	if dimension <= 0 {
		return Handle{}, fmt.Errorf("table %s: could not determine embedding dimension", name)
	}

	return Handle{Name: name, Dimension: dimension}, nil
}
