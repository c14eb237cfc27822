package vectorstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "vectors.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewRegistry(db, 16)
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"simple", "collection_abc", false},
		{"uppercase and digits", "Collection_123_ABC", false},
		{"underscores only", "___", false},
		{"empty", "", true},
		{"hyphen", "collection-abc", true},
		{"space", "collection abc", true},
		{"semicolon injection", "coll1; DROP TABLE x", true},
		{"quote", "coll'1", true},
		{"unicode", "collé", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTableName(tt.table)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTableName) {
					t.Errorf("ValidateTableName(%q) error = %v, want ErrInvalidTableName", tt.table, err)
				}
			} else if err != nil {
				t.Errorf("ValidateTableName(%q) error = %v", tt.table, err)
			}
		})
	}
}

func TestTableNameFor(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"demo", "collection_demo"},
		{"9b2d1f00-1111-2222-3333-444455556666", "collection_9b2d1f00_1111_2222_3333_444455556666"},
		{"with_underscore", "collection_with_underscore"},
	}
	for _, tt := range tests {
		got := TableNameFor(tt.id)
		if got != tt.want {
			t.Errorf("TableNameFor(%q) = %q, want %q", tt.id, got, tt.want)
		}
		if err := ValidateTableName(got); err != nil {
			t.Errorf("TableNameFor(%q) produced invalid name: %v", tt.id, err)
		}
	}

	// Deterministic: same id, same table.
	if TableNameFor("x-y") != TableNameFor("x-y") {
		t.Error("TableNameFor() is not deterministic")
	}
}

func TestRegistry_CreateIfAbsent_Idempotent(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	h1, err := r.CreateIfAbsent(ctx, "collection_demo", 4)
	if err != nil {
		t.Fatalf("CreateIfAbsent() error = %v", err)
	}
	if h1.Dimension != 4 {
		t.Errorf("Dimension = %d, want 4", h1.Dimension)
	}

	// Second call with same name succeeds and keeps the physical dimension.
	h2, err := r.CreateIfAbsent(ctx, "collection_demo", 4)
	if err != nil {
		t.Fatalf("second CreateIfAbsent() error = %v", err)
	}
	if h2 != h1 {
		t.Errorf("second CreateIfAbsent() = %+v, want %+v", h2, h1)
	}
}

func TestRegistry_CreateIfAbsent_Concurrent(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	const goroutines = 8
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.CreateIfAbsent(ctx, "collection_race", 8)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("goroutine %d: CreateIfAbsent() error = %v", i, err)
		}
	}

	tables, err := r.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 1 || tables[0] != "collection_race" {
		t.Errorf("ListTables() = %v, want exactly [collection_race]", tables)
	}
}

func TestRegistry_CreateIfAbsent_Invalid(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.CreateIfAbsent(ctx, "bad-name", 4); !errors.Is(err, ErrInvalidTableName) {
		t.Errorf("CreateIfAbsent() error = %v, want ErrInvalidTableName", err)
	}
	if _, err := r.CreateIfAbsent(ctx, "collection_ok", 0); err == nil {
		t.Error("CreateIfAbsent() with zero dimension expected error")
	}
}

func TestRegistry_Resolve_RebuildsFromSchema(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.CreateIfAbsent(ctx, "collection_demo", 768); err != nil {
		t.Fatalf("CreateIfAbsent() error = %v", err)
	}

	// Evict so Resolve must introspect the physical table.
	r.cache.drop("collection_demo")

	h, err := r.Resolve(ctx, "collection_demo")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if h.Dimension != 768 {
		t.Errorf("Resolve() Dimension = %d, want 768", h.Dimension)
	}
}

func TestRegistry_Resolve_NotFound(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Resolve(context.Background(), "collection_missing")
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Resolve() error = %v, want ErrTableNotFound", err)
	}
}

func TestRegistry_DropIfExists(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	if _, err := r.CreateIfAbsent(ctx, "collection_demo", 4); err != nil {
		t.Fatalf("CreateIfAbsent() error = %v", err)
	}

	if err := r.DropIfExists(ctx, "collection_demo"); err != nil {
		t.Fatalf("DropIfExists() error = %v", err)
	}

	// Resolve after drop must fail even though the handle was cached before.
	if _, err := r.Resolve(ctx, "collection_demo"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Resolve() after drop error = %v, want ErrTableNotFound", err)
	}

	// Dropping an absent table is success.
	if err := r.DropIfExists(ctx, "collection_demo"); err != nil {
		t.Errorf("second DropIfExists() error = %v", err)
	}
}

func TestHandleCache_LRU(t *testing.T) {
	c := newHandleCache(2)

	c.set("a", Handle{Name: "a", Dimension: 1})
	c.set("b", Handle{Name: "b", Dimension: 2})

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.get("a"); !ok {
		t.Fatal("get(a) should hit")
	}

	c.set("c", Handle{Name: "c", Dimension: 3})

	if _, ok := c.get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.get("a"); !ok {
		t.Error("a should still be cached")
	}
	if _, ok := c.get("c"); !ok {
		t.Error("c should be cached")
	}
	if c.len() != 2 {
		t.Errorf("len = %d, want 2", c.len())
	}
}

func TestHandleCache_Concurrent(t *testing.T) {
	c := newHandleCache(8)
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%4))
			c.set(key, Handle{Name: key, Dimension: i})
			c.get(key)
			if i%8 == 0 {
				c.drop(key)
			}
		}(i)
	}
	wg.Wait()
}
