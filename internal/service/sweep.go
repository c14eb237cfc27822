package service

import (
	"context"

	"docbase/internal/contextutil"
	"docbase/internal/storage"
	"docbase/internal/vectorstore"
)

// Sweeper drops vector tables whose collection row no longer exists.
// Orphans appear when a crash lands between table creation and the
// metadata write, or the reverse during deletion.
type Sweeper struct {
	collections storage.CollectionStore
	tables      TableManager
}

// NewSweeper creates a Sweeper.
func NewSweeper(collections storage.CollectionStore, tables TableManager) *Sweeper {
	return &Sweeper{collections: collections, tables: tables}
}

// SweepOrphanTables drops every collection table that no collection row
// claims. Returns the names of the dropped tables.
func (s *Sweeper) SweepOrphanTables(ctx context.Context) ([]string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	tables, err := s.tables.ListTables(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list vector tables")
	}
	if len(tables) == 0 {
		return nil, nil
	}

	records, _, err := s.collections.List(ctx, storage.CollectionFilter{}, storage.Page{Limit: 10000})
	if err != nil {
		return nil, WrapError(err, "failed to list collections")
	}

	claimed := make(map[string]bool, len(records))
	for _, record := range records {
		claimed[vectorstore.TableNameFor(record.ID)] = true
	}

	var dropped []string
	for _, table := range tables {
		if claimed[table] {
			continue
		}
		if err := s.tables.DropIfExists(ctx, table); err != nil {
			logger.ErrorContext(ctx, "failed to drop orphan table", "table", table, "error", err)
			continue
		}
		logger.InfoContext(ctx, "orphan vector table dropped", "table", table)
		dropped = append(dropped, table)
	}
	return dropped, nil
}
