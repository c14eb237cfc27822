package storage

import (
	"fmt"
	"strings"
)

// Page describes offset pagination plus ordering for list queries.
// SortBy is validated against a per-repository allow-list before being
// interpolated into SQL; anything else is rejected.
type Page struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string // "asc" or "desc"
}

const defaultPageLimit = 100

// orderClause validates the requested sort against the allow-list and returns
// an ORDER BY fragment. An empty SortBy falls back to the first allowed field.
func (p Page) orderClause(allowed ...string) (string, error) {
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = allowed[0]
	}

	ok := false
	for _, field := range allowed {
		if sortBy == field {
			ok = true
			break
		}
	}
	if !ok {
		return "", fmt.Errorf("%w: sort field %q, allowed: %s", ErrInvalidSort, sortBy, strings.Join(allowed, ", "))
	}

	order := "DESC"
	switch strings.ToLower(p.SortOrder) {
	case "", "desc":
	case "asc":
		order = "ASC"
	default:
		return "", fmt.Errorf("%w: sort order %q, allowed: asc, desc", ErrInvalidSort, p.SortOrder)
	}

	return fmt.Sprintf(" ORDER BY %s %s", sortBy, order), nil
}

// limitOffset returns LIMIT/OFFSET bind values with defaults applied.
func (p Page) limitOffset() (int, int) {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
