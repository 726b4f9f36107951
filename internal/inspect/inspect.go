// Package inspect loads table structures from live databases.
package inspect

import (
	"context"
	"database/sql"
	"fmt"

	"db-sync/internal/schema"
)

// Inspector reads the structure of the tables of one schema.
type Inspector interface {
	// ListTableNames returns the base tables of the schema, sorted by name.
	ListTableNames(ctx context.Context) ([]string, error)
	// LoadTable loads columns in physical order, indexes, foreign keys and
	// options of one table.
	LoadTable(ctx context.Context, name string) (*schema.Table, error)
	// Dialect returns the renderer matching the inspected server.
	Dialect() schema.Dialect
}

// Querier is the part of *sql.DB used by inspectors.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// LoadAll loads the named tables, or every table when names is empty.
func LoadAll(ctx context.Context, in Inspector, names []string) ([]*schema.Table, error) {
	if len(names) == 0 {
		var err error
		if names, err = in.ListTableNames(ctx); err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
	}
	tables := make([]*schema.Table, 0, len(names))
	for _, name := range names {
		t, err := in.LoadTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load table %s: %w", name, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// queryStrings runs a single-column query.
func queryStrings(ctx context.Context, db Querier, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
