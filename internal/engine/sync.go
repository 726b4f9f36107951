package engine

import (
	"context"
	"fmt"
	"slices"

	"db-sync/internal/inspect"
	"db-sync/internal/schema"
)

// Comparison holds both sides of a synchronisation and its plan.
type Comparison struct {
	Source      []*schema.Table
	Destination []*schema.Table
	Plan        *Plan
}

// Compare loads the tables of both databases and plans the statements
// turning the destination into the source, rendered for the destination.
// When tables is not empty only those tables, and the destination tables
// renamed into them, are compared.
func Compare(ctx context.Context, source, destination inspect.Inspector, tables []string, opts Options) (*Comparison, error) {
	src, err := inspect.LoadAll(ctx, source, tables)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	names, err := destination.ListTableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("destination: failed to list tables: %w", err)
	}
	if len(tables) > 0 {
		names = slices.DeleteFunc(names, func(name string) bool {
			return !slices.Contains(tables, name) && !slices.Contains(tables, opts.Renames[name])
		})
	}
	var dst []*schema.Table
	if len(names) > 0 {
		if dst, err = inspect.LoadAll(ctx, destination, names); err != nil {
			return nil, fmt.Errorf("destination: %w", err)
		}
	}

	plan := NewPlanner(destination.Dialect(), opts).Plan(src, dst)
	return &Comparison{Source: src, Destination: dst, Plan: plan}, nil
}
