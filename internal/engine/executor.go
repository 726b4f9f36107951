package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Status string

const (
	StatusOK      Status = "OK"
	StatusError   Status = "ERROR"
	StatusSkipped Status = "SKIPPED"
	StatusDryRun  Status = "DRY RUN"
)

// Result reports what happened to one statement.
type Result struct {
	Statement string
	Status    Status
	Err       error
	Elapsed   time.Duration
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Executor runs planned statements against the destination database.
type Executor struct {
	DB       *sql.DB
	Observer Observer
	// Transactional wraps a commit in one transaction. Only useful on
	// servers with transactional DDL.
	Transactional bool
	// OnProgress is called after each executed statement.
	OnProgress func()
}

// DryRun reports every statement without executing anything.
func (e *Executor) DryRun(ctx context.Context, stmts []string) []Result {
	results := make([]Result, 0, len(stmts))
	for _, stmt := range stmts {
		r := Result{Statement: stmt, Status: StatusDryRun}
		e.observe(ctx, r)
		results = append(results, r)
	}
	return results
}

// Commit executes the statements one by one and stops at the first failure.
// The statements left are reported as skipped. In a transactional commit a
// failure rolls back the statements already executed.
func (e *Executor) Commit(ctx context.Context, stmts []string) ([]Result, error) {
	var (
		exec execer = e.DB
		tx   *sql.Tx
		err  error
	)
	if e.Transactional {
		if tx, err = e.DB.BeginTx(ctx, nil); err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		exec = tx
	}

	results := make([]Result, 0, len(stmts))
	for i, stmt := range stmts {
		start := time.Now()
		_, err := exec.ExecContext(ctx, stmt)
		r := Result{Statement: stmt, Status: StatusOK, Elapsed: time.Since(start)}
		if err != nil {
			r.Status, r.Err = StatusError, err
		}
		e.observe(ctx, r)
		results = append(results, r)
		if e.OnProgress != nil {
			e.OnProgress()
		}
		if err == nil {
			continue
		}

		for _, rest := range stmts[i+1:] {
			skipped := Result{Statement: rest, Status: StatusSkipped}
			e.observe(ctx, skipped)
			results = append(results, skipped)
		}
		if tx != nil {
			_ = tx.Rollback()
		}
		return results, fmt.Errorf("statement %d of %d failed: %w", i+1, len(stmts), err)
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return results, fmt.Errorf("failed to commit transaction: %w", err)
		}
	}
	return results, nil
}

func (e *Executor) observe(ctx context.Context, r Result) {
	if e.Observer != nil {
		e.Observer.Observe(ctx, r)
	}
}
