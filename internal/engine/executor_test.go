package engine_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"db-sync/internal/engine"
	"db-sync/internal/sqltest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var statements = []string{
	"ALTER TABLE `orders` ADD `total` DECIMAL(10,2) NOT NULL AFTER `created`",
	"ALTER TABLE `orders` DROP `legacy`",
	"DROP TABLE `old`",
}

type recorder struct {
	results []engine.Result
}

func (r *recorder) Observe(_ context.Context, res engine.Result) {
	r.results = append(r.results, res)
}

func statuses(results []engine.Result) []engine.Status {
	out := make([]engine.Status, len(results))
	for i, r := range results {
		out[i] = r.Status
	}
	return out
}

func TestExecutor_DryRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := &recorder{}
	e := &engine.Executor{DB: db, Observer: rec}
	results := e.DryRun(context.Background(), statements)
	require.Equal(t, []engine.Status{engine.StatusDryRun, engine.StatusDryRun, engine.StatusDryRun}, statuses(results))
	require.Equal(t, results, rec.results)
	require.Equal(t, statements[1], results[1].Statement)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_Commit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range statements {
		mock.ExpectExec(sqltest.Escape(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	progress := 0
	e := &engine.Executor{DB: db, OnProgress: func() { progress++ }}
	results, err := e.Commit(context.Background(), statements)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Equal(t, []engine.Status{engine.StatusOK, engine.StatusOK, engine.StatusOK}, statuses(results))
	require.Equal(t, 3, progress)
}

func TestExecutor_CommitAbortsOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	boom := errors.New("Error 1091: Can't DROP 'legacy'; check that column/key exists")
	mock.ExpectExec(sqltest.Escape(statements[0])).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(sqltest.Escape(statements[1])).WillReturnError(boom)

	rec := &recorder{}
	e := &engine.Executor{DB: db, Observer: rec}
	results, err := e.Commit(context.Background(), statements)
	require.ErrorIs(t, err, boom)
	require.EqualError(t, err, "statement 2 of 3 failed: "+boom.Error())
	require.NoError(t, mock.ExpectationsWereMet())
	require.Equal(t, []engine.Status{engine.StatusOK, engine.StatusError, engine.StatusSkipped}, statuses(results))
	require.Equal(t, boom, results[1].Err)
	require.Equal(t, results, rec.results)
}

func TestExecutor_CommitTransactional(t *testing.T) {
	t.Run("Commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectExec(sqltest.Escape(statements[0])).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		e := &engine.Executor{DB: db, Transactional: true}
		_, err = e.Commit(context.Background(), statements[:1])
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectExec(sqltest.Escape(statements[0])).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(sqltest.Escape(statements[1])).WillReturnError(errors.New("fail"))
		mock.ExpectRollback()

		e := &engine.Executor{DB: db, Transactional: true}
		results, err := e.Commit(context.Background(), statements)
		require.Error(t, err)
		require.Len(t, results, 3)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Begin", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin().WillReturnError(errors.New("read only"))

		e := &engine.Executor{DB: db, Transactional: true}
		_, err = e.Commit(context.Background(), statements)
		require.EqualError(t, err, "failed to begin transaction: read only")
	})
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == "elapsed" {
				return slog.Attr{}
			}
			return a
		},
	}))
	obs := engine.Observers{engine.NewLogObserver(logger)}

	ctx := context.Background()
	obs.Observe(ctx, engine.Result{Statement: "DROP TABLE `a`", Status: engine.StatusOK})
	obs.Observe(ctx, engine.Result{Statement: "DROP TABLE `b`", Status: engine.StatusError, Err: errors.New("unknown table")})
	obs.Observe(ctx, engine.Result{Statement: "DROP TABLE `c`", Status: engine.StatusSkipped})
	obs.Observe(ctx, engine.Result{Statement: "DROP TABLE `d`", Status: engine.StatusDryRun})

	require.Equal(t, "level=INFO msg=\"statement executed\" statement=\"DROP TABLE `a`\"\n"+
		"level=ERROR msg=\"statement failed\" statement=\"DROP TABLE `b`\" error=\"unknown table\"\n"+
		"level=WARN msg=\"statement skipped\" statement=\"DROP TABLE `c`\"\n"+
		"level=INFO msg=\"dry run\" statement=\"DROP TABLE `d`\"\n", buf.String())
}

func TestObserverFunc(t *testing.T) {
	var got []string
	f := engine.ObserverFunc(func(_ context.Context, r engine.Result) { got = append(got, r.Statement) })
	e := &engine.Executor{Observer: f}
	e.DryRun(context.Background(), statements[:2])
	require.Equal(t, statements[:2], got)
}
