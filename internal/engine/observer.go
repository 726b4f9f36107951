package engine

import (
	"context"
	"log/slog"
)

// Observer receives the result of every statement handled by an Executor.
type Observer interface {
	Observe(ctx context.Context, r Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, r Result)

func (f ObserverFunc) Observe(ctx context.Context, r Result) { f(ctx, r) }

// Observers fans results out to several observers.
type Observers []Observer

func (o Observers) Observe(ctx context.Context, r Result) {
	for _, obs := range o {
		obs.Observe(ctx, r)
	}
}

// LogObserver writes results to a structured logger. Failures are logged at
// error level, skipped statements at warn level and the rest at info level.
type LogObserver struct {
	Logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) Observe(ctx context.Context, r Result) {
	switch r.Status {
	case StatusError:
		o.Logger.ErrorContext(ctx, "statement failed", "statement", r.Statement, "error", r.Err)
	case StatusSkipped:
		o.Logger.WarnContext(ctx, "statement skipped", "statement", r.Statement)
	case StatusDryRun:
		o.Logger.InfoContext(ctx, "dry run", "statement", r.Statement)
	default:
		o.Logger.InfoContext(ctx, "statement executed", "statement", r.Statement, "elapsed", r.Elapsed)
	}
}
