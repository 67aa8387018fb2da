// Package jobs runs the catalog's background maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/service"
)

// HistoryPruner deletes prompt history older than a retention window.
type HistoryPruner interface {
	PruneHistory(ctx context.Context, olderThan time.Duration) result.Result[service.DeletedCount]
}

// Scheduler prunes prompt history on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	pruner    HistoryPruner
	retention time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// NewScheduler registers the prune job. schedule accepts standard five-field
// cron expressions and descriptors such as @daily or @every 6h.
func NewScheduler(pruner HistoryPruner, retention time.Duration, schedule string, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		pruner:    pruner,
		retention: retention,
		timeout:   time.Minute,
		logger:    logger,
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("parse prune schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("history prune scheduler started",
		slog.Duration("retention", s.retention),
	)
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce prunes history immediately and returns the number of deleted records.
func (s *Scheduler) RunOnce(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	r := s.pruner.PruneHistory(ctx, s.retention)
	if r.IsFailed() {
		s.logger.ErrorContext(ctx, "history prune failed", slog.String("error", r.Err().Error()))
		return 0
	}

	deleted := r.Value().Deleted
	s.logger.InfoContext(ctx, "history pruned", slog.Int64("deleted", deleted))
	return deleted
}
