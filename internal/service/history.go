package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/event"
	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/storage"
	"github.com/mvaleed/mjcatalog/internal/workflow"
)

// PromptHistoryService handles prompt history use cases.
type PromptHistoryService struct {
	history  storage.PromptHistoryRepository
	versions storage.VersionRepository
	events   emitter
	now      func() time.Time
}

func NewPromptHistoryService(
	history storage.PromptHistoryRepository,
	versions storage.VersionRepository,
	publisher event.Publisher,
	logger *slog.Logger,
) *PromptHistoryService {
	return &PromptHistoryService{
		history:  history,
		versions: versions,
		events:   emitter{publisher: publisher, logger: logger},
		now:      time.Now,
	}
}

// AddPromptHistoryInput carries the raw fields of a history record.
type AddPromptHistoryInput struct {
	Prompt  string `json:"prompt"`
	Version string `json:"version"`
}

func historyResponse(r result.Result[[]domain.PromptHistory]) result.Result[[]PromptHistoryResponse] {
	return workflow.MapResult(r, func(hs []domain.PromptHistory) []PromptHistoryResponse {
		return mapAll(hs, toPromptHistoryResponse)
	})
}

// requireHistory fails with NoneFound when nothing has been recorded yet.
func (s *PromptHistoryService) requireHistory(ctx context.Context, p workflow.Pipeline) workflow.Pipeline {
	return p.IfNotExists(ctx, s.history.CheckAnyHistory, result.NoneFound(domain.FieldPromptHistory))
}

func (s *PromptHistoryService) ListHistory(ctx context.Context) result.Result[[]PromptHistoryResponse] {
	p := s.requireHistory(ctx, workflow.Empty())
	return historyResponse(workflow.ExecuteIfNoErrors(ctx, p, s.history.GetAllHistory))
}

// LastHistory returns the n most recent records, 1 <= n <= 100.
func (s *PromptHistoryService) LastHistory(ctx context.Context, n int) result.Result[[]PromptHistoryResponse] {
	count := domain.NewHistoryCount(n)
	p := s.requireHistory(ctx, workflow.Empty().CollectErrors(count))

	return historyResponse(workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[[]domain.PromptHistory] {
		return s.history.GetLastHistory(ctx, count.Value())
	}))
}

func (s *PromptHistoryService) HistoryByKeyword(ctx context.Context, rawKeyword string) result.Result[[]PromptHistoryResponse] {
	keyword := domain.NewKeyword(rawKeyword)
	p := s.requireHistory(ctx, workflow.Empty().CollectErrors(keyword))

	return historyResponse(workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[[]domain.PromptHistory] {
		return s.history.GetHistoryByKeyword(ctx, keyword.Value())
	}))
}

func (s *PromptHistoryService) HistoryByDateRange(ctx context.Context, from, to time.Time) result.Result[[]PromptHistoryResponse] {
	dates := domain.NewDateRange(from, to)
	p := s.requireHistory(ctx, workflow.Empty().CollectErrors(dates))

	return historyResponse(workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[[]domain.PromptHistory] {
		return s.history.GetHistoryByDateRange(ctx, dates.Value())
	}))
}

// AddHistory records a generated prompt for an existing version.
func (s *PromptHistoryService) AddHistory(ctx context.Context, in AddPromptHistoryInput) result.Result[PromptHistoryResponse] {
	record := domain.NewPromptHistory(in.Prompt, in.Version)
	version := domain.NewModelVersion(in.Version)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return p.CollectErrors(record).
			IfNotExists(ctx, workflow.ProbeOf(version, s.versions.CheckVersionExists),
				result.NotFound(domain.FieldModelVersion, in.Version))
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.PromptHistory] {
		return s.history.AddHistory(ctx, record.Value())
	})
	r = emitOnSuccess(ctx, s.events, r, domain.PromptHistoryCreatedEvent)
	return workflow.MapResult(r, toPromptHistoryResponse)
}

// PruneHistory deletes records older than olderThan and reports how many
// were removed.
func (s *PromptHistoryService) PruneHistory(ctx context.Context, olderThan time.Duration) result.Result[DeletedCount] {
	cutoff := s.now().UTC().Add(-olderThan)

	p := workflow.Empty().Ensure(olderThan > 0,
		result.OutOfRange(domain.FieldDateRange, olderThan.String(), "retention must be positive"))

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[int64] {
		return s.history.DeleteHistoryBefore(ctx, cutoff)
	})
	r = emitOnSuccess(ctx, s.events, r, func(n int64) domain.Event {
		return domain.PromptHistoryPrunedEvent(cutoff, n)
	})
	return workflow.MapResult(r, func(n int64) DeletedCount { return DeletedCount{Deleted: n} })
}
