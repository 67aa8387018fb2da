package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/result"
)

// PromptHistoryRepository implements storage.PromptHistoryRepository using PostgreSQL.
type PromptHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewPromptHistoryRepository creates a new prompt history repository.
func NewPromptHistoryRepository(pool *pgxpool.Pool) *PromptHistoryRepository {
	return &PromptHistoryRepository{pool: pool}
}

const historyColumns = `history_id, prompt, version, created_on`

func (r *PromptHistoryRepository) CheckAnyHistory(ctx context.Context) result.Result[bool] {
	return exists(ctx, getDB(ctx, r.pool), "check any history",
		`SELECT EXISTS(SELECT 1 FROM prompt_history)`)
}

func (r *PromptHistoryRepository) GetAllHistory(ctx context.Context) result.Result[[]domain.PromptHistory] {
	return collect(ctx, getDB(ctx, r.pool), "get all history", scanHistory, `
		SELECT `+historyColumns+` FROM prompt_history ORDER BY created_on DESC`)
}

// GetLastHistory returns the most recent records, newest first.
func (r *PromptHistoryRepository) GetLastHistory(ctx context.Context, count domain.HistoryCount) result.Result[[]domain.PromptHistory] {
	return collect(ctx, getDB(ctx, r.pool), "get last history", scanHistory, `
		SELECT `+historyColumns+` FROM prompt_history
		ORDER BY created_on DESC
		LIMIT $1`, count.Value())
}

func (r *PromptHistoryRepository) GetHistoryByKeyword(ctx context.Context, keyword domain.Keyword) result.Result[[]domain.PromptHistory] {
	return collect(ctx, getDB(ctx, r.pool), "get history by keyword", scanHistory, `
		SELECT `+historyColumns+` FROM prompt_history
		WHERE prompt ILIKE '%' || $1 || '%'
		ORDER BY created_on DESC`, keyword.Value())
}

// GetHistoryByDateRange is inclusive on both ends.
func (r *PromptHistoryRepository) GetHistoryByDateRange(ctx context.Context, dates domain.DateRange) result.Result[[]domain.PromptHistory] {
	return collect(ctx, getDB(ctx, r.pool), "get history by date range", scanHistory, `
		SELECT `+historyColumns+` FROM prompt_history
		WHERE created_on BETWEEN $1 AND $2
		ORDER BY created_on DESC`, dates.From(), dates.To())
}

func (r *PromptHistoryRepository) AddHistory(ctx context.Context, h domain.PromptHistory) result.Result[domain.PromptHistory] {
	return one(ctx, getDB(ctx, r.pool), "add history", scanHistory,
		result.Unknown("add history returned no row"), `
		INSERT INTO prompt_history (history_id, prompt, version, created_on)
		VALUES ($1, $2, $3, $4)
		RETURNING `+historyColumns,
		h.ID, h.Prompt.Value(), h.Version.Value(), h.CreatedOn)
}

func (r *PromptHistoryRepository) DeleteHistoryBefore(ctx context.Context, cutoff time.Time) result.Result[int64] {
	tag, err := getDB(ctx, r.pool).Exec(ctx, `DELETE FROM prompt_history WHERE created_on < $1`, cutoff)
	if err != nil {
		return result.Fail[int64](mapError("delete history before", err))
	}
	return result.Ok(tag.RowsAffected())
}

func scanHistory(row scannable) result.Result[domain.PromptHistory] {
	var (
		id              uuid.UUID
		prompt, version string
		createdOn       time.Time
	)
	if err := row.Scan(&id, &prompt, &version, &createdOn); err != nil {
		return result.Fail[domain.PromptHistory](scanError("scan history", err))
	}
	h := domain.RestorePromptHistory(id, prompt, version, createdOn)
	if h.IsFailed() {
		return result.Fail[domain.PromptHistory](corrupt("scan history", h.Errors())...)
	}
	return h
}
