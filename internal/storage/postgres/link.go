package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/result"
)

// ExampleLinkRepository implements storage.ExampleLinkRepository using PostgreSQL.
type ExampleLinkRepository struct {
	pool *pgxpool.Pool
}

// NewExampleLinkRepository creates a new example link repository.
func NewExampleLinkRepository(pool *pgxpool.Pool) *ExampleLinkRepository {
	return &ExampleLinkRepository{pool: pool}
}

const linkColumns = `link, style_name, version`

func (r *ExampleLinkRepository) CheckLinkExists(ctx context.Context, link domain.ExampleLinkURL) result.Result[bool] {
	return exists(ctx, getDB(ctx, r.pool), "check link exists",
		`SELECT EXISTS(SELECT 1 FROM example_links WHERE link = $1)`, link.Value())
}

func (r *ExampleLinkRepository) CheckAnyLinks(ctx context.Context) result.Result[bool] {
	return exists(ctx, getDB(ctx, r.pool), "check any links",
		`SELECT EXISTS(SELECT 1 FROM example_links)`)
}

func (r *ExampleLinkRepository) GetAllLinks(ctx context.Context) result.Result[[]domain.ExampleLink] {
	return collect(ctx, getDB(ctx, r.pool), "get all links", scanLink, `
		SELECT `+linkColumns+` FROM example_links ORDER BY style_name, version, link`)
}

func (r *ExampleLinkRepository) GetLinksByStyle(ctx context.Context, name domain.StyleName) result.Result[[]domain.ExampleLink] {
	return collect(ctx, getDB(ctx, r.pool), "get links by style", scanLink, `
		SELECT `+linkColumns+` FROM example_links
		WHERE style_name = $1
		ORDER BY version, link`, name.Value())
}

func (r *ExampleLinkRepository) GetLinksByStyleAndVersion(ctx context.Context, name domain.StyleName, version domain.ModelVersion) result.Result[[]domain.ExampleLink] {
	return collect(ctx, getDB(ctx, r.pool), "get links by style and version", scanLink, `
		SELECT `+linkColumns+` FROM example_links
		WHERE style_name = $1 AND version = $2
		ORDER BY link`, name.Value(), version.Value())
}

func (r *ExampleLinkRepository) AddLink(ctx context.Context, l domain.ExampleLink) result.Result[domain.ExampleLink] {
	return one(ctx, getDB(ctx, r.pool), "add link", scanLink,
		result.Unknown("add link returned no row"), `
		INSERT INTO example_links (link, style_name, version)
		VALUES ($1, $2, $3)
		RETURNING `+linkColumns,
		l.Link.Value(), l.StyleName.Value(), l.Version.Value())
}

func (r *ExampleLinkRepository) DeleteLink(ctx context.Context, link domain.ExampleLinkURL) result.Result[domain.ExampleLink] {
	return one(ctx, getDB(ctx, r.pool), "delete link", scanLink,
		result.NotFound(domain.FieldExampleLink, link.Value()), `
		DELETE FROM example_links WHERE link = $1
		RETURNING `+linkColumns, link.Value())
}

func (r *ExampleLinkRepository) DeleteLinksByStyle(ctx context.Context, name domain.StyleName) result.Result[int64] {
	tag, err := getDB(ctx, r.pool).Exec(ctx, `DELETE FROM example_links WHERE style_name = $1`, name.Value())
	if err != nil {
		return result.Fail[int64](mapError("delete links by style", err))
	}
	return result.Ok(tag.RowsAffected())
}

func scanLink(row scannable) result.Result[domain.ExampleLink] {
	var link, style, version string
	if err := row.Scan(&link, &style, &version); err != nil {
		return result.Fail[domain.ExampleLink](scanError("scan link", err))
	}
	l := domain.NewExampleLink(link, style, version)
	if l.IsFailed() {
		return result.Fail[domain.ExampleLink](corrupt("scan link", l.Errors())...)
	}
	return l
}
