package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/result"
)

// StyleRepository implements storage.StyleRepository using PostgreSQL.
type StyleRepository struct {
	pool *pgxpool.Pool
}

// NewStyleRepository creates a new style repository.
func NewStyleRepository(pool *pgxpool.Pool) *StyleRepository {
	return &StyleRepository{pool: pool}
}

const styleColumns = `name, type, description, tags`

func (r *StyleRepository) CheckStyleExists(ctx context.Context, name domain.StyleName) result.Result[bool] {
	return exists(ctx, getDB(ctx, r.pool), "check style exists",
		`SELECT EXISTS(SELECT 1 FROM styles WHERE name = $1)`, name.Value())
}

func (r *StyleRepository) CheckTagExists(ctx context.Context, name domain.StyleName, tag domain.Tag) result.Result[bool] {
	return exists(ctx, getDB(ctx, r.pool), "check tag exists",
		`SELECT EXISTS(SELECT 1 FROM styles WHERE name = $1 AND $2 = ANY(tags))`, name.Value(), tag.Value())
}

func (r *StyleRepository) GetAllStyles(ctx context.Context) result.Result[[]domain.Style] {
	return collect(ctx, getDB(ctx, r.pool), "get all styles", scanStyle, `
		SELECT `+styleColumns+` FROM styles ORDER BY name`)
}

func (r *StyleRepository) GetStyle(ctx context.Context, name domain.StyleName) result.Result[domain.Style] {
	return one(ctx, getDB(ctx, r.pool), "get style", scanStyle,
		result.NotFound(domain.FieldStyleName, name.Value()), `
		SELECT `+styleColumns+` FROM styles WHERE name = $1`, name.Value())
}

func (r *StyleRepository) GetStylesByType(ctx context.Context, styleType domain.StyleType) result.Result[[]domain.Style] {
	return collect(ctx, getDB(ctx, r.pool), "get styles by type", scanStyle, `
		SELECT `+styleColumns+` FROM styles WHERE type = $1 ORDER BY name`, styleType.Value())
}

// GetStylesByTags matches styles whose tag array overlaps the given tags.
func (r *StyleRepository) GetStylesByTags(ctx context.Context, tags []domain.Tag) result.Result[[]domain.Style] {
	raw := make([]string, len(tags))
	for i, t := range tags {
		raw[i] = t.Value()
	}
	return collect(ctx, getDB(ctx, r.pool), "get styles by tags", scanStyle, `
		SELECT `+styleColumns+` FROM styles WHERE tags && $1 ORDER BY name`, raw)
}

func (r *StyleRepository) GetStylesByDescriptionKeyword(ctx context.Context, keyword domain.Keyword) result.Result[[]domain.Style] {
	return collect(ctx, getDB(ctx, r.pool), "get styles by description keyword", scanStyle, `
		SELECT `+styleColumns+` FROM styles
		WHERE description ILIKE '%' || $1 || '%'
		ORDER BY name`, keyword.Value())
}

func (r *StyleRepository) AddStyle(ctx context.Context, s domain.Style) result.Result[domain.Style] {
	return one(ctx, getDB(ctx, r.pool), "add style", scanStyle,
		result.Unknown("add style returned no row"), `
		INSERT INTO styles (name, type, description, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING `+styleColumns,
		s.Name.Value(),
		s.Type.Value(),
		nullString(s.Description.Value()),
		s.TagStrings(),
	)
}

func (r *StyleRepository) UpdateStyle(ctx context.Context, s domain.Style) result.Result[domain.Style] {
	return one(ctx, getDB(ctx, r.pool), "update style", scanStyle,
		result.NotFound(domain.FieldStyleName, s.Name.Value()), `
		UPDATE styles SET type = $2, description = $3, tags = $4
		WHERE name = $1
		RETURNING `+styleColumns,
		s.Name.Value(),
		s.Type.Value(),
		nullString(s.Description.Value()),
		s.TagStrings(),
	)
}

// DeleteStyle removes the style and its example links in one transaction.
func (r *StyleRepository) DeleteStyle(ctx context.Context, name domain.StyleName) result.Result[domain.Style] {
	return withTransaction(ctx, r.pool, "delete style", func(ctx context.Context) result.Result[domain.Style] {
		db := getDB(ctx, r.pool)

		if _, err := db.Exec(ctx, `DELETE FROM example_links WHERE style_name = $1`, name.Value()); err != nil {
			return result.Fail[domain.Style](mapError("delete style links", err))
		}

		return one(ctx, db, "delete style", scanStyle,
			result.NotFound(domain.FieldStyleName, name.Value()), `
			DELETE FROM styles WHERE name = $1
			RETURNING `+styleColumns, name.Value())
	})
}

// AddTag appends tag unless the style already carries it.
func (r *StyleRepository) AddTag(ctx context.Context, name domain.StyleName, tag domain.Tag) result.Result[domain.Style] {
	return one(ctx, getDB(ctx, r.pool), "add tag", scanStyle,
		result.NotFound(domain.FieldStyleName, name.Value()), `
		UPDATE styles
		SET tags = CASE WHEN $2 = ANY(tags) THEN tags ELSE array_append(tags, $2) END
		WHERE name = $1
		RETURNING `+styleColumns, name.Value(), tag.Value())
}

func (r *StyleRepository) DeleteTag(ctx context.Context, name domain.StyleName, tag domain.Tag) result.Result[domain.Style] {
	return one(ctx, getDB(ctx, r.pool), "delete tag", scanStyle,
		result.NotFound(domain.FieldStyleName, name.Value()), `
		UPDATE styles SET tags = array_remove(tags, $2)
		WHERE name = $1
		RETURNING `+styleColumns, name.Value(), tag.Value())
}

func (r *StyleRepository) UpdateDescription(ctx context.Context, name domain.StyleName, description domain.Description) result.Result[domain.Style] {
	return one(ctx, getDB(ctx, r.pool), "update description", scanStyle,
		result.NotFound(domain.FieldStyleName, name.Value()), `
		UPDATE styles SET description = $2
		WHERE name = $1
		RETURNING `+styleColumns, name.Value(), nullString(description.Value()))
}

func scanStyle(row scannable) result.Result[domain.Style] {
	var (
		name, styleType string
		description     *string
		tags            []string
	)
	if err := row.Scan(&name, &styleType, &description, &tags); err != nil {
		return result.Fail[domain.Style](scanError("scan style", err))
	}
	s := domain.NewStyle(name, styleType, deref(description), tags)
	if s.IsFailed() {
		return result.Fail[domain.Style](corrupt("scan style", s.Errors())...)
	}
	return s
}
