package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/result"
)

// VersionRepository implements storage.VersionRepository using PostgreSQL.
type VersionRepository struct {
	pool *pgxpool.Pool
}

// NewVersionRepository creates a new version repository.
func NewVersionRepository(pool *pgxpool.Pool) *VersionRepository {
	return &VersionRepository{pool: pool}
}

const versionColumns = `version, parameter, release_date, description`

func (r *VersionRepository) CheckVersionExists(ctx context.Context, version domain.ModelVersion) result.Result[bool] {
	return exists(ctx, getDB(ctx, r.pool), "check version exists",
		`SELECT EXISTS(SELECT 1 FROM versions WHERE version = $1)`, version.Value())
}

func (r *VersionRepository) CheckParameterExists(ctx context.Context, parameter domain.Param) result.Result[bool] {
	return exists(ctx, getDB(ctx, r.pool), "check parameter exists",
		`SELECT EXISTS(SELECT 1 FROM versions WHERE parameter = $1)`, parameter.Value())
}

// GetAllVersions lists versions ordered by release date, newest first.
func (r *VersionRepository) GetAllVersions(ctx context.Context) result.Result[[]domain.Version] {
	return collect(ctx, getDB(ctx, r.pool), "get all versions", scanVersion, `
		SELECT `+versionColumns+`
		FROM versions
		ORDER BY release_date DESC NULLS LAST, version`)
}

func (r *VersionRepository) GetVersion(ctx context.Context, version domain.ModelVersion) result.Result[domain.Version] {
	return one(ctx, getDB(ctx, r.pool), "get version", scanVersion,
		result.NotFound(domain.FieldModelVersion, version.Value()), `
		SELECT `+versionColumns+`
		FROM versions WHERE version = $1`, version.Value())
}

func (r *VersionRepository) AddVersion(ctx context.Context, v domain.Version) result.Result[domain.Version] {
	return one(ctx, getDB(ctx, r.pool), "add version", scanVersion,
		result.Unknown("add version returned no row"), `
		INSERT INTO versions (version, parameter, release_date, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+versionColumns,
		v.Version.Value(),
		v.Parameter.Value(),
		v.ReleaseDate.Value(),
		nullString(v.Description.Value()),
	)
}

// DeleteVersion relies on ON DELETE CASCADE to drop the version's
// properties and example links.
func (r *VersionRepository) DeleteVersion(ctx context.Context, version domain.ModelVersion) result.Result[domain.Version] {
	return one(ctx, getDB(ctx, r.pool), "delete version", scanVersion,
		result.NotFound(domain.FieldModelVersion, version.Value()), `
		DELETE FROM versions WHERE version = $1
		RETURNING `+versionColumns, version.Value())
}

func scanVersion(row scannable) result.Result[domain.Version] {
	var (
		version, parameter string
		releaseDate        *time.Time
		description        *string
	)
	if err := row.Scan(&version, &parameter, &releaseDate, &description); err != nil {
		return result.Fail[domain.Version](scanError("scan version", err))
	}
	v := domain.NewVersion(version, parameter, releaseDate, deref(description))
	if v.IsFailed() {
		return result.Fail[domain.Version](corrupt("scan version", v.Errors())...)
	}
	return v
}

// nullString stores empty optional text as NULL.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
