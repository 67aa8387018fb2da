package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/result"
)

// PropertyRepository implements storage.PropertyRepository using PostgreSQL.
// Parameters are stored as a TEXT[] column on the property row.
type PropertyRepository struct {
	pool *pgxpool.Pool
}

// NewPropertyRepository creates a new property repository.
func NewPropertyRepository(pool *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{pool: pool}
}

const propertyColumns = `version, property_name, parameters, default_value, min_value, max_value, description`

func (r *PropertyRepository) CheckPropertyExists(ctx context.Context, version domain.ModelVersion, name domain.PropertyName) result.Result[bool] {
	return exists(ctx, getDB(ctx, r.pool), "check property exists", `
		SELECT EXISTS(SELECT 1 FROM properties WHERE version = $1 AND property_name = $2)`,
		version.Value(), name.Value())
}

func (r *PropertyRepository) GetAllProperties(ctx context.Context, version domain.ModelVersion) result.Result[[]domain.Property] {
	return collect(ctx, getDB(ctx, r.pool), "get all properties", scanProperty, `
		SELECT `+propertyColumns+`
		FROM properties
		WHERE version = $1
		ORDER BY property_name`, version.Value())
}

func (r *PropertyRepository) GetProperty(ctx context.Context, version domain.ModelVersion, name domain.PropertyName) result.Result[domain.Property] {
	return one(ctx, getDB(ctx, r.pool), "get property", scanProperty,
		result.NotFound(domain.FieldPropertyName, name.Value()), `
		SELECT `+propertyColumns+`
		FROM properties
		WHERE version = $1 AND property_name = $2`, version.Value(), name.Value())
}

func (r *PropertyRepository) AddProperty(ctx context.Context, p domain.Property) result.Result[domain.Property] {
	return one(ctx, getDB(ctx, r.pool), "add property", scanProperty,
		result.Unknown("add property returned no row"), `
		INSERT INTO properties (`+propertyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+propertyColumns,
		p.Version.Value(),
		p.Name.Value(),
		p.ParameterStrings(),
		nullString(p.DefaultValue.Value()),
		nullString(p.MinValue.Value()),
		nullString(p.MaxValue.Value()),
		nullString(p.Description.Value()),
	)
}

func (r *PropertyRepository) UpdateProperty(ctx context.Context, p domain.Property) result.Result[domain.Property] {
	return one(ctx, getDB(ctx, r.pool), "update property", scanProperty,
		result.NotFound(domain.FieldPropertyName, p.Name.Value()), `
		UPDATE properties
		SET parameters = $3, default_value = $4, min_value = $5, max_value = $6, description = $7
		WHERE version = $1 AND property_name = $2
		RETURNING `+propertyColumns,
		p.Version.Value(),
		p.Name.Value(),
		p.ParameterStrings(),
		nullString(p.DefaultValue.Value()),
		nullString(p.MinValue.Value()),
		nullString(p.MaxValue.Value()),
		nullString(p.Description.Value()),
	)
}

func (r *PropertyRepository) DeleteProperty(ctx context.Context, version domain.ModelVersion, name domain.PropertyName) result.Result[domain.Property] {
	return one(ctx, getDB(ctx, r.pool), "delete property", scanProperty,
		result.NotFound(domain.FieldPropertyName, name.Value()), `
		DELETE FROM properties
		WHERE version = $1 AND property_name = $2
		RETURNING `+propertyColumns, version.Value(), name.Value())
}

func scanProperty(row scannable) result.Result[domain.Property] {
	var (
		in                domain.PropertyInput
		def, lo, hi, desc *string
	)
	if err := row.Scan(&in.Version, &in.Name, &in.Parameters, &def, &lo, &hi, &desc); err != nil {
		return result.Fail[domain.Property](scanError("scan property", err))
	}
	in.DefaultValue, in.MinValue, in.MaxValue, in.Description = deref(def), deref(lo), deref(hi), deref(desc)

	p := domain.NewProperty(in)
	if p.IsFailed() {
		return result.Fail[domain.Property](corrupt("scan property", p.Errors())...)
	}
	return p
}
