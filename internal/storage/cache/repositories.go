package cache

import (
	"context"
	"time"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/storage"
)

const (
	allVersionsKey   = keyPrefix + "versions"
	versionKeyPrefix = keyPrefix + "version:"
	propertiesPrefix = keyPrefix + "properties:"
)

func versionKey(v domain.ModelVersion) string    { return versionKeyPrefix + v.Value() }
func propertiesKey(v domain.ModelVersion) string { return propertiesPrefix + v.Value() }

type versionRecord struct {
	Version     string     `json:"version"`
	Parameter   string     `json:"parameter"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Description string     `json:"description,omitempty"`
}

func encodeVersion(v domain.Version) versionRecord {
	return versionRecord{
		Version:     v.Version.Value(),
		Parameter:   v.Parameter.Value(),
		ReleaseDate: v.ReleaseDate.Value(),
		Description: v.Description.Value(),
	}
}

func decodeVersion(r versionRecord) result.Result[domain.Version] {
	return domain.NewVersion(r.Version, r.Parameter, r.ReleaseDate, r.Description)
}

type propertyRecord struct {
	Version      string   `json:"version"`
	Name         string   `json:"name"`
	Parameters   []string `json:"parameters"`
	DefaultValue string   `json:"default_value,omitempty"`
	MinValue     string   `json:"min_value,omitempty"`
	MaxValue     string   `json:"max_value,omitempty"`
	Description  string   `json:"description,omitempty"`
}

func encodeProperty(p domain.Property) propertyRecord {
	return propertyRecord{
		Version:      p.Version.Value(),
		Name:         p.Name.Value(),
		Parameters:   p.ParameterStrings(),
		DefaultValue: p.DefaultValue.Value(),
		MinValue:     p.MinValue.Value(),
		MaxValue:     p.MaxValue.Value(),
		Description:  p.Description.Value(),
	}
}

func decodeProperty(r propertyRecord) result.Result[domain.Property] {
	return domain.NewProperty(domain.PropertyInput{
		Version:      r.Version,
		Name:         r.Name,
		Parameters:   r.Parameters,
		DefaultValue: r.DefaultValue,
		MinValue:     r.MinValue,
		MaxValue:     r.MaxValue,
		Description:  r.Description,
	})
}

// VersionRepository caches version reads. Methods it does not override go
// straight to the wrapped repository.
type VersionRepository struct {
	storage.VersionRepository
	store *Store
}

// NewVersionRepository wraps next with the cache.
func NewVersionRepository(next storage.VersionRepository, store *Store) *VersionRepository {
	return &VersionRepository{VersionRepository: next, store: store}
}

func (r *VersionRepository) GetAllVersions(ctx context.Context) result.Result[[]domain.Version] {
	return readThrough(ctx, r.store, allVersionsKey, r.VersionRepository.GetAllVersions,
		func(vs []domain.Version) []versionRecord { return encodeAll(vs, encodeVersion) },
		func(recs []versionRecord) result.Result[[]domain.Version] { return collectAll(recs, decodeVersion) },
	)
}

func (r *VersionRepository) GetVersion(ctx context.Context, version domain.ModelVersion) result.Result[domain.Version] {
	load := func(ctx context.Context) result.Result[domain.Version] {
		return r.VersionRepository.GetVersion(ctx, version)
	}
	return readThrough(ctx, r.store, versionKey(version), load, encodeVersion, decodeVersion)
}

func (r *VersionRepository) AddVersion(ctx context.Context, v domain.Version) result.Result[domain.Version] {
	res := r.VersionRepository.AddVersion(ctx, v)
	r.store.invalidate(ctx, allVersionsKey, versionKey(v.Version))
	return res
}

// DeleteVersion also drops the version's cached properties, which the
// database removes with it.
func (r *VersionRepository) DeleteVersion(ctx context.Context, version domain.ModelVersion) result.Result[domain.Version] {
	res := r.VersionRepository.DeleteVersion(ctx, version)
	r.store.invalidate(ctx, allVersionsKey, versionKey(version), propertiesKey(version))
	return res
}

// PropertyRepository caches the per-version property list.
type PropertyRepository struct {
	storage.PropertyRepository
	store *Store
}

// NewPropertyRepository wraps next with the cache.
func NewPropertyRepository(next storage.PropertyRepository, store *Store) *PropertyRepository {
	return &PropertyRepository{PropertyRepository: next, store: store}
}

func (r *PropertyRepository) GetAllProperties(ctx context.Context, version domain.ModelVersion) result.Result[[]domain.Property] {
	load := func(ctx context.Context) result.Result[[]domain.Property] {
		return r.PropertyRepository.GetAllProperties(ctx, version)
	}
	return readThrough(ctx, r.store, propertiesKey(version), load,
		func(ps []domain.Property) []propertyRecord { return encodeAll(ps, encodeProperty) },
		func(recs []propertyRecord) result.Result[[]domain.Property] { return collectAll(recs, decodeProperty) },
	)
}

func (r *PropertyRepository) AddProperty(ctx context.Context, p domain.Property) result.Result[domain.Property] {
	res := r.PropertyRepository.AddProperty(ctx, p)
	r.store.invalidate(ctx, propertiesKey(p.Version))
	return res
}

func (r *PropertyRepository) UpdateProperty(ctx context.Context, p domain.Property) result.Result[domain.Property] {
	res := r.PropertyRepository.UpdateProperty(ctx, p)
	r.store.invalidate(ctx, propertiesKey(p.Version))
	return res
}

func (r *PropertyRepository) DeleteProperty(ctx context.Context, version domain.ModelVersion, name domain.PropertyName) result.Result[domain.Property] {
	res := r.PropertyRepository.DeleteProperty(ctx, version, name)
	r.store.invalidate(ctx, propertiesKey(version))
	return res
}

// Wrap returns repos with the version and property repositories cached.
func Wrap(repos *storage.Repositories, store *Store) *storage.Repositories {
	wrapped := *repos
	wrapped.Versions = NewVersionRepository(repos.Versions, store)
	wrapped.Properties = NewPropertyRepository(repos.Properties, store)
	return &wrapped
}
