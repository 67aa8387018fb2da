// Package storage defines the repository contracts for catalog persistence.
//
// Every method returns a result.Result: implementations translate driver
// failures into Persistence-layer errors instead of returning Go errors, so
// the validation pipeline can merge them with everything else it collected.
// Check*Exists methods are the probes used by the pipeline's existence
// combinators.
package storage

import (
	"context"
	"time"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/result"
)

// VersionRepository defines the operations for model version persistence.
type VersionRepository interface {
	CheckVersionExists(ctx context.Context, version domain.ModelVersion) result.Result[bool]
	CheckParameterExists(ctx context.Context, parameter domain.Param) result.Result[bool]

	GetAllVersions(ctx context.Context) result.Result[[]domain.Version]

	// GetVersion returns a NotFound failure when the version is unknown.
	GetVersion(ctx context.Context, version domain.ModelVersion) result.Result[domain.Version]

	AddVersion(ctx context.Context, version domain.Version) result.Result[domain.Version]

	// DeleteVersion removes the version together with its properties and
	// example links.
	DeleteVersion(ctx context.Context, version domain.ModelVersion) result.Result[domain.Version]
}

// PropertyRepository defines operations for per-version properties.
type PropertyRepository interface {
	CheckPropertyExists(ctx context.Context, version domain.ModelVersion, name domain.PropertyName) result.Result[bool]

	GetAllProperties(ctx context.Context, version domain.ModelVersion) result.Result[[]domain.Property]
	GetProperty(ctx context.Context, version domain.ModelVersion, name domain.PropertyName) result.Result[domain.Property]

	AddProperty(ctx context.Context, property domain.Property) result.Result[domain.Property]

	// UpdateProperty replaces every field of an existing property.
	UpdateProperty(ctx context.Context, property domain.Property) result.Result[domain.Property]

	DeleteProperty(ctx context.Context, version domain.ModelVersion, name domain.PropertyName) result.Result[domain.Property]
}

// StyleRepository defines operations for style presets and their tags.
type StyleRepository interface {
	CheckStyleExists(ctx context.Context, name domain.StyleName) result.Result[bool]
	CheckTagExists(ctx context.Context, name domain.StyleName, tag domain.Tag) result.Result[bool]

	GetAllStyles(ctx context.Context) result.Result[[]domain.Style]
	GetStyle(ctx context.Context, name domain.StyleName) result.Result[domain.Style]
	GetStylesByType(ctx context.Context, styleType domain.StyleType) result.Result[[]domain.Style]

	// GetStylesByTags returns styles carrying at least one of tags.
	GetStylesByTags(ctx context.Context, tags []domain.Tag) result.Result[[]domain.Style]

	GetStylesByDescriptionKeyword(ctx context.Context, keyword domain.Keyword) result.Result[[]domain.Style]

	AddStyle(ctx context.Context, style domain.Style) result.Result[domain.Style]
	UpdateStyle(ctx context.Context, style domain.Style) result.Result[domain.Style]
	DeleteStyle(ctx context.Context, name domain.StyleName) result.Result[domain.Style]

	AddTag(ctx context.Context, name domain.StyleName, tag domain.Tag) result.Result[domain.Style]
	DeleteTag(ctx context.Context, name domain.StyleName, tag domain.Tag) result.Result[domain.Style]
	UpdateDescription(ctx context.Context, name domain.StyleName, description domain.Description) result.Result[domain.Style]
}

// ExampleLinkRepository defines operations for style example links.
type ExampleLinkRepository interface {
	CheckLinkExists(ctx context.Context, link domain.ExampleLinkURL) result.Result[bool]

	// CheckAnyLinks reports whether at least one link is stored.
	CheckAnyLinks(ctx context.Context) result.Result[bool]

	GetAllLinks(ctx context.Context) result.Result[[]domain.ExampleLink]
	GetLinksByStyle(ctx context.Context, name domain.StyleName) result.Result[[]domain.ExampleLink]
	GetLinksByStyleAndVersion(ctx context.Context, name domain.StyleName, version domain.ModelVersion) result.Result[[]domain.ExampleLink]

	AddLink(ctx context.Context, link domain.ExampleLink) result.Result[domain.ExampleLink]
	DeleteLink(ctx context.Context, link domain.ExampleLinkURL) result.Result[domain.ExampleLink]

	// DeleteLinksByStyle returns the number of removed links.
	DeleteLinksByStyle(ctx context.Context, name domain.StyleName) result.Result[int64]
}

// PromptHistoryRepository defines operations for generated prompt records.
type PromptHistoryRepository interface {
	CheckAnyHistory(ctx context.Context) result.Result[bool]

	GetAllHistory(ctx context.Context) result.Result[[]domain.PromptHistory]
	GetLastHistory(ctx context.Context, count domain.HistoryCount) result.Result[[]domain.PromptHistory]
	GetHistoryByKeyword(ctx context.Context, keyword domain.Keyword) result.Result[[]domain.PromptHistory]
	GetHistoryByDateRange(ctx context.Context, dates domain.DateRange) result.Result[[]domain.PromptHistory]

	AddHistory(ctx context.Context, history domain.PromptHistory) result.Result[domain.PromptHistory]

	// DeleteHistoryBefore removes records created before cutoff and returns
	// how many were removed.
	DeleteHistoryBefore(ctx context.Context, cutoff time.Time) result.Result[int64]
}

// Repositories bundles all repositories together.
// This makes it easy to pass around and inject dependencies.
type Repositories struct {
	Versions   VersionRepository
	Properties PropertyRepository
	Styles     StyleRepository
	Links      ExampleLinkRepository
	History    PromptHistoryRepository
}
