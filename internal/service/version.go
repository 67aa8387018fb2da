// Package service implements the catalog use cases.
//
// Every use case follows the same shape: build the value objects from the
// raw input, thread them through a workflow.Pipeline (construction errors
// and existence checks are collected together inside Validate), run the
// repository call with ExecuteIfNoErrors and map the outcome to a response
// with MapResult. Nothing is written when any check failed.
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

// VersionService handles model version use cases.
type VersionService struct {
	versions storage.VersionRepository
	events   emitter
}

func NewVersionService(versions storage.VersionRepository, publisher event.Publisher, logger *slog.Logger) *VersionService {
	return &VersionService{
		versions: versions,
		events:   emitter{publisher: publisher, logger: logger},
	}
}

// AddVersionInput carries the raw fields of a new version.
type AddVersionInput struct {
	Version     string     `json:"version"`
	Parameter   string     `json:"parameter"`
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
	Description string     `json:"description,omitempty"`
}

func (s *VersionService) ListVersions(ctx context.Context) result.Result[[]VersionResponse] {
	r := workflow.ExecuteIfNoErrors(ctx, workflow.Empty(), s.versions.GetAllVersions)
	return workflow.MapResult(r, func(vs []domain.Version) []VersionResponse {
		return mapAll(vs, toVersionResponse)
	})
}

func (s *VersionService) GetVersion(ctx context.Context, raw string) result.Result[VersionResponse] {
	version := domain.NewModelVersion(raw)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return p.CollectErrors(version).
			IfNotExists(ctx, workflow.ProbeOf(version, s.versions.CheckVersionExists),
				result.NotFound(domain.FieldModelVersion, raw))
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Version] {
		return s.versions.GetVersion(ctx, version.Value())
	})
	return workflow.MapResult(r, toVersionResponse)
}

func (s *VersionService) VersionExists(ctx context.Context, raw string) result.Result[bool] {
	version := domain.NewModelVersion(raw)
	p := workflow.Empty().CollectErrors(version)
	return workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[bool] {
		return s.versions.CheckVersionExists(ctx, version.Value())
	})
}

// AddVersion rejects a version or parameter that is already registered;
// both conflicts are reported together.
func (s *VersionService) AddVersion(ctx context.Context, in AddVersionInput) result.Result[VersionResponse] {
	version := domain.NewModelVersion(in.Version)
	param := domain.NewParam(in.Parameter)
	releaseDate := domain.NewReleaseDate(in.ReleaseDate)
	description := domain.NewDescription(in.Description)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return p.CollectErrors(version, param, releaseDate, description).
			IfAlreadyExists(ctx, workflow.ProbeOf(version, s.versions.CheckVersionExists),
				result.AlreadyExists(domain.FieldModelVersion, in.Version)).
			IfAlreadyExists(ctx, workflow.ProbeOf(param, s.versions.CheckParameterExists),
				result.AlreadyExists(domain.FieldParam, in.Parameter))
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Version] {
		return s.versions.AddVersion(ctx, domain.Version{
			Version:     version.Value(),
			Parameter:   param.Value(),
			ReleaseDate: releaseDate.Value(),
			Description: description.Value(),
		})
	})
	r = emitOnSuccess(ctx, s.events, r, domain.VersionCreatedEvent)
	return workflow.MapResult(r, toVersionResponse)
}

// DeleteVersion removes the version with its properties and example links.
func (s *VersionService) DeleteVersion(ctx context.Context, raw string) result.Result[VersionResponse] {
	version := domain.NewModelVersion(raw)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return p.CollectErrors(version).
			IfNotExists(ctx, workflow.ProbeOf(version, s.versions.CheckVersionExists),
				result.NotFound(domain.FieldModelVersion, raw))
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Version] {
		return s.versions.DeleteVersion(ctx, version.Value())
	})
	r = emitOnSuccess(ctx, s.events, r, func(v domain.Version) domain.Event {
		return domain.VersionDeletedEvent(v.Version)
	})
	return workflow.MapResult(r, toVersionResponse)
}
