package service

import (
	"context"
	"log/slog"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/event"
	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/storage"
	"github.com/mvaleed/mjcatalog/internal/workflow"
)

// ExampleLinkService handles example link use cases.
type ExampleLinkService struct {
	links    storage.ExampleLinkRepository
	styles   storage.StyleRepository
	versions storage.VersionRepository
	events   emitter
}

func NewExampleLinkService(
	links storage.ExampleLinkRepository,
	styles storage.StyleRepository,
	versions storage.VersionRepository,
	publisher event.Publisher,
	logger *slog.Logger,
) *ExampleLinkService {
	return &ExampleLinkService{
		links:    links,
		styles:   styles,
		versions: versions,
		events:   emitter{publisher: publisher, logger: logger},
	}
}

// AddExampleLinkInput carries the raw fields of a new example link.
type AddExampleLinkInput struct {
	Link    string `json:"link"`
	Style   string `json:"style"`
	Version string `json:"version"`
}

func linksResponse(r result.Result[[]domain.ExampleLink]) result.Result[[]ExampleLinkResponse] {
	return workflow.MapResult(r, func(ls []domain.ExampleLink) []ExampleLinkResponse {
		return mapAll(ls, toExampleLinkResponse)
	})
}

func (s *ExampleLinkService) styleMissing(ctx context.Context, p workflow.Pipeline, name result.Result[domain.StyleName], raw string) workflow.Pipeline {
	return p.CollectErrors(name).
		IfNotExists(ctx, workflow.ProbeOf(name, s.styles.CheckStyleExists),
			result.NotFound(domain.FieldStyleName, raw))
}

func (s *ExampleLinkService) versionMissing(ctx context.Context, p workflow.Pipeline, version result.Result[domain.ModelVersion], raw string) workflow.Pipeline {
	return p.CollectErrors(version).
		IfNotExists(ctx, workflow.ProbeOf(version, s.versions.CheckVersionExists),
			result.NotFound(domain.FieldModelVersion, raw))
}

// ListLinks fails with NoneFound when no links are stored.
func (s *ExampleLinkService) ListLinks(ctx context.Context) result.Result[[]ExampleLinkResponse] {
	p := workflow.Empty().IfNotExists(ctx, s.links.CheckAnyLinks, result.NoneFound(domain.FieldExampleLink))
	return linksResponse(workflow.ExecuteIfNoErrors(ctx, p, s.links.GetAllLinks))
}

func (s *ExampleLinkService) ListLinksByStyle(ctx context.Context, rawStyle string) result.Result[[]ExampleLinkResponse] {
	name := domain.NewStyleName(rawStyle)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return s.styleMissing(ctx, p, name, rawStyle)
	})

	return linksResponse(workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[[]domain.ExampleLink] {
		return s.links.GetLinksByStyle(ctx, name.Value())
	}))
}

func (s *ExampleLinkService) ListLinksByStyleAndVersion(ctx context.Context, rawStyle, rawVersion string) result.Result[[]ExampleLinkResponse] {
	name := domain.NewStyleName(rawStyle)
	version := domain.NewModelVersion(rawVersion)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return s.versionMissing(ctx, s.styleMissing(ctx, p, name, rawStyle), version, rawVersion)
	})

	return linksResponse(workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[[]domain.ExampleLink] {
		return s.links.GetLinksByStyleAndVersion(ctx, name.Value(), version.Value())
	}))
}

func (s *ExampleLinkService) LinkExists(ctx context.Context, rawLink string) result.Result[bool] {
	link := domain.NewExampleLinkURL(rawLink)
	p := workflow.Empty().CollectErrors(link)
	return workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[bool] {
		return s.links.CheckLinkExists(ctx, link.Value())
	})
}

// AddLink requires the style and version to exist and the link to be new.
func (s *ExampleLinkService) AddLink(ctx context.Context, in AddExampleLinkInput) result.Result[ExampleLinkResponse] {
	link := domain.NewExampleLinkURL(in.Link)
	name := domain.NewStyleName(in.Style)
	version := domain.NewModelVersion(in.Version)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		p = s.styleMissing(ctx, p.CollectErrors(link), name, in.Style)
		p = s.versionMissing(ctx, p, version, in.Version)
		return p.IfAlreadyExists(ctx, workflow.ProbeOf(link, s.links.CheckLinkExists),
			result.AlreadyExists(domain.FieldExampleLink, in.Link))
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.ExampleLink] {
		return s.links.AddLink(ctx, domain.ExampleLink{
			Link:      link.Value(),
			StyleName: name.Value(),
			Version:   version.Value(),
		})
	})
	r = emitOnSuccess(ctx, s.events, r, func(l domain.ExampleLink) domain.Event {
		return domain.ExampleLinkEvent(domain.EventExampleLinkCreated, l)
	})
	return workflow.MapResult(r, toExampleLinkResponse)
}

func (s *ExampleLinkService) DeleteLink(ctx context.Context, rawLink string) result.Result[ExampleLinkResponse] {
	link := domain.NewExampleLinkURL(rawLink)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return p.CollectErrors(link).
			IfNotExists(ctx, workflow.ProbeOf(link, s.links.CheckLinkExists),
				result.NotFound(domain.FieldExampleLink, rawLink))
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.ExampleLink] {
		return s.links.DeleteLink(ctx, link.Value())
	})
	r = emitOnSuccess(ctx, s.events, r, func(l domain.ExampleLink) domain.Event {
		return domain.ExampleLinkEvent(domain.EventExampleLinkDeleted, l)
	})
	return workflow.MapResult(r, toExampleLinkResponse)
}

func (s *ExampleLinkService) DeleteLinksByStyle(ctx context.Context, rawStyle string) result.Result[DeletedCount] {
	name := domain.NewStyleName(rawStyle)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return s.styleMissing(ctx, p, name, rawStyle)
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[int64] {
		return s.links.DeleteLinksByStyle(ctx, name.Value())
	})
	r = emitOnSuccess(ctx, s.events, r, func(n int64) domain.Event {
		return domain.NewEvent(domain.EventExampleLinkDeleted, rawStyle, map[string]any{"removed": n})
	})
	return workflow.MapResult(r, func(n int64) DeletedCount { return DeletedCount{Deleted: n} })
}
