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

// StyleService handles style preset use cases.
type StyleService struct {
	styles storage.StyleRepository
	events emitter
}

func NewStyleService(styles storage.StyleRepository, publisher event.Publisher, logger *slog.Logger) *StyleService {
	return &StyleService{
		styles: styles,
		events: emitter{publisher: publisher, logger: logger},
	}
}

// StyleInput carries the raw fields of a style.
type StyleInput struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags"`
}

func (s *StyleService) requireStyle(ctx context.Context, p workflow.Pipeline, name result.Result[domain.StyleName], raw string) workflow.Pipeline {
	return p.CollectErrors(name).
		IfNotExists(ctx, workflow.ProbeOf(name, s.styles.CheckStyleExists),
			result.NotFound(domain.FieldStyleName, raw))
}

func stylesResponse(r result.Result[[]domain.Style]) result.Result[[]StyleResponse] {
	return workflow.MapResult(r, func(ss []domain.Style) []StyleResponse {
		return mapAll(ss, toStyleResponse)
	})
}

func (s *StyleService) ListStyles(ctx context.Context) result.Result[[]StyleResponse] {
	return stylesResponse(workflow.ExecuteIfNoErrors(ctx, workflow.Empty(), s.styles.GetAllStyles))
}

func (s *StyleService) GetStyle(ctx context.Context, rawName string) result.Result[StyleResponse] {
	name := domain.NewStyleName(rawName)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return s.requireStyle(ctx, p, name, rawName)
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Style] {
		return s.styles.GetStyle(ctx, name.Value())
	})
	return workflow.MapResult(r, toStyleResponse)
}

func (s *StyleService) ListStylesByType(ctx context.Context, rawType string) result.Result[[]StyleResponse] {
	styleType := domain.NewStyleType(rawType)
	p := workflow.Empty().CollectErrors(styleType)

	return stylesResponse(workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[[]domain.Style] {
		return s.styles.GetStylesByType(ctx, styleType.Value())
	}))
}

// ListStylesByTags returns styles carrying any of the given tags.
func (s *StyleService) ListStylesByTags(ctx context.Context, rawTags []string) result.Result[[]StyleResponse] {
	tags := domain.NewTags(rawTags)
	p := workflow.Empty().
		Ensure(len(rawTags) > 0, result.NullOrEmpty(domain.FieldTag)).
		CollectErrors(tags)

	return stylesResponse(workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[[]domain.Style] {
		return s.styles.GetStylesByTags(ctx, tags.Value())
	}))
}

func (s *StyleService) ListStylesByDescriptionKeyword(ctx context.Context, rawKeyword string) result.Result[[]StyleResponse] {
	keyword := domain.NewKeyword(rawKeyword)
	p := workflow.Empty().CollectErrors(keyword)

	return stylesResponse(workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[[]domain.Style] {
		return s.styles.GetStylesByDescriptionKeyword(ctx, keyword.Value())
	}))
}

// AddStyle never touches storage when the name is already taken.
func (s *StyleService) AddStyle(ctx context.Context, in StyleInput) result.Result[StyleResponse] {
	name := domain.NewStyleName(in.Name)
	styleType := domain.NewStyleType(in.Type)
	description := domain.NewDescription(in.Description)
	tags := domain.NewTags(in.Tags)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return p.CollectErrors(name, styleType, description, tags).
			IfAlreadyExists(ctx, workflow.ProbeOf(name, s.styles.CheckStyleExists),
				result.AlreadyExists(domain.FieldStyleName, in.Name))
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Style] {
		return workflow.Bind(domain.ComposeStyle(name, styleType, description, tags), func(st domain.Style) result.Result[domain.Style] {
			return s.styles.AddStyle(ctx, st)
		})
	})
	r = emitOnSuccess(ctx, s.events, r, func(st domain.Style) domain.Event {
		return domain.StyleEvent(domain.EventStyleCreated, st)
	})
	return workflow.MapResult(r, toStyleResponse)
}

// UpdateStyle replaces the type, description and tags of an existing style.
func (s *StyleService) UpdateStyle(ctx context.Context, in StyleInput) result.Result[StyleResponse] {
	name := domain.NewStyleName(in.Name)
	styleType := domain.NewStyleType(in.Type)
	description := domain.NewDescription(in.Description)
	tags := domain.NewTags(in.Tags)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return s.requireStyle(ctx, p.CollectErrors(styleType, description, tags), name, in.Name)
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Style] {
		return workflow.Bind(domain.ComposeStyle(name, styleType, description, tags), func(st domain.Style) result.Result[domain.Style] {
			return s.styles.UpdateStyle(ctx, st)
		})
	})
	r = emitOnSuccess(ctx, s.events, r, func(st domain.Style) domain.Event {
		return domain.StyleEvent(domain.EventStyleUpdated, st)
	})
	return workflow.MapResult(r, toStyleResponse)
}

// DeleteStyle removes the style together with its example links.
func (s *StyleService) DeleteStyle(ctx context.Context, rawName string) result.Result[StyleResponse] {
	name := domain.NewStyleName(rawName)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return s.requireStyle(ctx, p, name, rawName)
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Style] {
		return s.styles.DeleteStyle(ctx, name.Value())
	})
	r = emitOnSuccess(ctx, s.events, r, func(st domain.Style) domain.Event {
		return domain.StyleEvent(domain.EventStyleDeleted, st)
	})
	return workflow.MapResult(r, toStyleResponse)
}

func (s *StyleService) AddTag(ctx context.Context, rawName, rawTag string) result.Result[StyleResponse] {
	name := domain.NewStyleName(rawName)
	tag := domain.NewTag(rawTag)

	p := workflow.Empty().
		Validate(func(p workflow.Pipeline) workflow.Pipeline {
			return s.requireStyle(ctx, p.CollectErrors(tag), name, rawName)
		}).
		IfAlreadyExists(ctx, workflow.ProbeOf2(name, tag, s.styles.CheckTagExists),
			result.AlreadyExists(domain.FieldTag, rawTag))

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Style] {
		return s.styles.AddTag(ctx, name.Value(), tag.Value())
	})
	r = emitOnSuccess(ctx, s.events, r, func(domain.Style) domain.Event {
		return domain.StyleTagEvent(domain.EventStyleTagAdded, name.Value(), tag.Value())
	})
	return workflow.MapResult(r, toStyleResponse)
}

func (s *StyleService) DeleteTag(ctx context.Context, rawName, rawTag string) result.Result[StyleResponse] {
	name := domain.NewStyleName(rawName)
	tag := domain.NewTag(rawTag)

	p := workflow.Empty().
		Validate(func(p workflow.Pipeline) workflow.Pipeline {
			return s.requireStyle(ctx, p.CollectErrors(tag), name, rawName)
		}).
		IfNotExists(ctx, workflow.ProbeOf2(name, tag, s.styles.CheckTagExists),
			result.NotFound(domain.FieldTag, rawTag))

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Style] {
		return s.styles.DeleteTag(ctx, name.Value(), tag.Value())
	})
	r = emitOnSuccess(ctx, s.events, r, func(domain.Style) domain.Event {
		return domain.StyleTagEvent(domain.EventStyleTagRemoved, name.Value(), tag.Value())
	})
	return workflow.MapResult(r, toStyleResponse)
}

func (s *StyleService) EditDescription(ctx context.Context, rawName, rawDescription string) result.Result[StyleResponse] {
	name := domain.NewStyleName(rawName)
	description := domain.NewDescription(rawDescription)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return s.requireStyle(ctx, p.CollectErrors(description), name, rawName)
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Style] {
		return s.styles.UpdateDescription(ctx, name.Value(), description.Value())
	})
	r = emitOnSuccess(ctx, s.events, r, func(st domain.Style) domain.Event {
		return domain.StyleEvent(domain.EventStyleUpdated, st)
	})
	return workflow.MapResult(r, toStyleResponse)
}
