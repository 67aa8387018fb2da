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

// PropertyService handles per-version property use cases.
type PropertyService struct {
	versions   storage.VersionRepository
	properties storage.PropertyRepository
	events     emitter
}

func NewPropertyService(
	versions storage.VersionRepository,
	properties storage.PropertyRepository,
	publisher event.Publisher,
	logger *slog.Logger,
) *PropertyService {
	return &PropertyService{
		versions:   versions,
		properties: properties,
		events:     emitter{publisher: publisher, logger: logger},
	}
}

// requireVersion collects the version's construction errors and checks it exists.
func (s *PropertyService) requireVersion(ctx context.Context, p workflow.Pipeline, version result.Result[domain.ModelVersion], raw string) workflow.Pipeline {
	return p.CollectErrors(version).
		IfNotExists(ctx, workflow.ProbeOf(version, s.versions.CheckVersionExists),
			result.NotFound(domain.FieldModelVersion, raw))
}

func (s *PropertyService) propertyProbe(version result.Result[domain.ModelVersion], name result.Result[domain.PropertyName]) workflow.Probe {
	return workflow.ProbeOf2(version, name, s.properties.CheckPropertyExists)
}

func (s *PropertyService) ListProperties(ctx context.Context, rawVersion string) result.Result[[]PropertyResponse] {
	version := domain.NewModelVersion(rawVersion)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return s.requireVersion(ctx, p, version, rawVersion)
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[[]domain.Property] {
		return s.properties.GetAllProperties(ctx, version.Value())
	})
	return workflow.MapResult(r, func(ps []domain.Property) []PropertyResponse {
		return mapAll(ps, toPropertyResponse)
	})
}

func (s *PropertyService) GetProperty(ctx context.Context, rawVersion, rawName string) result.Result[PropertyResponse] {
	version := domain.NewModelVersion(rawVersion)
	name := domain.NewPropertyName(rawName)

	p := workflow.Empty().
		Validate(func(p workflow.Pipeline) workflow.Pipeline {
			return s.requireVersion(ctx, p.CollectErrors(name), version, rawVersion)
		}).
		IfNotExists(ctx, s.propertyProbe(version, name), result.NotFound(domain.FieldPropertyName, rawName))

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Property] {
		return s.properties.GetProperty(ctx, version.Value(), name.Value())
	})
	return workflow.MapResult(r, toPropertyResponse)
}

func (s *PropertyService) PropertyExists(ctx context.Context, rawVersion, rawName string) result.Result[bool] {
	version := domain.NewModelVersion(rawVersion)
	name := domain.NewPropertyName(rawName)

	p := workflow.Empty().CollectErrors(version, name)
	return workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[bool] {
		return s.properties.CheckPropertyExists(ctx, version.Value(), name.Value())
	})
}

// AddProperty reports a missing version and an already existing property
// together with any field errors.
func (s *PropertyService) AddProperty(ctx context.Context, in domain.PropertyInput) result.Result[PropertyResponse] {
	property := domain.NewProperty(in)
	version := domain.NewModelVersion(in.Version)
	name := domain.NewPropertyName(in.Name)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return p.CollectErrors(property).
			IfNotExists(ctx, workflow.ProbeOf(version, s.versions.CheckVersionExists),
				result.NotFound(domain.FieldModelVersion, in.Version)).
			IfAlreadyExists(ctx, s.propertyProbe(version, name),
				result.AlreadyExists(domain.FieldPropertyName, in.Name))
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Property] {
		return s.properties.AddProperty(ctx, property.Value())
	})
	r = emitOnSuccess(ctx, s.events, r, func(p domain.Property) domain.Event {
		return domain.PropertyEvent(domain.EventPropertyCreated, p)
	})
	return workflow.MapResult(r, toPropertyResponse)
}

// UpdateProperty replaces every field of an existing property.
func (s *PropertyService) UpdateProperty(ctx context.Context, in domain.PropertyInput) result.Result[PropertyResponse] {
	property := domain.NewProperty(in)
	version := domain.NewModelVersion(in.Version)
	name := domain.NewPropertyName(in.Name)

	p := workflow.Empty().Validate(func(p workflow.Pipeline) workflow.Pipeline {
		return p.CollectErrors(property).
			IfNotExists(ctx, workflow.ProbeOf(version, s.versions.CheckVersionExists),
				result.NotFound(domain.FieldModelVersion, in.Version)).
			IfNotExists(ctx, s.propertyProbe(version, name),
				result.NotFound(domain.FieldPropertyName, in.Name))
	})

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Property] {
		return s.properties.UpdateProperty(ctx, property.Value())
	})
	r = emitOnSuccess(ctx, s.events, r, func(p domain.Property) domain.Event {
		return domain.PropertyEvent(domain.EventPropertyUpdated, p)
	})
	return workflow.MapResult(r, toPropertyResponse)
}

// PatchProperty replaces a single characteristic and re-validates the
// whole property before storing it.
func (s *PropertyService) PatchProperty(ctx context.Context, rawVersion, rawName, rawCharacteristic, newValue string) result.Result[PropertyResponse] {
	version := domain.NewModelVersion(rawVersion)
	name := domain.NewPropertyName(rawName)
	characteristic := domain.ParseCharacteristic(rawCharacteristic)

	p := workflow.Empty().
		Validate(func(p workflow.Pipeline) workflow.Pipeline {
			return s.requireVersion(ctx, p.CollectErrors(name, characteristic), version, rawVersion)
		}).
		IfNotExists(ctx, s.propertyProbe(version, name), result.NotFound(domain.FieldPropertyName, rawName))

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Property] {
		current := s.properties.GetProperty(ctx, version.Value(), name.Value())
		patched := workflow.Bind(current, func(prop domain.Property) result.Result[domain.Property] {
			return prop.Patch(characteristic.Value(), newValue)
		})
		return workflow.Bind(patched, func(prop domain.Property) result.Result[domain.Property] {
			return s.properties.UpdateProperty(ctx, prop)
		})
	})
	r = emitOnSuccess(ctx, s.events, r, func(p domain.Property) domain.Event {
		return domain.PropertyEvent(domain.EventPropertyUpdated, p)
	})
	return workflow.MapResult(r, toPropertyResponse)
}

func (s *PropertyService) DeleteProperty(ctx context.Context, rawVersion, rawName string) result.Result[PropertyResponse] {
	version := domain.NewModelVersion(rawVersion)
	name := domain.NewPropertyName(rawName)

	p := workflow.Empty().
		Validate(func(p workflow.Pipeline) workflow.Pipeline {
			return s.requireVersion(ctx, p.CollectErrors(name), version, rawVersion)
		}).
		IfNotExists(ctx, s.propertyProbe(version, name), result.NotFound(domain.FieldPropertyName, rawName))

	r := workflow.ExecuteIfNoErrors(ctx, p, func(ctx context.Context) result.Result[domain.Property] {
		return s.properties.DeleteProperty(ctx, version.Value(), name.Value())
	})
	r = emitOnSuccess(ctx, s.events, r, func(p domain.Property) domain.Event {
		return domain.PropertyEvent(domain.EventPropertyDeleted, p)
	})
	return workflow.MapResult(r, toPropertyResponse)
}
