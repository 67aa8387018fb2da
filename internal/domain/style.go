package domain

import (
	"slices"

	"github.com/mvaleed/mjcatalog/internal/result"
)

// Style is a named style preset with its family, description and tags.
type Style struct {
	Name        StyleName
	Type        StyleType
	Description Description
	Tags        []Tag
}

// NewStyle collects the failures of every constituent value object before
// deciding whether to build the aggregate.
func NewStyle(name, styleType, description string, tags []string) result.Result[Style] {
	return ComposeStyle(NewStyleName(name), NewStyleType(styleType), NewDescription(description), NewTags(tags))
}

// ComposeStyle builds a Style from already-constructed value objects,
// merging the errors of the failed ones only.
func ComposeStyle(
	name result.Result[StyleName],
	styleType result.Result[StyleType],
	description result.Result[Description],
	tags result.Result[[]Tag],
) result.Result[Style] {
	if errs := result.Merge(name, styleType, description, tags); len(errs) > 0 {
		return result.Fail[Style](errs...)
	}
	return result.Ok(Style{
		Name:        name.Value(),
		Type:        styleType.Value(),
		Description: description.Value(),
		Tags:        slices.Clone(tags.Value()),
	})
}

// HasTag reports whether the style is labelled with tag.
func (s Style) HasTag(tag string) bool {
	return slices.ContainsFunc(s.Tags, func(t Tag) bool { return t.Value() == tag })
}

// AddTag returns a copy of s with tag appended.
func (s Style) AddTag(raw string) result.Result[Style] {
	tag := NewTag(raw)
	if tag.IsFailed() {
		return result.FailFrom[Style](tag)
	}
	if s.HasTag(raw) {
		return result.Fail[Style](result.AlreadyExists(FieldTag, raw))
	}
	next := s.clone()
	next.Tags = append(next.Tags, tag.Value())
	return result.Ok(next)
}

// RemoveTag returns a copy of s without tag.
func (s Style) RemoveTag(raw string) result.Result[Style] {
	tag := NewTag(raw)
	if tag.IsFailed() {
		return result.FailFrom[Style](tag)
	}
	if !s.HasTag(raw) {
		return result.Fail[Style](result.NotFound(FieldTag, raw))
	}
	next := s.clone()
	next.Tags = slices.DeleteFunc(next.Tags, func(t Tag) bool { return t.Value() == raw })
	return result.Ok(next)
}

// EditDescription returns a copy of s with a new description.
func (s Style) EditDescription(raw string) result.Result[Style] {
	d := NewDescription(raw)
	if d.IsFailed() {
		return result.FailFrom[Style](d)
	}
	next := s.clone()
	next.Description = d.Value()
	return result.Ok(next)
}

// TagStrings returns the raw tag values.
func (s Style) TagStrings() []string {
	out := make([]string, len(s.Tags))
	for i, t := range s.Tags {
		out[i] = t.Value()
	}
	return out
}

func (s Style) clone() Style {
	s.Tags = slices.Clone(s.Tags)
	return s
}
