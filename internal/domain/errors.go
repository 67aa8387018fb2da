// Package domain contains the catalog's value objects and aggregates.
// These types have no knowledge of databases, HTTP, or any infrastructure
// concerns. Every constructor validates its input and returns a
// result.Result; an instance that exists is a valid instance.
package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mvaleed/mjcatalog/internal/result"
)

// Fields named in error messages.
const (
	FieldModelVersion    result.Field = "ModelVersion"
	FieldParam           result.Field = "Param"
	FieldReleaseDate     result.Field = "ReleaseDate"
	FieldDescription     result.Field = "Description"
	FieldStyleName       result.Field = "StyleName"
	FieldStyleType       result.Field = "StyleType"
	FieldTag             result.Field = "Tag"
	FieldExampleLink     result.Field = "ExampleLink"
	FieldPropertyName    result.Field = "PropertyName"
	FieldDefaultValue    result.Field = "DefaultValue"
	FieldMinValue        result.Field = "MinValue"
	FieldMaxValue        result.Field = "MaxValue"
	FieldPrompt          result.Field = "Prompt"
	FieldKeyword         result.Field = "Keyword"
	FieldHistoryID       result.Field = "HistoryID"
	FieldHistoryCount    result.Field = "HistoryCount"
	FieldDateRange       result.Field = "DateRange"
	FieldCharacteristic  result.Field = "PropertyCharacteristic"
	FieldPromptHistory   result.Field = "PromptHistory"
	FieldMidjourneyStyle result.Field = "MidjourneyStyle"
)

// textRule is the shared rule set for string value objects.
type textRule struct {
	field    result.Field
	max      int
	optional bool
	pattern  *regexp.Regexp
	hint     string
}

// check runs every rule against raw and returns the violations in a local
// slice; nothing is shared between calls.
func (r textRule) check(raw string) []result.Error {
	if strings.TrimSpace(raw) == "" {
		if r.optional {
			return nil
		}
		return []result.Error{result.NullOrEmpty(r.field)}
	}

	var errs []result.Error
	if r.max > 0 && utf8.RuneCountInString(raw) > r.max {
		errs = append(errs, result.TooLong(r.field, r.max, raw))
	}
	if r.pattern != nil && !r.pattern.MatchString(raw) {
		errs = append(errs, result.InvalidFormat(r.field, raw, r.hint))
	}
	return errs
}

// newText validates raw and wraps it with wrap on success. Blank input to an
// optional rule becomes the empty value.
func newText[T any](r textRule, raw string, wrap func(string) T) result.Result[T] {
	if r.optional && strings.TrimSpace(raw) == "" {
		raw = ""
	}
	if errs := r.check(raw); len(errs) > 0 {
		return result.Fail[T](errs...)
	}
	return result.Ok(wrap(raw))
}
