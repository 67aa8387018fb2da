package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mvaleed/mjcatalog/internal/result"
)

// ModelVersion identifies a Midjourney model, e.g. "6.1" or "niji 6".
type ModelVersion struct{ value string }

var modelVersionRule = textRule{
	field:   FieldModelVersion,
	max:     10,
	pattern: regexp.MustCompile(`^(niji )?\d+(\.\d+)?$`),
	hint:    `expected a number such as "6.1" or "niji 6"`,
}

func NewModelVersion(raw string) result.Result[ModelVersion] {
	return newText(modelVersionRule, raw, func(s string) ModelVersion { return ModelVersion{s} })
}

func (v ModelVersion) Value() string  { return v.value }
func (v ModelVersion) String() string { return v.value }

// Param is a command line switch such as "--v 6.1" or "--ar".
type Param struct{ value string }

var paramRule = textRule{
	field:   FieldParam,
	max:     15,
	pattern: regexp.MustCompile(`^--[a-z]+( [A-Za-z0-9.:]+)?$`),
	hint:    `expected "--name" optionally followed by a single value`,
}

func NewParam(raw string) result.Result[Param] {
	return newText(paramRule, raw, func(s string) Param { return Param{s} })
}

func (p Param) Value() string  { return p.value }
func (p Param) String() string { return p.value }

// ReleaseDate is an optional model release date that cannot lie in the future.
type ReleaseDate struct{ value *time.Time }

func NewReleaseDate(raw *time.Time) result.Result[ReleaseDate] {
	if raw == nil {
		return result.Ok(ReleaseDate{})
	}
	if raw.After(time.Now().UTC()) {
		return result.Fail[ReleaseDate](result.OutOfRange(FieldReleaseDate, raw.Format(time.DateOnly), "cannot be in the future"))
	}
	t := raw.UTC()
	return result.Ok(ReleaseDate{value: &t})
}

// Value returns the date or nil when unknown.
func (d ReleaseDate) Value() *time.Time {
	if d.value == nil {
		return nil
	}
	t := *d.value
	return &t
}

// Description is optional free text; an empty input means "no description".
type Description struct{ value string }

var descriptionRule = textRule{field: FieldDescription, max: 500, optional: true}

func NewDescription(raw string) result.Result[Description] {
	return newText(descriptionRule, raw, func(s string) Description { return Description{s} })
}

func (d Description) Value() string  { return d.value }
func (d Description) IsEmpty() bool  { return d.value == "" }
func (d Description) String() string { return d.value }

// StyleName is the unique name of a style preset.
type StyleName struct{ value string }

var styleNameRule = textRule{field: FieldStyleName, max: 150}

func NewStyleName(raw string) result.Result[StyleName] {
	return newText(styleNameRule, raw, func(s string) StyleName { return StyleName{s} })
}

func (n StyleName) Value() string  { return n.value }
func (n StyleName) String() string { return n.value }

// StyleType groups styles into families.
type StyleType struct{ value string }

// KnownStyleTypes lists the accepted style families.
var KnownStyleTypes = []string{
	"Custom", "Artist", "Theme", "Technique", "Abstract", "Photography", "Illustration", "Painting",
}

var styleTypeRule = textRule{field: FieldStyleType, max: 30}

func NewStyleType(raw string) result.Result[StyleType] {
	if errs := styleTypeRule.check(raw); len(errs) > 0 {
		return result.Fail[StyleType](errs...)
	}
	if !slices.Contains(KnownStyleTypes, raw) {
		return result.Fail[StyleType](result.InvalidFormat(FieldStyleType, raw,
			"must be one of "+strings.Join(KnownStyleTypes, ", ")))
	}
	return result.Ok(StyleType{raw})
}

func (t StyleType) Value() string  { return t.value }
func (t StyleType) String() string { return t.value }

// Tag labels a style.
type Tag struct{ value string }

var tagRule = textRule{field: FieldTag, max: 50}

func NewTag(raw string) result.Result[Tag] {
	return newText(tagRule, raw, func(s string) Tag { return Tag{s} })
}

func (t Tag) Value() string  { return t.value }
func (t Tag) String() string { return t.value }

// NewTags builds every tag and reports all failures together. Duplicates
// are rejected.
func NewTags(raw []string) result.Result[[]Tag] {
	var (
		tags []Tag
		errs []result.Error
		seen = make(map[string]bool, len(raw))
	)
	for i, s := range raw {
		r := NewTag(s)
		if r.IsFailed() {
			for _, e := range r.Errors() {
				errs = append(errs, e.WithMetadata("index", i))
			}
			continue
		}
		if seen[s] {
			errs = append(errs, result.Duplicate(FieldTag, s))
			continue
		}
		seen[s] = true
		tags = append(tags, r.Value())
	}
	if len(errs) > 0 {
		return result.Fail[[]Tag](errs...)
	}
	return result.Ok(tags)
}

// ExampleLinkURL is an absolute http(s) link to an example image.
type ExampleLinkURL struct{ value string }

var exampleLinkRule = textRule{field: FieldExampleLink, max: 200}

func NewExampleLinkURL(raw string) result.Result[ExampleLinkURL] {
	if errs := exampleLinkRule.check(raw); len(errs) > 0 {
		return result.Fail[ExampleLinkURL](errs...)
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return result.Fail[ExampleLinkURL](result.InvalidFormat(FieldExampleLink, raw, "expected an absolute http or https URL"))
	}
	return result.Ok(ExampleLinkURL{raw})
}

func (l ExampleLinkURL) Value() string  { return l.value }
func (l ExampleLinkURL) String() string { return l.value }

// PropertyName names a configurable per-version property, e.g. "Stylize".
type PropertyName struct{ value string }

var propertyNameRule = textRule{
	field:   FieldPropertyName,
	max:     25,
	pattern: regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 _-]*$`),
	hint:    "must start with a letter and contain only letters, digits, spaces, '_' or '-'",
}

func NewPropertyName(raw string) result.Result[PropertyName] {
	return newText(propertyNameRule, raw, func(s string) PropertyName { return PropertyName{s} })
}

func (n PropertyName) Value() string  { return n.value }
func (n PropertyName) String() string { return n.value }

// PropertyValue is an optional bound or default of a property.
type PropertyValue struct {
	field result.Field
	value string
}

// NewPropertyValue validates an optional value for one of the
// DefaultValue, MinValue or MaxValue fields.
func NewPropertyValue(field result.Field, raw string) result.Result[PropertyValue] {
	rule := textRule{field: field, max: 50, optional: true}
	return newText(rule, raw, func(s string) PropertyValue { return PropertyValue{field: field, value: s} })
}

func (v PropertyValue) Value() string { return v.value }
func (v PropertyValue) IsEmpty() bool { return v.value == "" }

// Number returns the value parsed as a float when it is numeric.
func (v PropertyValue) Number() (float64, bool) {
	if v.value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.value, 64)
	return f, err == nil
}

// Prompt is the text sent to Midjourney.
type Prompt struct{ value string }

var promptRule = textRule{field: FieldPrompt, max: 1000}

func NewPrompt(raw string) result.Result[Prompt] {
	return newText(promptRule, raw, func(s string) Prompt { return Prompt{s} })
}

func (p Prompt) Value() string  { return p.value }
func (p Prompt) String() string { return p.value }

// Keyword is a search term.
type Keyword struct{ value string }

var keywordRule = textRule{field: FieldKeyword, max: 50}

func NewKeyword(raw string) result.Result[Keyword] {
	return newText(keywordRule, raw, func(s string) Keyword { return Keyword{s} })
}

func (k Keyword) Value() string  { return k.value }
func (k Keyword) String() string { return k.value }

// HistoryCount bounds "last N records" queries.
type HistoryCount struct{ value int }

const MaxHistoryCount = 100

func NewHistoryCount(n int) result.Result[HistoryCount] {
	if n < 1 || n > MaxHistoryCount {
		return result.Fail[HistoryCount](result.OutOfRange(FieldHistoryCount, strconv.Itoa(n),
			fmt.Sprintf("must be between 1 and %d", MaxHistoryCount)))
	}
	return result.Ok(HistoryCount{n})
}

func (c HistoryCount) Value() int { return c.value }

// DateRange is an inclusive [From, To] interval.
type DateRange struct {
	from time.Time
	to   time.Time
}

func NewDateRange(from, to time.Time) result.Result[DateRange] {
	var errs []result.Error
	if from.IsZero() {
		errs = append(errs, result.NullOrEmpty("From"))
	}
	if to.IsZero() {
		errs = append(errs, result.NullOrEmpty("To"))
	}
	if len(errs) == 0 && from.After(to) {
		errs = append(errs, result.OutOfRange(FieldDateRange,
			from.Format(time.DateOnly)+".."+to.Format(time.DateOnly), "start must not be after end"))
	}
	if len(errs) > 0 {
		return result.Fail[DateRange](errs...)
	}
	return result.Ok(DateRange{from: from.UTC(), to: to.UTC()})
}

func (r DateRange) From() time.Time { return r.from }
func (r DateRange) To() time.Time   { return r.to }
