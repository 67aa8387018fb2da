package domain

import (
	"strings"

	"github.com/mvaleed/mjcatalog/internal/result"
)

// Property is a configurable switch of a model version, with its accepted
// parameters and optional bounds.
type Property struct {
	Version      ModelVersion
	Name         PropertyName
	Parameters   []Param
	DefaultValue PropertyValue
	MinValue     PropertyValue
	MaxValue     PropertyValue
	Description  Description
}

// PropertyInput carries the raw fields of a property.
type PropertyInput struct {
	Version      string
	Name         string
	Parameters   []string
	DefaultValue string
	MinValue     string
	MaxValue     string
	Description  string
}

// NewProperty validates every field, then the numeric bounds.
func NewProperty(in PropertyInput) result.Result[Property] {
	v := NewModelVersion(in.Version)
	n := NewPropertyName(in.Name)
	params := NewParams(in.Parameters)
	def := NewPropertyValue(FieldDefaultValue, in.DefaultValue)
	lo := NewPropertyValue(FieldMinValue, in.MinValue)
	hi := NewPropertyValue(FieldMaxValue, in.MaxValue)
	d := NewDescription(in.Description)

	if errs := result.Merge(v, n, params, def, lo, hi, d); len(errs) > 0 {
		return result.Fail[Property](errs...)
	}

	p := Property{
		Version:      v.Value(),
		Name:         n.Value(),
		Parameters:   params.Value(),
		DefaultValue: def.Value(),
		MinValue:     lo.Value(),
		MaxValue:     hi.Value(),
		Description:  d.Value(),
	}
	if errs := p.checkBounds(); len(errs) > 0 {
		return result.Fail[Property](errs...)
	}
	return result.Ok(p)
}

// NewParams builds a non-empty, duplicate-free parameter list.
func NewParams(raw []string) result.Result[[]Param] {
	if len(raw) == 0 {
		return result.Fail[[]Param](result.NullOrEmpty(FieldParam))
	}
	var (
		params []Param
		errs   []result.Error
		seen   = make(map[string]bool, len(raw))
	)
	for i, s := range raw {
		r := NewParam(s)
		if r.IsFailed() {
			for _, e := range r.Errors() {
				errs = append(errs, e.WithMetadata("index", i))
			}
			continue
		}
		if seen[s] {
			errs = append(errs, result.Duplicate(FieldParam, s))
			continue
		}
		seen[s] = true
		params = append(params, r.Value())
	}
	if len(errs) > 0 {
		return result.Fail[[]Param](errs...)
	}
	return result.Ok(params)
}

// checkBounds enforces min <= default <= max for whichever of them are numeric.
func (p Property) checkBounds() []result.Error {
	var errs []result.Error
	lo, hasLo := p.MinValue.Number()
	hi, hasHi := p.MaxValue.Number()
	if hasLo && hasHi && lo > hi {
		errs = append(errs, result.OutOfRange(FieldMinValue, p.MinValue.Value(), "must not exceed MaxValue "+p.MaxValue.Value()))
	}
	if def, ok := p.DefaultValue.Number(); ok {
		if hasLo && def < lo {
			errs = append(errs, result.OutOfRange(FieldDefaultValue, p.DefaultValue.Value(), "must not be below MinValue "+p.MinValue.Value()))
		}
		if hasHi && def > hi {
			errs = append(errs, result.OutOfRange(FieldDefaultValue, p.DefaultValue.Value(), "must not exceed MaxValue "+p.MaxValue.Value()))
		}
	}
	return errs
}

// ParameterStrings returns the raw parameter values.
func (p Property) ParameterStrings() []string {
	out := make([]string, len(p.Parameters))
	for i, param := range p.Parameters {
		out[i] = param.Value()
	}
	return out
}

// Characteristic names a single property field that can be patched.
type Characteristic string

const (
	CharacteristicDefaultValue Characteristic = "defaultvalue"
	CharacteristicMinValue     Characteristic = "minvalue"
	CharacteristicMaxValue     Characteristic = "maxvalue"
	CharacteristicDescription  Characteristic = "description"
	CharacteristicParameters   Characteristic = "parameters"
)

// ParseCharacteristic accepts the characteristic name case-insensitively.
func ParseCharacteristic(raw string) result.Result[Characteristic] {
	c := Characteristic(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CharacteristicDefaultValue, CharacteristicMinValue, CharacteristicMaxValue,
		CharacteristicDescription, CharacteristicParameters:
		return result.Ok(c)
	}
	return result.Fail[Characteristic](result.InvalidFormat(FieldCharacteristic, raw,
		"must be one of defaultvalue, minvalue, maxvalue, description, parameters"))
}

// Patch returns a copy of p with one characteristic replaced and all
// invariants re-checked. Parameters are given comma separated.
func (p Property) Patch(c Characteristic, newValue string) result.Result[Property] {
	in := PropertyInput{
		Version:      p.Version.Value(),
		Name:         p.Name.Value(),
		Parameters:   p.ParameterStrings(),
		DefaultValue: p.DefaultValue.Value(),
		MinValue:     p.MinValue.Value(),
		MaxValue:     p.MaxValue.Value(),
		Description:  p.Description.Value(),
	}
	switch c {
	case CharacteristicDefaultValue:
		in.DefaultValue = newValue
	case CharacteristicMinValue:
		in.MinValue = newValue
	case CharacteristicMaxValue:
		in.MaxValue = newValue
	case CharacteristicDescription:
		in.Description = newValue
	case CharacteristicParameters:
		in.Parameters = splitList(newValue)
	default:
		return result.Fail[Property](result.InvalidFormat(FieldCharacteristic, string(c), "unsupported characteristic"))
	}
	return NewProperty(in)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
