package service

import (
	"time"

	"github.com/mvaleed/mjcatalog/internal/domain"
)

// VersionResponse is the wire shape of a model version.
type VersionResponse struct {
	Version     string     `json:"version"`
	Parameter   string     `json:"parameter"`
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
	Description string     `json:"description,omitempty"`
}

func toVersionResponse(v domain.Version) VersionResponse {
	return VersionResponse{
		Version:     v.Version.Value(),
		Parameter:   v.Parameter.Value(),
		ReleaseDate: v.ReleaseDate.Value(),
		Description: v.Description.Value(),
	}
}

// PropertyResponse is the wire shape of a version property.
type PropertyResponse struct {
	Version      string   `json:"version"`
	PropertyName string   `json:"propertyName"`
	Parameters   []string `json:"parameters"`
	DefaultValue string   `json:"defaultValue,omitempty"`
	MinValue     string   `json:"minValue,omitempty"`
	MaxValue     string   `json:"maxValue,omitempty"`
	Description  string   `json:"description,omitempty"`
}

func toPropertyResponse(p domain.Property) PropertyResponse {
	return PropertyResponse{
		Version:      p.Version.Value(),
		PropertyName: p.Name.Value(),
		Parameters:   p.ParameterStrings(),
		DefaultValue: p.DefaultValue.Value(),
		MinValue:     p.MinValue.Value(),
		MaxValue:     p.MaxValue.Value(),
		Description:  p.Description.Value(),
	}
}

// StyleResponse is the wire shape of a style preset.
type StyleResponse struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags"`
}

func toStyleResponse(s domain.Style) StyleResponse {
	return StyleResponse{
		Name:        s.Name.Value(),
		Type:        s.Type.Value(),
		Description: s.Description.Value(),
		Tags:        s.TagStrings(),
	}
}

// ExampleLinkResponse is the wire shape of an example link.
type ExampleLinkResponse struct {
	Link    string `json:"link"`
	Style   string `json:"style"`
	Version string `json:"version"`
}

func toExampleLinkResponse(l domain.ExampleLink) ExampleLinkResponse {
	return ExampleLinkResponse{
		Link:    l.Link.Value(),
		Style:   l.StyleName.Value(),
		Version: l.Version.Value(),
	}
}

// PromptHistoryResponse is the wire shape of a prompt history record.
type PromptHistoryResponse struct {
	HistoryID string    `json:"historyId"`
	Prompt    string    `json:"prompt"`
	Version   string    `json:"version"`
	CreatedOn time.Time `json:"createdOn"`
}

func toPromptHistoryResponse(h domain.PromptHistory) PromptHistoryResponse {
	return PromptHistoryResponse{
		HistoryID: h.ID.String(),
		Prompt:    h.Prompt.Value(),
		Version:   h.Version.Value(),
		CreatedOn: h.CreatedOn,
	}
}

// DeletedCount reports how many records a bulk delete removed.
type DeletedCount struct {
	Deleted int64 `json:"deleted"`
}

func mapAll[T, U any](items []T, f func(T) U) []U {
	out := make([]U, len(items))
	for i, item := range items {
		out[i] = f(item)
	}
	return out
}
