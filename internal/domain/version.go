package domain

import (
	"time"

	"github.com/mvaleed/mjcatalog/internal/result"
)

// Version is a supported Midjourney model version.
type Version struct {
	Version     ModelVersion
	Parameter   Param
	ReleaseDate ReleaseDate
	Description Description
}

// NewVersion validates every field and reports all failures together.
func NewVersion(version, parameter string, releaseDate *time.Time, description string) result.Result[Version] {
	v := NewModelVersion(version)
	p := NewParam(parameter)
	rd := NewReleaseDate(releaseDate)
	d := NewDescription(description)

	if errs := result.Merge(v, p, rd, d); len(errs) > 0 {
		return result.Fail[Version](errs...)
	}
	return result.Ok(Version{
		Version:     v.Value(),
		Parameter:   p.Value(),
		ReleaseDate: rd.Value(),
		Description: d.Value(),
	})
}
