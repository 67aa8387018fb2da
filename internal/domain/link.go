package domain

import "github.com/mvaleed/mjcatalog/internal/result"

// ExampleLink points to an example image rendered with a style on a given
// model version.
type ExampleLink struct {
	Link      ExampleLinkURL
	StyleName StyleName
	Version   ModelVersion
}

func NewExampleLink(link, styleName, version string) result.Result[ExampleLink] {
	l := NewExampleLinkURL(link)
	s := NewStyleName(styleName)
	v := NewModelVersion(version)

	if errs := result.Merge(l, s, v); len(errs) > 0 {
		return result.Fail[ExampleLink](errs...)
	}
	return result.Ok(ExampleLink{Link: l.Value(), StyleName: s.Value(), Version: v.Value()})
}
