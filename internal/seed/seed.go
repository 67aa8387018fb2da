// Package seed loads a catalog from a YAML document and applies it through
// the service layer, so seeded data passes the same validation as API writes.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/service"
)

// Catalog is the on-disk seed format.
type Catalog struct {
	Versions   []Version  `yaml:"versions"`
	Properties []Property `yaml:"properties"`
	Styles     []Style    `yaml:"styles"`
	Links      []Link     `yaml:"links"`
}

type Version struct {
	Version     string `yaml:"version"`
	Parameter   string `yaml:"parameter"`
	ReleaseDate string `yaml:"release_date"`
	Description string `yaml:"description"`
}

type Property struct {
	Version      string   `yaml:"version"`
	Name         string   `yaml:"name"`
	Parameters   []string `yaml:"parameters"`
	DefaultValue string   `yaml:"default"`
	MinValue     string   `yaml:"min"`
	MaxValue     string   `yaml:"max"`
	Description  string   `yaml:"description"`
}

type Style struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

type Link struct {
	Link    string `yaml:"link"`
	Style   string `yaml:"style"`
	Version string `yaml:"version"`
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &c, nil
}

// ParseFile reads and decodes the seed file at path.
func ParseFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Counts tallies the outcome for one kind of record.
type Counts struct {
	Created int
	Skipped int
	Failed  int
}

// Report summarises an Apply run.
type Report struct {
	Versions   Counts
	Properties Counts
	Styles     Counts
	Links      Counts
}

// Apply writes the catalog in dependency order: versions, styles, properties
// then links. Records that already exist are skipped, so re-running a seed
// is safe. Every other failure is collected and returned together.
func Apply(ctx context.Context, svc *service.Services, c *Catalog) (Report, error) {
	var (
		report Report
		errs   []error
	)

	record := func(counts *Counts, what string, failures []result.Error, failed bool) {
		switch {
		case !failed:
			counts.Created++
		case onlyConflicts(failures):
			counts.Skipped++
		default:
			counts.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", what, result.Fail[struct{}](failures...).Err()))
		}
	}

	for _, v := range c.Versions {
		in := service.AddVersionInput{Version: v.Version, Parameter: v.Parameter, Description: v.Description}
		if v.ReleaseDate != "" {
			d, err := time.Parse(time.DateOnly, v.ReleaseDate)
			if err != nil {
				report.Versions.Failed++
				errs = append(errs, fmt.Errorf("version %q: release_date %q is not YYYY-MM-DD", v.Version, v.ReleaseDate))
				continue
			}
			in.ReleaseDate = &d
		}
		r := svc.Versions.AddVersion(ctx, in)
		record(&report.Versions, fmt.Sprintf("version %q", v.Version), r.Errors(), r.IsFailed())
	}

	for _, s := range c.Styles {
		r := svc.Styles.AddStyle(ctx, service.StyleInput{
			Name: s.Name, Type: s.Type, Description: s.Description, Tags: s.Tags,
		})
		record(&report.Styles, fmt.Sprintf("style %q", s.Name), r.Errors(), r.IsFailed())
	}

	for _, p := range c.Properties {
		r := svc.Properties.AddProperty(ctx, domain.PropertyInput{
			Version:      p.Version,
			Name:         p.Name,
			Parameters:   p.Parameters,
			DefaultValue: p.DefaultValue,
			MinValue:     p.MinValue,
			MaxValue:     p.MaxValue,
			Description:  p.Description,
		})
		record(&report.Properties, fmt.Sprintf("property %q/%q", p.Version, p.Name), r.Errors(), r.IsFailed())
	}

	for _, l := range c.Links {
		r := svc.Links.AddLink(ctx, service.AddExampleLinkInput{Link: l.Link, Style: l.Style, Version: l.Version})
		record(&report.Links, fmt.Sprintf("link %q", l.Link), r.Errors(), r.IsFailed())
	}

	return report, errors.Join(errs...)
}

func onlyConflicts(errs []result.Error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if e.Code != http.StatusConflict {
			return false
		}
	}
	return true
}
