package seed

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/mjcatalog/internal/event"
	"github.com/mvaleed/mjcatalog/internal/service"
	"github.com/mvaleed/mjcatalog/internal/storage/memory"
)

const catalogYAML = `
versions:
  - version: "6"
    parameter: "--v 6"
    release_date: "2023-12-20"
    description: Sixth model generation
  - version: "niji 6"
    parameter: "--niji"
styles:
  - name: Watercolor
    type: Painting
    description: Soft washes and bleeding edges
    tags: [soft, pastel]
properties:
  - version: "6"
    name: Stylize
    parameters: ["--stylize", "--s"]
    default: "100"
    min: "0"
    max: "1000"
links:
  - link: https://example.com/watercolor-1.png
    style: Watercolor
    version: "6"
`

func newServices() *service.Services {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.New(memory.NewStore().Repositories(), event.NewNoopPublisher(), logger)
}

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(catalogYAML))
	require.NoError(t, err)

	require.Len(t, c.Versions, 2)
	assert.Equal(t, "2023-12-20", c.Versions[0].ReleaseDate)
	require.Len(t, c.Properties, 1)
	assert.Equal(t, []string{"--stylize", "--s"}, c.Properties[0].Parameters)
	assert.Equal(t, []string{"soft", "pastel"}, c.Styles[0].Tags)
	assert.Len(t, c.Links, 1)
}

func TestParseEmptyDocument(t *testing.T) {
	c, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, c.Versions)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("versions:\n  - version: \"6\"\n    colour: red\n"))
	require.Error(t, err)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	svc := newServices()
	c, err := Parse(strings.NewReader(catalogYAML))
	require.NoError(t, err)

	report, err := Apply(ctx, svc, c)
	require.NoError(t, err)
	assert.Equal(t, Counts{Created: 2}, report.Versions)
	assert.Equal(t, Counts{Created: 1}, report.Styles)
	assert.Equal(t, Counts{Created: 1}, report.Properties)
	assert.Equal(t, Counts{Created: 1}, report.Links)

	props := svc.Properties.ListProperties(ctx, "6")
	require.True(t, props.IsSuccess(), props.Err())
	assert.Len(t, props.Value(), 1)

	t.Run("second run skips existing records", func(t *testing.T) {
		report, err := Apply(ctx, svc, c)
		require.NoError(t, err)
		assert.Equal(t, Counts{Skipped: 2}, report.Versions)
		assert.Equal(t, Counts{Skipped: 1}, report.Styles)
		assert.Equal(t, Counts{Skipped: 1}, report.Properties)
		assert.Equal(t, Counts{Skipped: 1}, report.Links)
	})
}

func TestApplyCollectsFailures(t *testing.T) {
	svc := newServices()
	c := &Catalog{
		Versions: []Version{
			{Version: "7", Parameter: "--v 7", ReleaseDate: "last tuesday"},
			{Version: "", Parameter: "--v"},
		},
		Styles: []Style{{Name: "Noir", Type: "NotAType"}},
		Links:  []Link{{Link: "https://example.com/a.png", Style: "Missing", Version: "9"}},
	}

	report, err := Apply(context.Background(), svc, c)
	require.Error(t, err)
	assert.Equal(t, Counts{Failed: 2}, report.Versions)
	assert.Equal(t, Counts{Failed: 1}, report.Styles)
	assert.Equal(t, Counts{Failed: 1}, report.Links)
	assert.Contains(t, err.Error(), "last tuesday")
	assert.Contains(t, err.Error(), `style "Noir"`)
}
