package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/mjcatalog/internal/domain"
)

func TestDeleteVersionCascades(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()

	v := domain.NewVersion("6.1", "--v 6.1", nil, "").Value()
	require.True(t, repos.Versions.AddVersion(ctx, v).IsSuccess())
	require.True(t, repos.Styles.AddStyle(ctx, domain.NewStyle("Dreamy", "Custom", "", nil).Value()).IsSuccess())
	require.True(t, repos.Properties.AddProperty(ctx, domain.NewProperty(domain.PropertyInput{
		Version: "6.1", Name: "Chaos", Parameters: []string{"--chaos"},
	}).Value()).IsSuccess())
	require.True(t, repos.Links.AddLink(ctx, domain.NewExampleLink("https://cdn.example.com/a.png", "Dreamy", "6.1").Value()).IsSuccess())

	require.True(t, repos.Versions.DeleteVersion(ctx, v.Version).IsSuccess())

	assert.Empty(t, repos.Properties.GetAllProperties(ctx, v.Version).Value())
	assert.False(t, repos.Links.CheckAnyLinks(ctx).Value())
	assert.True(t, repos.Styles.CheckStyleExists(ctx, domain.NewStyleName("Dreamy").Value()).Value())
}

func TestDuplicateKeysConflict(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	s := domain.NewStyle("Dreamy", "Custom", "", nil).Value()

	require.True(t, repos.Styles.AddStyle(ctx, s).IsSuccess())
	dup := repos.Styles.AddStyle(ctx, s)
	require.True(t, dup.IsFailed())
	assert.Equal(t, 409, dup.Errors()[0].Code)
}

func TestStyleQueries(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	require.True(t, repos.Styles.AddStyle(ctx, domain.NewStyle("Dreamy", "Custom", "Soft pastel look", []string{"pastel"}).Value()).IsSuccess())
	require.True(t, repos.Styles.AddStyle(ctx, domain.NewStyle("Inked", "Illustration", "bold lines", []string{"ink"}).Value()).IsSuccess())

	byTag := repos.Styles.GetStylesByTags(ctx, []domain.Tag{domain.NewTag("ink").Value(), domain.NewTag("none").Value()})
	require.Len(t, byTag.Value(), 1)
	assert.Equal(t, "Inked", byTag.Value()[0].Name.Value())

	byKeyword := repos.Styles.GetStylesByDescriptionKeyword(ctx, domain.NewKeyword("PASTEL").Value())
	require.Len(t, byKeyword.Value(), 1)
	assert.Equal(t, "Dreamy", byKeyword.Value()[0].Name.Value())

	tagged := repos.Styles.AddTag(ctx, domain.NewStyleName("Dreamy").Value(), domain.NewTag("pastel").Value())
	require.True(t, tagged.IsSuccess())
	assert.Equal(t, []string{"pastel"}, tagged.Value().TagStrings())
}

func TestHistoryOrderingAndPrune(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	now := time.Now().UTC()
	assert.False(t, repos.History.CheckAnyHistory(ctx).Value())

	for i, age := range []time.Duration{72 * time.Hour, time.Hour, 24 * time.Hour} {
		h := domain.RestorePromptHistory(domain.NewPromptHistory("p", "6.1").Value().ID,
			"prompt", "6.1", now.Add(-age))
		require.True(t, h.IsSuccess(), i)
		require.True(t, repos.History.AddHistory(ctx, h.Value()).IsSuccess())
	}

	assert.True(t, repos.History.CheckAnyHistory(ctx).Value())

	last := repos.History.GetLastHistory(ctx, domain.NewHistoryCount(2).Value()).Value()
	require.Len(t, last, 2)
	assert.True(t, last[0].CreatedOn.After(last[1].CreatedOn))

	removed := repos.History.DeleteHistoryBefore(ctx, now.Add(-48*time.Hour))
	assert.Equal(t, int64(1), removed.Value())
	assert.Len(t, repos.History.GetAllHistory(ctx).Value(), 2)
}
