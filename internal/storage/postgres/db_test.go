package postgres

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/result"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  int
		layer result.Layer
	}{
		{"unique violation", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "styles_pkey"}, http.StatusConflict, result.LayerPersistence},
		{"foreign key violation", &pgconn.PgError{Code: foreignKeyViolation}, http.StatusConflict, result.LayerPersistence},
		{"check violation", &pgconn.PgError{Code: checkViolation}, http.StatusBadRequest, result.LayerPersistence},
		{"other driver error", errors.New("connection reset"), http.StatusInternalServerError, result.LayerPersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mapError("op", tt.err)
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, tt.layer, e.Layer)
			assert.Contains(t, e.Message, "op")
		})
	}
}

type fakeRow struct{ err error }

func (r fakeRow) Scan(...any) error { return r.err }

// rowDB serves a single canned row to QueryRow.
type rowDB struct{ row fakeRow }

func (d rowDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not supported")
}

func (d rowDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (d rowDB) QueryRow(context.Context, string, ...any) pgx.Row { return d.row }

func scanNothing(row scannable) result.Result[string] {
	if err := row.Scan(); err != nil {
		return result.Fail[string](scanError("scan", err))
	}
	return result.Ok("x")
}

func TestOne(t *testing.T) {
	ctx := context.Background()
	notFound := result.NotFound(domain.FieldStyleName, "Dreamy")

	t.Run("no rows becomes not found", func(t *testing.T) {
		r := one(ctx, rowDB{fakeRow{err: pgx.ErrNoRows}}, "get", scanNothing, notFound, "SELECT")
		require.True(t, r.IsFailed())
		assert.Equal(t, []result.Error{notFound}, r.Errors())
	})

	t.Run("other errors pass through", func(t *testing.T) {
		r := one(ctx, rowDB{fakeRow{err: errors.New("boom")}}, "get", scanNothing, notFound, "SELECT")
		require.True(t, r.IsFailed())
		assert.Equal(t, http.StatusInternalServerError, r.Errors()[0].Code)
	})

	t.Run("success", func(t *testing.T) {
		r := one(ctx, rowDB{}, "get", scanNothing, notFound, "SELECT")
		require.True(t, r.IsSuccess())
		assert.Equal(t, "x", r.Value())
	})
}

func TestExists(t *testing.T) {
	r := exists(context.Background(), rowDB{fakeRow{err: errors.New("down")}}, "check", "SELECT")
	require.True(t, r.IsFailed())
	assert.Equal(t, result.LayerPersistence, r.Errors()[0].Layer)
}

func TestCorrupt(t *testing.T) {
	errs := corrupt("scan style", domain.NewStyleName("").Errors())
	require.Len(t, errs, 1)
	assert.Equal(t, result.LayerPersistence, errs[0].Layer)
	assert.Contains(t, errs[0].Message, "stored row is invalid")
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	require.NotNil(t, nullString("x"))
	assert.Equal(t, "x", deref(nullString("x")))
	assert.Equal(t, "", deref(nil))
}

// openTestDB connects to TEST_DATABASE_URL and applies migrations. Tests
// that need it are skipped when the variable is unset.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Migrate(ctx)
	require.NoError(t, err)

	_, err = db.Pool().Exec(ctx, `TRUNCATE prompt_history, example_links, styles, properties, versions`)
	require.NoError(t, err)
	return db
}

func TestRepositoriesIntegration(t *testing.T) {
	db := openTestDB(t)
	repos := db.Repositories()
	ctx := context.Background()

	released := time.Date(2024, 7, 30, 0, 0, 0, 0, time.UTC)
	v := domain.NewVersion("6.1", "--v 6.1", &released, "").Value()

	t.Run("versions", func(t *testing.T) {
		added := repos.Versions.AddVersion(ctx, v)
		require.True(t, added.IsSuccess(), added.Err())

		assert.True(t, repos.Versions.CheckVersionExists(ctx, v.Version).Value())
		assert.True(t, repos.Versions.CheckParameterExists(ctx, v.Parameter).Value())

		dup := repos.Versions.AddVersion(ctx, v)
		require.True(t, dup.IsFailed())
		assert.Equal(t, http.StatusConflict, dup.Errors()[0].Code)

		missing := repos.Versions.GetVersion(ctx, domain.NewModelVersion("5").Value())
		require.True(t, missing.IsFailed())
		assert.Equal(t, http.StatusNotFound, missing.Errors()[0].Code)
	})

	t.Run("properties", func(t *testing.T) {
		p := domain.NewProperty(domain.PropertyInput{
			Version: "6.1", Name: "Stylize", Parameters: []string{"--stylize", "--s"},
			DefaultValue: "100", MinValue: "0", MaxValue: "1000",
		}).Value()
		require.True(t, repos.Properties.AddProperty(ctx, p).IsSuccess())

		patched := p.Patch(domain.CharacteristicDefaultValue, "250").Value()
		updated := repos.Properties.UpdateProperty(ctx, patched)
		require.True(t, updated.IsSuccess(), updated.Err())
		assert.Equal(t, "250", updated.Value().DefaultValue.Value())

		all := repos.Properties.GetAllProperties(ctx, v.Version)
		require.True(t, all.IsSuccess())
		assert.Len(t, all.Value(), 1)
	})

	t.Run("styles and links", func(t *testing.T) {
		s := domain.NewStyle("Dreamy", "Custom", "soft pastel look", []string{"pastel"}).Value()
		require.True(t, repos.Styles.AddStyle(ctx, s).IsSuccess())

		tagged := repos.Styles.AddTag(ctx, s.Name, domain.NewTag("soft").Value())
		require.True(t, tagged.IsSuccess())
		assert.Equal(t, []string{"pastel", "soft"}, tagged.Value().TagStrings())

		byTag := repos.Styles.GetStylesByTags(ctx, []domain.Tag{domain.NewTag("soft").Value()})
		require.True(t, byTag.IsSuccess())
		assert.Len(t, byTag.Value(), 1)

		byKeyword := repos.Styles.GetStylesByDescriptionKeyword(ctx, domain.NewKeyword("PASTEL").Value())
		require.True(t, byKeyword.IsSuccess())
		assert.Len(t, byKeyword.Value(), 1)

		l := domain.NewExampleLink("https://cdn.example.com/a.png", "Dreamy", "6.1").Value()
		require.True(t, repos.Links.AddLink(ctx, l).IsSuccess())
		assert.True(t, repos.Links.CheckAnyLinks(ctx).Value())

		deleted := repos.Styles.DeleteStyle(ctx, s.Name)
		require.True(t, deleted.IsSuccess(), deleted.Err())
		assert.False(t, repos.Links.CheckAnyLinks(ctx).Value())
	})

	t.Run("history", func(t *testing.T) {
		old := domain.RestorePromptHistory(domain.NewPromptHistory("x", "6.1").Value().ID,
			"an old fox", "6.1", time.Now().AddDate(0, 0, -120)).Value()
		fresh := domain.NewPromptHistory("a new fox", "6.1").Value()
		require.True(t, repos.History.AddHistory(ctx, old).IsSuccess())
		require.True(t, repos.History.AddHistory(ctx, fresh).IsSuccess())

		last := repos.History.GetLastHistory(ctx, domain.NewHistoryCount(1).Value())
		require.True(t, last.IsSuccess())
		require.Len(t, last.Value(), 1)
		assert.Equal(t, fresh.ID, last.Value()[0].ID)

		removed := repos.History.DeleteHistoryBefore(ctx, time.Now().AddDate(0, 0, -90))
		require.True(t, removed.IsSuccess())
		assert.Equal(t, int64(1), removed.Value())
	})

	t.Run("deleting a version cascades", func(t *testing.T) {
		deleted := repos.Versions.DeleteVersion(ctx, v.Version)
		require.True(t, deleted.IsSuccess(), deleted.Err())
		assert.False(t, repos.Properties.CheckPropertyExists(ctx, v.Version, domain.NewPropertyName("Stylize").Value()).Value())
	})
}
