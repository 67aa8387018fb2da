package cache

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/storage"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeVersions struct {
	storage.VersionRepository
	versions []domain.Version
	listed   int
	fetched  int
}

func (f *fakeVersions) GetAllVersions(context.Context) result.Result[[]domain.Version] {
	f.listed++
	return result.Ok(append([]domain.Version(nil), f.versions...))
}

func (f *fakeVersions) GetVersion(_ context.Context, v domain.ModelVersion) result.Result[domain.Version] {
	f.fetched++
	for _, existing := range f.versions {
		if existing.Version == v {
			return result.Ok(existing)
		}
	}
	return result.Fail[domain.Version](result.NotFound(domain.FieldModelVersion, v.Value()))
}

func (f *fakeVersions) AddVersion(_ context.Context, v domain.Version) result.Result[domain.Version] {
	f.versions = append(f.versions, v)
	return result.Ok(v)
}

func (f *fakeVersions) DeleteVersion(_ context.Context, v domain.ModelVersion) result.Result[domain.Version] {
	for i, existing := range f.versions {
		if existing.Version == v {
			f.versions = append(f.versions[:i], f.versions[i+1:]...)
			return result.Ok(existing)
		}
	}
	return result.Fail[domain.Version](result.NotFound(domain.FieldModelVersion, v.Value()))
}

func mustVersion(t *testing.T, version, param string) domain.Version {
	t.Helper()
	released := time.Date(2024, 7, 30, 0, 0, 0, 0, time.UTC)
	r := domain.NewVersion(version, param, &released, "a version")
	require.True(t, r.IsSuccess())
	return r.Value()
}

func TestVersionRepositoryReadThrough(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	store := NewStore(client, time.Minute, discardLogger())
	fake := &fakeVersions{versions: []domain.Version{mustVersion(t, "6.1", "--v 6.1")}}
	repo := NewVersionRepository(fake, store)

	first := repo.GetAllVersions(ctx)
	require.True(t, first.IsSuccess())
	second := repo.GetAllVersions(ctx)
	require.True(t, second.IsSuccess())

	assert.Equal(t, 1, fake.listed, "second read served from cache")
	require.Len(t, second.Value(), 1)
	assert.Equal(t, "--v 6.1", second.Value()[0].Parameter.Value())
	assert.True(t, second.Value()[0].ReleaseDate.Value().Equal(*first.Value()[0].ReleaseDate.Value()))
	assert.True(t, mr.Exists(allVersionsKey))

	t.Run("writes invalidate", func(t *testing.T) {
		require.True(t, repo.AddVersion(ctx, mustVersion(t, "7", "--v 7")).IsSuccess())
		assert.False(t, mr.Exists(allVersionsKey))

		after := repo.GetAllVersions(ctx)
		require.True(t, after.IsSuccess())
		assert.Len(t, after.Value(), 2)
		assert.Equal(t, 2, fake.listed)
	})

	t.Run("ttl applied", func(t *testing.T) {
		assert.Equal(t, time.Minute, mr.TTL(allVersionsKey))
	})
}

func TestVersionRepositoryDoesNotCacheFailures(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	fake := &fakeVersions{}
	repo := NewVersionRepository(fake, NewStore(client, time.Minute, discardLogger()))

	missing := domain.NewModelVersion("5").Value()
	for i := 0; i < 2; i++ {
		r := repo.GetVersion(ctx, missing)
		require.True(t, r.IsFailed())
		assert.Equal(t, 404, r.Errors()[0].Code)
	}
	assert.Equal(t, 2, fake.fetched)
	assert.False(t, mr.Exists(versionKey(missing)))
}

func TestCacheFallsThroughWhenRedisIsDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	fake := &fakeVersions{versions: []domain.Version{mustVersion(t, "6.1", "--v 6.1")}}
	repo := NewVersionRepository(fake, NewStore(client, time.Minute, discardLogger()))

	mr.Close()

	r := repo.GetAllVersions(ctx)
	require.True(t, r.IsSuccess())
	assert.Len(t, r.Value(), 1)

	deleted := repo.DeleteVersion(ctx, domain.NewModelVersion("6.1").Value())
	assert.True(t, deleted.IsSuccess())
}

func TestCorruptEntryIsDiscarded(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	fake := &fakeVersions{versions: []domain.Version{mustVersion(t, "6.1", "--v 6.1")}}
	repo := NewVersionRepository(fake, NewStore(client, time.Minute, discardLogger()))

	require.NoError(t, mr.Set(allVersionsKey, `[{"version":"","parameter":"nope"}]`))

	r := repo.GetAllVersions(ctx)
	require.True(t, r.IsSuccess())
	assert.Equal(t, "6.1", r.Value()[0].Version.Value())
	assert.Equal(t, 1, fake.listed)
}

type fakeProperties struct {
	storage.PropertyRepository
	props  []domain.Property
	listed int
}

func (f *fakeProperties) GetAllProperties(_ context.Context, v domain.ModelVersion) result.Result[[]domain.Property] {
	f.listed++
	var out []domain.Property
	for _, p := range f.props {
		if p.Version == v {
			out = append(out, p)
		}
	}
	return result.Ok(out)
}

func (f *fakeProperties) UpdateProperty(_ context.Context, p domain.Property) result.Result[domain.Property] {
	for i := range f.props {
		if f.props[i].Version == p.Version && f.props[i].Name == p.Name {
			f.props[i] = p
		}
	}
	return result.Ok(p)
}

func TestPropertyRepositoryInvalidatesOnUpdate(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	stylize := domain.NewProperty(domain.PropertyInput{
		Version: "6.1", Name: "Stylize", Parameters: []string{"--stylize", "--s"},
		DefaultValue: "100", MinValue: "0", MaxValue: "1000",
	}).Value()
	fake := &fakeProperties{props: []domain.Property{stylize}}
	repo := NewPropertyRepository(fake, NewStore(client, time.Minute, discardLogger()))

	require.True(t, repo.GetAllProperties(ctx, stylize.Version).IsSuccess())
	cached := repo.GetAllProperties(ctx, stylize.Version)
	require.True(t, cached.IsSuccess())
	assert.Equal(t, 1, fake.listed)
	assert.Equal(t, []string{"--stylize", "--s"}, cached.Value()[0].ParameterStrings())

	patched := stylize.Patch(domain.CharacteristicDefaultValue, "250").Value()
	require.True(t, repo.UpdateProperty(ctx, patched).IsSuccess())

	fresh := repo.GetAllProperties(ctx, stylize.Version)
	require.True(t, fresh.IsSuccess())
	assert.Equal(t, 2, fake.listed)
	assert.Equal(t, "250", fresh.Value()[0].DefaultValue.Value())
}

func TestWrapKeepsOtherRepositories(t *testing.T) {
	client, _ := setupTestRedis(t)
	repos := &storage.Repositories{Versions: &fakeVersions{}, Properties: &fakeProperties{}}

	wrapped := Wrap(repos, NewStore(client, time.Minute, discardLogger()))

	assert.IsType(t, &VersionRepository{}, wrapped.Versions)
	assert.IsType(t, &PropertyRepository{}, wrapped.Properties)
	assert.Nil(t, wrapped.Styles)
}

// gatedVersions blocks its first GetAllVersions after taking a snapshot,
// until release is closed or the load's context ends.
type gatedVersions struct {
	storage.VersionRepository
	mu       sync.Mutex
	versions []domain.Version
	once     sync.Once
	entered  chan struct{}
	release  chan struct{}
}

func newGatedVersions() *gatedVersions {
	return &gatedVersions{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedVersions) GetAllVersions(ctx context.Context) result.Result[[]domain.Version] {
	g.mu.Lock()
	snapshot := append([]domain.Version(nil), g.versions...)
	g.mu.Unlock()

	var err error
	g.once.Do(func() {
		close(g.entered)
		select {
		case <-g.release:
		case <-ctx.Done():
			err = ctx.Err()
		}
	})
	if err != nil {
		return result.Fail[[]domain.Version](result.Infrastructure("list versions", err))
	}
	return result.Ok(snapshot)
}

func (g *gatedVersions) AddVersion(_ context.Context, v domain.Version) result.Result[domain.Version] {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.versions = append(g.versions, v)
	return result.Ok(v)
}

func TestLoadOverlappingWriteIsNotStored(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	fake := newGatedVersions()
	repo := NewVersionRepository(fake, NewStore(client, time.Minute, discardLogger()))

	stale := make(chan result.Result[[]domain.Version], 1)
	go func() { stale <- repo.GetAllVersions(ctx) }()
	<-fake.entered

	require.True(t, repo.AddVersion(ctx, mustVersion(t, "7", "--v 7")).IsSuccess())
	close(fake.release)

	old := <-stale
	require.True(t, old.IsSuccess())
	assert.Empty(t, old.Value())
	assert.False(t, mr.Exists(allVersionsKey), "load that raced a write must not be cached")

	fresh := repo.GetAllVersions(ctx)
	require.True(t, fresh.IsSuccess())
	require.Len(t, fresh.Value(), 1)
	assert.Equal(t, "7", fresh.Value()[0].Version.Value())
}

func TestCancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	client, mr := setupTestRedis(t)
	fake := newGatedVersions()
	fake.versions = []domain.Version{mustVersion(t, "6.1", "--v 6.1")}
	repo := NewVersionRepository(fake, NewStore(client, time.Minute, discardLogger()))

	callerCtx, cancel := context.WithCancel(context.Background())
	first := make(chan result.Result[[]domain.Version], 1)
	go func() { first <- repo.GetAllVersions(callerCtx) }()
	<-fake.entered

	waiter := make(chan result.Result[[]domain.Version], 1)
	go func() { waiter <- repo.GetAllVersions(context.Background()) }()

	cancel()
	cancelled := <-first
	require.True(t, cancelled.IsFailed())
	assert.Equal(t, 503, cancelled.Errors()[0].Code)

	close(fake.release)
	shared := <-waiter
	require.True(t, shared.IsSuccess())
	assert.Len(t, shared.Value(), 1)
	assert.Eventually(t, func() bool { return mr.Exists(allVersionsKey) }, time.Second, 10*time.Millisecond)
}
