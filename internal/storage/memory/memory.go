// Package memory implements the storage interfaces in process memory.
// It backs the test suites and `catalogctl seed --dry-run`, and mirrors the
// PostgreSQL behaviour the services rely on: unique keys report 409,
// deleting a version drops its properties and links, deleting a style
// drops its links.
package memory

import (
	"context"
	"net/http"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mvaleed/mjcatalog/internal/domain"
	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/storage"
)

var (
	_ storage.VersionRepository       = (*VersionRepository)(nil)
	_ storage.PropertyRepository      = (*PropertyRepository)(nil)
	_ storage.StyleRepository         = (*StyleRepository)(nil)
	_ storage.ExampleLinkRepository   = (*ExampleLinkRepository)(nil)
	_ storage.PromptHistoryRepository = (*PromptHistoryRepository)(nil)
)

// Store holds every catalog table behind one lock.
type Store struct {
	mu         sync.RWMutex
	versions   map[string]domain.Version
	properties map[string]domain.Property
	styles     map[string]domain.Style
	links      map[string]domain.ExampleLink
	history    map[uuid.UUID]domain.PromptHistory
}

func NewStore() *Store {
	return &Store{
		versions:   make(map[string]domain.Version),
		properties: make(map[string]domain.Property),
		styles:     make(map[string]domain.Style),
		links:      make(map[string]domain.ExampleLink),
		history:    make(map[uuid.UUID]domain.PromptHistory),
	}
}

// Repositories returns all repositories backed by the store.
func (s *Store) Repositories() *storage.Repositories {
	return &storage.Repositories{
		Versions:   &VersionRepository{s},
		Properties: &PropertyRepository{s},
		Styles:     &StyleRepository{s},
		Links:      &ExampleLinkRepository{s},
		History:    &PromptHistoryRepository{s},
	}
}

func conflict(what, key string) result.Error {
	return result.New(result.LayerPersistence, http.StatusConflict, what+" "+key+" already stored")
}

func propertyKey(v domain.ModelVersion, n domain.PropertyName) string {
	return v.Value() + "\x00" + n.Value()
}

func sortedValues[K comparable, V any](m map[K]V, less func(a, b V) bool) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// VersionRepository implements storage.VersionRepository.
type VersionRepository struct{ s *Store }

func (r *VersionRepository) CheckVersionExists(_ context.Context, v domain.ModelVersion) result.Result[bool] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.versions[v.Value()]
	return result.Ok(ok)
}

func (r *VersionRepository) CheckParameterExists(_ context.Context, p domain.Param) result.Result[bool] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, v := range r.s.versions {
		if v.Parameter == p {
			return result.Ok(true)
		}
	}
	return result.Ok(false)
}

func (r *VersionRepository) GetAllVersions(context.Context) result.Result[[]domain.Version] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return result.Ok(sortedValues(r.s.versions, func(a, b domain.Version) bool {
		return a.Version.Value() < b.Version.Value()
	}))
}

func (r *VersionRepository) GetVersion(_ context.Context, v domain.ModelVersion) result.Result[domain.Version] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	found, ok := r.s.versions[v.Value()]
	if !ok {
		return result.Fail[domain.Version](result.NotFound(domain.FieldModelVersion, v.Value()))
	}
	return result.Ok(found)
}

func (r *VersionRepository) AddVersion(_ context.Context, v domain.Version) result.Result[domain.Version] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.versions[v.Version.Value()]; ok {
		return result.Fail[domain.Version](conflict("version", v.Version.Value()))
	}
	r.s.versions[v.Version.Value()] = v
	return result.Ok(v)
}

func (r *VersionRepository) DeleteVersion(_ context.Context, v domain.ModelVersion) result.Result[domain.Version] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found, ok := r.s.versions[v.Value()]
	if !ok {
		return result.Fail[domain.Version](result.NotFound(domain.FieldModelVersion, v.Value()))
	}
	delete(r.s.versions, v.Value())
	for k, p := range r.s.properties {
		if p.Version == v {
			delete(r.s.properties, k)
		}
	}
	for k, l := range r.s.links {
		if l.Version == v {
			delete(r.s.links, k)
		}
	}
	return result.Ok(found)
}

// PropertyRepository implements storage.PropertyRepository.
type PropertyRepository struct{ s *Store }

func (r *PropertyRepository) CheckPropertyExists(_ context.Context, v domain.ModelVersion, n domain.PropertyName) result.Result[bool] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.properties[propertyKey(v, n)]
	return result.Ok(ok)
}

func (r *PropertyRepository) GetAllProperties(_ context.Context, v domain.ModelVersion) result.Result[[]domain.Property] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Property{}
	for _, p := range sortedValues(r.s.properties, func(a, b domain.Property) bool {
		return a.Name.Value() < b.Name.Value()
	}) {
		if p.Version == v {
			out = append(out, p)
		}
	}
	return result.Ok(out)
}

func (r *PropertyRepository) GetProperty(_ context.Context, v domain.ModelVersion, n domain.PropertyName) result.Result[domain.Property] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.properties[propertyKey(v, n)]
	if !ok {
		return result.Fail[domain.Property](result.NotFound(domain.FieldPropertyName, n.Value()))
	}
	return result.Ok(p)
}

func (r *PropertyRepository) AddProperty(_ context.Context, p domain.Property) result.Result[domain.Property] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.versions[p.Version.Value()]; !ok {
		return result.Fail[domain.Property](result.New(result.LayerPersistence, http.StatusConflict,
			"version "+p.Version.Value()+" is not stored"))
	}
	key := propertyKey(p.Version, p.Name)
	if _, ok := r.s.properties[key]; ok {
		return result.Fail[domain.Property](conflict("property", p.Name.Value()))
	}
	r.s.properties[key] = p
	return result.Ok(p)
}

func (r *PropertyRepository) UpdateProperty(_ context.Context, p domain.Property) result.Result[domain.Property] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := propertyKey(p.Version, p.Name)
	if _, ok := r.s.properties[key]; !ok {
		return result.Fail[domain.Property](result.NotFound(domain.FieldPropertyName, p.Name.Value()))
	}
	r.s.properties[key] = p
	return result.Ok(p)
}

func (r *PropertyRepository) DeleteProperty(_ context.Context, v domain.ModelVersion, n domain.PropertyName) result.Result[domain.Property] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := propertyKey(v, n)
	p, ok := r.s.properties[key]
	if !ok {
		return result.Fail[domain.Property](result.NotFound(domain.FieldPropertyName, n.Value()))
	}
	delete(r.s.properties, key)
	return result.Ok(p)
}

// StyleRepository implements storage.StyleRepository.
type StyleRepository struct{ s *Store }

func (r *StyleRepository) CheckStyleExists(_ context.Context, n domain.StyleName) result.Result[bool] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.styles[n.Value()]
	return result.Ok(ok)
}

func (r *StyleRepository) CheckTagExists(_ context.Context, n domain.StyleName, t domain.Tag) result.Result[bool] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.styles[n.Value()]
	return result.Ok(ok && st.HasTag(t.Value()))
}

func (r *StyleRepository) filter(keep func(domain.Style) bool) result.Result[[]domain.Style] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Style{}
	for _, st := range sortedValues(r.s.styles, func(a, b domain.Style) bool {
		return a.Name.Value() < b.Name.Value()
	}) {
		if keep(st) {
			out = append(out, st)
		}
	}
	return result.Ok(out)
}

func (r *StyleRepository) GetAllStyles(context.Context) result.Result[[]domain.Style] {
	return r.filter(func(domain.Style) bool { return true })
}

func (r *StyleRepository) GetStyle(_ context.Context, n domain.StyleName) result.Result[domain.Style] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.styles[n.Value()]
	if !ok {
		return result.Fail[domain.Style](result.NotFound(domain.FieldStyleName, n.Value()))
	}
	return result.Ok(st)
}

func (r *StyleRepository) GetStylesByType(_ context.Context, t domain.StyleType) result.Result[[]domain.Style] {
	return r.filter(func(st domain.Style) bool { return st.Type == t })
}

func (r *StyleRepository) GetStylesByTags(_ context.Context, tags []domain.Tag) result.Result[[]domain.Style] {
	return r.filter(func(st domain.Style) bool {
		return slices.ContainsFunc(tags, func(t domain.Tag) bool { return st.HasTag(t.Value()) })
	})
}

func (r *StyleRepository) GetStylesByDescriptionKeyword(_ context.Context, k domain.Keyword) result.Result[[]domain.Style] {
	return r.filter(func(st domain.Style) bool { return containsFold(st.Description.Value(), k.Value()) })
}

func (r *StyleRepository) AddStyle(_ context.Context, st domain.Style) result.Result[domain.Style] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.styles[st.Name.Value()]; ok {
		return result.Fail[domain.Style](conflict("style", st.Name.Value()))
	}
	r.s.styles[st.Name.Value()] = st
	return result.Ok(st)
}

func (r *StyleRepository) UpdateStyle(_ context.Context, st domain.Style) result.Result[domain.Style] {
	return r.mutate(st.Name, func(domain.Style) result.Result[domain.Style] { return result.Ok(st) })
}

func (r *StyleRepository) DeleteStyle(_ context.Context, n domain.StyleName) result.Result[domain.Style] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.styles[n.Value()]
	if !ok {
		return result.Fail[domain.Style](result.NotFound(domain.FieldStyleName, n.Value()))
	}
	delete(r.s.styles, n.Value())
	for k, l := range r.s.links {
		if l.StyleName == n {
			delete(r.s.links, k)
		}
	}
	return result.Ok(st)
}

// AddTag is idempotent like its PostgreSQL counterpart.
func (r *StyleRepository) AddTag(_ context.Context, n domain.StyleName, t domain.Tag) result.Result[domain.Style] {
	return r.mutate(n, func(st domain.Style) result.Result[domain.Style] {
		if st.HasTag(t.Value()) {
			return result.Ok(st)
		}
		return st.AddTag(t.Value())
	})
}

func (r *StyleRepository) DeleteTag(_ context.Context, n domain.StyleName, t domain.Tag) result.Result[domain.Style] {
	return r.mutate(n, func(st domain.Style) result.Result[domain.Style] {
		if !st.HasTag(t.Value()) {
			return result.Ok(st)
		}
		return st.RemoveTag(t.Value())
	})
}

func (r *StyleRepository) UpdateDescription(_ context.Context, n domain.StyleName, d domain.Description) result.Result[domain.Style] {
	return r.mutate(n, func(st domain.Style) result.Result[domain.Style] {
		return st.EditDescription(d.Value())
	})
}

func (r *StyleRepository) mutate(n domain.StyleName, change func(domain.Style) result.Result[domain.Style]) result.Result[domain.Style] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.styles[n.Value()]
	if !ok {
		return result.Fail[domain.Style](result.NotFound(domain.FieldStyleName, n.Value()))
	}
	next := change(st)
	if next.IsSuccess() {
		r.s.styles[n.Value()] = next.Value()
	}
	return next
}

// ExampleLinkRepository implements storage.ExampleLinkRepository.
type ExampleLinkRepository struct{ s *Store }

func (r *ExampleLinkRepository) CheckLinkExists(_ context.Context, l domain.ExampleLinkURL) result.Result[bool] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.links[l.Value()]
	return result.Ok(ok)
}

func (r *ExampleLinkRepository) CheckAnyLinks(context.Context) result.Result[bool] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return result.Ok(len(r.s.links) > 0)
}

func (r *ExampleLinkRepository) filter(keep func(domain.ExampleLink) bool) result.Result[[]domain.ExampleLink] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ExampleLink{}
	for _, l := range sortedValues(r.s.links, func(a, b domain.ExampleLink) bool {
		return a.Link.Value() < b.Link.Value()
	}) {
		if keep(l) {
			out = append(out, l)
		}
	}
	return result.Ok(out)
}

func (r *ExampleLinkRepository) GetAllLinks(context.Context) result.Result[[]domain.ExampleLink] {
	return r.filter(func(domain.ExampleLink) bool { return true })
}

func (r *ExampleLinkRepository) GetLinksByStyle(_ context.Context, n domain.StyleName) result.Result[[]domain.ExampleLink] {
	return r.filter(func(l domain.ExampleLink) bool { return l.StyleName == n })
}

func (r *ExampleLinkRepository) GetLinksByStyleAndVersion(_ context.Context, n domain.StyleName, v domain.ModelVersion) result.Result[[]domain.ExampleLink] {
	return r.filter(func(l domain.ExampleLink) bool { return l.StyleName == n && l.Version == v })
}

func (r *ExampleLinkRepository) AddLink(_ context.Context, l domain.ExampleLink) result.Result[domain.ExampleLink] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.links[l.Link.Value()]; ok {
		return result.Fail[domain.ExampleLink](conflict("link", l.Link.Value()))
	}
	r.s.links[l.Link.Value()] = l
	return result.Ok(l)
}

func (r *ExampleLinkRepository) DeleteLink(_ context.Context, l domain.ExampleLinkURL) result.Result[domain.ExampleLink] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found, ok := r.s.links[l.Value()]
	if !ok {
		return result.Fail[domain.ExampleLink](result.NotFound(domain.FieldExampleLink, l.Value()))
	}
	delete(r.s.links, l.Value())
	return result.Ok(found)
}

func (r *ExampleLinkRepository) DeleteLinksByStyle(_ context.Context, n domain.StyleName) result.Result[int64] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed int64
	for k, l := range r.s.links {
		if l.StyleName == n {
			delete(r.s.links, k)
			removed++
		}
	}
	return result.Ok(removed)
}

// PromptHistoryRepository implements storage.PromptHistoryRepository.
type PromptHistoryRepository struct{ s *Store }

func (r *PromptHistoryRepository) CheckAnyHistory(context.Context) result.Result[bool] {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return result.Ok(len(r.s.history) > 0)
}

// newestFirst returns the matching records ordered by CreatedOn descending.
func (r *PromptHistoryRepository) newestFirst(keep func(domain.PromptHistory) bool) []domain.PromptHistory {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.PromptHistory{}
	for _, h := range sortedValues(r.s.history, func(a, b domain.PromptHistory) bool {
		return a.CreatedOn.After(b.CreatedOn)
	}) {
		if keep(h) {
			out = append(out, h)
		}
	}
	return out
}

func (r *PromptHistoryRepository) GetAllHistory(context.Context) result.Result[[]domain.PromptHistory] {
	return result.Ok(r.newestFirst(func(domain.PromptHistory) bool { return true }))
}

func (r *PromptHistoryRepository) GetLastHistory(_ context.Context, c domain.HistoryCount) result.Result[[]domain.PromptHistory] {
	all := r.newestFirst(func(domain.PromptHistory) bool { return true })
	if len(all) > c.Value() {
		all = all[:c.Value()]
	}
	return result.Ok(all)
}

func (r *PromptHistoryRepository) GetHistoryByKeyword(_ context.Context, k domain.Keyword) result.Result[[]domain.PromptHistory] {
	return result.Ok(r.newestFirst(func(h domain.PromptHistory) bool { return containsFold(h.Prompt.Value(), k.Value()) }))
}

func (r *PromptHistoryRepository) GetHistoryByDateRange(_ context.Context, d domain.DateRange) result.Result[[]domain.PromptHistory] {
	return result.Ok(r.newestFirst(func(h domain.PromptHistory) bool {
		return !h.CreatedOn.Before(d.From()) && !h.CreatedOn.After(d.To())
	}))
}

func (r *PromptHistoryRepository) AddHistory(_ context.Context, h domain.PromptHistory) result.Result[domain.PromptHistory] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.history[h.ID]; ok {
		return result.Fail[domain.PromptHistory](conflict("history", h.ID.String()))
	}
	r.s.history[h.ID] = h
	return result.Ok(h)
}

func (r *PromptHistoryRepository) DeleteHistoryBefore(_ context.Context, cutoff time.Time) result.Result[int64] {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed int64
	for id, h := range r.s.history {
		if h.CreatedOn.Before(cutoff) {
			delete(r.s.history, id)
			removed++
		}
	}
	return result.Ok(removed)
}
