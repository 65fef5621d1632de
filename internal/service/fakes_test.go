package service

import (
	"context"
	"sync"

	"github.com/linkwarden/linkwarden/internal/cache"
	"github.com/linkwarden/linkwarden/internal/clickstream"
	"github.com/linkwarden/linkwarden/internal/model"
	"github.com/linkwarden/linkwarden/internal/repository"
)

// fakeLinkStore is an in-memory LinkStore with the same uniqueness
// semantics as the Postgres schema: one namespace shared by short IDs
// and custom aliases.
type fakeLinkStore struct {
	mu    sync.Mutex
	links map[string]*model.Link // by ID

	codeExistsErr error // injected CodeExists failure
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{links: make(map[string]*model.Link)}
}

func (f *fakeLinkStore) InsertLink(_ context.Context, link *model.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.links {
		if codeTaken(existing, link.ShortID) {
			return repository.ErrDuplicateCode
		}
		if link.CustomAlias != "" && codeTaken(existing, link.CustomAlias) {
			return repository.ErrDuplicateCode
		}
	}

	clone := *link
	f.links[link.ID] = &clone
	return nil
}

func codeTaken(link *model.Link, code string) bool {
	return link.ShortID == code || (link.CustomAlias != "" && link.CustomAlias == code)
}

func (f *fakeLinkStore) FindByCode(_ context.Context, code string) (*model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, link := range f.links {
		if codeTaken(link, code) {
			clone := *link
			return &clone, nil
		}
	}
	return nil, repository.ErrLinkNotFound
}

func (f *fakeLinkStore) FindByIDForOwner(_ context.Context, id, ownerID string) (*model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	link, ok := f.links[id]
	if !ok || link.OwnerID != ownerID {
		return nil, repository.ErrLinkNotFound
	}
	clone := *link
	return &clone, nil
}

func (f *fakeLinkStore) UpdateLink(_ context.Context, link *model.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.links[link.ID]
	if !ok {
		return repository.ErrLinkNotFound
	}
	existing.Active = link.Active
	existing.Private = link.Private
	existing.PasswordHash = link.PasswordHash
	existing.ExpiresAt = link.ExpiresAt
	existing.UpdatedAt = link.UpdatedAt
	return nil
}

func (f *fakeLinkStore) DeleteLink(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.links[id]; !ok {
		return repository.ErrLinkNotFound
	}
	delete(f.links, id)
	return nil
}

func (f *fakeLinkStore) CodeExists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.codeExistsErr != nil {
		return false, f.codeExistsErr
	}
	for _, link := range f.links {
		if codeTaken(link, code) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLinkStore) ListLinksForOwner(_ context.Context, ownerID, _ string, limit int) ([]*model.Link, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Link
	for _, link := range f.links {
		if link.OwnerID == ownerID {
			clone := *link
			out = append(out, &clone)
		}
		if len(out) == limit {
			break
		}
	}
	return out, "", nil
}

// fakeLinkCache is an in-memory LinkCache tracking hit counts.
type fakeLinkCache struct {
	mu       sync.Mutex
	entries  map[string]*model.CachedLink
	negative map[string]bool
	hits     int
	misses   int
}

func newFakeLinkCache() *fakeLinkCache {
	return &fakeLinkCache{
		entries:  make(map[string]*model.CachedLink),
		negative: make(map[string]bool),
	}
}

func (f *fakeLinkCache) GetLink(_ context.Context, code string) (*model.CachedLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if entry, ok := f.entries[code]; ok {
		f.hits++
		return entry, nil
	}
	f.misses++
	return nil, cache.ErrCacheMiss
}

func (f *fakeLinkCache) SetLink(_ context.Context, code string, link *model.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[code] = link.ToCachedLink()
	delete(f.negative, code)
	return nil
}

func (f *fakeLinkCache) DeleteLink(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.entries, code)
	return nil
}

func (f *fakeLinkCache) IsNegativelyCached(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.negative[code], nil
}

func (f *fakeLinkCache) SetNegativeCache(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.negative[code] = true
	return nil
}

// fakePublisher records published click payloads.
type fakePublisher struct {
	mu     sync.Mutex
	events []clickstream.ClickPayload
}

func (f *fakePublisher) PublishAsync(event clickstream.ClickPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, event)
}

func (f *fakePublisher) published() []clickstream.ClickPayload {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]clickstream.ClickPayload, len(f.events))
	copy(out, f.events)
	return out
}

// fakeClickStore serves canned aggregation results.
type fakeClickStore struct {
	total     int64
	unique    int64
	daily     []model.DailyClicks
	breakdown *model.ClickBreakdown
}

func (f *fakeClickStore) Summary(_ context.Context, _ string) (int64, int64, error) {
	return f.total, f.unique, nil
}

func (f *fakeClickStore) DailySeries(_ context.Context, _ string) ([]model.DailyClicks, error) {
	return f.daily, nil
}

func (f *fakeClickStore) Breakdown(_ context.Context, _ string) (*model.ClickBreakdown, error) {
	return f.breakdown, nil
}
