package handler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/linkwarden/linkwarden/internal/cache"
	"github.com/linkwarden/linkwarden/internal/clickstream"
	"github.com/linkwarden/linkwarden/internal/model"
	"github.com/linkwarden/linkwarden/internal/repository"
	"github.com/linkwarden/linkwarden/internal/service"
)

// fakeLinkStore is a minimal in-memory LinkStore for handler tests.
// Short IDs and custom aliases share one code namespace, as in the
// Postgres schema.
type fakeLinkStore struct {
	mu    sync.Mutex
	links map[string]*model.Link // by ID
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{links: make(map[string]*model.Link)}
}

func (f *fakeLinkStore) codeTaken(code string) bool {
	for _, link := range f.links {
		if link.ShortID == code || (link.CustomAlias != "" && link.CustomAlias == code) {
			return true
		}
	}
	return false
}

func (f *fakeLinkStore) InsertLink(_ context.Context, link *model.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.codeTaken(link.ShortID) || (link.CustomAlias != "" && f.codeTaken(link.CustomAlias)) {
		return repository.ErrDuplicateCode
	}

	clone := *link
	f.links[link.ID] = &clone
	return nil
}

func (f *fakeLinkStore) FindByCode(_ context.Context, code string) (*model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, link := range f.links {
		if link.ShortID == code || (link.CustomAlias != "" && link.CustomAlias == code) {
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

	return f.codeTaken(code), nil
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

// fakeLinkCache is a pass-through LinkCache that never hits.
type fakeLinkCache struct{}

func (fakeLinkCache) GetLink(_ context.Context, _ string) (*model.CachedLink, error) {
	return nil, cache.ErrCacheMiss
}

func (fakeLinkCache) SetLink(_ context.Context, _ string, _ *model.Link) error { return nil }

func (fakeLinkCache) DeleteLink(_ context.Context, _ string) error { return nil }

func (fakeLinkCache) IsNegativelyCached(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (fakeLinkCache) SetNegativeCache(_ context.Context, _ string) error { return nil }

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

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.events)
}

func newTestLinkService(t *testing.T) (*service.LinkService, *fakeLinkStore, *fakePublisher) {
	t.Helper()
	store := newFakeLinkStore()
	publisher := &fakePublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewLinkService(store, fakeLinkCache{}, publisher, logger, nil)
	return svc, store, publisher
}
