// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	"github.com/linkwarden/linkwarden/internal/cache"
	"github.com/linkwarden/linkwarden/internal/clickstream"
	"github.com/linkwarden/linkwarden/internal/metrics"
	"github.com/linkwarden/linkwarden/internal/model"
	"github.com/linkwarden/linkwarden/internal/password"
	"github.com/linkwarden/linkwarden/internal/policy"
	"github.com/linkwarden/linkwarden/internal/repository"
	"github.com/linkwarden/linkwarden/internal/shortid"
)

// Service errors.
var (
	ErrInvalidURL           = errors.New("invalid destination URL")
	ErrURLTooLong           = errors.New("destination URL too long")
	ErrInvalidAlias         = errors.New("invalid alias format")
	ErrDuplicateCode        = errors.New("code already exists")
	ErrCodeSpaceExhausted   = errors.New("could not find a free short code")
	ErrLinkNotFound         = errors.New("link not found")
	ErrWeakPassword         = errors.New("password too weak")
	ErrPrivateNeedsPassword = errors.New("private links require a password")
	ErrExpiresInPast        = errors.New("expires_at must be in the future")
)

// Alias validation regex: 3-50 chars, alphanumeric + hyphen.
var aliasRegex = regexp.MustCompile(`^[a-zA-Z0-9-]{3,50}$`)

const (
	maxDestinationLength = 2048
	maxCodeRetries       = 5
)

// LinkStore is the persistence surface the service depends on.
type LinkStore interface {
	InsertLink(ctx context.Context, link *model.Link) error
	FindByCode(ctx context.Context, code string) (*model.Link, error)
	FindByIDForOwner(ctx context.Context, id, ownerID string) (*model.Link, error)
	UpdateLink(ctx context.Context, link *model.Link) error
	DeleteLink(ctx context.Context, id string) error
	CodeExists(ctx context.Context, code string) (bool, error)
	ListLinksForOwner(ctx context.Context, ownerID, cursor string, limit int) ([]*model.Link, string, error)
}

// LinkCache is the cache surface the service depends on.
type LinkCache interface {
	GetLink(ctx context.Context, code string) (*model.CachedLink, error)
	SetLink(ctx context.Context, code string, link *model.Link) error
	DeleteLink(ctx context.Context, code string) error
	IsNegativelyCached(ctx context.Context, code string) (bool, error)
	SetNegativeCache(ctx context.Context, code string) error
}

// ClickPublisher enqueues click events without blocking resolution.
type ClickPublisher interface {
	PublishAsync(event clickstream.ClickPayload)
}

// Visitor carries request attributes recorded with a click.
type Visitor struct {
	IP        string
	UserAgent string
	Country   string
}

// LinkService handles link lifecycle and resolution.
type LinkService struct {
	store     LinkStore
	cache     LinkCache
	gate      *policy.Gate
	publisher ClickPublisher
	generator *shortid.Generator
	logger    *slog.Logger
	metrics   metrics.Recorder
	now       func() time.Time
}

// NewLinkService creates a new LinkService.
func NewLinkService(store LinkStore, linkCache LinkCache, publisher ClickPublisher, logger *slog.Logger, recorder metrics.Recorder) *LinkService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LinkService{
		store:     store,
		cache:     linkCache,
		gate:      policy.NewGate(),
		publisher: publisher,
		generator: shortid.New(shortid.DefaultLength),
		logger:    logger.With("component", "service.link"),
		metrics:   recorder,
		now:       time.Now,
	}
}

// CreateLinkInput defines input for creating a link.
type CreateLinkInput struct {
	OriginalURL string
	CustomAlias string
	Password    string
	Private     bool
	ExpiresAt   *time.Time
	OwnerID     string
}

// CreateLink creates a new short link. A custom alias is taken as-is
// after validation; otherwise a short ID is generated with bounded
// collision retries.
func (s *LinkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error) {
	if err := validateDestination(input.OriginalURL); err != nil {
		return nil, err
	}

	if input.CustomAlias != "" && !aliasRegex.MatchString(input.CustomAlias) {
		return nil, ErrInvalidAlias
	}

	if input.Private && input.Password == "" {
		return nil, ErrPrivateNeedsPassword
	}

	var passwordHash string
	if input.Password != "" {
		if err := password.CheckStrength(input.Password); err != nil {
			return nil, ErrWeakPassword
		}
		hash, err := password.Hash(input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		passwordHash = hash
	}

	now := s.now().UTC()
	link := &model.Link{
		ID:           shortid.NewULID(),
		CustomAlias:  input.CustomAlias,
		OriginalURL:  input.OriginalURL,
		OwnerID:      input.OwnerID,
		Active:       true,
		Private:      input.Private,
		PasswordHash: passwordHash,
		ExpiresAt:    input.ExpiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.insertWithFreshCode(ctx, link); err != nil {
		return nil, err
	}

	s.metrics.IncLinkCreated()
	s.logger.Info("link created", "link_id", link.ID, "code", link.Code())

	return link, nil
}

// insertWithFreshCode generates a short ID and inserts, retrying on
// collision. With a custom alias a unique violation is the caller's
// conflict and is returned as ErrDuplicateCode; without one it is a
// generator collision and the insert retries with a new short ID.
func (s *LinkService) insertWithFreshCode(ctx context.Context, link *model.Link) error {
	for attempt := 0; attempt < maxCodeRetries; attempt++ {
		code, err := s.generator.Generate()
		if err != nil {
			return fmt.Errorf("generate short id: %w", err)
		}
		link.ShortID = code

		err = s.store.InsertLink(ctx, link)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateCode) {
			return fmt.Errorf("insert link: %w", err)
		}
		if link.CustomAlias != "" {
			// The alias column collided; regenerating the short ID
			// cannot help.
			if taken, checkErr := s.store.CodeExists(ctx, link.CustomAlias); checkErr == nil && taken {
				return ErrDuplicateCode
			}
			if attempt == maxCodeRetries-1 {
				// Repeated duplicates with a fixed alias are the
				// caller's conflict even when the disambiguation
				// check cannot confirm it.
				return ErrDuplicateCode
			}
		}
		s.logger.Debug("short id collision, retrying", "attempt", attempt+1)
	}
	return ErrCodeSpaceExhausted
}

// GetLink retrieves a link owned by the caller.
func (s *LinkService) GetLink(ctx context.Context, id, ownerID string) (*model.Link, error) {
	link, err := s.store.FindByIDForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}

// ListLinksOutput defines output for listing links.
type ListLinksOutput struct {
	Links      []*model.Link
	NextCursor string
	HasMore    bool
}

// ListLinks retrieves a cursor-paginated list of the caller's links.
func (s *LinkService) ListLinks(ctx context.Context, ownerID, cursor string, limit int) (*ListLinksOutput, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	links, nextCursor, err := s.store.ListLinksForOwner(ctx, ownerID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListLinksOutput{
		Links:      links,
		NextCursor: nextCursor,
		HasMore:    nextCursor != "",
	}, nil
}

// ToggleActive enables or disables a link.
func (s *LinkService) ToggleActive(ctx context.Context, id, ownerID string, active bool) (*model.Link, error) {
	return s.mutate(ctx, id, ownerID, func(link *model.Link) error {
		link.Active = active
		return nil
	})
}

// SetPrivacy switches password protection on or off. Enabling requires
// a password; disabling clears the stored hash.
func (s *LinkService) SetPrivacy(ctx context.Context, id, ownerID string, private bool, newPassword string) (*model.Link, error) {
	return s.mutate(ctx, id, ownerID, func(link *model.Link) error {
		if !private {
			link.Private = false
			link.PasswordHash = ""
			return nil
		}
		if newPassword == "" {
			return ErrPrivateNeedsPassword
		}
		if err := password.CheckStrength(newPassword); err != nil {
			return ErrWeakPassword
		}
		hash, err := password.Hash(newPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		link.Private = true
		link.PasswordHash = hash
		return nil
	})
}

// SetExpiry sets or clears a link's expiry.
func (s *LinkService) SetExpiry(ctx context.Context, id, ownerID string, expiresAt *time.Time) (*model.Link, error) {
	return s.mutate(ctx, id, ownerID, func(link *model.Link) error {
		if expiresAt != nil && expiresAt.Before(s.now()) {
			return ErrExpiresInPast
		}
		link.ExpiresAt = expiresAt
		return nil
	})
}

// mutate loads an owned link, applies the change, persists it, and
// invalidates both cache entries the link can be resolved under.
func (s *LinkService) mutate(ctx context.Context, id, ownerID string, apply func(*model.Link) error) (*model.Link, error) {
	link, err := s.store.FindByIDForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	if err := apply(link); err != nil {
		return nil, err
	}
	link.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateLink(ctx, link); err != nil {
		return nil, err
	}

	s.metrics.IncLinkUpdated()
	s.invalidate(ctx, link)

	return link, nil
}

// DeleteLink removes a link owned by the caller. Click events cascade
// away with it.
func (s *LinkService) DeleteLink(ctx context.Context, id, ownerID string) error {
	link, err := s.store.FindByIDForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return err
	}

	if err := s.store.DeleteLink(ctx, link.ID); err != nil {
		return err
	}

	s.metrics.IncLinkDeleted()
	s.invalidate(ctx, link)

	return nil
}

// Resolve evaluates a short code for redirect. The returned outcome
// carries the destination only when access is allowed; an error is
// returned only when the store itself failed. Allowed resolutions
// enqueue a click event without blocking the caller.
func (s *LinkService) Resolve(ctx context.Context, code, suppliedPassword string, visitor Visitor) (policy.Outcome, error) {
	start := s.now()
	defer func() {
		s.metrics.ObserveResolveDuration(time.Since(start))
	}()

	link, err := s.lookup(ctx, code)
	if err != nil {
		return policy.Outcome{Verdict: policy.VerdictNotFound}, err
	}

	outcome := s.gate.Evaluate(link, suppliedPassword, s.now())

	if outcome.Allowed() {
		s.recordClick(link, code, visitor)
	} else {
		s.metrics.IncResolveDenied(string(outcome.Verdict))
		if link != nil && outcome.Verdict == policy.VerdictExpired {
			// Expired entries have no business staying hot.
			_ = s.cache.DeleteLink(ctx, code)
		}
	}

	return outcome, nil
}

// lookup finds a link by code, cache first. A nil link with nil error
// means the code does not exist.
func (s *LinkService) lookup(ctx context.Context, code string) (*model.Link, error) {
	cached, err := s.cache.GetLink(ctx, code)
	if err == nil {
		s.metrics.IncResolveCacheHit()
		return cached.ToLink(code), nil
	}

	if errors.Is(err, cache.ErrCacheMiss) {
		s.metrics.IncResolveCacheMiss()
		if negative, _ := s.cache.IsNegativelyCached(ctx, code); negative {
			return nil, nil
		}
	} else {
		s.logger.Warn("link cache read failed", "code", code, "error", err)
	}

	link, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			_ = s.cache.SetNegativeCache(ctx, code)
			return nil, nil
		}
		return nil, err
	}

	if err := s.cache.SetLink(ctx, code, link); err != nil {
		s.logger.Warn("link cache backfill failed", "code", code, "error", err)
	}

	return link, nil
}

// recordClick publishes a click event for an allowed resolution.
func (s *LinkService) recordClick(link *model.Link, code string, visitor Visitor) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishAsync(clickstream.ClickPayload{
		Code:      code,
		LinkID:    link.ID,
		IP:        visitor.IP,
		UserAgent: clickstream.TruncateUserAgent(visitor.UserAgent),
		Country:   clickstream.ExtractCountryCode(visitor.Country),
		ClickedAt: s.now().UnixMilli(),
	})
}

// invalidate drops the cache entries for every code the link answers to.
func (s *LinkService) invalidate(ctx context.Context, link *model.Link) {
	if err := s.cache.DeleteLink(ctx, link.ShortID); err != nil {
		s.logger.Warn("cache invalidation failed", "code", link.ShortID, "error", err)
	}
	if link.CustomAlias != "" {
		if err := s.cache.DeleteLink(ctx, link.CustomAlias); err != nil {
			s.logger.Warn("cache invalidation failed", "code", link.CustomAlias, "error", err)
		}
	}
}

// validateDestination validates a destination URL.
func validateDestination(dest string) error {
	if dest == "" {
		return ErrInvalidURL
	}

	if len(dest) > maxDestinationLength {
		return ErrURLTooLong
	}

	parsed, err := url.Parse(dest)
	if err != nil {
		return ErrInvalidURL
	}

	// Only allow http and https schemes
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}

	if parsed.Host == "" {
		return ErrInvalidURL
	}

	return nil
}
