package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/auth"
	"github.com/burgasvv/parking-service/internal/cache"
	"github.com/burgasvv/parking-service/internal/event"
	"github.com/burgasvv/parking-service/internal/model"
	"github.com/burgasvv/parking-service/internal/repository"
)

// IdentityService handles account business logic.
type IdentityService struct {
	repo        *repository.Repository
	cache       *cache.Cache
	invalidator *cache.Invalidator
	events      *event.Publisher
	logger      *slog.Logger
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(
	repo *repository.Repository,
	c *cache.Cache,
	invalidator *cache.Invalidator,
	events *event.Publisher,
	logger *slog.Logger,
) *IdentityService {
	return &IdentityService{
		repo:        repo,
		cache:       c,
		invalidator: invalidator,
		events:      events,
		logger:      logger.With("component", "service.identity"),
	}
}

// Create validates the draft, hashes the password and persists the
// identity. Emits a created event on success.
func (s *IdentityService) Create(ctx context.Context, draft model.IdentityDraft) (*model.IdentityFull, error) {
	ident, err := model.NewIdentity(draft)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(*draft.Password)
	if err != nil {
		return nil, apperr.Store(err, "hash password")
	}
	ident.Password = hash

	if err := s.repo.CreateIdentity(ctx, ident); err != nil {
		return nil, err
	}

	full := ident.Full(nil)
	s.events.PublishCreatedAsync(event.KindIdentity, full)

	return full, nil
}

// FindAll returns the short projection of every identity.
func (s *IdentityService) FindAll(ctx context.Context) ([]model.IdentityShort, error) {
	return s.repo.ListIdentities(ctx)
}

// FindByID returns the full projection, cache-aside.
func (s *IdentityService) FindByID(ctx context.Context, id uuid.UUID) (*model.IdentityFull, error) {
	return getOrLoad(ctx, s.cache, s.logger, cache.IdentityKey(id), func(ctx context.Context) (*model.IdentityFull, error) {
		return s.repo.GetIdentityFull(ctx, id)
	})
}

// Update applies a partial draft, then invalidates the identity's closure.
func (s *IdentityService) Update(ctx context.Context, id uuid.UUID, draft model.IdentityDraft) (*model.IdentityShort, error) {
	ident, carIDs, err := s.repo.UpdateIdentity(ctx, id, draft)
	if err != nil {
		return nil, err
	}

	s.invalidator.Apply(ctx, cache.IdentityClosure(id, carIDs)...)

	short := ident.Short()
	return &short, nil
}

// Delete removes the identity and its cars, then invalidates the closure.
func (s *IdentityService) Delete(ctx context.Context, id uuid.UUID) error {
	carIDs, err := s.repo.DeleteIdentity(ctx, id)
	if err != nil {
		return err
	}

	s.invalidator.Apply(ctx, cache.IdentityClosure(id, carIDs)...)
	return nil
}

// ChangePassword replaces the password. A new password equal to the old
// one is a rejected no-op.
func (s *IdentityService) ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	if newPassword == "" {
		return apperr.Validation("identity password is missing")
	}

	ident, err := s.repo.GetIdentityByID(ctx, id)
	if err != nil {
		return err
	}

	if auth.VerifyPassword(newPassword, ident.Password) {
		return apperr.Conflict("new password matches the current one")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperr.Store(err, "hash password")
	}

	carIDs, err := s.repo.SetIdentityPassword(ctx, id, hash)
	if err != nil {
		return err
	}

	s.invalidator.Apply(ctx, cache.IdentityClosure(id, carIDs)...)
	return nil
}

// ChangeStatus flips the enabled flag. A status equal to the current one
// is a rejected no-op.
func (s *IdentityService) ChangeStatus(ctx context.Context, id uuid.UUID, enabled bool) error {
	carIDs, err := s.repo.SetIdentityStatus(ctx, id, enabled)
	if err != nil {
		return err
	}

	s.invalidator.Apply(ctx, cache.IdentityClosure(id, carIDs)...)
	return nil
}
