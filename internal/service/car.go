package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/cache"
	"github.com/burgasvv/parking-service/internal/event"
	"github.com/burgasvv/parking-service/internal/model"
	"github.com/burgasvv/parking-service/internal/repository"
)

// CarService handles vehicle business logic.
type CarService struct {
	repo        *repository.Repository
	cache       *cache.Cache
	invalidator *cache.Invalidator
	events      *event.Publisher
	logger      *slog.Logger
}

// NewCarService creates a new CarService.
func NewCarService(
	repo *repository.Repository,
	c *cache.Cache,
	invalidator *cache.Invalidator,
	events *event.Publisher,
	logger *slog.Logger,
) *CarService {
	return &CarService{
		repo:        repo,
		cache:       c,
		invalidator: invalidator,
		events:      events,
		logger:      logger.With("component", "service.car"),
	}
}

// Create validates the draft and persists the car. The owner identity's
// cached projection embeds its car list, so it is invalidated. Emits a
// created event on success.
func (s *CarService) Create(ctx context.Context, draft model.CarDraft) (*model.CarFull, error) {
	car, err := model.NewCar(draft)
	if err != nil {
		return nil, err
	}

	full, err := s.repo.CreateCar(ctx, car)
	if err != nil {
		return nil, err
	}

	s.invalidator.Apply(ctx, cache.IdentityKey(car.IdentityID))
	s.events.PublishCreatedAsync(event.KindCar, full)

	return full, nil
}

// FindAll returns the short projection of every car.
func (s *CarService) FindAll(ctx context.Context) ([]model.CarShort, error) {
	return s.repo.ListCars(ctx)
}

// FindByIdentity returns the short projections of the identity's cars.
func (s *CarService) FindByIdentity(ctx context.Context, identityID uuid.UUID) ([]model.CarShort, error) {
	return s.repo.ListCarsByIdentity(ctx, identityID)
}

// FindByID returns the full projection, cache-aside.
func (s *CarService) FindByID(ctx context.Context, id uuid.UUID) (*model.CarFull, error) {
	return getOrLoad(ctx, s.cache, s.logger, cache.CarKey(id), func(ctx context.Context) (*model.CarFull, error) {
		return s.repo.GetCarFull(ctx, id)
	})
}

// Update applies a partial draft, then invalidates the car's closure:
// the car itself, the affected owners, and every assigned parking.
func (s *CarService) Update(ctx context.Context, id uuid.UUID, draft model.CarDraft) (*model.CarShort, error) {
	car, ownerIDs, parkingIDs, err := s.repo.UpdateCar(ctx, id, draft)
	if err != nil {
		return nil, err
	}

	s.invalidator.Apply(ctx, cache.CarClosure(id, ownerIDs, parkingIDs)...)

	short := car.Short()
	return &short, nil
}

// Delete removes the car, then invalidates its closure.
func (s *CarService) Delete(ctx context.Context, id uuid.UUID) error {
	ownerID, parkingIDs, err := s.repo.DeleteCar(ctx, id)
	if err != nil {
		return err
	}

	s.invalidator.Apply(ctx, cache.CarClosure(id, []uuid.UUID{ownerID}, parkingIDs)...)
	return nil
}
