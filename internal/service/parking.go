package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/cache"
	"github.com/burgasvv/parking-service/internal/event"
	"github.com/burgasvv/parking-service/internal/model"
	"github.com/burgasvv/parking-service/internal/repository"
)

// ParkingService handles parking business logic, including the batch
// car assignment mutations.
type ParkingService struct {
	repo        *repository.Repository
	cache       *cache.Cache
	invalidator *cache.Invalidator
	events      *event.Publisher
	logger      *slog.Logger
}

// NewParkingService creates a new ParkingService.
func NewParkingService(
	repo *repository.Repository,
	c *cache.Cache,
	invalidator *cache.Invalidator,
	events *event.Publisher,
	logger *slog.Logger,
) *ParkingService {
	return &ParkingService{
		repo:        repo,
		cache:       c,
		invalidator: invalidator,
		events:      events,
		logger:      logger.With("component", "service.parking"),
	}
}

// Create validates the draft and persists the parking, resolving its
// address as an existing reference or a nested create. Emits a created
// event on success.
func (s *ParkingService) Create(ctx context.Context, draft model.ParkingDraft) (*model.ParkingFull, error) {
	parking, err := model.NewParking(draft)
	if err != nil {
		return nil, err
	}

	full, err := s.repo.CreateParking(ctx, parking, *draft.Address)
	if err != nil {
		return nil, err
	}

	s.events.PublishCreatedAsync(event.KindParking, full)
	return full, nil
}

// FindAll returns every parking with its address.
func (s *ParkingService) FindAll(ctx context.Context) ([]model.ParkingWithAddress, error) {
	return s.repo.ListParkings(ctx)
}

// FindByID returns the full projection, cache-aside.
func (s *ParkingService) FindByID(ctx context.Context, id uuid.UUID) (*model.ParkingFull, error) {
	return getOrLoad(ctx, s.cache, s.logger, cache.ParkingKey(id), func(ctx context.Context) (*model.ParkingFull, error) {
		return s.repo.GetParkingFull(ctx, id)
	})
}

// Update applies a partial draft, then invalidates the parking and its
// assigned cars, whose projections embed the parking with its address.
func (s *ParkingService) Update(ctx context.Context, id uuid.UUID, draft model.ParkingDraft) (*model.ParkingShort, error) {
	parking, carIDs, err := s.repo.UpdateParking(ctx, id, draft)
	if err != nil {
		return nil, err
	}

	s.invalidator.Apply(ctx, cache.ParkingClosure(id, carIDs)...)

	short := parking.Short()
	return &short, nil
}

// Delete removes the parking, then invalidates its closure. Assignment
// rows cascade in the store.
func (s *ParkingService) Delete(ctx context.Context, id uuid.UUID) error {
	carIDs, err := s.repo.DeleteParking(ctx, id)
	if err != nil {
		return err
	}

	s.invalidator.Apply(ctx, cache.ParkingClosure(id, carIDs)...)
	return nil
}

// AddCars assigns cars to parkings in one transaction. Each pair locks
// the parking row and then the car row before inserting; a pair that is
// already assigned is left as is. After commit every touched projection
// is invalidated.
func (s *ParkingService) AddCars(ctx context.Context, pairs []model.ParkingCarPair) error {
	if len(pairs) == 0 {
		return apperr.Validation("no parking car pairs supplied")
	}

	if err := s.repo.AddCars(ctx, pairs); err != nil {
		return err
	}

	s.invalidator.Apply(ctx, pairKeys(pairs)...)
	return nil
}

// RemoveCars detaches cars from parkings in one transaction with the
// same locking discipline as AddCars. A pair that is not assigned is
// left as is.
func (s *ParkingService) RemoveCars(ctx context.Context, pairs []model.ParkingCarPair) error {
	if len(pairs) == 0 {
		return apperr.Validation("no parking car pairs supplied")
	}

	if err := s.repo.RemoveCars(ctx, pairs); err != nil {
		return err
	}

	s.invalidator.Apply(ctx, pairKeys(pairs)...)
	return nil
}

func pairKeys(pairs []model.ParkingCarPair) []string {
	keys := make([]string, 0, len(pairs)*2)
	for _, pair := range pairs {
		keys = append(keys, cache.PairClosure(pair.ParkingID, pair.CarID)...)
	}
	return keys
}
