package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/cache"
	"github.com/burgasvv/parking-service/internal/model"
	"github.com/burgasvv/parking-service/internal/repository"
)

// AddressService handles address business logic. Address projections are
// never cached, but every address mutation can change the parking (and
// transitively car) projections that embed the address, so those are
// invalidated.
type AddressService struct {
	repo        *repository.Repository
	invalidator *cache.Invalidator
	logger      *slog.Logger
}

// NewAddressService creates a new AddressService.
func NewAddressService(repo *repository.Repository, invalidator *cache.Invalidator, logger *slog.Logger) *AddressService {
	return &AddressService{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger.With("component", "service.address"),
	}
}

// Create validates the draft and persists the address.
func (s *AddressService) Create(ctx context.Context, draft model.AddressDraft) (*model.AddressFull, error) {
	address, err := model.NewAddress(draft)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateAddress(ctx, address); err != nil {
		return nil, err
	}

	return address.Full(nil), nil
}

// FindAll returns the short projection of every address.
func (s *AddressService) FindAll(ctx context.Context) ([]model.AddressShort, error) {
	return s.repo.ListAddresses(ctx)
}

// FindByID returns the full projection, always from the store.
func (s *AddressService) FindByID(ctx context.Context, id uuid.UUID) (*model.AddressFull, error) {
	return s.repo.GetAddressFull(ctx, id)
}

// Update applies a partial draft, then invalidates the linked parking
// and its assigned cars if the address backs one.
func (s *AddressService) Update(ctx context.Context, id uuid.UUID, draft model.AddressDraft) (*model.AddressShort, error) {
	address, parkingID, carIDs, err := s.repo.UpdateAddress(ctx, id, draft)
	if err != nil {
		return nil, err
	}

	if parkingID != nil {
		s.invalidator.Apply(ctx, cache.ParkingClosure(*parkingID, carIDs)...)
	}

	short := address.Short()
	return &short, nil
}

// Delete removes the address. The backing parking, if any, keeps existing
// with a cleared address reference, so its projection is invalidated.
func (s *AddressService) Delete(ctx context.Context, id uuid.UUID) error {
	parkingID, carIDs, err := s.repo.DeleteAddress(ctx, id)
	if err != nil {
		return err
	}

	if parkingID != nil {
		s.invalidator.Apply(ctx, cache.ParkingClosure(*parkingID, carIDs)...)
	}
	return nil
}
