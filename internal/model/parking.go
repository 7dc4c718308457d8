package model

import (
	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/apperr"
)

// Parking represents a parking lot over a single address.
// AddressID is nil after the referenced address is deleted.
type Parking struct {
	ID        uuid.UUID  `json:"id"`
	AddressID *uuid.UUID `json:"address_id,omitempty"`
	Price     float64    `json:"price"`
}

// ParkingDraft carries optional fields for create and partial update.
// Address either references an existing address by ID or describes a
// nested address created within the same transaction.
type ParkingDraft struct {
	Address *AddressDraft
	Price   *float64
}

// NewParking validates a draft and builds a new parking with a fresh ID.
// Address resolution (existing vs. nested) belongs to the repository.
func NewParking(d ParkingDraft) (*Parking, error) {
	if d.Address == nil {
		return nil, apperr.Validation("parking address is missing")
	}
	if d.Price == nil {
		return nil, apperr.Validation("parking price is missing")
	}
	if *d.Price < 0 {
		return nil, apperr.Validation("parking price must not be negative")
	}

	return &Parking{
		ID:    uuid.New(),
		Price: *d.Price,
	}, nil
}

// Apply overwrites the price if supplied. Address changes are applied by
// the repository.
func (p *Parking) Apply(d ParkingDraft) error {
	if d.Price != nil {
		if *d.Price < 0 {
			return apperr.Validation("parking price must not be negative")
		}
		p.Price = *d.Price
	}
	return nil
}

// ParkingShort is the reduced parking projection.
type ParkingShort struct {
	ID    uuid.UUID `json:"id"`
	Price float64   `json:"price"`
}

// ParkingWithAddress is the parking projection with its address,
// used inside car projections and listings.
type ParkingWithAddress struct {
	ID      uuid.UUID     `json:"id"`
	Address *AddressShort `json:"address,omitempty"`
	Price   float64       `json:"price"`
}

// ParkingFull is the complete parking projection with address and
// assigned cars.
type ParkingFull struct {
	ID      uuid.UUID     `json:"id"`
	Address *AddressShort `json:"address,omitempty"`
	Price   float64       `json:"price"`
	Cars    []CarShort    `json:"cars"`
}

// Short returns the reduced projection of the parking.
func (p *Parking) Short() ParkingShort {
	return ParkingShort{ID: p.ID, Price: p.Price}
}

// WithAddress returns the parking projection with the given address.
func (p *Parking) WithAddress(address *AddressShort) ParkingWithAddress {
	return ParkingWithAddress{ID: p.ID, Address: address, Price: p.Price}
}

// Full returns the complete projection with the given address and cars.
func (p *Parking) Full(address *AddressShort, cars []CarShort) *ParkingFull {
	if cars == nil {
		cars = []CarShort{}
	}
	return &ParkingFull{ID: p.ID, Address: address, Price: p.Price, Cars: cars}
}

// ParkingCarPair identifies one car↔parking assignment in a batch mutation.
type ParkingCarPair struct {
	ParkingID uuid.UUID `json:"parking_id"`
	CarID     uuid.UUID `json:"car_id"`
}
