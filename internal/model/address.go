package model

import (
	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/apperr"
)

// Address represents a physical location a parking can occupy.
// It exists independently; at most one parking points at it.
type Address struct {
	ID     uuid.UUID `json:"id"`
	City   string    `json:"city"`
	Street string    `json:"street"`
	House  string    `json:"house"`
}

// AddressDraft carries optional fields for create and partial update.
// ID, when set inside a parking draft, references an existing address
// instead of creating a nested one.
type AddressDraft struct {
	ID     *uuid.UUID
	City   *string
	Street *string
	House  *string
}

// NewAddress validates a draft and builds a new address with a fresh ID.
func NewAddress(d AddressDraft) (*Address, error) {
	if d.City == nil || *d.City == "" {
		return nil, apperr.Validation("address city is missing")
	}
	if d.Street == nil || *d.Street == "" {
		return nil, apperr.Validation("address street is missing")
	}
	if d.House == nil || *d.House == "" {
		return nil, apperr.Validation("address house is missing")
	}

	return &Address{
		ID:     uuid.New(),
		City:   *d.City,
		Street: *d.Street,
		House:  *d.House,
	}, nil
}

// Apply overwrites supplied fields, keeping the rest.
func (a *Address) Apply(d AddressDraft) {
	if d.City != nil {
		a.City = *d.City
	}
	if d.Street != nil {
		a.Street = *d.Street
	}
	if d.House != nil {
		a.House = *d.House
	}
}

// AddressShort is the reduced address projection.
type AddressShort struct {
	ID     uuid.UUID `json:"id"`
	City   string    `json:"city"`
	Street string    `json:"street"`
	House  string    `json:"house"`
}

// AddressFull is the complete address projection with the optional
// back-referenced parking.
type AddressFull struct {
	ID      uuid.UUID     `json:"id"`
	City    string        `json:"city"`
	Street  string        `json:"street"`
	House   string        `json:"house"`
	Parking *ParkingShort `json:"parking,omitempty"`
}

// Short returns the reduced projection of the address.
func (a *Address) Short() AddressShort {
	return AddressShort{ID: a.ID, City: a.City, Street: a.Street, House: a.House}
}

// Full returns the complete projection with the optional parking back reference.
func (a *Address) Full(parking *ParkingShort) *AddressFull {
	return &AddressFull{
		ID:      a.ID,
		City:    a.City,
		Street:  a.Street,
		House:   a.House,
		Parking: parking,
	}
}
