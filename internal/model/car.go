package model

import (
	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/apperr"
)

// Car represents a vehicle owned by exactly one identity.
type Car struct {
	ID          uuid.UUID `json:"id"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Description string    `json:"description"`
	IdentityID  uuid.UUID `json:"identity_id"`
}

// CarDraft carries optional fields for create and partial update.
type CarDraft struct {
	Brand       *string
	Model       *string
	Description *string
	IdentityID  *uuid.UUID
}

// NewCar validates a draft and builds a new car with a fresh ID.
// Referential validity of IdentityID is checked by the repository.
func NewCar(d CarDraft) (*Car, error) {
	if d.Brand == nil || *d.Brand == "" {
		return nil, apperr.Validation("car brand is missing")
	}
	if d.Model == nil || *d.Model == "" {
		return nil, apperr.Validation("car model is missing")
	}
	if d.Description == nil || *d.Description == "" {
		return nil, apperr.Validation("car description is missing")
	}
	if d.IdentityID == nil {
		return nil, apperr.Validation("car identity id is missing")
	}

	return &Car{
		ID:          uuid.New(),
		Brand:       *d.Brand,
		Model:       *d.Model,
		Description: *d.Description,
		IdentityID:  *d.IdentityID,
	}, nil
}

// Apply overwrites supplied fields, keeping the rest.
// Owner changes are applied by the repository, which verifies the new owner exists.
func (c *Car) Apply(d CarDraft) {
	if d.Brand != nil {
		c.Brand = *d.Brand
	}
	if d.Model != nil {
		c.Model = *d.Model
	}
	if d.Description != nil {
		c.Description = *d.Description
	}
}

// CarShort is the reduced car projection.
type CarShort struct {
	ID          uuid.UUID `json:"id"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Description string    `json:"description"`
}

// CarFull is the complete car projection with the owning identity
// and the parkings the car is assigned to.
type CarFull struct {
	ID          uuid.UUID            `json:"id"`
	Brand       string               `json:"brand"`
	Model       string               `json:"model"`
	Description string               `json:"description"`
	Identity    IdentityShort        `json:"identity"`
	Parkings    []ParkingWithAddress `json:"parkings"`
}

// Short returns the reduced projection of the car.
func (c *Car) Short() CarShort {
	return CarShort{
		ID:          c.ID,
		Brand:       c.Brand,
		Model:       c.Model,
		Description: c.Description,
	}
}

// Full returns the complete projection with the given owner and parkings.
func (c *Car) Full(owner IdentityShort, parkings []ParkingWithAddress) *CarFull {
	if parkings == nil {
		parkings = []ParkingWithAddress{}
	}
	return &CarFull{
		ID:          c.ID,
		Brand:       c.Brand,
		Model:       c.Model,
		Description: c.Description,
		Identity:    owner,
		Parkings:    parkings,
	}
}
