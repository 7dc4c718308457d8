// Package dto provides the request bodies of the API. Responses are the
// model projections themselves. All fields are optional on the wire;
// presence requirements belong to the domain constructors.
package dto

import (
	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/model"
)

// IdentityRequest is the body of identity create, update,
// change-password and change-status. Mutations of an existing identity
// carry its ID.
type IdentityRequest struct {
	ID         *uuid.UUID `json:"id,omitempty"`
	Authority  *string    `json:"authority,omitempty"`
	Username   *string    `json:"username,omitempty"`
	Password   *string    `json:"password,omitempty"`
	Email      *string    `json:"email,omitempty"`
	Enabled    *bool      `json:"enabled,omitempty"`
	Firstname  *string    `json:"firstname,omitempty"`
	Lastname   *string    `json:"lastname,omitempty"`
	Patronymic *string    `json:"patronymic,omitempty"`
}

// Draft converts the request into a domain draft.
func (r IdentityRequest) Draft() model.IdentityDraft {
	var authority *model.Authority
	if r.Authority != nil {
		a := model.Authority(*r.Authority)
		authority = &a
	}
	return model.IdentityDraft{
		Authority:  authority,
		Username:   r.Username,
		Password:   r.Password,
		Email:      r.Email,
		Enabled:    r.Enabled,
		Firstname:  r.Firstname,
		Lastname:   r.Lastname,
		Patronymic: r.Patronymic,
	}
}

// CarRequest is the body of car create and update.
type CarRequest struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	Brand       *string    `json:"brand,omitempty"`
	Model       *string    `json:"model,omitempty"`
	Description *string    `json:"description,omitempty"`
	IdentityID  *uuid.UUID `json:"identity_id,omitempty"`
}

// Draft converts the request into a domain draft.
func (r CarRequest) Draft() model.CarDraft {
	return model.CarDraft{
		Brand:       r.Brand,
		Model:       r.Model,
		Description: r.Description,
		IdentityID:  r.IdentityID,
	}
}

// AddressRequest is the body of address create and update, and the
// nested address of a parking request. ID references an existing
// address instead of describing a new one.
type AddressRequest struct {
	ID     *uuid.UUID `json:"id,omitempty"`
	City   *string    `json:"city,omitempty"`
	Street *string    `json:"street,omitempty"`
	House  *string    `json:"house,omitempty"`
}

// Draft converts the request into a domain draft.
func (r AddressRequest) Draft() model.AddressDraft {
	return model.AddressDraft{
		ID:     r.ID,
		City:   r.City,
		Street: r.Street,
		House:  r.House,
	}
}

// ParkingRequest is the body of parking create and update.
type ParkingRequest struct {
	ID      *uuid.UUID      `json:"id,omitempty"`
	Address *AddressRequest `json:"address,omitempty"`
	Price   *float64        `json:"price,omitempty"`
}

// Draft converts the request into a domain draft.
func (r ParkingRequest) Draft() model.ParkingDraft {
	var address *model.AddressDraft
	if r.Address != nil {
		d := r.Address.Draft()
		address = &d
	}
	return model.ParkingDraft{
		Address: address,
		Price:   r.Price,
	}
}

// ParkingCarRequest is one element of the add-cars and remove-cars
// batch bodies.
type ParkingCarRequest struct {
	ParkingID *uuid.UUID `json:"parking_id,omitempty"`
	CarID     *uuid.UUID `json:"car_id,omitempty"`
}

// Pairs converts a batch of requests into domain pairs. Every element
// must carry both IDs.
func Pairs(reqs []ParkingCarRequest) ([]model.ParkingCarPair, bool) {
	pairs := make([]model.ParkingCarPair, 0, len(reqs))
	for _, r := range reqs {
		if r.ParkingID == nil || r.CarID == nil {
			return nil, false
		}
		pairs = append(pairs, model.ParkingCarPair{ParkingID: *r.ParkingID, CarID: *r.CarID})
	}
	return pairs, true
}
