// Package model defines domain entities and their wire projections.
package model

import (
	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/apperr"
)

// Authority is the role tier of an identity.
type Authority string

const (
	AuthorityAdmin Authority = "ADMIN"
	AuthorityUser  Authority = "USER"
)

// IsValid checks if the authority is a known role.
func (a Authority) IsValid() bool {
	return a == AuthorityAdmin || a == AuthorityUser
}

// Identity represents an account that can own cars.
// Password always holds a bcrypt hash, never plaintext, and is never serialized.
type Identity struct {
	ID         uuid.UUID `json:"id"`
	Authority  Authority `json:"authority"`
	Username   string    `json:"username"`
	Password   string    `json:"-"`
	Email      string    `json:"email"`
	Enabled    bool      `json:"enabled"`
	Firstname  string    `json:"firstname"`
	Lastname   string    `json:"lastname"`
	Patronymic string    `json:"patronymic"`
}

// IdentityDraft carries optional fields for create and partial update.
// Nil means "not supplied".
type IdentityDraft struct {
	Authority  *Authority
	Username   *string
	Password   *string
	Email      *string
	Enabled    *bool
	Firstname  *string
	Lastname   *string
	Patronymic *string
}

// NewIdentity validates a draft and builds a new identity with a fresh ID.
// The caller is responsible for replacing Password with a hash before the
// identity is persisted; the constructor only checks presence.
func NewIdentity(d IdentityDraft) (*Identity, error) {
	if d.Authority == nil || !d.Authority.IsValid() {
		return nil, apperr.Validation("identity authority is missing or invalid")
	}
	if d.Username == nil || *d.Username == "" {
		return nil, apperr.Validation("identity username is missing")
	}
	if d.Password == nil || *d.Password == "" {
		return nil, apperr.Validation("identity password is missing")
	}
	if d.Email == nil || *d.Email == "" {
		return nil, apperr.Validation("identity email is missing")
	}
	if d.Firstname == nil || *d.Firstname == "" {
		return nil, apperr.Validation("identity firstname is missing")
	}
	if d.Lastname == nil || *d.Lastname == "" {
		return nil, apperr.Validation("identity lastname is missing")
	}
	if d.Patronymic == nil || *d.Patronymic == "" {
		return nil, apperr.Validation("identity patronymic is missing")
	}

	enabled := true
	if d.Enabled != nil {
		enabled = *d.Enabled
	}

	return &Identity{
		ID:         uuid.New(),
		Authority:  *d.Authority,
		Username:   *d.Username,
		Email:      *d.Email,
		Enabled:    enabled,
		Firstname:  *d.Firstname,
		Lastname:   *d.Lastname,
		Patronymic: *d.Patronymic,
	}, nil
}

// Apply overwrites supplied fields, keeping the rest.
// Password and Enabled are never touched here; they have dedicated operations.
func (i *Identity) Apply(d IdentityDraft) error {
	if d.Authority != nil {
		if !d.Authority.IsValid() {
			return apperr.Validation("identity authority is invalid")
		}
		i.Authority = *d.Authority
	}
	if d.Username != nil {
		i.Username = *d.Username
	}
	if d.Email != nil {
		i.Email = *d.Email
	}
	if d.Firstname != nil {
		i.Firstname = *d.Firstname
	}
	if d.Lastname != nil {
		i.Lastname = *d.Lastname
	}
	if d.Patronymic != nil {
		i.Patronymic = *d.Patronymic
	}
	return nil
}

// IdentityShort is the reduced identity projection.
type IdentityShort struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Firstname  string    `json:"firstname"`
	Lastname   string    `json:"lastname"`
	Patronymic string    `json:"patronymic"`
}

// IdentityFull is the complete identity projection with owned cars.
type IdentityFull struct {
	ID         uuid.UUID  `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Firstname  string     `json:"firstname"`
	Lastname   string     `json:"lastname"`
	Patronymic string     `json:"patronymic"`
	Cars       []CarShort `json:"cars"`
}

// Short returns the reduced projection of the identity.
func (i *Identity) Short() IdentityShort {
	return IdentityShort{
		ID:         i.ID,
		Username:   i.Username,
		Email:      i.Email,
		Firstname:  i.Firstname,
		Lastname:   i.Lastname,
		Patronymic: i.Patronymic,
	}
}

// Full returns the complete projection with the given owned cars.
func (i *Identity) Full(cars []CarShort) *IdentityFull {
	if cars == nil {
		cars = []CarShort{}
	}
	return &IdentityFull{
		ID:         i.ID,
		Username:   i.Username,
		Email:      i.Email,
		Firstname:  i.Firstname,
		Lastname:   i.Lastname,
		Patronymic: i.Patronymic,
		Cars:       cars,
	}
}
