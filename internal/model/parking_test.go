package model

import (
	"testing"

	"github.com/burgasvv/parking-service/internal/apperr"
)

func floatPtr(f float64) *float64 { return &f }

func TestNewAddress(t *testing.T) {
	t.Parallel()

	address, err := NewAddress(AddressDraft{
		City:   strPtr("Novosibirsk"),
		Street: strPtr("Lenina"),
		House:  strPtr("12"),
	})
	if err != nil {
		t.Fatalf("NewAddress failed: %v", err)
	}
	if address.City != "Novosibirsk" {
		t.Errorf("City mismatch: got %q", address.City)
	}
}

func TestNewAddress_MissingFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		draft AddressDraft
	}{
		{"missing city", AddressDraft{Street: strPtr("Lenina"), House: strPtr("12")}},
		{"missing street", AddressDraft{City: strPtr("Novosibirsk"), House: strPtr("12")}},
		{"missing house", AddressDraft{City: strPtr("Novosibirsk"), Street: strPtr("Lenina")}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewAddress(tt.draft)
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNewParking(t *testing.T) {
	t.Parallel()

	parking, err := NewParking(ParkingDraft{
		Address: &AddressDraft{City: strPtr("Novosibirsk"), Street: strPtr("Lenina"), House: strPtr("12")},
		Price:   floatPtr(150),
	})
	if err != nil {
		t.Fatalf("NewParking failed: %v", err)
	}
	if parking.Price != 150 {
		t.Errorf("Price mismatch: got %v", parking.Price)
	}
	if parking.AddressID != nil {
		t.Error("AddressID resolution belongs to the repository")
	}
}

func TestNewParking_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		draft ParkingDraft
	}{
		{"missing address", ParkingDraft{Price: floatPtr(10)}},
		{"missing price", ParkingDraft{Address: &AddressDraft{}}},
		{"negative price", ParkingDraft{Address: &AddressDraft{}, Price: floatPtr(-1)}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewParking(tt.draft)
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestParkingApply_RejectsNegativePrice(t *testing.T) {
	t.Parallel()

	parking := &Parking{Price: 100}
	if err := parking.Apply(ParkingDraft{Price: floatPtr(-5)}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if parking.Price != 100 {
		t.Error("price must be unchanged after a rejected draft")
	}
}
