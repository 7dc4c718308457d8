package model

import (
	"testing"

	"github.com/burgasvv/parking-service/internal/apperr"
)

func strPtr(s string) *string { return &s }

func validIdentityDraft() IdentityDraft {
	authority := AuthorityUser
	return IdentityDraft{
		Authority:  &authority,
		Username:   strPtr("jdoe"),
		Password:   strPtr("secret"),
		Email:      strPtr("jdoe@example.com"),
		Firstname:  strPtr("John"),
		Lastname:   strPtr("Doe"),
		Patronymic: strPtr("J"),
	}
}

func TestNewIdentity(t *testing.T) {
	t.Parallel()

	ident, err := NewIdentity(validIdentityDraft())
	if err != nil {
		t.Fatalf("NewIdentity failed: %v", err)
	}
	if ident.ID.String() == "" {
		t.Error("ID should be set")
	}
	if !ident.Enabled {
		t.Error("Enabled should default to true")
	}
	if ident.Authority != AuthorityUser {
		t.Errorf("Authority mismatch: got %q", ident.Authority)
	}
}

func TestNewIdentity_DisabledOnRequest(t *testing.T) {
	t.Parallel()

	draft := validIdentityDraft()
	enabled := false
	draft.Enabled = &enabled

	ident, err := NewIdentity(draft)
	if err != nil {
		t.Fatalf("NewIdentity failed: %v", err)
	}
	if ident.Enabled {
		t.Error("Enabled should honor the draft value")
	}
}

func TestNewIdentity_MissingFields(t *testing.T) {
	t.Parallel()

	badAuthority := Authority("ROOT")

	tests := []struct {
		name   string
		mutate func(*IdentityDraft)
	}{
		{"missing authority", func(d *IdentityDraft) { d.Authority = nil }},
		{"invalid authority", func(d *IdentityDraft) { d.Authority = &badAuthority }},
		{"missing username", func(d *IdentityDraft) { d.Username = nil }},
		{"empty username", func(d *IdentityDraft) { d.Username = strPtr("") }},
		{"missing password", func(d *IdentityDraft) { d.Password = nil }},
		{"empty password", func(d *IdentityDraft) { d.Password = strPtr("") }},
		{"missing email", func(d *IdentityDraft) { d.Email = nil }},
		{"missing firstname", func(d *IdentityDraft) { d.Firstname = nil }},
		{"missing lastname", func(d *IdentityDraft) { d.Lastname = nil }},
		{"missing patronymic", func(d *IdentityDraft) { d.Patronymic = nil }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			draft := validIdentityDraft()
			tt.mutate(&draft)

			_, err := NewIdentity(draft)
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestIdentityApply_PartialOverwrite(t *testing.T) {
	t.Parallel()

	ident, err := NewIdentity(validIdentityDraft())
	if err != nil {
		t.Fatalf("NewIdentity failed: %v", err)
	}
	ident.Password = "hashed"

	admin := AuthorityAdmin
	if err := ident.Apply(IdentityDraft{
		Authority: &admin,
		Email:     strPtr("new@example.com"),
	}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if ident.Authority != AuthorityAdmin {
		t.Errorf("Authority not applied: got %q", ident.Authority)
	}
	if ident.Email != "new@example.com" {
		t.Errorf("Email not applied: got %q", ident.Email)
	}
	if ident.Username != "jdoe" {
		t.Errorf("Username should be kept: got %q", ident.Username)
	}
}

func TestIdentityApply_NeverTouchesPasswordOrEnabled(t *testing.T) {
	t.Parallel()

	ident, err := NewIdentity(validIdentityDraft())
	if err != nil {
		t.Fatalf("NewIdentity failed: %v", err)
	}
	ident.Password = "hashed"

	enabled := false
	if err := ident.Apply(IdentityDraft{
		Password: strPtr("other"),
		Enabled:  &enabled,
	}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if ident.Password != "hashed" {
		t.Error("Apply must not change the password")
	}
	if !ident.Enabled {
		t.Error("Apply must not change the enabled flag")
	}
}

func TestIdentityProjections(t *testing.T) {
	t.Parallel()

	ident, err := NewIdentity(validIdentityDraft())
	if err != nil {
		t.Fatalf("NewIdentity failed: %v", err)
	}

	short := ident.Short()
	if short.ID != ident.ID || short.Email != ident.Email {
		t.Error("Short projection mismatch")
	}

	full := ident.Full(nil)
	if full.Cars == nil {
		t.Error("Full projection must carry an empty car slice, not nil")
	}

	cars := []CarShort{{Brand: "Lada"}}
	full = ident.Full(cars)
	if len(full.Cars) != 1 {
		t.Errorf("Full projection cars mismatch: got %d", len(full.Cars))
	}
}

func TestAuthorityIsValid(t *testing.T) {
	t.Parallel()

	if !AuthorityAdmin.IsValid() || !AuthorityUser.IsValid() {
		t.Error("known authorities should be valid")
	}
	if Authority("ROOT").IsValid() {
		t.Error("unknown authority should be invalid")
	}
}
