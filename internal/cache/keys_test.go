package cache

import (
	"testing"

	"github.com/google/uuid"
)

func TestKeyFormats(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("0b2f7b0a-9f34-4f6e-9a88-1f2d3c4b5a69")

	if got := IdentityKey(id); got != "identity::"+id.String() {
		t.Errorf("IdentityKey = %q", got)
	}
	if got := CarKey(id); got != "car::"+id.String() {
		t.Errorf("CarKey = %q", got)
	}
	if got := ParkingKey(id); got != "parking::"+id.String() {
		t.Errorf("ParkingKey = %q", got)
	}
}

func TestIdentityClosure(t *testing.T) {
	t.Parallel()

	identityID := uuid.New()
	carA := uuid.New()
	carB := uuid.New()

	keys := IdentityClosure(identityID, []uuid.UUID{carA, carB})
	want := []string{IdentityKey(identityID), CarKey(carA), CarKey(carB)}

	assertKeys(t, keys, want)
}

func TestIdentityClosure_NoCars(t *testing.T) {
	t.Parallel()

	identityID := uuid.New()
	keys := IdentityClosure(identityID, nil)
	assertKeys(t, keys, []string{IdentityKey(identityID)})
}

func TestCarClosure(t *testing.T) {
	t.Parallel()

	carID := uuid.New()
	oldOwner := uuid.New()
	newOwner := uuid.New()
	parkingID := uuid.New()

	keys := CarClosure(carID, []uuid.UUID{oldOwner, newOwner}, []uuid.UUID{parkingID})
	want := []string{
		CarKey(carID),
		IdentityKey(oldOwner),
		IdentityKey(newOwner),
		ParkingKey(parkingID),
	}

	assertKeys(t, keys, want)
}

func TestParkingClosure(t *testing.T) {
	t.Parallel()

	parkingID := uuid.New()
	carID := uuid.New()

	keys := ParkingClosure(parkingID, []uuid.UUID{carID})
	assertKeys(t, keys, []string{ParkingKey(parkingID), CarKey(carID)})
}

func TestPairClosure(t *testing.T) {
	t.Parallel()

	parkingID := uuid.New()
	carID := uuid.New()

	keys := PairClosure(parkingID, carID)
	assertKeys(t, keys, []string{ParkingKey(parkingID), CarKey(carID)})
}

func assertKeys(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("key count mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
