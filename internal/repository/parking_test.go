package repository

import (
	"bytes"
	"testing"

	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/model"
)

func TestSortPairs_GlobalLockOrder(t *testing.T) {
	t.Parallel()

	p1 := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	p2 := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	c1 := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	c2 := uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")

	pairs := []model.ParkingCarPair{
		{ParkingID: p2, CarID: c1},
		{ParkingID: p1, CarID: c2},
		{ParkingID: p2, CarID: c2},
		{ParkingID: p1, CarID: c1},
	}

	sorted := sortPairs(pairs)

	want := []model.ParkingCarPair{
		{ParkingID: p1, CarID: c1},
		{ParkingID: p1, CarID: c2},
		{ParkingID: p2, CarID: c1},
		{ParkingID: p2, CarID: c2},
	}
	for i, pair := range sorted {
		if pair != want[i] {
			t.Fatalf("sorted[%d] = %v/%v, want %v/%v", i, pair.ParkingID, pair.CarID, want[i].ParkingID, want[i].CarID)
		}
	}

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		byParking := bytes.Compare(prev.ParkingID[:], cur.ParkingID[:])
		if byParking > 0 || (byParking == 0 && bytes.Compare(prev.CarID[:], cur.CarID[:]) > 0) {
			t.Fatalf("pair %d out of order: %v/%v after %v/%v", i, cur.ParkingID, cur.CarID, prev.ParkingID, prev.CarID)
		}
	}
}

func TestSortPairs_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	a := model.ParkingCarPair{ParkingID: uuid.New(), CarID: uuid.New()}
	b := model.ParkingCarPair{ParkingID: uuid.New(), CarID: uuid.New()}
	pairs := []model.ParkingCarPair{b, a}

	_ = sortPairs(pairs)

	if pairs[0] != b || pairs[1] != a {
		t.Fatal("input batch must keep its request order")
	}
}
