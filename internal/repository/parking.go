package repository

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/model"
)

// CreateParking inserts a new parking over an existing or nested address
// and returns the full projection. The whole create runs in one transaction:
// a nested address never outlives a failed parking insert.
func (r *Repository) CreateParking(ctx context.Context, parking *model.Parking, addressDraft model.AddressDraft) (*model.ParkingFull, error) {
	var full *model.ParkingFull
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		address, err := resolveAddress(ctx, tx, addressDraft)
		if err != nil {
			return err
		}
		parking.AddressID = &address.ID

		query := `
			INSERT INTO parking (id, address_id, price)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.Exec(ctx, query, parking.ID, parking.AddressID, parking.Price); err != nil {
			return mapConstraintError(err, "parking")
		}

		short := address.Short()
		full = parking.Full(&short, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return full, nil
}

// ListParkings retrieves the with-address projection of every parking.
func (r *Repository) ListParkings(ctx context.Context) ([]model.ParkingWithAddress, error) {
	query := `
		SELECT p.id, p.price, a.id, a.city, a.street, a.house
		FROM parking p
		LEFT JOIN address a ON a.id = p.address_id
		ORDER BY p.price
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperr.Store(err, "list parkings")
	}
	defer rows.Close()

	parkings := []model.ParkingWithAddress{}
	for rows.Next() {
		pwa, err := scanParkingWithAddress(rows)
		if err != nil {
			return nil, err
		}
		parkings = append(parkings, pwa)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err, "iterate parkings")
	}
	return parkings, nil
}

// GetParkingFull loads the parking with its address and assigned cars
// eagerly, inside one transaction so the projection is a consistent snapshot.
func (r *Repository) GetParkingFull(ctx context.Context, id uuid.UUID) (*model.ParkingFull, error) {
	var full *model.ParkingFull
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		parking, address, err := getParkingWithAddress(ctx, tx, id)
		if err != nil {
			return err
		}

		cars, err := listCarShortsByParking(ctx, tx, id)
		if err != nil {
			return err
		}

		full = parking.Full(address, cars)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return full, nil
}

// UpdateParking applies a partial draft: a new price and/or a replacement
// address (existing by ID or nested). Returns the assigned car IDs for
// invalidation.
func (r *Repository) UpdateParking(ctx context.Context, id uuid.UUID, draft model.ParkingDraft) (*model.Parking, []uuid.UUID, error) {
	var (
		parking *model.Parking
		carIDs  []uuid.UUID
	)
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		parking, _, err = getParkingWithAddress(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := parking.Apply(draft); err != nil {
			return err
		}

		if draft.Address != nil {
			address, err := resolveAddress(ctx, tx, *draft.Address)
			if err != nil {
				return err
			}
			parking.AddressID = &address.ID
		}

		query := `
			UPDATE parking
			SET address_id = $2, price = $3
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, query, parking.ID, parking.AddressID, parking.Price); err != nil {
			return mapConstraintError(err, "parking")
		}

		carIDs, err = listCarIDsByParking(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return parking, carIDs, nil
}

// DeleteParking removes the parking; assignment rows cascade away with it.
// Returns the assigned car IDs for invalidation.
func (r *Repository) DeleteParking(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var carIDs []uuid.UUID
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		carIDs, err = listCarIDsByParking(ctx, tx, id)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM parking WHERE id = $1`, id)
		if err != nil {
			return apperr.Store(err, "delete parking")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("parking not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return carIDs, nil
}

// AddCars assigns each (parking, car) pair, atomically for the whole batch.
// The batch is processed in sorted order and for every pair both rows are
// locked FOR UPDATE, parking before car, so concurrent batches touching the
// same rows serialize instead of deadlocking. Adding an existing pair is a
// no-op.
func (r *Repository) AddCars(ctx context.Context, pairs []model.ParkingCarPair) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		for _, pair := range sortPairs(pairs) {
			if err := lockPair(ctx, tx, pair); err != nil {
				return err
			}

			query := `
				INSERT INTO parking_car (parking_id, car_id)
				VALUES ($1, $2)
				ON CONFLICT (parking_id, car_id) DO NOTHING
			`
			if _, err := tx.Exec(ctx, query, pair.ParkingID, pair.CarID); err != nil {
				return mapConstraintError(err, "parking assignment")
			}
		}
		return nil
	})
}

// RemoveCars unassigns each (parking, car) pair, atomically for the whole
// batch, under the same lock discipline as AddCars. Removing a missing
// pair is a no-op.
func (r *Repository) RemoveCars(ctx context.Context, pairs []model.ParkingCarPair) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		for _, pair := range sortPairs(pairs) {
			if err := lockPair(ctx, tx, pair); err != nil {
				return err
			}

			query := `DELETE FROM parking_car WHERE parking_id = $1 AND car_id = $2`
			if _, err := tx.Exec(ctx, query, pair.ParkingID, pair.CarID); err != nil {
				return apperr.Store(err, "remove parking assignment")
			}
		}
		return nil
	})
}

// CountAssignments returns the number of assignment rows for the parking.
func (r *Repository) CountAssignments(ctx context.Context, parkingID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM parking_car WHERE parking_id = $1`, parkingID,
	).Scan(&n)
	if err != nil {
		return 0, apperr.Store(err, "count assignments")
	}
	return n, nil
}

// sortPairs returns a copy of the batch ordered by parking ID, then car ID.
// Combined with the parking-before-car discipline in lockPair, every
// transaction acquires row locks in one global order.
func sortPairs(pairs []model.ParkingCarPair) []model.ParkingCarPair {
	sorted := make([]model.ParkingCarPair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool {
		if c := bytes.Compare(sorted[i].ParkingID[:], sorted[j].ParkingID[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(sorted[i].CarID[:], sorted[j].CarID[:]) < 0
	})
	return sorted
}

// lockPair takes exclusive row locks on the parking and the car of one
// pair. Lock ordering is fixed (parking first) to prevent deadlock between
// concurrent batches referencing the same pair in different order.
func lockPair(ctx context.Context, tx pgx.Tx, pair model.ParkingCarPair) error {
	var locked uuid.UUID

	err := tx.QueryRow(ctx, `SELECT id FROM parking WHERE id = $1 FOR UPDATE`, pair.ParkingID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("parking not found")
		}
		return apperr.Store(err, "lock parking row")
	}

	err = tx.QueryRow(ctx, `SELECT id FROM car WHERE id = $1 FOR UPDATE`, pair.CarID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("car not found")
		}
		return apperr.Store(err, "lock car row")
	}

	return nil
}

// resolveAddress returns the existing address when the draft carries an ID,
// or inserts a nested one otherwise.
func resolveAddress(ctx context.Context, tx pgx.Tx, draft model.AddressDraft) (*model.Address, error) {
	if draft.ID != nil {
		address, err := scanAddress(tx.QueryRow(ctx, addressSelect+` WHERE id = $1`, *draft.ID))
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				return nil, apperr.Validation("parking address does not exist")
			}
			return nil, err
		}
		return address, nil
	}

	address, err := model.NewAddress(draft)
	if err != nil {
		return nil, err
	}
	if err := insertAddress(ctx, tx, address); err != nil {
		return nil, err
	}
	return address, nil
}

// getParkingWithAddress loads one parking row and its optional address.
func getParkingWithAddress(ctx context.Context, q queryer, id uuid.UUID) (*model.Parking, *model.AddressShort, error) {
	query := `
		SELECT p.id, p.price, a.id, a.city, a.street, a.house
		FROM parking p
		LEFT JOIN address a ON a.id = p.address_id
		WHERE p.id = $1
	`

	var (
		parking model.Parking
		aID     *uuid.UUID
		aCity   *string
		aStreet *string
		aHouse  *string
	)
	err := q.QueryRow(ctx, query, id).Scan(&parking.ID, &parking.Price, &aID, &aCity, &aStreet, &aHouse)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFound("parking not found")
		}
		return nil, nil, apperr.Store(err, "scan parking")
	}

	if aID == nil {
		return &parking, nil, nil
	}
	parking.AddressID = aID
	return &parking, &model.AddressShort{ID: *aID, City: *aCity, Street: *aStreet, House: *aHouse}, nil
}

// scanParkingWithAddress scans one row of a parking-with-address join.
func scanParkingWithAddress(rows pgx.Rows) (model.ParkingWithAddress, error) {
	var (
		pwa     model.ParkingWithAddress
		aID     *uuid.UUID
		aCity   *string
		aStreet *string
		aHouse  *string
	)
	if err := rows.Scan(&pwa.ID, &pwa.Price, &aID, &aCity, &aStreet, &aHouse); err != nil {
		return model.ParkingWithAddress{}, apperr.Store(err, "scan parking")
	}
	if aID != nil {
		pwa.Address = &model.AddressShort{ID: *aID, City: *aCity, Street: *aStreet, House: *aHouse}
	}
	return pwa, nil
}

// listCarIDsByParking returns the IDs of cars assigned to the parking.
func listCarIDsByParking(ctx context.Context, tx pgx.Tx, parkingID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, `SELECT car_id FROM parking_car WHERE parking_id = $1`, parkingID)
	if err != nil {
		return nil, apperr.Store(err, "list car ids by parking")
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Store(err, "scan car id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err, "iterate car ids")
	}
	return ids, nil
}
