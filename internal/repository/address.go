package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/model"
)

// CreateAddress inserts a new address.
func (r *Repository) CreateAddress(ctx context.Context, address *model.Address) error {
	return insertAddress(ctx, r.pool, address)
}

// ListAddresses retrieves the short projection of every address.
func (r *Repository) ListAddresses(ctx context.Context) ([]model.AddressShort, error) {
	query := addressSelect + ` ORDER BY city, street, house`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperr.Store(err, "list addresses")
	}
	defer rows.Close()

	addresses := []model.AddressShort{}
	for rows.Next() {
		var short model.AddressShort
		if err := rows.Scan(&short.ID, &short.City, &short.Street, &short.House); err != nil {
			return nil, apperr.Store(err, "scan address")
		}
		addresses = append(addresses, short)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err, "iterate addresses")
	}
	return addresses, nil
}

// GetAddressFull loads the address with its optional back-referenced parking.
func (r *Repository) GetAddressFull(ctx context.Context, id uuid.UUID) (*model.AddressFull, error) {
	var full *model.AddressFull
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		address, err := scanAddress(tx.QueryRow(ctx, addressSelect+` WHERE id = $1`, id))
		if err != nil {
			return err
		}

		parking, err := parkingShortByAddress(ctx, tx, id)
		if err != nil {
			return err
		}

		full = address.Full(parking)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return full, nil
}

// UpdateAddress applies a partial draft. Returns the linked parking's ID
// and that parking's assigned car IDs: both caches embed address fields,
// so an address edit invalidates them.
func (r *Repository) UpdateAddress(ctx context.Context, id uuid.UUID, draft model.AddressDraft) (*model.Address, *uuid.UUID, []uuid.UUID, error) {
	var (
		address   *model.Address
		parkingID *uuid.UUID
		carIDs    []uuid.UUID
	)
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		address, err = scanAddress(tx.QueryRow(ctx, addressSelect+` WHERE id = $1`, id))
		if err != nil {
			return err
		}

		address.Apply(draft)

		query := `
			UPDATE address
			SET city = $2, street = $3, house = $4
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, query, address.ID, address.City, address.Street, address.House); err != nil {
			return apperr.Store(err, "update address")
		}

		parkingID, carIDs, err = parkingClosureByAddress(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return address, parkingID, carIDs, nil
}

// DeleteAddress removes the address; the linked parking survives with its
// address reference cleared by the store. Returns the parking's ID and its
// assigned car IDs for invalidation.
func (r *Repository) DeleteAddress(ctx context.Context, id uuid.UUID) (*uuid.UUID, []uuid.UUID, error) {
	var (
		parkingID *uuid.UUID
		carIDs    []uuid.UUID
	)
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		parkingID, carIDs, err = parkingClosureByAddress(ctx, tx, id)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM address WHERE id = $1`, id)
		if err != nil {
			return apperr.Store(err, "delete address")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("address not found")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return parkingID, carIDs, nil
}

const addressSelect = `
	SELECT id, city, street, house
	FROM address
`

// scanAddress scans a single row into an Address model.
func scanAddress(row pgx.Row) (*model.Address, error) {
	var address model.Address
	err := row.Scan(&address.ID, &address.City, &address.Street, &address.House)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("address not found")
		}
		return nil, apperr.Store(err, "scan address")
	}
	return &address, nil
}

// insertAddress writes one address row.
func insertAddress(ctx context.Context, db execer, address *model.Address) error {
	query := `
		INSERT INTO address (id, city, street, house)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := db.Exec(ctx, query, address.ID, address.City, address.Street, address.House); err != nil {
		return apperr.Store(err, "create address")
	}
	return nil
}

// parkingShortByAddress returns the short projection of the parking linked
// to the address, or nil when no parking occupies it.
func parkingShortByAddress(ctx context.Context, q queryer, addressID uuid.UUID) (*model.ParkingShort, error) {
	var short model.ParkingShort
	err := q.QueryRow(ctx,
		`SELECT id, price FROM parking WHERE address_id = $1`, addressID,
	).Scan(&short.ID, &short.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Store(err, "scan parking by address")
	}
	return &short, nil
}

// parkingClosureByAddress resolves the parking linked to the address and
// that parking's assigned cars, for cache invalidation.
func parkingClosureByAddress(ctx context.Context, tx pgx.Tx, addressID uuid.UUID) (*uuid.UUID, []uuid.UUID, error) {
	parking, err := parkingShortByAddress(ctx, tx, addressID)
	if err != nil {
		return nil, nil, err
	}
	if parking == nil {
		return nil, nil, nil
	}

	carIDs, err := listCarIDsByParking(ctx, tx, parking.ID)
	if err != nil {
		return nil, nil, err
	}
	return &parking.ID, carIDs, nil
}
