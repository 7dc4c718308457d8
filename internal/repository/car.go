package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/model"
)

// CreateCar inserts a new car and returns its full projection.
// A reference to a missing owner identity is a validation error.
func (r *Repository) CreateCar(ctx context.Context, car *model.Car) (*model.CarFull, error) {
	var full *model.CarFull
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		owner, err := scanIdentity(tx.QueryRow(ctx, identitySelect+` WHERE id = $1`, car.IdentityID))
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				return apperr.Validation("car owner identity does not exist")
			}
			return err
		}

		query := `
			INSERT INTO car (id, brand, model, description, identity_id)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, query,
			car.ID,
			car.Brand,
			car.Model,
			car.Description,
			car.IdentityID,
		); err != nil {
			return mapConstraintError(err, "car")
		}

		full = car.Full(owner.Short(), nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return full, nil
}

// ListCars retrieves the short projection of every car.
func (r *Repository) ListCars(ctx context.Context) ([]model.CarShort, error) {
	query := `
		SELECT id, brand, model, description
		FROM car
		ORDER BY brand, model
	`
	return queryCarShorts(ctx, r.pool, query)
}

// ListCarsByIdentity retrieves the short projections of the identity's cars.
func (r *Repository) ListCarsByIdentity(ctx context.Context, identityID uuid.UUID) ([]model.CarShort, error) {
	return listCarShortsByIdentity(ctx, r.pool, identityID)
}

// GetCarFull loads the car with its owner and assigned parkings eagerly,
// inside one transaction so the projection is a consistent snapshot.
func (r *Repository) GetCarFull(ctx context.Context, id uuid.UUID) (*model.CarFull, error) {
	var full *model.CarFull
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		car, err := scanCar(tx.QueryRow(ctx, carSelect+` WHERE id = $1`, id))
		if err != nil {
			return err
		}

		owner, err := scanIdentity(tx.QueryRow(ctx, identitySelect+` WHERE id = $1`, car.IdentityID))
		if err != nil {
			return err
		}

		parkings, err := listParkingsWithAddressByCar(ctx, tx, id)
		if err != nil {
			return err
		}

		full = car.Full(owner.Short(), parkings)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return full, nil
}

// GetCarOwnerEmail resolves the email of the car's owning identity.
// Used by the authorization pre-check, distinct from the operation's own read.
func (r *Repository) GetCarOwnerEmail(ctx context.Context, carID uuid.UUID) (string, error) {
	query := `
		SELECT i.email
		FROM car c
		JOIN identity i ON i.id = c.identity_id
		WHERE c.id = $1
	`

	var email string
	if err := r.pool.QueryRow(ctx, query, carID).Scan(&email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("car not found")
		}
		return "", apperr.Store(err, "resolve car owner")
	}
	return email, nil
}

// UpdateCar applies a partial draft. A supplied owner that resolves re-homes
// the car; an unresolvable one keeps the current owner. Returns the updated
// car plus the affected owner and parking IDs for invalidation.
func (r *Repository) UpdateCar(ctx context.Context, id uuid.UUID, draft model.CarDraft) (*model.Car, []uuid.UUID, []uuid.UUID, error) {
	var (
		car        *model.Car
		ownerIDs   []uuid.UUID
		parkingIDs []uuid.UUID
	)
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		car, err = scanCar(tx.QueryRow(ctx, carSelect+` WHERE id = $1`, id))
		if err != nil {
			return err
		}

		previousOwner := car.IdentityID
		car.Apply(draft)

		if draft.IdentityID != nil {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM identity WHERE id = $1)`, *draft.IdentityID,
			).Scan(&exists); err != nil {
				return apperr.Store(err, "check car owner")
			}
			if exists {
				car.IdentityID = *draft.IdentityID
			}
		}

		query := `
			UPDATE car
			SET brand = $2, model = $3, description = $4, identity_id = $5
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, query,
			car.ID,
			car.Brand,
			car.Model,
			car.Description,
			car.IdentityID,
		); err != nil {
			return mapConstraintError(err, "car")
		}

		ownerIDs = []uuid.UUID{car.IdentityID}
		if car.IdentityID != previousOwner {
			ownerIDs = append(ownerIDs, previousOwner)
		}

		parkingIDs, err = listParkingIDsByCar(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return car, ownerIDs, parkingIDs, nil
}

// DeleteCar removes the car; assignment rows cascade away with it.
// Returns the owner and parking IDs for invalidation.
func (r *Repository) DeleteCar(ctx context.Context, id uuid.UUID) (uuid.UUID, []uuid.UUID, error) {
	var (
		ownerID    uuid.UUID
		parkingIDs []uuid.UUID
	)
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		car, err := scanCar(tx.QueryRow(ctx, carSelect+` WHERE id = $1`, id))
		if err != nil {
			return err
		}
		ownerID = car.IdentityID

		parkingIDs, err = listParkingIDsByCar(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM car WHERE id = $1`, id); err != nil {
			return apperr.Store(err, "delete car")
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, nil, err
	}
	return ownerID, parkingIDs, nil
}

const carSelect = `
	SELECT id, brand, model, description, identity_id
	FROM car
`

// scanCar scans a single row into a Car model.
func scanCar(row pgx.Row) (*model.Car, error) {
	var car model.Car
	err := row.Scan(
		&car.ID,
		&car.Brand,
		&car.Model,
		&car.Description,
		&car.IdentityID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("car not found")
		}
		return nil, apperr.Store(err, "scan car")
	}
	return &car, nil
}

// queryCarShorts runs a short-projection query and scans the results.
func queryCarShorts(ctx context.Context, q queryer, query string, args ...any) ([]model.CarShort, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store(err, "list cars")
	}
	defer rows.Close()

	cars := []model.CarShort{}
	for rows.Next() {
		var short model.CarShort
		if err := rows.Scan(&short.ID, &short.Brand, &short.Model, &short.Description); err != nil {
			return nil, apperr.Store(err, "scan car")
		}
		cars = append(cars, short)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err, "iterate cars")
	}
	return cars, nil
}

// listCarShortsByIdentity returns the short projections of cars owned by
// the identity.
func listCarShortsByIdentity(ctx context.Context, q queryer, identityID uuid.UUID) ([]model.CarShort, error) {
	query := `
		SELECT id, brand, model, description
		FROM car
		WHERE identity_id = $1
		ORDER BY brand, model
	`
	return queryCarShorts(ctx, q, query, identityID)
}

// listCarShortsByParking returns the short projections of cars assigned
// to the parking.
func listCarShortsByParking(ctx context.Context, q queryer, parkingID uuid.UUID) ([]model.CarShort, error) {
	query := `
		SELECT c.id, c.brand, c.model, c.description
		FROM car c
		JOIN parking_car pc ON pc.car_id = c.id
		WHERE pc.parking_id = $1
		ORDER BY c.brand, c.model
	`
	return queryCarShorts(ctx, q, query, parkingID)
}

// listParkingIDsByCar returns the IDs of parkings the car is assigned to.
func listParkingIDsByCar(ctx context.Context, tx pgx.Tx, carID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, `SELECT parking_id FROM parking_car WHERE car_id = $1`, carID)
	if err != nil {
		return nil, apperr.Store(err, "list parking ids by car")
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Store(err, "scan parking id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err, "iterate parking ids")
	}
	return ids, nil
}

// listParkingsWithAddressByCar returns the with-address projections of
// parkings the car is assigned to.
func listParkingsWithAddressByCar(ctx context.Context, q queryer, carID uuid.UUID) ([]model.ParkingWithAddress, error) {
	query := `
		SELECT p.id, p.price, a.id, a.city, a.street, a.house
		FROM parking p
		JOIN parking_car pc ON pc.parking_id = p.id
		LEFT JOIN address a ON a.id = p.address_id
		WHERE pc.car_id = $1
		ORDER BY p.price
	`

	rows, err := q.Query(ctx, query, carID)
	if err != nil {
		return nil, apperr.Store(err, "list parkings by car")
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
