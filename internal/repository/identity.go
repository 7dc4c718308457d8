package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/model"
)

// CreateIdentity inserts a new identity.
func (r *Repository) CreateIdentity(ctx context.Context, ident *model.Identity) error {
	query := `
		INSERT INTO identity (id, authority, username, password, email, enabled, firstname, lastname, patronymic)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		ident.ID,
		ident.Authority,
		ident.Username,
		ident.Password,
		ident.Email,
		ident.Enabled,
		ident.Firstname,
		ident.Lastname,
		ident.Patronymic,
	)
	if err != nil {
		return mapConstraintError(err, "identity")
	}

	return nil
}

// GetIdentityByID retrieves an identity by its ID, password hash included.
func (r *Repository) GetIdentityByID(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	return scanIdentity(r.pool.QueryRow(ctx, identitySelect+` WHERE id = $1`, id))
}

// GetIdentityByEmail retrieves an identity by its unique email.
// Used by the credential check before any main operation runs.
func (r *Repository) GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	return scanIdentity(r.pool.QueryRow(ctx, identitySelect+` WHERE email = $1`, email))
}

// ListIdentities retrieves the short projection of every identity.
func (r *Repository) ListIdentities(ctx context.Context) ([]model.IdentityShort, error) {
	query := `
		SELECT id, username, email, firstname, lastname, patronymic
		FROM identity
		ORDER BY username
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperr.Store(err, "list identities")
	}
	defer rows.Close()

	identities := []model.IdentityShort{}
	for rows.Next() {
		var short model.IdentityShort
		if err := rows.Scan(
			&short.ID,
			&short.Username,
			&short.Email,
			&short.Firstname,
			&short.Lastname,
			&short.Patronymic,
		); err != nil {
			return nil, apperr.Store(err, "scan identity")
		}
		identities = append(identities, short)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err, "iterate identities")
	}

	return identities, nil
}

// GetIdentityFull loads the identity with its owned cars eagerly,
// inside one transaction so the projection is a consistent snapshot.
func (r *Repository) GetIdentityFull(ctx context.Context, id uuid.UUID) (*model.IdentityFull, error) {
	var full *model.IdentityFull
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		ident, err := scanIdentity(tx.QueryRow(ctx, identitySelect+` WHERE id = $1`, id))
		if err != nil {
			return err
		}

		cars, err := listCarShortsByIdentity(ctx, tx, id)
		if err != nil {
			return err
		}

		full = ident.Full(cars)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return full, nil
}

// UpdateIdentity applies a partial draft to the identity and returns the
// updated row together with the IDs of its owned cars for invalidation.
func (r *Repository) UpdateIdentity(ctx context.Context, id uuid.UUID, draft model.IdentityDraft) (*model.Identity, []uuid.UUID, error) {
	var (
		ident  *model.Identity
		carIDs []uuid.UUID
	)
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		ident, err = scanIdentity(tx.QueryRow(ctx, identitySelect+` WHERE id = $1`, id))
		if err != nil {
			return err
		}

		if err := ident.Apply(draft); err != nil {
			return err
		}

		query := `
			UPDATE identity
			SET authority = $2, username = $3, email = $4, firstname = $5, lastname = $6, patronymic = $7
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, query,
			ident.ID,
			ident.Authority,
			ident.Username,
			ident.Email,
			ident.Firstname,
			ident.Lastname,
			ident.Patronymic,
		); err != nil {
			return mapConstraintError(err, "identity")
		}

		carIDs, err = listCarIDsByIdentity(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return ident, carIDs, nil
}

// SetIdentityPassword replaces the identity's password hash and returns
// the owned car IDs for invalidation.
func (r *Repository) SetIdentityPassword(ctx context.Context, id uuid.UUID, hash string) ([]uuid.UUID, error) {
	var carIDs []uuid.UUID
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE identity SET password = $2 WHERE id = $1`, id, hash)
		if err != nil {
			return apperr.Store(err, "update identity password")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("identity not found")
		}

		carIDs, err = listCarIDsByIdentity(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return carIDs, nil
}

// SetIdentityStatus flips the enabled flag and returns the owned car IDs
// for invalidation. A status-change with no actual change is a conflict,
// checked atomically within the same transaction.
func (r *Repository) SetIdentityStatus(ctx context.Context, id uuid.UUID, enabled bool) ([]uuid.UUID, error) {
	var carIDs []uuid.UUID
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var current bool
		if err := tx.QueryRow(ctx, `SELECT enabled FROM identity WHERE id = $1`, id).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("identity not found")
			}
			return apperr.Store(err, "read identity status")
		}
		if current == enabled {
			return apperr.Conflict("identity status is already %t", enabled)
		}

		if _, err := tx.Exec(ctx, `UPDATE identity SET enabled = $2 WHERE id = $1`, id, enabled); err != nil {
			return apperr.Store(err, "update identity status")
		}

		var err error
		carIDs, err = listCarIDsByIdentity(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return carIDs, nil
}

// DeleteIdentity removes the identity; its cars cascade away with it.
// Returns the IDs of the deleted cars for invalidation.
func (r *Repository) DeleteIdentity(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var carIDs []uuid.UUID
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		carIDs, err = listCarIDsByIdentity(ctx, tx, id)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM identity WHERE id = $1`, id)
		if err != nil {
			return apperr.Store(err, "delete identity")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("identity not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return carIDs, nil
}

const identitySelect = `
	SELECT id, authority, username, password, email, enabled, firstname, lastname, patronymic
	FROM identity
`

// scanIdentity scans a single row into an Identity model.
func scanIdentity(row pgx.Row) (*model.Identity, error) {
	var ident model.Identity
	err := row.Scan(
		&ident.ID,
		&ident.Authority,
		&ident.Username,
		&ident.Password,
		&ident.Email,
		&ident.Enabled,
		&ident.Firstname,
		&ident.Lastname,
		&ident.Patronymic,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("identity not found")
		}
		return nil, apperr.Store(err, "scan identity")
	}
	return &ident, nil
}

// listCarIDsByIdentity returns the IDs of cars owned by the identity.
func listCarIDsByIdentity(ctx context.Context, tx pgx.Tx, identityID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, `SELECT id FROM car WHERE identity_id = $1`, identityID)
	if err != nil {
		return nil, apperr.Store(err, "list car ids by identity")
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
