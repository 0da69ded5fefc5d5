package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/contactbook/internal/apperrors"
	"github.com/nkiryanov/contactbook/internal/models"
)

type ContactRepo struct {
	DB DBTX
}

const createContact = `-- name: CreateContact
INSERT INTO contacts (id, owner_id, first_name, last_name, email, birthdate)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, owner_id, created_at, first_name, last_name, email, birthdate
`

func (r *ContactRepo) CreateContact(ctx context.Context, contact models.Contact) (models.Contact, error) {
	id := contact.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createContact,
		id, contact.OwnerID, contact.FirstName, contact.LastName, contact.Email, contact.Birthdate)
	created, err := pgx.CollectOneRow(rows, rowToContact)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getContact = `-- name: getContact
SELECT id, owner_id, created_at, first_name, last_name, email, birthdate
FROM contacts
WHERE owner_id = $1 AND id = $2
`

// Get contact scoped to owner
// A contact of a different owner is indistinguishable from a missing one
func (r *ContactRepo) GetContact(ctx context.Context, ownerID uuid.UUID, contactID uuid.UUID) (models.Contact, error) {
	rows, _ := r.DB.Query(ctx, getContact, ownerID, contactID)
	contact, err := pgx.CollectOneRow(rows, rowToContact)

	switch {
	case err == nil:
		return contact, nil
	case errors.Is(err, pgx.ErrNoRows):
		return contact, apperrors.ErrContactNotFound
	default:
		return contact, fmt.Errorf("db error: %w", err)
	}
}

const listContacts = `-- name: listContacts
SELECT id, owner_id, created_at, first_name, last_name, email, birthdate
FROM contacts
WHERE owner_id = $1
ORDER BY created_at, id
`

func (r *ContactRepo) ListContacts(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error) {
	rows, _ := r.DB.Query(ctx, listContacts, ownerID)
	contacts, err := pgx.CollectRows(rows, rowToContact)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return contacts, nil
}

const updateContact = `-- name: updateContact
UPDATE contacts
SET first_name = $3, last_name = $4, email = $5, birthdate = $6
WHERE owner_id = $1 AND id = $2
RETURNING id, owner_id, created_at, first_name, last_name, email, birthdate
`

func (r *ContactRepo) UpdateContact(ctx context.Context, contact models.Contact) (models.Contact, error) {
	rows, _ := r.DB.Query(ctx, updateContact,
		contact.OwnerID, contact.ID, contact.FirstName, contact.LastName, contact.Email, contact.Birthdate)
	updated, err := pgx.CollectOneRow(rows, rowToContact)

	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, pgx.ErrNoRows):
		return updated, apperrors.ErrContactNotFound
	default:
		return updated, fmt.Errorf("db error: %w", err)
	}
}

const deleteContact = `-- name: deleteContact
DELETE FROM contacts
WHERE owner_id = $1 AND id = $2
`

func (r *ContactRepo) DeleteContact(ctx context.Context, ownerID uuid.UUID, contactID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteContact, ownerID, contactID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrContactNotFound
	}

	return nil
}

func rowToContact(row pgx.CollectableRow) (models.Contact, error) {
	var c models.Contact
	err := row.Scan(&c.ID, &c.OwnerID, &c.CreatedAt, &c.FirstName, &c.LastName, &c.Email, &c.Birthdate)
	return c, err
}
