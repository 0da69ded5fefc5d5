package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/contactbook/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user in unverified state
	// If username or email is taken already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, email string, hashedPassword string) (models.User, error)

	// Get user by it's id or login (username or email match)
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByLogin(ctx context.Context, login string) (models.User, error)

	// Mark user verified
	// One way transition: marking an already verified user is a no-op
	MarkVerified(ctx context.Context, userID uuid.UUID) (models.User, error)
}

// Contact repository interface
type ContactRepo interface {
	// Create contact owned by ownerID
	CreateContact(ctx context.Context, contact models.Contact) (models.Contact, error)

	// Get contact by id scoped to owner
	// If contact not found (or owned by someone else) must return apperrors.ErrContactNotFound
	GetContact(ctx context.Context, ownerID uuid.UUID, contactID uuid.UUID) (models.Contact, error)

	// List all contacts owned by ownerID ordered by creation time
	ListContacts(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error)

	// Update contact fields, scoped to owner
	// If contact not found must return apperrors.ErrContactNotFound
	UpdateContact(ctx context.Context, contact models.Contact) (models.Contact, error)

	// Delete contact scoped to owner
	// If contact not found must return apperrors.ErrContactNotFound
	DeleteContact(ctx context.Context, ownerID uuid.UUID, contactID uuid.UUID) error
}

// Storage aggregates all repositories backed by the same database
type Storage interface {
	User() UserRepo
	Contact() ContactRepo
}
