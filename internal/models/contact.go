package models

import (
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	CreatedAt time.Time
	FirstName string
	LastName  string
	Email     string

	// Full birthdate as stored. Only month and day matter for the
	// upcoming birthday report, the year is kept for display
	Birthdate time.Time
}

// Contact birthday resolved against a concrete reference date
type UpcomingBirthday struct {
	ContactID      uuid.UUID
	FirstName      string
	LastName       string
	NextOccurrence time.Time
	DaysUntil      int
}
