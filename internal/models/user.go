package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Username       string
	Email          string
	HashedPassword string

	// Users start unverified and become verified exactly once,
	// when the email verification token is presented
	Verified bool
}
