package models

import (
	"time"
)

// TokenPurpose restricts which operation a signed token may authorize.
// Every purpose is signed with its own secret, so a leaked secret or a
// replayed token of one purpose is useless against the other two.
type TokenPurpose string

const (
	PurposeAccess      TokenPurpose = "access"
	PurposeRefresh     TokenPurpose = "refresh"
	PurposeEmailVerify TokenPurpose = "email_verify"
)

func (p TokenPurpose) String() string {
	return string(p)
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by AuthService on login, register or refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
