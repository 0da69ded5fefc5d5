package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/contactbook/internal/cache"
)

const keyPrefix = "revoked:"

// Store is a denylist for otherwise stateless tokens.
//
// Signed tokens can't be deleted, so logout is allow-by-default with an
// exception list: a revoked token stays listed exactly as long as it would
// have been valid and the entry then expires with the token it shadows.
// Nothing is ever deleted explicitly.
type Store struct {
	store cache.Store
}

func New(store cache.Store) (*Store, error) {
	if store == nil {
		return nil, errors.New("store must not be nil")
	}

	return &Store{store: store}, nil
}

// Revoke records the token fingerprint for ttl.
// The raw token is never stored: the denylist must not become a token leak.
func (s *Store) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, signature check rejects it anyway
		return nil
	}

	err := s.store.SetEx(ctx, key(token), []byte("1"), ttl)
	if err != nil {
		return fmt.Errorf("error while revoking token. Err: %w", err)
	}

	return nil
}

// IsRevoked reports whether the token is on the denylist
func (s *Store) IsRevoked(ctx context.Context, token string) (bool, error) {
	revoked, err := s.store.Exists(ctx, key(token))
	if err != nil {
		return false, fmt.Errorf("error while checking revocation. Err: %w", err)
	}

	return revoked, nil
}

func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}
