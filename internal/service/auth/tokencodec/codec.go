package tokencodec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/contactbook/internal/apperrors"
	"github.com/nkiryanov/contactbook/internal/models"
)

const defaultSigningMethod = "HS256"

type Claims struct {
	jwt.RegisteredClaims

	// Purpose the token was issued for
	// Checked on verify in addition to the purpose bound signing secret
	Purpose string `json:"purpose"`
}

// Codec config with sensible defaults
type Config struct {
	// Independent signing secrets, one per token purpose
	// All three are required and must differ: a leaked secret or a captured
	// token of one purpose must be useless against the other two
	AccessSecret  string
	RefreshSecret string
	EmailSecret   string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string
}

// Codec signs and verifies purpose scoped tokens.
// Stateless: pure function of its inputs and the configured secrets,
// safe for concurrent use without synchronization.
type Codec struct {
	secrets map[models.TokenPurpose][]byte
	alg     jwt.SigningMethod
}

func New(cfg Config) (*Codec, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" || cfg.EmailSecret == "" {
		return nil, errors.New("all three purpose secrets must be set")
	}
	if cfg.AccessSecret == cfg.RefreshSecret || cfg.AccessSecret == cfg.EmailSecret || cfg.RefreshSecret == cfg.EmailSecret {
		return nil, errors.New("purpose secrets must not be shared")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	// GetSigningMethod returns nil for names it does not know, catch it
	// here instead of panicking on the first Issue
	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing algorithm: %q", cfg.Alg)
	}

	return &Codec{
		secrets: map[models.TokenPurpose][]byte{
			models.PurposeAccess:      []byte(cfg.AccessSecret),
			models.PurposeRefresh:     []byte(cfg.RefreshSecret),
			models.PurposeEmailVerify: []byte(cfg.EmailSecret),
		},
		alg: alg,
	}, nil
}

// Issue signs a token for subject bound to the given purpose
func (c *Codec) Issue(subject string, purpose models.TokenPurpose, ttl time.Duration) (models.IssuedToken, error) {
	secret, ok := c.secrets[purpose]
	if !ok {
		return models.IssuedToken{}, fmt.Errorf("unknown token purpose: %q", purpose)
	}

	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(
		c.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   subject,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			Purpose: purpose.String(),
		},
	)

	signed, err := token.SignedString(secret)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify parses the token with the secret bound to purpose and returns its
// subject. Signature, expiry and the embedded purpose claim are all checked.
//
// Every failure collapses into apperrors.ErrTokenInvalid: which check failed
// must not be observable, so a forger learns nothing from the error.
func (c *Codec) Verify(tokenString string, purpose models.TokenPurpose) (subject string, err error) {
	secret, ok := c.secrets[purpose]
	if !ok {
		return "", fmt.Errorf("unknown token purpose: %q", purpose)
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{c.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("error while parsing or validating token. Err: %w", apperrors.ErrTokenInvalid)
	}

	if claims.Purpose != purpose.String() {
		return "", fmt.Errorf("token purpose mismatch. Err: %w", apperrors.ErrTokenInvalid)
	}

	return claims.Subject, nil
}
