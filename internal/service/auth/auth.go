package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/contactbook/internal/apperrors"
	"github.com/nkiryanov/contactbook/internal/models"
	"github.com/nkiryanov/contactbook/internal/repository"
	"github.com/nkiryanov/contactbook/internal/service/auth/revocation"
	"github.com/nkiryanov/contactbook/internal/service/auth/tokencodec"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 24 * time.Hour
	defaultEmailTokenTTL   = 48 * time.Hour
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

var DefaultHasher PasswordHasher = BcryptHasher{}

// Hash compared against when the login is unknown, so a login attempt
// costs the same whether the account exists or not
var unknownUserHash = func() string {
	hash, err := DefaultHasher.Hash(uuid.NewString())
	if err != nil {
		panic(fmt.Sprintf("can't hash sentinel password: %v", err))
	}
	return hash
}()

// Auth service config with sensible defaults
type Config struct {
	// Hasher to use during user registration or login process
	// If not set than default bcrypt hasher is used
	Hasher PasswordHasher

	// Token lifetimes per purpose
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	EmailTTL   time.Duration
}

// AuthService implements register, verify, login, refresh and logout over
// purpose scoped tokens and the revocation denylist.
//
// Logout revokes the presented refresh token only. An access token is short
// lived and rides out its own expiry, so a logged out session keeps a
// residual exposure window equal to the access token TTL.
type AuthService struct {
	codec   *tokencodec.Codec
	revoked *revocation.Store
	hasher  PasswordHasher

	userRepo repository.UserRepo

	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
}

func NewService(cfg Config, codec *tokencodec.Codec, revoked *revocation.Store, userRepo repository.UserRepo) (*AuthService, error) {
	if codec == nil || revoked == nil || userRepo == nil {
		return nil, errors.New("codec, revocation store and user repo must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)
	setDefaultDuration(&cfg.EmailTTL, defaultEmailTokenTTL)

	return &AuthService{
		codec:      codec,
		revoked:    revoked,
		hasher:     hasher,
		userRepo:   userRepo,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		emailTTL:   cfg.EmailTTL,
	}, nil
}

// Register creates an unverified account and returns the email verification
// token. The token is meant for out-of-band delivery (email), it never
// grants API access by itself.
func (s *AuthService) Register(ctx context.Context, username string, email string, password string) (models.User, models.IssuedToken, error) {
	var user models.User

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, models.IssuedToken{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err = s.userRepo.CreateUser(ctx, username, email, hash)
	if err != nil {
		return user, models.IssuedToken{}, err
	}

	verify, err := s.codec.Issue(user.ID.String(), models.PurposeEmailVerify, s.emailTTL)
	if err != nil {
		return user, models.IssuedToken{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return user, verify, nil
}

// VerifyEmail transitions the token's subject to verified.
// The transition is one way and idempotent.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (models.User, error) {
	subject, err := s.codec.Verify(token, models.PurposeEmailVerify)
	if err != nil {
		return models.User{}, err
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return models.User{}, fmt.Errorf("malformed token subject. Err: %w", apperrors.ErrTokenInvalid)
	}

	user, err := s.userRepo.MarkVerified(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("can't mark user verified. Err: %w", err)
	}

	return user, nil
}

// Login checks credentials and returns a fresh token pair.
//
// Unknown login and wrong password collapse into ErrInvalidCredentials so
// accounts can't be enumerated. An unverified account with the right
// password gets the distinct ErrAccountNotVerified: verification status is
// only revealed to a caller who already proved knowledge of the password.
func (s *AuthService) Login(ctx context.Context, login string, password string) (models.TokenPair, error) {
	user, err := s.userRepo.GetUserByLogin(ctx, login)

	switch {
	case err == nil:
		// check password below
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Compare against the sentinel hash anyway to keep timing flat
		_ = s.hasher.Compare(unknownUserHash, password)
		return models.TokenPair{}, apperrors.ErrInvalidCredentials
	default:
		return models.TokenPair{}, fmt.Errorf("can't get user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	if !user.Verified {
		return models.TokenPair{}, apperrors.ErrAccountNotVerified
	}

	return s.issuePair(user)
}

// Refresh exchanges a valid, non-revoked refresh token for a new pair.
// The presented token is revoked on success, so every refresh token is
// usable exactly once (token rotation).
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	subject, err := s.codec.Verify(refresh, models.PurposeRefresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, err
	}
	if revoked {
		return models.TokenPair{}, apperrors.ErrTokenRevoked
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("malformed token subject. Err: %w", apperrors.ErrTokenInvalid)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("can't get token user. Err: %w", err)
	}

	// Denylist entry lives as long as the token class could, never longer
	if err := s.revoked.Revoke(ctx, refresh, s.refreshTTL); err != nil {
		return models.TokenPair{}, err
	}

	return s.issuePair(user)
}

// Logout revokes the presented refresh token.
// Access tokens are left to expire on their own, see the type doc.
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	if _, err := s.codec.Verify(refresh, models.PurposeRefresh); err != nil {
		return err
	}

	return s.revoked.Revoke(ctx, refresh, s.refreshTTL)
}

// Authenticate is the request guard: verifies the access token, checks the
// denylist and resolves the subject to a user. Signature alone is not
// enough, a revoked token must be rejected even though it still verifies.
func (s *AuthService) Authenticate(ctx context.Context, access string) (models.User, error) {
	subject, err := s.codec.Verify(access, models.PurposeAccess)
	if err != nil {
		return models.User{}, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, access)
	if err != nil {
		return models.User{}, err
	}
	if revoked {
		return models.User{}, apperrors.ErrTokenRevoked
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return models.User{}, fmt.Errorf("malformed token subject. Err: %w", apperrors.ErrTokenInvalid)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("can't get token user. Err: %w", err)
	}

	return user, nil
}

func (s *AuthService) issuePair(user models.User) (models.TokenPair, error) {
	access, err := s.codec.Issue(user.ID.String(), models.PurposeAccess, s.accessTTL)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	refresh, err := s.codec.Issue(user.ID.String(), models.PurposeRefresh, s.refreshTTL)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}
