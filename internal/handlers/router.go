package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/contactbook/internal/handlers/middleware"
	"github.com/nkiryanov/contactbook/internal/logger"
	"github.com/nkiryanov/contactbook/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	contactsService contactsService,
	limiter rateLimiter,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	api := http.NewServeMux()

	api.Handle("POST /auth/register", handleRegister(authService, logger))
	api.Handle("POST /auth/verify", handleVerifyEmail(authService, logger))
	api.Handle("POST /auth/login", handleLogin(authService, logger))
	api.Handle("POST /auth/refresh", handleTokenRefresh(authService, logger))
	api.Handle("POST /auth/logout", handleLogout(authService, logger))

	api.Handle("POST /contacts", withAuth(handleCreateContact(contactsService, logger)))
	api.Handle("GET /contacts", withAuth(handleListContacts(contactsService, logger)))
	api.Handle("GET /contacts/{id}", withAuth(handleGetContact(contactsService, logger)))
	api.Handle("PUT /contacts/{id}", withAuth(handleUpdateContact(contactsService, logger)))
	api.Handle("DELETE /contacts/{id}", withAuth(handleDeleteContact(contactsService, logger)))
	api.Handle("GET /contacts/birthdays", withAuth(handleUpcomingBirthdays(contactsService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
		middleware.RateLimitMiddleware(limiter),
	)

	return handler
}

type authService interface {
	// Register user with username, email and password
	// Has to return apperrors.ErrUserAlreadyExists if username or email is taken
	Register(ctx context.Context, username string, email string, password string) (models.User, models.IssuedToken, error)

	// Verify email with the token issued on registration
	// Has to return apperrors.ErrTokenInvalid if the token can't be trusted
	VerifyEmail(ctx context.Context, token string) (models.User, error)

	// Login user with username or email
	// Has to return apperrors.ErrInvalidCredentials for unknown login or wrong password
	// Has to return apperrors.ErrAccountNotVerified if the account email is not verified
	Login(ctx context.Context, login string, password string) (models.TokenPair, error)

	// Refresh tokens using refresh token, rotating the presented one
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Logout revokes the presented refresh token
	Logout(ctx context.Context, refresh string) error

	// Authenticate access token and return its user
	Authenticate(ctx context.Context, access string) (models.User, error)
}

type contactsService interface {
	CreateContact(ctx context.Context, contact models.Contact) (models.Contact, error)
	GetContact(ctx context.Context, ownerID uuid.UUID, contactID uuid.UUID) (models.Contact, error)
	ListContacts(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error)
	UpdateContact(ctx context.Context, contact models.Contact) (models.Contact, error)
	DeleteContact(ctx context.Context, ownerID uuid.UUID, contactID uuid.UUID) error
	Upcoming(ctx context.Context, ownerID uuid.UUID) ([]models.UpcomingBirthday, error)
}

type rateLimiter interface {
	// Allow reports whether one more request for key fits the current window
	Allow(ctx context.Context, key string) bool

	// Window size, used for the Retry-After hint
	Window() time.Duration
}
