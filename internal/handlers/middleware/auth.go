package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nkiryanov/contactbook/internal/handlers/render"
	"github.com/nkiryanov/contactbook/internal/handlers/userctx"
	"github.com/nkiryanov/contactbook/internal/models"
)

const (
	authHeaderName = "Authorization"
	authScheme     = "Bearer"
)

type authService interface {
	// Authenticate validates the access token (signature, expiry, purpose
	// and the revocation denylist) and resolves it to a user
	Authenticate(ctx context.Context, access string) (models.User, error)
}

// AuthMiddleware guards protected handlers.
// Any failure is a uniform 401: the reason must not leak to the caller.
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := as.Authenticate(r.Context(), access)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get(authHeaderName), " ")
	if !found || !strings.EqualFold(scheme, authScheme) || token == "" {
		return "", false
	}

	return token, true
}
