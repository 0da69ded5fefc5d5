package userctx

import (
	"context"

	"github.com/nkiryanov/contactbook/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// New returns a context carrying the authenticated user.
// Middleware is the only writer, handlers only read.
func New(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// FromContext extracts the authenticated user from the context
func FromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}
