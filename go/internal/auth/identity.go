package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the resolved caller: who they are and whether they hold the
// admin flag.
type Identity struct {
	UserID  uuid.UUID
	IsAdmin bool
}

type contextKey struct{}

var userIDKey contextKey

// WithUserID returns a context carrying the caller's user id. Set by the
// HTTP middleware once the session has been bridged.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFrom extracts the caller's user id from the context.
func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}
