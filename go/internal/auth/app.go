package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
	"github.com/draftforge/cubeleague/go/internal/models"
)

// UsersRepository defines what the app layer needs from the repository
type UsersRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// App resolves caller identities. Every admin-gated action goes through
// Resolve or RequireAdmin before touching the store.
type App struct {
	repo UsersRepository
}

// NewApp creates a new auth App
func NewApp(repo UsersRepository) *App {
	return &App{repo: repo}
}

// Resolve returns the caller's identity, or a not-authenticated error when
// the request carries no user.
func (a *App) Resolve(ctx context.Context) (*Identity, error) {
	userID, ok := UserIDFrom(ctx)
	if !ok {
		return nil, apperrors.NotAuthenticated()
	}

	user, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.NotAuthenticated()
		}
		return nil, err
	}

	return &Identity{UserID: user.ID, IsAdmin: user.IsAdmin}, nil
}

// RequireAdmin resolves the caller and rejects non-admins.
func (a *App) RequireAdmin(ctx context.Context) (*Identity, error) {
	ident, err := a.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if !ident.IsAdmin {
		return nil, apperrors.NotAuthorized()
	}
	return ident, nil
}
