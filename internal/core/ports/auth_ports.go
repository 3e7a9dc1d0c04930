package ports

import (
	"context"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

// IdentityProvider authenticates users and pushes the current identity to
// subscribers whenever it changes. A nil identity means signed out.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*domain.Identity, error)
	SignUp(ctx context.Context, email, password string) (*domain.Identity, error)
	SignOut(ctx context.Context) error
	Current() *domain.Identity
	Subscribe(fn func(*domain.Identity)) (unsubscribe func())
}

type TokenPayload struct {
	Email string
	Name  string
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string, clientID string) (*TokenPayload, error)
}

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*domain.Identity, string, error)
	SignIn(ctx context.Context, email, password string) (*domain.Identity, string, error)
	LoginWithGoogle(ctx context.Context, googleToken string) (*domain.Identity, string, error)
	ParseAccessToken(token string) (*domain.Identity, error)
}
