package ports

import (
	"context"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

type UserService interface {
	// Me returns the account behind identity. It fails with
	// domain.ErrUnauthenticated for a nil identity and domain.ErrUserNotFound
	// when the account no longer exists.
	Me(ctx context.Context, identity *domain.Identity) (*domain.User, error)
}
