package ports

import (
	"context"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// Create fails with domain.ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, user *domain.User) error
}
