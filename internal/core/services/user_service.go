package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

type userService struct {
	repo ports.UserRepository
}

func NewUserService(repo ports.UserRepository) ports.UserService {
	return &userService{
		repo: repo,
	}
}

func (s *userService) Me(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}
	id, err := uuid.Parse(identity.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed id %q", domain.ErrUserNotFound, identity.ID)
	}

	user, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
