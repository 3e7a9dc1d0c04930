package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

var errNoSigningKey = errors.New("no access token signing key configured")

const (
	minPasswordLength = 6
	accessTokenTTL    = 24 * time.Hour
)

type AuthService struct {
	userRepo            ports.UserRepository
	googleTokenVerifier ports.TokenVerifier
	jwtSecret           []byte
	googleClientID      string
	logger              *slog.Logger
	now                 func() time.Time
}

func NewAuthService(userRepo ports.UserRepository, googleTokenVerifier ports.TokenVerifier, jwtSecret, googleClientID string, logger *slog.Logger) *AuthService {
	logger = ResolveLogger(logger)
	if jwtSecret == "" {
		logger.Error("JWT_SECRET not set, access tokens are disabled", "event", "auth_jwt_secret_missing", "module", "core/services", "layer", "application")
	}
	return &AuthService{
		userRepo:            userRepo,
		googleTokenVerifier: googleTokenVerifier,
		jwtSecret:           []byte(jwtSecret),
		googleClientID:      googleClientID,
		logger:              logger,
		now:                 time.Now,
	}
}

// SignUp registers a new email/password account and returns its identity
// together with a signed access token.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*domain.Identity, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}
	if len(password) < minPasswordLength {
		return nil, "", domain.NewAuthError(fmt.Sprintf("Password should be at least %d characters.", minPasswordLength), nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{ID: uuid.New(), Email: email, PasswordHash: string(hash)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, "", domain.NewAuthError("The email address is already in use by another account.", err)
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(user)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Identity, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, "", domain.NewAuthError("Invalid email or password.", domain.ErrUserNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.NewAuthError("Invalid email or password.", err)
	}

	return s.issue(user)
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, googleToken string) (*domain.Identity, string, error) {
	if s.googleTokenVerifier == nil {
		return nil, "", domain.NewAuthError("Google sign-in is not configured.", nil)
	}
	payload, err := s.googleTokenVerifier.Verify(ctx, googleToken, s.googleClientID)
	if err != nil {
		return nil, "", domain.NewAuthError("Invalid Google credential.", err)
	}

	email, err := normalizeEmail(payload.Email)
	if err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		user = &domain.User{ID: uuid.New(), Email: email}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to create user: %w", err)
		}
	}

	return s.issue(user)
}

// ParseAccessToken validates a token issued by this service and returns the
// identity it was issued for.
func (s *AuthService) ParseAccessToken(token string) (*domain.Identity, error) {
	if len(s.jwtSecret) == 0 {
		return nil, domain.NewAuthError("Session expired. Please sign in again.", errNoSigningKey)
	}
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, domain.NewAuthError("Session expired. Please sign in again.", err)
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return nil, domain.NewAuthError("Session expired. Please sign in again.", errors.New("token has no subject"))
	}
	return &domain.Identity{ID: sub, Email: email}, nil
}

func (s *AuthService) issue(user *domain.User) (*domain.Identity, string, error) {
	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate access token: %w", err)
	}
	s.logger.Info("user signed in",
		"event", "auth_signed_in",
		"module", "core/services",
		"layer", "application",
		"user_id", user.ID.String(),
	)
	return user.Identity(), token, nil
}

func (s *AuthService) generateAccessToken(user *domain.User) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", errNoSigningKey
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"exp":   now.Add(accessTokenTTL).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.NewAuthError("The email address is badly formatted.", err)
	}
	return email, nil
}

var _ ports.AuthService = (*AuthService)(nil)
