package google

import (
	"context"
	"errors"

	"github.com/vncsmyrnk/salesvote/internal/core/ports"
	"google.golang.org/api/idtoken"
)

type GoogleVerifier struct{}

func NewVerifier() ports.TokenVerifier {
	return &GoogleVerifier{}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string, clientID string) (*ports.TokenPayload, error) {
	payload, err := idtoken.Validate(ctx, token, clientID)
	if err != nil {
		return nil, err
	}
	email, ok := payload.Claims["email"].(string)
	if !ok {
		return nil, errors.New("email not found in claims")
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, errors.New("email is not verified")
	}
	name, _ := payload.Claims["name"].(string)
	return &ports.TokenPayload{Email: email, Name: name}, nil
}
