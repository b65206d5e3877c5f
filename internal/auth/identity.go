// Package auth verifies Google sign-in credentials and issues the API's
// own session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

var ErrInvalidCredential = errors.New("invalid sign-in credential")

// Identity is what a verified sign-in tells us about the user.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type Verifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

// GoogleVerifier checks Google ID tokens against the OAuth client id.
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (Identity, error) {
	if strings.TrimSpace(credential) == "" {
		return Identity{}, ErrInvalidCredential
	}
	payload, err := v.validate(ctx, credential, v.clientID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if payload.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrInvalidCredential)
	}
	return Identity{
		Subject: payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}

// DevVerifier accepts "dev:<id>:<email>" credentials for local work.
type DevVerifier struct{}

func (DevVerifier) Verify(_ context.Context, credential string) (Identity, error) {
	parts := strings.SplitN(credential, ":", 3)
	if len(parts) != 3 || parts[0] != "dev" || parts[1] == "" {
		return Identity{}, fmt.Errorf("%w: expected dev:<id>:<email>", ErrInvalidCredential)
	}
	name, _, _ := strings.Cut(parts[2], "@")
	return Identity{Subject: parts[1], Email: parts[2], Name: name}, nil
}
