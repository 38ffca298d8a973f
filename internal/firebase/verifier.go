package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

// Verifier checks Firebase Auth ID tokens.
type Verifier struct {
	client *auth.Client
}

// NewVerifier creates a Verifier from the app's Auth client.
func NewVerifier(ctx context.Context, app *firebase.App) (*Verifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth client: %w", err)
	}
	return &Verifier{client: client}, nil
}

// VerifyIDToken implements profile.Verifier.
func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}
