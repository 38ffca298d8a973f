// Package firebase adapts a Firebase project to the profile service: Firestore
// profile documents, Firebase Storage uploads and Auth ID token verification.
package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// Config selects the Firebase project. CredentialsFile may be empty, in which
// case application default credentials are used.
type Config struct {
	ProjectID       string
	CredentialsFile string
	StorageBucket   string
}

// NewApp initialises the Firebase app shared by every adapter.
func NewApp(ctx context.Context, cfg Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase app: %w", err)
	}
	return app, nil
}
