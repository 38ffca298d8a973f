package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ironsheep/avatar-tools-mcp/internal/profile"
)

// UsersCollection holds one document per uid.
const UsersCollection = "users"

// ProfileStore is a profile.Store backed by Firestore.
type ProfileStore struct {
	client *firestore.Client
}

// NewProfileStore opens a Firestore client for the app's project.
func NewProfileStore(ctx context.Context, app *firebase.App) (*ProfileStore, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &ProfileStore{client: client}, nil
}

// Get reads users/{uid}. A missing document is profile.ErrNotFound.
func (s *ProfileStore) Get(ctx context.Context, uid string) (*profile.Profile, error) {
	snap, err := s.client.Collection(UsersCollection).Doc(uid).Get(ctx)
	if err != nil {
		return nil, mapError(err, uid)
	}

	var p profile.Profile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", uid, err)
	}
	p.UID = uid
	return &p, nil
}

// SetProfilePic updates the profilePic field only. Update fails on a missing
// document, which surfaces as profile.ErrNotFound.
func (s *ProfileStore) SetProfilePic(ctx context.Context, uid, url string) error {
	_, err := s.client.Collection(UsersCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "profilePic", Value: url},
	})
	if err != nil {
		return mapError(err, uid)
	}
	return nil
}

// Close releases the Firestore client.
func (s *ProfileStore) Close() error {
	return s.client.Close()
}

func mapError(err error, uid string) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %s", profile.ErrNotFound, uid)
	}
	return fmt.Errorf("firestore users/%s: %w", uid, err)
}
