// Package profile implements the profile picture flows on top of the cropper:
// reading a user's current picture and replacing it with a cropped upload.
package profile

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when the user has no profile document.
var ErrNotFound = errors.New("profile not found")

// ErrInvalidUID is returned for a uid that cannot name a profile or an
// object path segment.
var ErrInvalidUID = errors.New("invalid uid")

// ErrUnauthenticated is returned by ResolveUID when no identity can be
// established.
var ErrUnauthenticated = errors.New("unauthenticated")

// Profile is the users/{uid} document.
type Profile struct {
	UID         string `json:"uid" firestore:"-"`
	DisplayName string `json:"displayName,omitempty" firestore:"displayName"`
	Email       string `json:"email,omitempty" firestore:"email"`
	ProfilePic  string `json:"profilePic,omitempty" firestore:"profilePic"`
}

// Store reads and updates profile documents.
type Store interface {
	Get(ctx context.Context, uid string) (*Profile, error)

	// SetProfilePic records url on an existing profile. A missing profile
	// is ErrNotFound.
	SetProfilePic(ctx context.Context, uid, url string) error
}

// BlobStore persists encoded pictures and returns a public download URL.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)

	// Delete removes the object at path. A missing object is not an error.
	Delete(ctx context.Context, path string) error
}

// Verifier turns an ID token into the uid it was issued for.
type Verifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}
