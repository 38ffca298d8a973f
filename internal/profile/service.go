package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/avatar-tools-mcp/internal/imaging"
)

// cleanupTimeout bounds the delete of an upload that could not be recorded.
const cleanupTimeout = 10 * time.Second

// Service crops, uploads and records profile pictures.
type Service struct {
	cropper         *imaging.Cropper
	store           Store
	blobs           BlobStore
	verifier        Verifier
	allowUnverified bool
	now             func() time.Time
	logger          *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithVerifier enables ID token verification in ResolveUID.
func WithVerifier(v Verifier) Option {
	return func(s *Service) { s.verifier = v }
}

// AllowUnverified lets ResolveUID accept a bare uid without a token.
func AllowUnverified(allow bool) Option {
	return func(s *Service) { s.allowUnverified = allow }
}

// WithClock overrides time.Now for upload paths.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger for upload and cleanup events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service cropping with cropper, recording pictures in
// store and uploading them to blobs. Without options, bare uids are refused
// and no token verifier is set.
func NewService(cropper *imaging.Cropper, store Store, blobs BlobStore, opts ...Option) *Service {
	s := &Service{
		cropper: cropper,
		store:   store,
		blobs:   blobs,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PicturePath is the object path a picture uploaded at t is stored under.
func PicturePath(uid string, t time.Time) string {
	return fmt.Sprintf("profile-pics/%s/%d.jpg", uid, t.UnixMilli())
}

// ValidateUID rejects an empty uid and one that could step outside its own
// picture folder.
func ValidateUID(uid string) error {
	if uid == "" {
		return fmt.Errorf("%w: uid is required", ErrInvalidUID)
	}
	if strings.ContainsAny(uid, "/\\") || strings.Contains(uid, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidUID, uid)
	}
	return nil
}

// Get returns the profile document of uid.
func (s *Service) Get(ctx context.Context, uid string) (*Profile, error) {
	if err := ValidateUID(uid); err != nil {
		return nil, err
	}
	p, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	p.UID = uid
	return p, nil
}

// Picture returns the user's current picture URL, or "" when none is set.
func (s *Service) Picture(ctx context.Context, uid string) (string, error) {
	p, err := s.Get(ctx, uid)
	if err != nil {
		return "", err
	}
	return p.ProfilePic, nil
}

// UpdatePicture crops region out of src, uploads the JPEG and records its
// download URL on the profile. The crop handle is revoked on every path, and
// an upload that cannot be recorded is deleted again.
func (s *Service) UpdatePicture(ctx context.Context, uid string, src imaging.ImageSource, region imaging.CropRegion) (string, error) {
	if err := ValidateUID(uid); err != nil {
		return "", err
	}

	res, err := s.cropper.Crop(ctx, src, region)
	if err != nil {
		return "", err
	}
	defer s.cropper.Release(res)

	data, err := s.cropper.Bytes(res)
	if err != nil {
		return "", err
	}

	path := PicturePath(uid, s.now())
	url, err := s.blobs.Put(ctx, path, data, imaging.JPEGMimeType)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}

	if err := s.store.SetProfilePic(ctx, uid, url); err != nil {
		s.discard(ctx, path)
		return "", fmt.Errorf("failed to record profile picture: %w", err)
	}

	s.logger.Info("profile picture updated",
		zap.String("uid", uid),
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)
	return url, nil
}

// discard deletes an upload whose URL was never recorded. It runs even when
// ctx is already canceled.
func (s *Service) discard(ctx context.Context, path string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := s.blobs.Delete(ctx, path); err != nil {
		s.logger.Warn("failed to delete unrecorded upload", zap.String("path", path), zap.Error(err))
		return
	}
	s.logger.Debug("deleted unrecorded upload", zap.String("path", path))
}

// ResolveUID establishes the caller's identity. A verified ID token wins over
// uid; a bare uid is only trusted when unverified access is allowed.
func (s *Service) ResolveUID(ctx context.Context, uid, idToken string) (string, error) {
	if idToken != "" {
		if s.verifier == nil {
			return "", fmt.Errorf("%w: token verification is not configured", ErrUnauthenticated)
		}
		verified, err := s.verifier.VerifyIDToken(ctx, idToken)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		if uid != "" && uid != verified {
			return "", fmt.Errorf("%w: token does not belong to %s", ErrUnauthenticated, uid)
		}
		if err := ValidateUID(verified); err != nil {
			return "", err
		}
		return verified, nil
	}
	if uid != "" && s.allowUnverified {
		if err := ValidateUID(uid); err != nil {
			return "", err
		}
		return uid, nil
	}
	return "", ErrUnauthenticated
}
