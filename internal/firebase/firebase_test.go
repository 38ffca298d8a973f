package firebase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ironsheep/avatar-tools-mcp/internal/profile"
)

func TestDownloadURL(t *testing.T) {
	got := DownloadURL("demo.appspot.com", "profile-pics/alice/1700000000000.jpg", "tok-123")
	want := "https://firebasestorage.googleapis.com/v0/b/demo.appspot.com/o/profile-pics%2Falice%2F1700000000000.jpg?alt=media&token=tok-123"
	assert.Equal(t, want, got)
}

func TestMapError(t *testing.T) {
	err := mapError(status.Error(codes.NotFound, "no document"), "alice")
	assert.ErrorIs(t, err, profile.ErrNotFound)
	assert.Contains(t, err.Error(), "alice")

	cause := status.Error(codes.PermissionDenied, "denied")
	err = mapError(cause, "alice")
	assert.NotErrorIs(t, err, profile.ErrNotFound)
	assert.ErrorIs(t, err, cause)

	err = mapError(errors.New("boom"), "bob")
	assert.Contains(t, err.Error(), "users/bob")
}
