package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
)

// downloadTokenKey is the object metadata key Firebase Storage reads download
// tokens from.
const downloadTokenKey = "firebaseStorageDownloadTokens"

// Bucket is a profile.BlobStore backed by Firebase Storage.
type Bucket struct {
	name   string
	handle *gcs.BucketHandle
}

// NewBucket opens name, or the app's default bucket when name is empty.
func NewBucket(ctx context.Context, app *firebase.App, name string) (*Bucket, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	var handle *gcs.BucketHandle
	if name == "" {
		handle, err = client.DefaultBucket()
	} else {
		handle, err = client.Bucket(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}

	attrs, err := handle.Attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read bucket attributes: %w", err)
	}
	return &Bucket{name: attrs.Name, handle: handle}, nil
}

// Put uploads data and returns a tokenised download URL.
func (b *Bucket) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	token := uuid.NewString()

	w := b.handle.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: token}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalise %s: %w", path, err)
	}
	return DownloadURL(b.name, path, token), nil
}

// Delete removes the object at path. A missing object is not an error.
func (b *Bucket) Delete(ctx context.Context, path string) error {
	err := b.handle.Object(path).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// DownloadURL builds the public URL Firebase serves an object under.
func DownloadURL(bucket, path, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(path), url.QueryEscape(token))
}
