package imaging

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// BlobScheme prefixes every handle issued by a BlobRegistry.
const BlobScheme = "blob:"

// BlobRegistry maps opaque "blob:<uuid>" handles to encoded byte buffers,
// the way a browser maps object URLs to blobs.
//
// A handle stays resolvable until Revoke is called; the registry never
// releases anything on its own. BlobRegistry is safe for concurrent use.
type BlobRegistry struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

type blob struct {
	data     []byte
	mimeType string
}

// NewBlobRegistry creates an empty registry.
func NewBlobRegistry() *BlobRegistry {
	return &BlobRegistry{
		blobs: make(map[string]blob),
	}
}

// Register stores data under a fresh handle and returns the handle.
// The registry takes ownership of data; callers must not modify it afterwards.
func (r *BlobRegistry) Register(data []byte, mimeType string) string {
	url := BlobScheme + uuid.NewString()

	r.mu.Lock()
	r.blobs[url] = blob{data: data, mimeType: mimeType}
	r.mu.Unlock()

	return url
}

// Resolve returns the bytes and MIME type behind a handle.
//
// The returned slice is shared with the registry and must be treated as
// read-only.
func (r *BlobRegistry) Resolve(url string) ([]byte, string, error) {
	r.mu.RLock()
	b, ok := r.blobs[url]
	r.mu.RUnlock()

	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrBlobNotFound, url)
	}
	return b.data, b.mimeType, nil
}

// Revoke releases a handle. It reports whether the handle was live; revoking
// an unknown or already revoked handle does nothing.
func (r *BlobRegistry) Revoke(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blobs[url]; !ok {
		return false
	}
	delete(r.blobs, url)
	return true
}

// Len returns the number of live handles.
func (r *BlobRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

// IsBlobURL reports whether ref looks like a registry handle.
func IsBlobURL(ref string) bool {
	return strings.HasPrefix(ref, BlobScheme)
}
