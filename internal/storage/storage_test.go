package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/media/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "profile-pics/alice/123.jpg", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/media/profile-pics/alice/123.jpg", url)

	got, err := os.ReadFile(filepath.Join(dir, "profile-pics", "alice", "123.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), got)

	require.NoError(t, store.Delete(context.Background(), "profile-pics/alice/123.jpg"))
	require.NoError(t, store.Delete(context.Background(), "profile-pics/alice/123.jpg"))
	_, err = os.Stat(filepath.Join(dir, "profile-pics", "alice", "123.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_RejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	for _, p := range []string{"../evil.jpg", "/etc/passwd", "a/../../b.jpg", ""} {
		_, err := store.Put(context.Background(), p, []byte("x"), "image/jpeg")
		assert.Error(t, err, p)
	}
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Put(ctx, "a.jpg", []byte("x"), "image/jpeg")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitObjectPath(t *testing.T) {
	tests := []struct {
		in, folder, id string
	}{
		{"profile-pics/alice/1700000000000.jpg", "profile-pics/alice", "1700000000000"},
		{"avatar.jpg", "", "avatar"},
		{"a/b", "a", "b"},
	}
	for _, tt := range tests {
		folder, id := splitObjectPath(tt.in)
		assert.Equal(t, tt.folder, folder, tt.in)
		assert.Equal(t, tt.id, id, tt.in)
	}
}

func TestNewCloudinary_RequiresCloudName(t *testing.T) {
	_, err := NewCloudinary("", "key", "secret")
	assert.Error(t, err)

	c, err := NewCloudinary("demo", "key", "secret")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestCloudinary_Delete(t *testing.T) {
	var mu sync.Mutex
	var publicIDs []string
	reply := `{"result":"ok"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/destroy") {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		publicIDs = append(publicIDs, r.FormValue("public_id"))
		body := reply
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c, err := NewCloudinary("demo", "key", "secret")
	require.NoError(t, err)
	c.cld.Config.API.UploadPrefix = srv.URL

	require.NoError(t, c.Delete(context.Background(), "profile-pics/alice/1700000000000.jpg"))

	mu.Lock()
	reply = `{"result":"not found"}`
	mu.Unlock()
	require.NoError(t, c.Delete(context.Background(), "avatar.jpg"))

	mu.Lock()
	reply = `{"error":{"message":"Invalid Signature"}}`
	mu.Unlock()
	assert.Error(t, c.Delete(context.Background(), "avatar.jpg"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"profile-pics/alice/1700000000000", "avatar", "avatar"}, publicIDs)
}
