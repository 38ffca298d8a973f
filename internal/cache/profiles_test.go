package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/avatar-tools-mcp/internal/profile"
)

type countingStore struct {
	*profile.MemoryStore
	gets int
}

func (s *countingStore) Get(ctx context.Context, uid string) (*profile.Profile, error) {
	s.gets++
	return s.MemoryStore.Get(ctx, uid)
}

func newBacking() *countingStore {
	mem := profile.NewMemoryStore()
	mem.Put(profile.Profile{UID: "alice", DisplayName: "Alice"})
	return &countingStore{MemoryStore: mem}
}

// An unreachable Redis must degrade to the backing store.
func TestProfileStore_RedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	defer rdb.Close()

	backing := newBacking()
	store := NewProfileStore(rdb, backing, time.Minute, nil)
	ctx := context.Background()

	p, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.DisplayName)

	require.NoError(t, store.SetProfilePic(ctx, "alice", "https://example.com/a.jpg"))
	p, err = store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.jpg", p.ProfilePic)
	assert.Equal(t, 2, backing.gets)

	_, err = store.Get(ctx, "bob")
	assert.ErrorIs(t, err, profile.ErrNotFound)
	assert.ErrorIs(t, store.SetProfilePic(ctx, "bob", "x"), profile.ErrNotFound)
}

func TestNewProfileStore_Defaults(t *testing.T) {
	store := NewProfileStore(nil, newBacking(), 0, nil)
	assert.Equal(t, DefaultTTL, store.ttl)
	assert.NotNil(t, store.logger)
	assert.Equal(t, "avatar:profile:alice", key("alice"))
}

func TestProfileStore_Integration(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("REDIS_TEST_ADDR"))
	if addr == "" {
		t.Skip("set REDIS_TEST_ADDR to run redis integration tests")
	}

	ctx := context.Background()
	rdb, err := NewClient(ctx, addr, os.Getenv("REDIS_TEST_PASSWORD"), 0)
	require.NoError(t, err)
	defer rdb.Close()
	defer rdb.Del(ctx, key("alice"))

	backing := newBacking()
	store := NewProfileStore(rdb, backing, time.Minute, nil)

	for i := 0; i < 3; i++ {
		p, err := store.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", p.UID)
	}
	assert.Equal(t, 1, backing.gets, "later reads are served from redis")

	require.NoError(t, store.SetProfilePic(ctx, "alice", "https://example.com/b.jpg"))
	p, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/b.jpg", p.ProfilePic)
	assert.Equal(t, 2, backing.gets)
}

func TestNewClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := NewClient(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
