// Package cache puts a Redis read-through cache in front of a profile.Store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ironsheep/avatar-tools-mcp/internal/profile"
)

const keyPrefix = "avatar:profile:"

// DefaultTTL applies when NewProfileStore is given a non-positive TTL.
const DefaultTTL = 5 * time.Minute

// ProfileStore serves profile reads from Redis and falls through to next on
// a miss. Redis failures are logged and never fail a request.
type ProfileStore struct {
	rdb    redis.UniversalClient
	next   profile.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewProfileStore wraps next with a cache in rdb. A nil logger discards
// cache failures.
func NewProfileStore(rdb redis.UniversalClient, next profile.Store, ttl time.Duration, logger *zap.Logger) *ProfileStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileStore{rdb: rdb, next: next, ttl: ttl, logger: logger}
}

// NewClient connects to addr and pings it.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("can not connect redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func key(uid string) string {
	return keyPrefix + uid
}

// Get implements profile.Store.
func (s *ProfileStore) Get(ctx context.Context, uid string) (*profile.Profile, error) {
	raw, err := s.rdb.Get(ctx, key(uid)).Bytes()
	switch {
	case err == nil:
		var p profile.Profile
		if err := json.Unmarshal(raw, &p); err == nil {
			return &p, nil
		}
		s.logger.Warn("discarding corrupt cached profile", zap.String("uid", uid))
	case errors.Is(err, redis.Nil):
	default:
		s.logger.Warn("profile cache read failed", zap.String("uid", uid), zap.Error(err))
	}

	p, err := s.next.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.store(ctx, uid, p)
	return p, nil
}

// SetProfilePic writes through to next and drops the cached copy.
func (s *ProfileStore) SetProfilePic(ctx context.Context, uid, url string) error {
	if err := s.next.SetProfilePic(ctx, uid, url); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, key(uid)).Err(); err != nil {
		s.logger.Warn("profile cache invalidation failed", zap.String("uid", uid), zap.Error(err))
	}
	return nil
}

func (s *ProfileStore) store(ctx context.Context, uid string, p *profile.Profile) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key(uid), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("profile cache write failed", zap.String("uid", uid), zap.Error(err))
	}
}
