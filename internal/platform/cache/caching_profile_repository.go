// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"blog_backend/internal/feature/users/domain/entity"
	"blog_backend/internal/feature/users/usecase"
)

// CachingProfileRepository decorates a UserRepository with Redis caching of profiles.
// Reads go through the cache; every mutation invalidates the profiles whose
// counters or id lists it changes.
//
// Each cached entry records the version token of its profile at the time the
// database was read. Mutations replace the token after committing, so an entry
// stored by a read that overlapped a write no longer matches and is never served.
// A read that stalls for longer than the ttl between its database query and
// its write-back can still outlive the version key; such an entry expires
// after one ttl.
type CachingProfileRepository struct {
	inner      usecase.UserRepository
	rdb        *redis.Client
	ttl        time.Duration
	namespace  string
	newVersion func() string
}

// cachedProfile is the stored form of a profile.
type cachedProfile struct {
	Version string          `json:"version"`
	Profile *entity.Profile `json:"profile"`
}

var _ usecase.UserRepository = (*CachingProfileRepository)(nil)

// NewCachingProfileRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "profiles".
func NewCachingProfileRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingProfileRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "profiles"
	}
	return &CachingProfileRepository{
		inner:      inner,
		rdb:        rdb,
		ttl:        ttl,
		namespace:  namespace,
		newVersion: uuid.NewString,
	}
}

// FindProfile retrieves a profile, checking cache first then falling back to the database.
func (c *CachingProfileRepository) FindProfile(ctx context.Context, id string) (*entity.Profile, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindProfile(ctx, id)
	}

	key := c.cacheKey(id)

	// 1) Check cache; the entry and the current version are read together
	vals, err := c.rdb.MGet(ctx, key, c.versionKey(id)).Result()
	if err != nil {
		return c.inner.FindProfile(ctx, id)
	}
	version, _ := vals[1].(string)
	if raw, ok := vals[0].(string); ok && raw != "" {
		var entry cachedProfile
		switch err := json.Unmarshal([]byte(raw), &entry); {
		case err != nil || entry.Profile == nil:
			// Delete corrupted cache entry
			_ = c.rdb.Del(ctx, key).Err()
		case entry.Version == version:
			return entry.Profile, nil
		}
	}

	// 2) Fallback to database
	out, err := c.inner.FindProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache under the version read before the database (best effort)
	if b, err := json.Marshal(cachedProfile{Version: version, Profile: out}); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// UpdateNames updates the names and invalidates the user's cached profile.
func (c *CachingProfileRepository) UpdateNames(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.Profile, error) {
	out, err := c.inner.UpdateNames(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, id)
	return out, nil
}

// Delete removes the account. The profiles of everyone on either side of
// the user's follow edges are invalidated too, since their counters change.
func (c *CachingProfileRepository) Delete(ctx context.Context, id string) error {
	var affected []string
	if c.rdb != nil {
		if p, err := c.inner.FindProfile(ctx, id); err == nil {
			affected = append(append(affected, p.Followers...), p.Following...)
		}
	}
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, append(affected, id)...)
	return nil
}

func (c *CachingProfileRepository) Follow(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error) {
	counts, err := c.inner.Follow(ctx, actorID, targetID)
	if err != nil {
		return entity.FollowCounts{}, err
	}
	c.invalidate(ctx, actorID, targetID)
	return counts, nil
}

func (c *CachingProfileRepository) Unfollow(ctx context.Context, actorID, targetID string) (entity.FollowCounts, error) {
	counts, err := c.inner.Unfollow(ctx, actorID, targetID)
	if err != nil {
		return entity.FollowCounts{}, err
	}
	c.invalidate(ctx, actorID, targetID)
	return counts, nil
}

// IsFollowing is never cached.
func (c *CachingProfileRepository) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	return c.inner.IsFollowing(ctx, actorID, targetID)
}

// InvalidateAll drops every cached profile in the namespace.
// The graph reconciliation job calls it after repairing counters.
func (c *CachingProfileRepository) InvalidateAll(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.namespace+":*")
}

// invalidate replaces the version tokens of ids and deletes their cached
// profiles (best effort). It must run after the mutation has committed.
// Version keys outlive entries by one ttl so a late write-back still sees
// the replaced token.
func (c *CachingProfileRepository) invalidate(ctx context.Context, ids ...string) {
	if c.rdb == nil || len(ids) == 0 {
		return
	}
	seen := map[string]struct{}{}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		key := c.cacheKey(id)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
		if err := c.rdb.Set(ctx, c.versionKey(id), c.newVersion(), 2*c.ttl).Err(); err != nil {
			slog.Warn("failed to bump profile version", "error", err, "user_id", id)
		}
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		// Best effort: entries expire after ttl anyway
		slog.Warn("failed to invalidate cached profiles", "error", err, "keys", len(keys))
	}
}

// cacheKey generates a cache key for a user's profile.
func (c *CachingProfileRepository) cacheKey(id string) string {
	return c.namespace + ":" + safe(id)
}

// versionKey is the key holding the current version token of a user's profile.
func (c *CachingProfileRepository) versionKey(id string) string {
	return c.namespace + ":version:" + safe(id)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingProfileRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	return s
}
