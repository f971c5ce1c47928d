// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// response.go provides a Valkey-backed cache for public API responses.
// Listing endpoints store their encoded JSON body here so repeated reads
// skip the database. Admin writes drop the affected keys.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// responseKeyPrefix is the Valkey key prefix for cached API responses.
	responseKeyPrefix = "api:"

	// generationKey is bumped by every invalidation. It lives outside the
	// response prefix so InvalidateAll never deletes it.
	generationKey = "cache:generation"

	// DefaultResponseTTL is how long a listing stays cached.
	DefaultResponseTTL = 5 * time.Minute
)

// Keys of the cached public listings.
const (
	KeyProjects   = "projects"
	KeyWorkSteps  = "work-steps"
	KeyVideos     = "videos"
	KeyHighlights = "highlights"
	KeyReviews    = "reviews"
)

// CategoriesKey returns the key for one page of the category listing.
// A zero page selects the unpaginated listing.
func CategoriesKey(page, size int) string {
	if page == 0 {
		return "categories"
	}
	return fmt.Sprintf("categories:%d:%d", page, size)
}

var errStale = errors.New("cache generation changed")

// Entry is a cached response body plus the X-Total-Count value, which
// only the paginated category listing sets.
type Entry struct {
	Body       []byte
	TotalCount string
}

// ResponseCache stores encoded API responses in Valkey. A nil
// *ResponseCache is valid and caches nothing.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a response cache backed by the given Valkey client.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl == 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// Get retrieves a cached response. Errors count as misses.
func (rc *ResponseCache) Get(ctx context.Context, key string) (*Entry, bool) {
	if rc == nil {
		return nil, false
	}
	vals, err := rc.client.HGetAll(ctx, responseKeyPrefix+key).Result()
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		return nil, false
	}
	body, ok := vals["body"]
	if !ok {
		return nil, false
	}
	slog.Debug("response cache hit", "key", key)
	return &Entry{Body: []byte(body), TotalCount: vals["total"]}, true
}


// Generation returns the current invalidation generation. Read it before
// loading a response from the database and hand it to SetIfCurrent.
func (rc *ResponseCache) Generation(ctx context.Context) (string, error) {
	if rc == nil {
		return "", nil
	}
	gen, err := rc.client.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read cache generation: %w", err)
	}
	return gen, nil
}

// SetIfCurrent stores e with the configured TTL, but only while the
// generation still equals gen. A write
// that invalidated the cache after gen was read means e may hold rows from
// before that write, so it is dropped.
func (rc *ResponseCache) SetIfCurrent(ctx context.Context, key string, e *Entry, gen string) {
	if rc == nil {
		return
	}
	err := rc.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, generationKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStale
		}
		fullKey := responseKeyPrefix + key
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, fullKey)
			pipe.HSet(ctx, fullKey, "body", e.Body, "total", e.TotalCount)
			pipe.Expire(ctx, fullKey, rc.ttl)
			return nil
		})
		return err
	}, generationKey)

	switch {
	case err == nil:
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		slog.Debug("response cache fill skipped after invalidation", "key", key)
	default:
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// bump advances the generation so in-flight fills started before a write
// are discarded.
func (rc *ResponseCache) bump(ctx context.Context) {
	if err := rc.client.Incr(ctx, generationKey).Err(); err != nil {
		slog.Warn("response cache generation bump error", "error", err)
	}
}

// Invalidate removes the given listings from the cache.
func (rc *ResponseCache) Invalidate(ctx context.Context, keys ...string) {
	if rc == nil || len(keys) == 0 {
		return
	}
	rc.bump(ctx)
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = responseKeyPrefix + k
	}
	if err := rc.client.Del(ctx, full...).Err(); err != nil {
		slog.Warn("response cache invalidate error", "keys", keys, "error", err)
	}
	slog.Debug("response cache invalidated", "keys", keys)
}

// InvalidateCategories removes every cached variant of the category listing.
func (rc *ResponseCache) InvalidateCategories(ctx context.Context) {
	rc.invalidatePattern(ctx, responseKeyPrefix+"categories*")
}

// InvalidateAll removes every cached response.
func (rc *ResponseCache) InvalidateAll(ctx context.Context) {
	rc.invalidatePattern(ctx, responseKeyPrefix+"*")
}

// invalidatePattern deletes keys matching pattern using SCAN so Valkey is
// never blocked by KEYS.
func (rc *ResponseCache) invalidatePattern(ctx context.Context, pattern string) {
	if rc == nil {
		return
	}
	rc.bump(ctx)
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("response cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("response cache cleared", "pattern", pattern, "deleted", deleted)
	}
}
