// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "api:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// fill stores e under the current generation.
func fill(t *testing.T, rc *ResponseCache, key string, e *Entry) {
	t.Helper()
	ctx := context.Background()
	gen, err := rc.Generation(ctx)
	if err != nil {
		t.Fatalf("Generation: %v", err)
	}
	rc.SetIfCurrent(ctx, key, e, gen)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	addr := envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379")
	ctx := context.Background()

	client, err := ConnectValkey(ctx, addr, os.Getenv("VALKEY_PASSWORD"), 15)
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	if got := client.Options().DB; got != 15 {
		t.Errorf("DB = %d, want 15", got)
	}
	if got := client.Options().ReadTimeout; got != ioTimeout {
		t.Errorf("ReadTimeout = %v, want %v", got, ioTimeout)
	}
}

func TestConnectValkeyUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client, err := ConnectValkey(ctx, "127.0.0.1:1", "", 0)
	if err == nil {
		client.Close()
		t.Fatal("expected an error for a closed port")
	}
	if client != nil {
		t.Error("client must be nil on error")
	}
}

func TestResponseCacheSetAndGet(t *testing.T) {
	client := testValkeyClient(t)
	rc := NewResponseCache(client, 1*time.Minute)

	ctx := context.Background()

	// Miss.
	entry, ok := rc.Get(ctx, KeyProjects)
	if ok || entry != nil {
		t.Error("expected cache miss")
	}

	body := []byte(`[{"id":"1","image":"projects/a.jpg"}]`)
	fill(t, rc, KeyProjects, &Entry{Body: body})

	entry, ok = rc.Get(ctx, KeyProjects)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(entry.Body) != string(body) {
		t.Errorf("body mismatch: got %q, want %q", entry.Body, body)
	}
	if entry.TotalCount != "" {
		t.Errorf("total: got %q, want empty", entry.TotalCount)
	}

	ttl := client.TTL(ctx, "api:"+KeyProjects).Val()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v, want within (0, 1m]", ttl)
	}
}

func TestResponseCacheTotalCount(t *testing.T) {
	client := testValkeyClient(t)
	rc := NewResponseCache(client, 1*time.Minute)

	ctx := context.Background()
	key := CategoriesKey(2, 20)

	fill(t, rc, key, &Entry{Body: []byte("[]"), TotalCount: "41"})
	entry, ok := rc.Get(ctx, key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if entry.TotalCount != "41" {
		t.Errorf("total: got %q, want 41", entry.TotalCount)
	}
}

func TestResponseCacheInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	rc := NewResponseCache(client, 1*time.Minute)

	ctx := context.Background()

	for _, key := range []string{KeyVideos, KeyReviews, CategoriesKey(0, 0), CategoriesKey(1, 20)} {
		fill(t, rc, key, &Entry{Body: []byte("[]")})
	}

	rc.Invalidate(ctx, KeyVideos)
	if _, ok := rc.Get(ctx, KeyVideos); ok {
		t.Error("expected miss for videos after Invalidate")
	}
	if _, ok := rc.Get(ctx, KeyReviews); !ok {
		t.Error("Invalidate removed an unrelated key")
	}

	rc.InvalidateCategories(ctx)
	for _, key := range []string{CategoriesKey(0, 0), CategoriesKey(1, 20)} {
		if _, ok := rc.Get(ctx, key); ok {
			t.Errorf("expected miss for %q after InvalidateCategories", key)
		}
	}
	if _, ok := rc.Get(ctx, KeyReviews); !ok {
		t.Error("InvalidateCategories removed an unrelated key")
	}

	rc.InvalidateAll(ctx)
	if _, ok := rc.Get(ctx, KeyReviews); ok {
		t.Error("expected miss after InvalidateAll")
	}
}

func TestNilResponseCache(t *testing.T) {
	var rc *ResponseCache
	ctx := context.Background()

	fill(t, rc, KeyProjects, &Entry{Body: []byte("[]")})
	if _, ok := rc.Get(ctx, KeyProjects); ok {
		t.Error("nil cache should always miss")
	}
	if gen, err := rc.Generation(ctx); gen != "" || err != nil {
		t.Errorf("Generation() = (%q, %v)", gen, err)
	}
	rc.SetIfCurrent(ctx, KeyProjects, &Entry{Body: []byte("[]")}, "")
	rc.Invalidate(ctx, KeyProjects)
	rc.InvalidateCategories(ctx)
	rc.InvalidateAll(ctx)
}

func TestCategoriesKey(t *testing.T) {
	tests := []struct {
		page, size int
		want       string
	}{
		{0, 0, "categories"},
		{1, 20, "categories:1:20"},
		{3, 5, "categories:3:5"},
	}
	for _, tt := range tests {
		if got := CategoriesKey(tt.page, tt.size); got != tt.want {
			t.Errorf("CategoriesKey(%d, %d) = %q, want %q", tt.page, tt.size, got, tt.want)
		}
	}
}

func TestSetIfCurrent(t *testing.T) {
	client := testValkeyClient(t)
	rc := NewResponseCache(client, time.Minute)
	ctx := context.Background()
	rc.Invalidate(ctx, KeyVideos)

	gen, err := rc.Generation(ctx)
	if err != nil {
		t.Fatalf("Generation: %v", err)
	}
	rc.SetIfCurrent(ctx, KeyVideos, &Entry{Body: []byte(`["fresh"]`)}, gen)
	if e, ok := rc.Get(ctx, KeyVideos); !ok || string(e.Body) != `["fresh"]` {
		t.Fatalf("fill with the current generation: got (%v, %v)", e, ok)
	}

	// A reader that loaded before a write must not put its rows back.
	stale, err := rc.Generation(ctx)
	if err != nil {
		t.Fatalf("Generation: %v", err)
	}
	rc.Invalidate(ctx, KeyVideos)
	rc.SetIfCurrent(ctx, KeyVideos, &Entry{Body: []byte(`["stale"]`)}, stale)
	if e, ok := rc.Get(ctx, KeyVideos); ok {
		t.Errorf("stale fill was stored: %s", e.Body)
	}

	// Pattern invalidation bumps the generation too.
	stale, _ = rc.Generation(ctx)
	rc.InvalidateCategories(ctx)
	rc.SetIfCurrent(ctx, CategoriesKey(0, 0), &Entry{Body: []byte("[]")}, stale)
	if _, ok := rc.Get(ctx, CategoriesKey(0, 0)); ok {
		t.Error("stale category fill was stored")
	}
}
