// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Integration tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"pbbcms/internal/cache"
	"pbbcms/internal/database"
	"pbbcms/internal/middleware"
	"pbbcms/internal/session"
	"pbbcms/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "pbbcms")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "pbbcms")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := database.Connect(dsn)
	if err != nil {
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "api:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB        *sql.DB
	Valkey    *redis.Client
	Sessions  *session.Store
	Cache     *cache.ResponseCache
	Stores    Stores
	UserStore *store.UserStore
	API       *API
	Admin     *Admin
	Auth      *Auth
}

// newTestEnv creates a complete test environment. Object storage is left
// unconfigured, so uploads answer 503.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	stores := Stores{
		Categories: store.NewCategoryStore(db),
		Details:    store.NewServiceDetailStore(db),
		Projects:   store.NewProjectStore(db),
		WorkSteps:  store.NewWorkStepStore(db),
		Videos:     store.NewVideoStore(db),
		Highlights: store.NewHighlightStore(db),
		Reviews:    store.NewReviewStore(db),
		Callbacks:  store.NewCallbackStore(db),
	}
	sessions := session.NewStore(vk, false)
	responseCache := cache.NewResponseCache(vk, time.Minute)
	userStore := store.NewUserStore(db)

	return &testEnv{
		DB:        db,
		Valkey:    vk,
		Sessions:  sessions,
		Cache:     responseCache,
		Stores:    stores,
		UserStore: userStore,
		API:       NewAPI(stores, nil, responseCache),
		Admin:     NewAdmin(stores, nil, responseCache),
		Auth:      NewAuth(sessions, userStore),
	}
}

// fillCache stores e under the current cache generation.
func fillCache(t *testing.T, rc *cache.ResponseCache, key string, e *cache.Entry) {
	t.Helper()
	ctx := context.Background()
	gen, err := rc.Generation(ctx)
	if err != nil {
		t.Fatalf("cache generation: %v", err)
	}
	rc.SetIfCurrent(ctx, key, e, gen)
}

// bareAPI returns an API with no backing services. Handlers that reject a
// request before touching a store can be tested with it.
func bareAPI() *API {
	return NewAPI(Stores{}, nil, nil)
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decode unmarshals a recorder's body into dst.
func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

// errorOf returns the {"error": ...} message of a response.
func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	decode(t, rec, &body)
	msg, _ := body["error"].(string)
	return msg
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withSession attaches session data the way LoadSession does.
func withSession(r *http.Request, data *session.Data) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), data))
}

// cleanCategories removes test categories by name. Subcategories and
// service details go with them.
func cleanCategories(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, n := range names {
		db.Exec("DELETE FROM categories WHERE name = $1", n)
	}
}

// cleanRows removes rows from table by id.
func cleanRows(t *testing.T, db *sql.DB, table string, ids ...any) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM "+table+" WHERE id = $1", id)
	}
}
