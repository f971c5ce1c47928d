package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testStore returns a Store on Valkey DB 15, skipping when Valkey is down.
func testStore(t *testing.T, secure bool) (*Store, *redis.Client) {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		if keys, _ := client.Keys(ctx, keyPrefix+"*").Result(); len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return NewStore(client, secure), client
}

// login creates a session and returns a request carrying its cookie.
func login(t *testing.T, s *Store, data *Data) (*http.Request, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	id, err := s.Create(context.Background(), rec, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != id {
		t.Fatalf("cookies = %+v, want one carrying %q", cookies, id)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/api/me", nil)
	req.AddCookie(cookies[0])
	return req, cookies[0]
}

func TestGetWithoutCookieSkipsValkey(t *testing.T) {
	// A nil client would panic if Get reached Valkey.
	s := NewStore(nil, false)

	for _, value := range []string{"", "none"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if value != "none" {
			req.AddCookie(&http.Cookie{Name: CookieName, Value: value})
		}
		data, err := s.Get(context.Background(), req)
		if data != nil || err != nil {
			t.Errorf("cookie %q: got (%v, %v), want (nil, nil)", value, data, err)
		}
	}
}

func TestUpdateWithoutCookie(t *testing.T) {
	s := NewStore(nil, false)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if err := s.Update(context.Background(), req, &Data{}); !errors.Is(err, ErrNoSession) {
		t.Errorf("Update: got %v, want ErrNoSession", err)
	}
}

func TestDestroyWithoutCookie(t *testing.T) {
	s := NewStore(nil, false)
	rec := httptest.NewRecorder()
	if err := s.Destroy(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/", nil)); err != nil {
		t.Errorf("Destroy: %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no cookie should be written when there was no session")
	}
}

func TestCookieAttributes(t *testing.T) {
	tests := []struct {
		name   string
		secure bool
	}{
		{"development", false},
		{"production", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(nil, tt.secure)
			c := s.cookie("abc", 60)

			if c.Name != CookieName || c.Path != CookiePath {
				t.Errorf("name/path = %q %q", c.Name, c.Path)
			}
			if !c.HttpOnly {
				t.Error("cookie must be HttpOnly")
			}
			if c.SameSite != http.SameSiteStrictMode {
				t.Errorf("SameSite = %v, want Strict", c.SameSite)
			}
			if c.Secure != tt.secure {
				t.Errorf("Secure = %v, want %v", c.Secure, tt.secure)
			}
		})
	}
}

func TestNewIDIsRandomHex(t *testing.T) {
	a, err := newID()
	if err != nil {
		t.Fatalf("newID: %v", err)
	}
	b, _ := newID()
	if len(a) != idBytes*2 {
		t.Errorf("length = %d, want %d", len(a), idBytes*2)
	}
	if a == b {
		t.Error("two IDs should differ")
	}
}

func TestCreateGetUpdate(t *testing.T) {
	s, client := testStore(t, false)
	ctx := context.Background()
	userID := uuid.New()

	req, cookie := login(t, s, &Data{UserID: userID, Email: "owner@pbbcms.local", DisplayName: "Owner"})

	if cookie.MaxAge != int(DefaultTTL.Seconds()) {
		t.Errorf("MaxAge = %d", cookie.MaxAge)
	}
	if ttl := client.TTL(ctx, sessionKey(cookie.Value)).Val(); ttl <= 0 || ttl > DefaultTTL {
		t.Errorf("TTL = %v", ttl)
	}

	data, err := s.Get(ctx, req)
	if err != nil || data == nil {
		t.Fatalf("Get: (%v, %v)", data, err)
	}
	if data.UserID != userID || data.TwoFADone {
		t.Errorf("data = %+v", data)
	}
	if time.Since(data.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt = %v", data.CreatedAt)
	}

	data.TwoFADone = true
	if err := s.Update(ctx, req, data); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, _ := s.Get(ctx, req)
	if again == nil || !again.TwoFADone {
		t.Errorf("after Update: %+v", again)
	}
}

func TestGetUnknownOrExpired(t *testing.T) {
	s, client := testStore(t, false)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "deadbeef"})
	if data, err := s.Get(ctx, req); data != nil || err != nil {
		t.Errorf("unknown id: (%v, %v)", data, err)
	}

	req, cookie := login(t, s, &Data{UserID: uuid.New()})
	client.Del(ctx, sessionKey(cookie.Value))
	if data, err := s.Get(ctx, req); data != nil || err != nil {
		t.Errorf("expired: (%v, %v)", data, err)
	}
}

func TestDestroy(t *testing.T) {
	s, client := testStore(t, false)
	ctx := context.Background()
	userID := uuid.New()

	req, cookie := login(t, s, &Data{UserID: userID})

	rec := httptest.NewRecorder()
	if err := s.Destroy(ctx, rec, req); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	if n := client.Exists(ctx, sessionKey(cookie.Value)).Val(); n != 0 {
		t.Error("session key should be gone")
	}
	if client.SIsMember(ctx, userKey(userID), cookie.Value).Val() {
		t.Error("session should be removed from the user index")
	}

	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 || cleared[0].Value != "" {
		t.Errorf("cleared cookie = %+v", cleared)
	}
}

func TestDestroyUserRevokesEverySession(t *testing.T) {
	s, _ := testStore(t, false)
	ctx := context.Background()
	userID := uuid.New()
	other := uuid.New()

	first, _ := login(t, s, &Data{UserID: userID})
	second, _ := login(t, s, &Data{UserID: userID})
	bystander, _ := login(t, s, &Data{UserID: other})

	n, err := s.DestroyUser(ctx, userID)
	if err != nil {
		t.Fatalf("DestroyUser: %v", err)
	}
	if n != 2 {
		t.Errorf("revoked = %d, want 2", n)
	}

	for _, req := range []*http.Request{first, second} {
		if data, _ := s.Get(ctx, req); data != nil {
			t.Error("revoked session still loads")
		}
	}
	if data, _ := s.Get(ctx, bystander); data == nil {
		t.Error("another user's session must survive")
	}

	if n, err := s.DestroyUser(ctx, userID); err != nil || n != 0 {
		t.Errorf("second DestroyUser = (%d, %v), want (0, nil)", n, err)
	}
}
