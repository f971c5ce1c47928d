// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// csrfHandler wraps a handler that records the token it saw in context.
func csrfHandler(secure bool) (http.Handler, *string) {
	var seen string
	h := NewCSRF(secure)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CSRFTokenFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

// issueToken performs a GET and returns the CSRF cookie it set.
func issueToken(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/api/csrf", nil))
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	t.Fatal("CSRF cookie not set")
	return nil
}

func TestCSRFCookieAttributes(t *testing.T) {
	for _, secure := range []bool{false, true} {
		h, seen := csrfHandler(secure)
		c := issueToken(t, h)

		if len(c.Value) != csrfTokenBytes*2 {
			t.Errorf("token length = %d", len(c.Value))
		}
		if c.Value != *seen {
			t.Errorf("context token %q != cookie %q", *seen, c.Value)
		}
		if c.Secure != secure {
			t.Errorf("Secure = %v, want %v", c.Secure, secure)
		}
		if c.HttpOnly {
			t.Error("the admin client must be able to read the cookie")
		}
		if c.SameSite != http.SameSiteStrictMode || c.Path != "/admin" {
			t.Errorf("SameSite/Path = %v %q", c.SameSite, c.Path)
		}
	}
}

func TestCSRFReusesExistingCookie(t *testing.T) {
	h, seen := csrfHandler(false)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/me", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "existing"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if *seen != "existing" {
		t.Errorf("context token = %q, want existing", *seen)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("no new cookie should be issued")
	}
}

func TestCSRFTokenFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := CSRFTokenFromCtx(req.Context()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestCSRFSafeMethodsPassThrough(t *testing.T) {
	h, _ := csrfHandler(false)
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(m, "/admin/api/projects", nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", m, rr.Code)
		}
	}
}

func TestCSRFUnsafeMethods(t *testing.T) {
	h, _ := csrfHandler(false)
	cookie := issueToken(t, h)

	tests := []struct {
		name   string
		cookie bool
		header string
		want   int
	}{
		{"matching header", true, cookie.Value, http.StatusOK},
		{"no header", true, "", http.StatusForbidden},
		{"wrong header", true, strings.Repeat("0", 64), http.StatusForbidden},
		{"header without cookie", false, cookie.Value, http.StatusForbidden},
	}

	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		for _, tt := range tests {
			t.Run(m+"/"+tt.name, func(t *testing.T) {
				req := httptest.NewRequest(m, "/admin/api/highlights", nil)
				if tt.cookie {
					req.AddCookie(cookie)
				}
				if tt.header != "" {
					req.Header.Set(CSRFHeaderName, tt.header)
				}
				rr := httptest.NewRecorder()
				h.ServeHTTP(rr, req)
				if rr.Code != tt.want {
					t.Errorf("got %d, want %d", rr.Code, tt.want)
				}
			})
		}
	}
}

func TestCSRFIgnoresBodyToken(t *testing.T) {
	h, _ := csrfHandler(false)
	cookie := issueToken(t, h)

	req := httptest.NewRequest(http.MethodPost, "/admin/api/projects",
		strings.NewReader("csrf_token="+cookie.Value))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("got %d, want 403", rr.Code)
	}
}

func TestCSRFRejectionIsJSON(t *testing.T) {
	h, _ := csrfHandler(false)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/admin/api/reviews/x", nil))

	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := decodeError(t, rr); got != "CSRF token missing or invalid" {
		t.Errorf("error = %q", got)
	}
}
