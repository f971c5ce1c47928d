package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNotFoundShapes(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/nope/", `{"error":"not found"}`},
		{"/api", `{"error":"not found"}`},
		{"/admin/api/unknown", `{"error":"not found"}`},
		{"/", `{"detail":"Not Found"}`},
		{"/favicon.ico", `{"detail":"Not Found"}`},
		{"/apiary", `{"detail":"Not Found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NotFound(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rr.Code != http.StatusNotFound {
				t.Errorf("status: got %d, want 404", rr.Code)
			}
			if got := strings.TrimSpace(rr.Body.String()); got != tt.want {
				t.Errorf("body: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	MethodNotAllowed(rr, httptest.NewRequest(http.MethodDelete, "/api/projects/", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rr.Code)
	}
}
