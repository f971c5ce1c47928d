package middleware

import (
	"net/http"
	"strings"

	"pbbcms/internal/apierror"
)

// isAPIPath reports whether path belongs to the JSON API surfaces, which
// keep the {"error": ...} envelope for unknown routes.
func isAPIPath(path string) bool {
	for _, prefix := range []string{"/api/", "/admin/"} {
		if strings.HasPrefix(path, prefix) || path == strings.TrimSuffix(prefix, "/") {
			return true
		}
	}
	return false
}

// NotFound answers unmatched routes. API paths get {"error": "not found"};
// everything else gets {"detail": "Not Found"}.
func NotFound(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL.Path) {
		apierror.Write(w, http.StatusNotFound, "not found")
		return
	}
	apierror.WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
}

// MethodNotAllowed answers a known route hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apierror.Write(w, http.StatusMethodNotAllowed, "method not allowed")
}
