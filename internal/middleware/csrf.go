package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"pbbcms/internal/apierror"
)

const (
	// CSRFCookieName is the cookie that holds the CSRF token.
	CSRFCookieName = "pbb_csrf"

	// CSRFHeaderName is the header the admin client echoes the token in.
	CSRFHeaderName = "X-CSRF-Token"

	csrfTokenBytes = 32

	csrfTokenKey contextKey = "csrf_token"
)

// NewCSRF implements double-submit cookie protection for the admin API.
// Every response without the cookie gets a fresh token; unsafe methods must
// repeat the cookie value in the X-CSRF-Token header. The body is never
// read, so multipart uploads reach their handler unparsed.
func NewCSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := csrfToken(w, r, secure)
			if err != nil {
				apierror.Write(w, http.StatusInternalServerError, apierror.InternalMessage)
				return
			}
			r = r.WithContext(context.WithValue(r.Context(), csrfTokenKey, token))

			if !safeMethod(r.Method) {
				sent := r.Header.Get(CSRFHeaderName)
				if subtle.ConstantTimeCompare([]byte(token), []byte(sent)) != 1 {
					apierror.Write(w, http.StatusForbidden, "CSRF token missing or invalid")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// csrfToken returns the request's cookie token, issuing a new cookie when
// there is none.
func csrfToken(w http.ResponseWriter, r *http.Request, secure bool) (string, error) {
	if c, err := r.Cookie(CSRFCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)

	// Readable by script: the admin client copies it into the header.
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/admin",
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

// CSRFTokenFromCtx returns the token the middleware stored for this request.
func CSRFTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(csrfTokenKey).(string)
	return token
}
