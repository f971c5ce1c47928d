package handlers

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"pbbcms/internal/apierror"
	"pbbcms/internal/middleware"
	"pbbcms/internal/models"
	"pbbcms/internal/session"
	"pbbcms/internal/store"
)

// totpIssuer names the account in authenticator apps.
const totpIssuer = "pbbcms"

// Auth groups the admin authentication endpoints.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type verifyRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// sessionView is what the admin client learns about the signed-in user.
type sessionView struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	TwoFADone   bool   `json:"two_fa_done"`
	CSRFToken   string `json:"csrf_token"`
}

func viewOf(r *http.Request, sess *session.Data) sessionView {
	return sessionView{
		Email:       sess.Email,
		DisplayName: sess.DisplayName,
		TwoFADone:   sess.TwoFADone,
		CSRFToken:   middleware.CSRFTokenFromCtx(r.Context()),
	}
}

// Login checks credentials and opens a session. 2FA is still pending: the
// response names the next step, "setup" or "verify".
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierror.Respond(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(&req); err != nil {
		apierror.Respond(w, r, err)
		return
	}

	user, err := a.userStore.FindByEmail(r.Context(), req.Email)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if user == nil || !a.userStore.CheckPassword(user, req.Password) {
		apierror.Respond(w, r, apierror.Unauthorized("invalid email or password"))
		return
	}

	// TwoFADone starts as false; the user must complete 2FA.
	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}); err != nil {
		apierror.Respond(w, r, fmt.Errorf("create session: %w", err))
		return
	}

	apierror.WriteJSON(w, http.StatusOK, map[string]string{"next": user.NextAuthStep()})
}

// TwoFASetup issues a fresh TOTP secret for a user who has not enabled 2FA
// yet and returns it with a base64 PNG QR code.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.userStore.FindByID(r.Context(), sess.UserID)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if user == nil {
		apierror.Respond(w, r, apierror.Unauthorized("authentication required"))
		return
	}
	if user.TOTPEnabled {
		apierror.Respond(w, r, apierror.Forbidden("two-factor authentication is already set up"))
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		apierror.Respond(w, r, fmt.Errorf("generate totp key: %w", err))
		return
	}
	if err := a.userStore.SetTOTPSecret(r.Context(), sess.UserID, key.Secret()); err != nil {
		apierror.Respond(w, r, err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		apierror.Respond(w, r, fmt.Errorf("encode qr code: %w", err))
		return
	}

	apierror.WriteJSON(w, http.StatusOK, map[string]string{
		"secret":  key.Secret(),
		"qr_code": base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAVerify validates a TOTP code and completes the login. The first
// successful code after setup enables 2FA for the account.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierror.Respond(w, r, err)
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if err := validateRequest(&req); err != nil {
		apierror.Respond(w, r, err)
		return
	}

	user, err := a.userStore.FindByID(r.Context(), sess.UserID)
	if err != nil {
		apierror.Respond(w, r, err)
		return
	}
	if user == nil {
		apierror.Respond(w, r, apierror.Unauthorized("authentication required"))
		return
	}
	if user.TOTPSecret == nil {
		apierror.Respond(w, r, apierror.Forbidden("two-factor authentication is not set up"))
		return
	}

	if !totp.Validate(req.Code, *user.TOTPSecret) {
		apierror.Respond(w, r, apierror.Field("code", "Invalid code. Please try again."))
		return
	}

	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(r.Context(), user.ID); err != nil {
			apierror.Respond(w, r, err)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		apierror.Respond(w, r, fmt.Errorf("update session: %w", err))
		return
	}

	if err := a.userStore.RecordLogin(r.Context(), user.ID); err != nil {
		slog.Warn("last login not recorded", "error", err, "user_id", user.ID)
	}

	apierror.WriteJSON(w, http.StatusOK, map[string]string{"next": models.AuthStepDone})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		apierror.Respond(w, r, fmt.Errorf("destroy session: %w", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me describes the current session, including the CSRF token the client
// must echo on writes.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	apierror.WriteJSON(w, http.StatusOK, viewOf(r, middleware.SessionFromCtx(r.Context())))
}

// CSRFToken hands out the CSRF token without requiring a session, so the
// client can call Login.
func (a *Auth) CSRFToken(w http.ResponseWriter, r *http.Request) {
	apierror.WriteJSON(w, http.StatusOK, map[string]string{
		"csrf_token": middleware.CSRFTokenFromCtx(r.Context()),
	})
}
