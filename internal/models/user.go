package models

import (
	"time"

	"github.com/google/uuid"
)

// Steps an admin goes through after a correct password.
const (
	AuthStepSetup  = "setup"  // first login: enroll a TOTP secret
	AuthStepVerify = "verify" // enrolled: enter the current code
	AuthStepDone   = "done"
)

// User is an administrator account. The public API has no users.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	DisplayName  string     `db:"display_name" json:"display_name"`
	TOTPSecret   *string    `db:"totp_secret" json:"-"`
	TOTPEnabled  bool       `db:"totp_enabled" json:"totp_enabled"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// NextAuthStep names the second factor step the user faces after a
// correct password. Every admin must enroll TOTP before reaching the API.
func (u *User) NextAuthStep() string {
	if !u.TOTPEnabled {
		return AuthStepSetup
	}
	return AuthStepVerify
}
