package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUserNextAuthStep(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"

	tests := []struct {
		name    string
		secret  *string
		enabled bool
		want    string
	}{
		{"fresh account", nil, false, AuthStepSetup},
		{"setup started, never verified", &secret, false, AuthStepSetup},
		{"enrolled", &secret, true, AuthStepVerify},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{TOTPSecret: tt.secret, TOTPEnabled: tt.enabled}
			if got := u.NextAuthStep(); got != tt.want {
				t.Errorf("NextAuthStep() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserJSONHidesSecrets(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	b, err := json.Marshal(&User{
		Email:        "a@pbbcms.local",
		PasswordHash: "$2a$10$hash",
		TOTPSecret:   &secret,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, leak := range []string{"hash", secret, "password", "totp_secret"} {
		if strings.Contains(string(b), leak) {
			t.Errorf("JSON %s contains %q", b, leak)
		}
	}
}
