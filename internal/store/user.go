package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pbbcms/internal/models"
)

// ErrDuplicateEmail is returned when an admin account already uses the email.
var ErrDuplicateEmail = errors.New("an account with this email already exists")

const userEmailConstraint = "users_email_key"

var userColumns = []string{
	"id", "email", "password_hash", "display_name",
	"totp_secret", "totp_enabled", "last_login_at", "created_at", "updated_at",
}

// UserStore reads and writes admin accounts.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// normalizeEmail makes logins case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) findBy(ctx context.Context, pred sq.Eq) (*models.User, error) {
	return selectOne[models.User](ctx, s.db, psql.Select(userColumns...).From("users").Where(pred))
}

// FindByEmail returns the account for email, or nil.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.findBy(ctx, sq.Eq{"email": normalizeEmail(email)})
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// Count returns the number of admin accounts.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From("users").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build user count: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// FindByID returns the account with id, or nil.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.findBy(ctx, sq.Eq{"id": id})
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// Create inserts an admin with a bcrypt hash of password. The account
// starts without 2FA and must enroll on first login.
func (s *UserStore) Create(ctx context.Context, email, password, displayName string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := getReturning[models.User](ctx, s.db, psql.Insert("users").
		Columns("email", "password_hash", "display_name").
		Values(normalizeEmail(email), string(hash), displayName).
		Suffix(returning(userColumns)))
	if err != nil {
		if isUniqueViolation(err, userEmailConstraint) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// update applies set to one user and bumps updated_at.
func (s *UserStore) update(ctx context.Context, userID uuid.UUID, set map[string]any) error {
	query, args, err := psql.Update("users").
		SetMap(set).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build user update: %w", err)
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// SetTOTPSecret stores the secret generated during enrollment. 2FA stays
// disabled until EnableTOTP.
func (s *UserStore) SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error {
	if err := s.update(ctx, userID, map[string]any{"totp_secret": secret}); err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks enrollment complete after the first valid code.
func (s *UserStore) EnableTOTP(ctx context.Context, userID uuid.UUID) error {
	if err := s.update(ctx, userID, map[string]any{"totp_enabled": true}); err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// ResetTOTP drops the secret so the next login starts enrollment again.
func (s *UserStore) ResetTOTP(ctx context.Context, userID uuid.UUID) error {
	if err := s.update(ctx, userID, map[string]any{"totp_secret": nil, "totp_enabled": false}); err != nil {
		return fmt.Errorf("reset totp: %w", err)
	}
	return nil
}

// RecordLogin stamps last_login_at once both factors have passed.
func (s *UserStore) RecordLogin(ctx context.Context, userID uuid.UUID) error {
	if err := s.update(ctx, userID, map[string]any{"last_login_at": sq.Expr("NOW()")}); err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
