package auth_service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/joy095/parlour/logger"
	"github.com/joy095/parlour/models/admin_models"
	"github.com/joy095/parlour/store"
	"github.com/joy095/parlour/utils"
)

// MinPasswordLength counts characters, not bytes.
const MinPasswordLength = 6

type LoginResult struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

type AuthService struct {
	store  store.CredentialStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(s store.CredentialStore, secret string, ttl time.Duration) (*AuthService, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token TTL must be positive")
	}
	return &AuthService{
		store:  s,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Login checks the credentials and issues a session token. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, utils.NewValidationError("credentials", "Username and password are required")
	}

	admin, err := s.store.FindAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			logger.WarnLogger.Warnf("Login attempt for unknown admin %q", username)
			return nil, utils.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}

	ok, err := admin_models.VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		logger.WarnLogger.Warnf("Invalid password for admin %q", username)
		return nil, utils.ErrInvalidCredentials
	}

	if err := s.store.UpdateLastLogin(ctx, admin.ID, s.now()); err != nil {
		logger.WarnLogger.Warnf("Failed to record last login for admin %s: %v", admin.ID, err)
	}

	token, expiresAt, err := s.issueToken(admin.ID, admin.Username)
	if err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("Admin %s logged in", admin.Username)
	return &LoginResult{Token: token, Username: admin.Username, ExpiresAt: expiresAt}, nil
}

// ChangePassword replaces the admin's password after checking the current one.
// Tokens issued before the change stay valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, adminID uuid.UUID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return utils.NewValidationError("password", "Current and new password are required")
	}
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return utils.ErrWeakPassword
	}

	admin, err := s.store.FindAdminByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return err
		}
		return fmt.Errorf("find admin: %w", err)
	}

	ok, err := admin_models.VerifyPassword(currentPassword, admin.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return utils.ErrInvalidCredentials
	}

	hash, err := admin_models.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateAdminPassword(ctx, admin.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	logger.InfoLogger.Infof("Password changed for admin %s", admin.Username)
	return nil
}

// ProvisionAdmin creates the admin or resets its password. It reports whether a
// new admin was created.
func (s *AuthService) ProvisionAdmin(ctx context.Context, username, password string) (bool, error) {
	return ProvisionAdmin(ctx, s.store, username, password)
}

// ProvisionAdmin is the out-of-band form used by tooling that has a store but
// no signing secret.
func ProvisionAdmin(ctx context.Context, s store.CredentialStore, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, utils.NewValidationError("username", "username is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return false, utils.ErrWeakPassword
	}

	hash, err := admin_models.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	admin, err := admin_models.NewAdminUser(username, hash)
	if err != nil {
		return false, err
	}

	created, err := s.UpsertAdmin(ctx, admin)
	if err != nil {
		return false, fmt.Errorf("upsert admin: %w", err)
	}

	if created {
		logger.InfoLogger.Infof("Admin %s created", username)
	} else {
		logger.InfoLogger.Infof("Admin %s password updated", username)
	}
	return created, nil
}
