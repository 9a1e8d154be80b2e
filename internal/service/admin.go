package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sakif/faq-chatbot/internal/apperror"
	"github.com/sakif/faq-chatbot/internal/auth"
	"github.com/sakif/faq-chatbot/internal/model"
	"github.com/sakif/faq-chatbot/internal/repository"
)

const (
	MaxUsernameLength = 100

	// invalidCredentials is the only message a failed login ever produces, so a
	// caller cannot tell an unknown username from a wrong password.
	invalidCredentials = "invalid username or password"
)

// AdminService manages admin accounts and their logins.
type AdminService struct {
	admins    repository.AdminRepository
	questions repository.QuestionRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService // nil when authentication is disabled
	logger    *slog.Logger

	// dummyHash is compared against when the username is unknown, so both failure
	// paths cost one bcrypt comparison.
	dummyOnce sync.Once
	dummyHash string
}

func NewAdminService(
	admins repository.AdminRepository,
	questions repository.QuestionRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		admins:    admins,
		questions: questions,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// LoginResult is returned by Authenticate. Token is empty when tokens are disabled.
type LoginResult struct {
	Admin     *model.Admin
	Token     string
	ExpiresAt time.Time
}

func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", apperror.ValidationFailed("username", "username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return "", apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	return username, nil
}

func validatePassword(password string) error {
	if len(password) < auth.MinPasswordBytes {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d bytes", auth.MinPasswordBytes))
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
	}
	return nil
}

// CreateAdmin hashes the password and stores a new admin.
func (s *AdminService) CreateAdmin(ctx context.Context, username, password string) (*model.Admin, error) {
	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/admin: %w", err)
	}

	a := &model.Admin{Username: username, PasswordHash: hash}
	if err := s.admins.CreateAdmin(ctx, a); err != nil {
		return nil, fmt.Errorf("service/admin: creating %q: %w", username, err)
	}

	s.logger.Info("admin created", slog.Int64("id", a.ID), slog.String("username", a.Username))
	return a, nil
}

func (s *AdminService) GetAdmin(ctx context.Context, id int64) (*model.Admin, error) {
	if err := validateID("admin", id); err != nil {
		return nil, err
	}
	return s.admins.GetAdminByID(ctx, id)
}

// AdminExists reports whether id names a stored admin. auth.RequireAuth calls it
// on every protected request, so deleting an admin revokes their tokens at once.
func (s *AdminService) AdminExists(ctx context.Context, id int64) (bool, error) {
	_, err := s.admins.GetAdminByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperror.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("service/admin: checking %d: %w", id, err)
	}
}

func (s *AdminService) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	admins, err := s.admins.ListAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing: %w", err)
	}
	return admins, nil
}

// UpdateAdmin changes username and/or password; nil keeps the current value.
func (s *AdminService) UpdateAdmin(ctx context.Context, id int64, username, password *string) (*model.Admin, error) {
	if err := validateID("admin", id); err != nil {
		return nil, err
	}

	a, err := s.admins.GetAdminByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if username != nil {
		v, err := validateUsername(*username)
		if err != nil {
			return nil, err
		}
		a.Username = v
	}
	if password != nil {
		if err := validatePassword(*password); err != nil {
			return nil, err
		}
		hash, err := s.passwords.Hash(*password)
		if err != nil {
			return nil, fmt.Errorf("service/admin: %w", err)
		}
		a.PasswordHash = hash
	}

	if err := s.admins.UpdateAdmin(ctx, a); err != nil {
		return nil, fmt.Errorf("service/admin: updating %d: %w", id, err)
	}

	s.logger.Info("admin updated", slog.Int64("id", a.ID))
	return a, nil
}

// DeleteAdmin removes the admin. Their questions stay, with no owner.
func (s *AdminService) DeleteAdmin(ctx context.Context, id int64) error {
	if err := validateID("admin", id); err != nil {
		return err
	}
	if err := s.admins.DeleteAdmin(ctx, id); err != nil {
		return err
	}

	s.logger.Info("admin deleted", slog.Int64("id", id))
	return nil
}

// ListQuestions returns the questions owned by an admin. An unknown admin is
// NotFound rather than an empty list.
func (s *AdminService) ListQuestions(ctx context.Context, adminID int64) ([]model.Question, error) {
	if _, err := s.GetAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	questions, err := s.questions.FindByOwner(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing questions of %d: %w", adminID, err)
	}
	return questions, nil
}

// Authenticate checks credentials and, when tokens are enabled, issues a JWT.
// Every credential failure is the same apperror.ErrUnauthorized.
func (s *AdminService) Authenticate(ctx context.Context, username, password string) (*LoginResult, error) {
	a, err := s.admins.GetAdminByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/admin: looking up %q: %w", username, err)
		}
		// Burn the same bcrypt work as a real comparison.
		_ = s.passwords.Verify(s.dummy(), password)
		s.logger.Warn("login failed", slog.String("reason", "unknown username"))
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	if err := s.passwords.Verify(a.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash is unusable",
				slog.Int64("adminID", a.ID),
				slog.String("error", err.Error()),
			)
		}
		s.logger.Warn("login failed", slog.String("reason", "password mismatch"))
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	result := &LoginResult{Admin: a}
	if s.tokens != nil {
		token, err := s.tokens.Generate(a.ID)
		if err != nil {
			return nil, fmt.Errorf("service/admin: generating token for %d: %w", a.ID, err)
		}
		result.Token = token
		result.ExpiresAt = time.Now().Add(s.tokens.TTL())
	}

	s.logger.Info("admin authenticated", slog.Int64("adminID", a.ID))
	return result, nil
}

func (s *AdminService) dummy() string {
	s.dummyOnce.Do(func() {
		// Hash can only fail for passwords over 72 bytes.
		s.dummyHash, _ = s.passwords.Hash("dummy-password-for-timing")
	})
	return s.dummyHash
}
