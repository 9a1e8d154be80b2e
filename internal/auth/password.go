package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultCost = 12

	// bcrypt silently ignores everything after 72 bytes, so longer passwords are
	// rejected instead of being truncated.
	MaxPasswordBytes = 72
	MinPasswordBytes = 8
)

// ErrPasswordMismatch is returned by Verify when the password does not match.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService hashes and verifies admin passwords with bcrypt.
//
// The raw password never leaves this type: callers store the hash returned by
// Hash and later hand it back to Verify.
type PasswordService struct {
	cost int
}

// NewPasswordService returns a PasswordService using the production cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest uses a low bcrypt cost (4 is the minimum) so tests in
// other packages stay fast. Never use it in production code.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{cost: bcrypt.MinCost}
}

// Hash returns the bcrypt hash of plaintext. Each call uses a fresh random salt.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. A wrong password yields
// ErrPasswordMismatch; a malformed hash yields a wrapped bcrypt error.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
