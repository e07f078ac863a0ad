// Package security holds password hashing strategies.
package security

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"boostly/internal/config"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a plaintext password into its stored form and checks candidates against it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(stored, candidate string) bool
}

// BcryptHasher stores bcrypt digests.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

func (h BcryptHasher) Matches(stored, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}

// PlaintextHasher stores passwords verbatim. It exists for legacy datasets
// whose credentials were never hashed.
type PlaintextHasher struct{}

func (PlaintextHasher) Hash(password string) (string, error) {
	return password, nil
}

func (PlaintextHasher) Matches(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// NewPasswordHasher returns the hasher selected by PASSWORD_HASHING.
func NewPasswordHasher(cfg *config.Config) (PasswordHasher, error) {
	switch cfg.PasswordHashing {
	case config.PasswordHashingBcrypt, "":
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	case config.PasswordHashingPlaintext:
		return PlaintextHasher{}, nil
	default:
		return nil, errors.New("unsupported password hashing mode " + cfg.PasswordHashing)
	}
}
