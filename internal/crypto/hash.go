package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// PasswordCost is the bcrypt work factor used for every stored password.
	PasswordCost = 10

	// MaxPasswordBytes is the longest password bcrypt accepts.
	MaxPasswordBytes = 72
)

// ErrPasswordTooLong is returned for passwords over MaxPasswordBytes bytes.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword hashes a password with bcrypt at PasswordCost.
// The result embeds its own salt and cost.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the bcrypt hash.
// A mismatch is (false, nil); a hash that cannot be parsed is an error.
func VerifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verifying password: %w", err)
	}
}
