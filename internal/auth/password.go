// Package auth provides password hashing and session token primitives.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum plaintext password length enforced
// before hashing.
const MinPasswordLength = 6

// ErrPasswordTooShort indicates the plaintext password is below the minimum length.
var ErrPasswordTooShort = errors.New("password too short")

// HashPassword creates a bcrypt hash of the given plaintext password.
// The plaintext minimum length is enforced here so a hash can never exist
// for an invalid password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword checks if the password matches the bcrypt hash.
// bcrypt performs the comparison in constant time.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
