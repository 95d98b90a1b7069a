package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only looks at the first 72 bytes of its input
const MaxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password longer than 72 bytes")

// HashPassword hashes a plain text password with bcrypt. Passwords bcrypt would
// silently truncate are refused with ErrPasswordTooLong.
func HashPassword(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword reports bcrypt.ErrMismatchedHashAndPassword for a wrong
// password. An empty stored hash never matches.
func CheckPassword(hash, plain string) error {
	if hash == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
