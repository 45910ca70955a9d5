// Package authutil provides password hashing and credential strength
// checks for trusted-contact accounts.
package authutil

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password validation constants
const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
	BcryptCost        = 12
)

// Password validation errors
var (
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password must be less than 128 characters")
	ErrPasswordCommon   = errors.New("password is too common")
)

// commonPasswords is a list of very common passwords that are blocked.
var commonPasswords = map[string]bool{
	"123456":    true,
	"1234567":   true,
	"12345678":  true,
	"123456789": true,
	"password":  true,
	"password1": true,
	"qwerty":    true,
	"qwerty123": true,
	"abc123":    true,
	"111111":    true,
	"000000":    true,
	"123123":    true,
	"654321":    true,
	"iloveyou":  true,
	"letmein":   true,
	"welcome":   true,
	"senha123":  true,
}

// ValidatePassword checks whether a password meets the strength policy.
// minLen <= 0 falls back to MinPasswordLength.
func ValidatePassword(password string, minLen int) error {
	if minLen <= 0 {
		minLen = MinPasswordLength
	}
	if len(password) < minLen {
		return fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, minLen)
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if commonPasswords[strings.ToLower(password)] {
		return ErrPasswordCommon
	}
	return nil
}

// HashPassword hashes a password using bcrypt.
// The password should be validated with ValidatePassword first.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plain-text password with a bcrypt hash.
// Returns true if the password matches, false otherwise.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// dummyHash is a valid bcrypt hash of a random string, used so that
// authentication against an unknown login still performs one bcrypt
// comparison and does not return measurably faster.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("shield360-no-such-login"), BcryptCost)

// BurnCompare performs a bcrypt comparison against a throwaway hash.
// Call it on the unknown-login path of authentication so both failure
// modes cost the same.
func BurnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
