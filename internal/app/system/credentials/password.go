// Package credentials hashes login passwords and mints and checks the signed
// access tokens that carry a subject and its principal discriminant.
package credentials

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the fixed bcrypt work factor for stored passwords.
const HashCost = 12

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var (
	ErrEmptyPassword   = errors.New("password is empty")
	ErrPasswordTooLong = bcrypt.ErrPasswordTooLong
)

// HashPassword returns a salted one-way hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash
// never matches.
func VerifyPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	absentOnce sync.Once
	absentHash []byte
)

// VerifyAbsent spends one full bcrypt comparison against a throwaway hash and
// reports false. Login calls it when no account matches, so a miss costs
// about as much as a wrong password.
func VerifyAbsent(password string) bool {
	absentOnce.Do(func() {
		absentHash, _ = bcrypt.GenerateFromPassword([]byte("no account has this password"), HashCost)
	})
	_ = bcrypt.CompareHashAndPassword(absentHash, []byte(password))
	return false
}
