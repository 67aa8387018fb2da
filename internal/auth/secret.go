// Package auth provides client authentication: bcrypt-hashed client
// secrets exchanged for short-lived HS256 access tokens.
package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Secret hashing cost. 12 is a good balance between security and performance.
const bcryptCost = 12

// ErrInvalidSecret is returned when secret validation fails.
var ErrInvalidSecret = errors.New("invalid client secret")

func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", ErrInvalidSecret
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckSecret verifies a secret against its hash.
func CheckSecret(secret, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidSecret
		}
		return err
	}
	return nil
}

// ValidateSecretStrength checks that a client secret is long enough to be
// generated rather than typed, and fits bcrypt's input limit.
func ValidateSecretStrength(secret string) error {
	if len(secret) < 16 {
		return errors.New("client secret must be at least 16 characters")
	}
	if len(secret) > 72 {
		// bcrypt has a 72 byte limit
		return errors.New("client secret must be at most 72 characters")
	}
	return nil
}

// Client is an API client allowed to request tokens.
type Client struct {
	ID         string
	SecretHash string
	Scopes     []string
}

// Authenticate checks id and secret against the registered clients. The
// client id comparison is constant time.
func Authenticate(clients []Client, id, secret string) (Client, error) {
	for _, c := range clients {
		if subtle.ConstantTimeCompare([]byte(c.ID), []byte(id)) != 1 {
			continue
		}
		if err := CheckSecret(secret, c.SecretHash); err != nil {
			return Client{}, err
		}
		return c, nil
	}
	return Client{}, ErrInvalidSecret
}
