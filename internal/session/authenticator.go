package session

import (
	"crypto/subtle"

	"weather-dashboard/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator checks operator credentials. Keeping the check behind an
// interface lets deployments swap the comparison strategy without touching
// the session lifecycle.
type Authenticator interface {
	Authenticate(username, password string) error
}

// Static compares against a fixed credential pair in constant time.
type Static struct {
	username string
	password string
}

// NewStatic returns an authenticator for the given fixed pair.
func NewStatic(username, password string) *Static {
	return &Static{username: username, password: password}
}

func (a *Static) Authenticate(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(a.username), []byte(username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(a.password), []byte(password)) == 1
	if !userOK || !passOK {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// Bcrypt compares the password against a bcrypt hash, for deployments that
// refuse to keep the operator password in plain text.
type Bcrypt struct {
	username string
	hash     string
}

// NewBcrypt returns an authenticator checking against a bcrypt password hash.
func NewBcrypt(username, hash string) *Bcrypt {
	return &Bcrypt{username: username, hash: hash}
}

func (a *Bcrypt) Authenticate(username, password string) error {
	if subtle.ConstantTimeCompare([]byte(a.username), []byte(username)) != 1 {
		return domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.hash), []byte(password)); err != nil {
		return domain.ErrInvalidCredentials
	}
	return nil
}
