package auth

import (
	"errors"
	"time"
)

// User is an operator account. Accounts are provisioned centrally and are
// not part of the sync data set.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
}

// ErrInvalidCredentials covers both unknown email and wrong password, so a
// caller cannot probe which accounts exist.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrTokenInvalid indicates a missing, expired or malformed bearer token.
var ErrTokenInvalid = errors.New("auth: token invalid")
