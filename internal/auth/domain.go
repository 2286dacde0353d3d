package auth

import (
	"errors"
	"time"
)

// ErrInvalidCredentials is returned for any failed login attempt. Missing
// users, disabled accounts and wrong passwords are indistinguishable to the
// caller.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// User is an operator account for one or more quarries.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanLogin reports whether the account may start a session.
func (u *User) CanLogin() bool {
	return u != nil && u.IsActive
}
