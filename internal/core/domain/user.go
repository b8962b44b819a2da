package domain

import (
	"errors"
	"fmt"
	"time"
)

// Role is the closed set of session roles.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
)

// ParseRole converts a raw claim or record value into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleClient, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// User models a registered client or the configured administrator.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor returns the principal used for authorization decisions.
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// Actor identifies who performs an operation.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
