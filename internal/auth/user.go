// Package auth handles user accounts, password hashing and the JWT
// sessions the HTTP layer uses to build a core.Identity.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Kurama07a/buyer-lead-app/internal/core"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrMissingCredentials = errors.New("email and password are required")
)

func init() {
	core.RegisterErrorMessage(ErrInvalidCredentials, core.UserMessage{
		Message: "Invalid email or password", Action: "Check your credentials and try again",
		Code: "AUTH003", Status: http.StatusUnauthorized,
	})
	core.RegisterErrorMessage(ErrEmailTaken, core.UserMessage{
		Message: "Email already registered", Action: "Sign in instead",
		Code: "AUTH004", Status: http.StatusConflict,
	})
	core.RegisterErrorMessage(ErrInvalidToken, core.UserMessage{
		Message: "Invalid token", Action: "Please sign in again",
		Code: "AUTH005", Status: http.StatusUnauthorized,
	})
	core.RegisterErrorMessage(ErrTokenRevoked, core.UserMessage{
		Message: "Session has ended", Action: "Please sign in again",
		Code: "AUTH005", Status: http.StatusUnauthorized,
	})
	core.RegisterErrorMessage(ErrWeakPassword, core.UserMessage{
		Message: "Password must be at least 6 characters long", Action: "Choose a longer password",
		Code: "AUTH006", Status: http.StatusBadRequest,
	})
	core.RegisterErrorMessage(ErrMissingCredentials, core.UserMessage{
		Message: "Email and password are required", Action: "Fill in both fields",
		Code: "AUTH007", Status: http.StatusBadRequest,
	})
}

// User is a stored account.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         core.Role
	CreatedAt    time.Time
}

// Identity is the view of u that core operations receive.
func (u *User) Identity() core.Identity {
	return core.Identity{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// UserStore persists accounts. Lookups return ErrUserNotFound for unknown
// users and CreateUser returns ErrEmailTaken for a duplicate email.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}
