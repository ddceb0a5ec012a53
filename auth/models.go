// Package auth handles identities, bearer tokens and the request-time access guard.
// This file defines the identity model and the store contract the guard resolves against.
package auth

import (
	"context"
	"errors"
	"time"
)

// Role is the coarse authorization tag of an identity.
type Role string

const (
	// RoleStandard is assigned at registration.
	RoleStandard Role = "user"
	// RoleAdmin may act on any resource regardless of ownership.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleAdmin
}

// Identity represents a registered user.
// PasswordHash is populated only when the store is asked for it with IncludeSecret,
// and it is never serialized.
type Identity struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// IsAdmin reports whether the identity carries the administrator role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Public returns a copy with the secret stripped.
func (i Identity) Public() Identity {
	i.PasswordHash = ""
	return i
}

// SecretMode selects whether a lookup loads the password hash.
type SecretMode int

const (
	ExcludeSecret SecretMode = iota
	IncludeSecret
)

var (
	// ErrDuplicateEmail is returned by IdentityStore.Create when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateUsername is returned by IdentityStore.Create when the username is taken.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrIdentityNotFound is returned by mutations addressed to an unknown identity.
	ErrIdentityNotFound = errors.New("identity not found")
)

// IdentityStore persists identities. Lookups report absence through the boolean
// rather than a nil record, so callers must handle the missing case explicitly.
type IdentityStore interface {
	FindByID(ctx context.Context, id string, mode SecretMode) (Identity, bool, error)
	FindByEmail(ctx context.Context, email string, mode SecretMode) (Identity, bool, error)
	Create(ctx context.Context, identity *Identity) error
	SetRole(ctx context.Context, id string, role Role) error
}

// Author is the owner reference embedded in resources when they are read back.
type Author struct {
	ID       string `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
}
