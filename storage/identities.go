package storage

import (
	"context"
	"fmt"

	"github.com/user/portfolio-go/auth"
)

// IdentityStore implements auth.IdentityStore.
type IdentityStore struct{ base }

var _ auth.IdentityStore = (*IdentityStore)(nil)

const (
	identityColumns       = `id, username, email, role, created_at`
	identityColumnsSecret = identityColumns + `, password_hash`
)

func (s *IdentityStore) find(ctx context.Context, column, value string, mode auth.SecretMode) (auth.Identity, bool, error) {
	cols := identityColumns
	if mode == auth.IncludeSecret {
		cols = identityColumnsSecret
	}
	query := s.db.Rebind(`SELECT ` + cols + ` FROM users WHERE ` + column + ` = ?`)

	var identity auth.Identity
	ok, err := found(s.db.GetContext(ctx, &identity, query, value))
	if err != nil {
		return auth.Identity{}, false, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return identity, ok, nil
}

// FindByID looks an identity up by id.
func (s *IdentityStore) FindByID(ctx context.Context, id string, mode auth.SecretMode) (auth.Identity, bool, error) {
	return s.find(ctx, "id", id, mode)
}

// FindByEmail looks an identity up by its (already normalized) email.
func (s *IdentityStore) FindByEmail(ctx context.Context, email string, mode auth.SecretMode) (auth.Identity, bool, error) {
	return s.find(ctx, "email", email, mode)
}

// Create inserts the identity and sets CreatedAt.
func (s *IdentityStore) Create(ctx context.Context, identity *auth.Identity) error {
	if identity.Role == "" {
		identity.Role = auth.RoleStandard
	}
	identity.CreatedAt = now()

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, created_at)
		 VALUES (:id, :username, :email, :password_hash, :role, :created_at)`,
		identity)
	if err != nil {
		if column, ok := uniqueViolation(err); ok {
			switch column {
			case "email":
				return auth.ErrDuplicateEmail
			case "username":
				return auth.ErrDuplicateUsername
			}
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// SetRole changes the role of an existing identity.
func (s *IdentityStore) SetRole(ctx context.Context, id string, role auth.Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET role = ? WHERE id = ?`), role, id)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return auth.ErrIdentityNotFound
	}
	return nil
}
