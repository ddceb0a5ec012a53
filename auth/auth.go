package auth

import (
	"context"

	"github.com/user/portfolio-go/apperror"
)

// Owned is implemented by every resource that records its creator.
type Owned interface {
	OwnerID() string
}

// AuthorizeOwner allows the caller iff it owns the resource or is an administrator.
func AuthorizeOwner(ctx context.Context, resource Owned, what string) error {
	identity, ok := FromContext(ctx)
	if !ok {
		return apperror.NewUnauthorizedError(MsgNoToken, nil)
	}
	if identity.IsAdmin() || resource.OwnerID() == identity.ID {
		return nil
	}
	return apperror.NewForbiddenError("not authorized to modify this "+what, nil)
}

// LoadOwned fetches the resource with find and applies the owner-or-admin policy to it.
// A missing resource is a NotFound, decided before ownership is looked at.
func LoadOwned[T Owned](ctx context.Context, find func(context.Context, string) (T, bool, error), id, what string) (T, error) {
	var zero T
	resource, found, err := find(ctx, id)
	if err != nil {
		return zero, apperror.NewDatabaseError("failed to load "+what, err)
	}
	if !found {
		return zero, apperror.NewNotFoundError(what+" not found", nil)
	}
	if err := AuthorizeOwner(ctx, resource, what); err != nil {
		return zero, err
	}
	return resource, nil
}
