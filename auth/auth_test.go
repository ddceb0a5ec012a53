package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/portfolio-go/apperror"
)

// fakePost counts how often its owner is consulted.
type fakePost struct {
	owner   string
	lookups *int
}

func (p fakePost) OwnerID() string {
	*p.lookups++
	return p.owner
}

func finder(posts map[string]fakePost, err error) func(context.Context, string) (fakePost, bool, error) {
	return func(_ context.Context, id string) (fakePost, bool, error) {
		if err != nil {
			return fakePost{}, false, err
		}
		p, ok := posts[id]
		return p, ok, nil
	}
}

func TestLoadOwned(t *testing.T) {
	bob := Identity{ID: "bob-id", Username: "bob", Role: RoleStandard}

	tests := []struct {
		name    string
		caller  Identity
		wantErr func(error) bool
	}{
		{name: "owner", caller: alice},
		{name: "admin not owner", caller: admin},
		{name: "standard not owner", caller: bob, wantErr: apperror.IsForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookups := 0
			posts := map[string]fakePost{"p1": {owner: alice.ID, lookups: &lookups}}
			ctx := NewContext(context.Background(), tt.caller)

			got, err := LoadOwned(ctx, finder(posts, nil), "p1", "post")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, alice.ID, got.owner)
		})
	}
}

func TestLoadOwned_NotFoundBeforeOwnership(t *testing.T) {
	lookups := 0
	posts := map[string]fakePost{"p1": {owner: alice.ID, lookups: &lookups}}

	// No identity in the context: a missing resource must still be a 404, not a 401.
	_, err := LoadOwned(context.Background(), finder(posts, nil), "missing", "post")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, "post not found", err.Error())

	_, err = LoadOwned(NewContext(context.Background(), alice), finder(posts, nil), "missing", "post")
	assert.True(t, apperror.IsNotFound(err))
	assert.Zero(t, lookups)
}

func TestLoadOwned_StoreError(t *testing.T) {
	_, err := LoadOwned(NewContext(context.Background(), admin), finder(nil, errors.New("boom")), "p1", "post")
	require.Error(t, err)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.StatusCode())
}

func TestAuthorizeOwner_RequiresIdentity(t *testing.T) {
	lookups := 0
	err := AuthorizeOwner(context.Background(), fakePost{owner: alice.ID, lookups: &lookups}, "post")
	assert.True(t, apperror.IsUnauthorized(err))
	assert.Zero(t, lookups)
}
