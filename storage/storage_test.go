package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/portfolio-go/auth"
	"github.com/user/portfolio-go/blog"
	"github.com/user/portfolio-go/comments"
	"github.com/user/portfolio-go/contact"
	"github.com/user/portfolio-go/db"
	"github.com/user/portfolio-go/projects"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	h, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	require.NoError(t, db.MigrateSQLite(ctx, h))
	return New(h.DB)
}

func createIdentity(t *testing.T, s *Store, username string) auth.Identity {
	t.Helper()
	identity := auth.Identity{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@x.com",
		PasswordHash: "hash-" + username,
	}
	require.NoError(t, s.Identities.Create(context.Background(), &identity))
	return identity
}

func TestIdentityStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createIdentity(t, s, "alice")
	assert.Equal(t, auth.RoleStandard, alice.Role)
	assert.False(t, alice.CreatedAt.IsZero())

	t.Run("find excludes secret by default", func(t *testing.T) {
		got, ok, err := s.Identities.FindByID(ctx, alice.ID, auth.ExcludeSecret)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "alice", got.Username)
		assert.Empty(t, got.PasswordHash)
	})

	t.Run("find includes secret on request", func(t *testing.T) {
		got, ok, err := s.Identities.FindByEmail(ctx, "alice@x.com", auth.IncludeSecret)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "hash-alice", got.PasswordHash)
	})

	t.Run("missing is not an error", func(t *testing.T) {
		_, ok, err := s.Identities.FindByID(ctx, "nope", auth.ExcludeSecret)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("duplicates", func(t *testing.T) {
		dupEmail := auth.Identity{ID: uuid.NewString(), Username: "alice2", Email: "alice@x.com", PasswordHash: "h"}
		assert.ErrorIs(t, s.Identities.Create(ctx, &dupEmail), auth.ErrDuplicateEmail)

		dupName := auth.Identity{ID: uuid.NewString(), Username: "alice", Email: "other@x.com", PasswordHash: "h"}
		assert.ErrorIs(t, s.Identities.Create(ctx, &dupName), auth.ErrDuplicateUsername)
	})

	t.Run("set role", func(t *testing.T) {
		require.NoError(t, s.Identities.SetRole(ctx, alice.ID, auth.RoleAdmin))
		got, _, err := s.Identities.FindByID(ctx, alice.ID, auth.ExcludeSecret)
		require.NoError(t, err)
		assert.True(t, got.IsAdmin())

		assert.ErrorIs(t, s.Identities.SetRole(ctx, "nope", auth.RoleAdmin), auth.ErrIdentityNotFound)
		assert.Error(t, s.Identities.SetRole(ctx, alice.ID, auth.Role("root")))
	})

	t.Run("delete", func(t *testing.T) {
		bob := createIdentity(t, s, "bob")
		_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, bob.ID)
		require.NoError(t, err)
		_, ok, err := s.Identities.FindByID(ctx, bob.ID, auth.ExcludeSecret)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPostStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createIdentity(t, s, "alice")

	first := blog.Post{ID: uuid.NewString(), Title: "first", Content: "one", Author: auth.Author{ID: alice.ID}}
	require.NoError(t, s.Posts.Create(ctx, &first))
	assert.Equal(t, "alice", first.Author.Username)
	time.Sleep(2 * time.Millisecond)
	second := blog.Post{ID: uuid.NewString(), Title: "second", Content: "two", Author: auth.Author{ID: alice.ID}}
	require.NoError(t, s.Posts.Create(ctx, &second))

	list, err := s.Posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, auth.Author{ID: alice.ID, Username: "alice"}, list[1].Author)

	got, ok, err := s.Posts.FindByID(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "one", got.Content)
	assert.Equal(t, alice.ID, got.OwnerID())

	got.Title = "renamed"
	require.NoError(t, s.Posts.Save(ctx, &got))
	got, _, err = s.Posts.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, alice.ID, got.Author.ID)

	_, ok, err = s.Posts.FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreate_RejectsUnknownOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	post := blog.Post{ID: uuid.NewString(), Title: "t", Content: "c", Author: auth.Author{ID: "ghost"}}
	assert.ErrorIs(t, s.Posts.Create(ctx, &post), auth.ErrIdentityNotFound)

	project := projects.Project{ID: uuid.NewString(), Title: "t", Description: "d", Owner: auth.Author{ID: "ghost"}}
	assert.ErrorIs(t, s.Projects.Create(ctx, &project), auth.ErrIdentityNotFound)

	list, err := s.Posts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteWithComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createIdentity(t, s, "alice")
	bob := createIdentity(t, s, "bob")

	post := blog.Post{ID: uuid.NewString(), Title: "t", Content: "c", Author: auth.Author{ID: alice.ID}}
	require.NoError(t, s.Posts.Create(ctx, &post))
	other := blog.Post{ID: uuid.NewString(), Title: "t2", Content: "c2", Author: auth.Author{ID: alice.ID}}
	require.NoError(t, s.Posts.Create(ctx, &other))

	for _, author := range []auth.Identity{alice, bob} {
		c := comments.Comment{ID: uuid.NewString(), PostID: post.ID, Body: "hi", Author: auth.Author{ID: author.ID}}
		require.NoError(t, s.Comments.Create(ctx, &c))
	}
	kept := comments.Comment{ID: uuid.NewString(), PostID: other.ID, Body: "stays", Author: auth.Author{ID: bob.ID}}
	require.NoError(t, s.Comments.Create(ctx, &kept))

	require.NoError(t, s.Posts.DeleteWithComments(ctx, post.ID))

	_, ok, err := s.Posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	remaining, err := s.Comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	remaining, err = s.Comments.ListByPost(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "stays", remaining[0].Body)
}

func TestCommentStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createIdentity(t, s, "alice")

	post := blog.Post{ID: uuid.NewString(), Title: "t", Content: "c", Author: auth.Author{ID: alice.ID}}
	require.NoError(t, s.Posts.Create(ctx, &post))

	c := comments.Comment{ID: uuid.NewString(), PostID: post.ID, Body: "first", Author: auth.Author{ID: alice.ID}}
	require.NoError(t, s.Comments.Create(ctx, &c))
	assert.Equal(t, "alice", c.Author.Username)

	c.Body = "edited"
	require.NoError(t, s.Comments.Save(ctx, &c))
	got, ok, err := s.Comments.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "edited", got.Body)
	assert.Equal(t, post.ID, got.PostID)

	require.NoError(t, s.Comments.Delete(ctx, c.ID))
	_, ok, err = s.Comments.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// Comments must reference an existing post.
	orphan := comments.Comment{ID: uuid.NewString(), PostID: "missing", Body: "x", Author: auth.Author{ID: alice.ID}}
	assert.Error(t, s.Comments.Create(ctx, &orphan))
}

func TestProjectStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := createIdentity(t, s, "admin")

	p := projects.Project{
		ID:          uuid.NewString(),
		Title:       "portfolio",
		Description: "site",
		RepoURL:     "https://github.com/user/portfolio-go",
		Owner:       auth.Author{ID: admin.ID},
	}
	require.NoError(t, s.Projects.Create(ctx, &p))

	p.LiveURL = "https://example.com"
	require.NoError(t, s.Projects.Save(ctx, &p))

	list, err := s.Projects.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "https://example.com", list[0].LiveURL)
	assert.Equal(t, "admin", list[0].Owner.Username)
	assert.Empty(t, list[0].ImageURL)

	require.NoError(t, s.Projects.Delete(ctx, p.ID))
	_, ok, err := s.Projects.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMessageStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msg := contact.Message{ID: uuid.NewString(), Name: "Bob", Email: "bob@x.com", Message: "hello"}
	require.NoError(t, s.Messages.Create(ctx, &msg))

	list, err := s.Messages.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hello", list[0].Message)
	assert.False(t, list[0].CreatedAt.IsZero())

	require.NoError(t, s.Ping(ctx))
}

func TestUniqueViolation(t *testing.T) {
	column, ok := uniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"))
	assert.True(t, ok)
	assert.Equal(t, "email", column)

	_, ok = uniqueViolation(errors.New("disk I/O error"))
	assert.False(t, ok)
}
