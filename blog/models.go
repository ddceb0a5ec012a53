// Package blog implements posts: public reads, authenticated writes, and
// owner-or-admin updates and deletes.
package blog

import (
	"context"
	"time"

	"github.com/user/portfolio-go/auth"
)

// Post is a blog entry. Author is fixed at creation.
type Post struct {
	ID        string      `json:"id" db:"id"`
	Title     string      `json:"title" db:"title"`
	Content   string      `json:"content" db:"content"`
	Author    auth.Author `json:"author" db:"author"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// OwnerID implements auth.Owned.
func (p Post) OwnerID() string { return p.Author.ID }

// CreatePostRequest is the payload for POST /api/blog.
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,max=200" example:"Hello"`
	Content string `json:"content" validate:"required" example:"First post."`
}

// UpdatePostRequest is a partial update; absent fields are left unchanged.
type UpdatePostRequest struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content *string `json:"content,omitempty" validate:"omitempty,min=1"`
}

// Store persists posts.
type Store interface {
	// List returns all posts, newest first.
	List(ctx context.Context) ([]Post, error)
	FindByID(ctx context.Context, id string) (Post, bool, error)
	// Create inserts the post after checking that its author exists.
	// It fills the timestamps and the author's username.
	Create(ctx context.Context, post *Post) error
	// Save writes title, content and updated_at.
	Save(ctx context.Context, post *Post) error
	// DeleteWithComments removes the post's comments and then the post, in one transaction.
	DeleteWithComments(ctx context.Context, id string) error
}
