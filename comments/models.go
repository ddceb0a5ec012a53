// Package comments implements comments on blog posts.
package comments

import (
	"context"
	"time"

	"github.com/user/portfolio-go/auth"
	"github.com/user/portfolio-go/blog"
)

// Comment belongs to exactly one post and one author, both fixed at creation.
type Comment struct {
	ID        string      `json:"id" db:"id"`
	PostID    string      `json:"postId" db:"post_id"`
	Body      string      `json:"body" db:"body"`
	Author    auth.Author `json:"author" db:"author"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// OwnerID implements auth.Owned.
func (c Comment) OwnerID() string { return c.Author.ID }

// CommentRequest is the payload for creating or editing a comment.
type CommentRequest struct {
	Body string `json:"body" validate:"required,max=2000" example:"Nice post!"`
}

// Store persists comments.
type Store interface {
	// ListByPost returns the post's comments, oldest first.
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
	FindByID(ctx context.Context, id string) (Comment, bool, error)
	// Create inserts the comment after checking that its author exists.
	Create(ctx context.Context, comment *Comment) error
	Save(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, id string) error
}

// PostFinder is the part of the post store comments need.
type PostFinder interface {
	FindByID(ctx context.Context, id string) (blog.Post, bool, error)
}
