package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/user/portfolio-go/blog"
)

// PostStore implements blog.Store.
type PostStore struct{ base }

var _ blog.Store = (*PostStore)(nil)

const selectPosts = `
	SELECT p.id, p.title, p.content, p.created_at, p.updated_at,
	       u.id AS "author.id", u.username AS "author.username"
	FROM posts p
	JOIN users u ON u.id = p.author_id`

// List returns all posts, newest first.
func (s *PostStore) List(ctx context.Context) ([]blog.Post, error) {
	posts := []blog.Post{}
	if err := s.db.SelectContext(ctx, &posts, selectPosts+` ORDER BY p.created_at DESC, p.id`); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// FindByID returns the post with its author populated.
func (s *PostStore) FindByID(ctx context.Context, id string) (blog.Post, bool, error) {
	var post blog.Post
	ok, err := found(s.db.GetContext(ctx, &post, s.db.Rebind(selectPosts+` WHERE p.id = ?`), id))
	if err != nil {
		return blog.Post{}, false, fmt.Errorf("failed to get post: %w", err)
	}
	return post, ok, nil
}

// Create inserts the post once its author is known to exist.
func (s *PostStore) Create(ctx context.Context, post *blog.Post) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		username, err := ownerUsername(ctx, tx, post.Author.ID)
		if err != nil {
			return err
		}

		post.Author.Username = username
		post.CreatedAt = now()
		post.UpdatedAt = post.CreatedAt
		_, err = tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO posts (id, title, content, author_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`),
			post.ID, post.Title, post.Content, post.Author.ID, post.CreatedAt, post.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert post: %w", err)
		}
		return nil
	})
}

// Save writes title and content. The author is never changed.
func (s *PostStore) Save(ctx context.Context, post *blog.Post) error {
	post.UpdatedAt = now()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE posts SET title = ?, content = ?, updated_at = ? WHERE id = ?`),
		post.Title, post.Content, post.UpdatedAt, post.ID)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// DeleteWithComments deletes the post's comments, then the post, atomically.
func (s *PostStore) DeleteWithComments(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM comments WHERE post_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete comments of post: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM posts WHERE id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		return nil
	})
}
