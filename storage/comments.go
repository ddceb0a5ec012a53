package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/user/portfolio-go/comments"
)

// CommentStore implements comments.Store.
type CommentStore struct{ base }

var _ comments.Store = (*CommentStore)(nil)

const selectComments = `
	SELECT c.id, c.post_id, c.body, c.created_at, c.updated_at,
	       u.id AS "author.id", u.username AS "author.username"
	FROM comments c
	JOIN users u ON u.id = c.author_id`

// ListByPost returns a post's comments, oldest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID string) ([]comments.Comment, error) {
	list := []comments.Comment{}
	query := s.db.Rebind(selectComments + ` WHERE c.post_id = ? ORDER BY c.created_at, c.id`)
	if err := s.db.SelectContext(ctx, &list, query, postID); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return list, nil
}

// FindByID returns a comment with its author populated.
func (s *CommentStore) FindByID(ctx context.Context, id string) (comments.Comment, bool, error) {
	var comment comments.Comment
	ok, err := found(s.db.GetContext(ctx, &comment, s.db.Rebind(selectComments+` WHERE c.id = ?`), id))
	if err != nil {
		return comments.Comment{}, false, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, ok, nil
}

// Create inserts the comment once its author is known to exist.
func (s *CommentStore) Create(ctx context.Context, comment *comments.Comment) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		username, err := ownerUsername(ctx, tx, comment.Author.ID)
		if err != nil {
			return err
		}

		comment.Author.Username = username
		comment.CreatedAt = now()
		comment.UpdatedAt = comment.CreatedAt
		_, err = tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO comments (id, post_id, author_id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`),
			comment.ID, comment.PostID, comment.Author.ID, comment.Body, comment.CreatedAt, comment.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}
		return nil
	})
}

// Save writes the body.
func (s *CommentStore) Save(ctx context.Context, comment *comments.Comment) error {
	comment.UpdatedAt = now()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE comments SET body = ?, updated_at = ? WHERE id = ?`),
		comment.Body, comment.UpdatedAt, comment.ID)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

// Delete removes one comment.
func (s *CommentStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM comments WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
