package comments

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/user/portfolio-go/apperror"
	"github.com/user/portfolio-go/auth"
)

// Service implements the comment use cases.
type Service struct {
	store  Store
	posts  PostFinder
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(store Store, posts PostFinder, logger *slog.Logger) *Service {
	return &Service{store: store, posts: posts, logger: logger}
}

func (s *Service) requirePost(ctx context.Context, postID string) error {
	_, found, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return apperror.NewDatabaseError("failed to get post", err)
	}
	if !found {
		return apperror.NewNotFoundError("post not found", nil)
	}
	return nil
}

// List returns the comments of a post, oldest first.
func (s *Service) List(ctx context.Context, postID string) ([]Comment, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListByPost(ctx, postID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list comments", err)
	}
	return comments, nil
}

// Create adds a comment by the caller to an existing post.
func (s *Service) Create(ctx context.Context, postID string, req CommentRequest) (Comment, error) {
	caller, ok := auth.FromContext(ctx)
	if !ok {
		return Comment{}, apperror.NewUnauthorizedError(auth.MsgNoToken, nil)
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return Comment{}, err
	}

	comment := Comment{
		ID:     uuid.NewString(),
		PostID: postID,
		Body:   req.Body,
		Author: auth.Author{ID: caller.ID},
	}
	if err := s.store.Create(ctx, &comment); err != nil {
		if errors.Is(err, auth.ErrIdentityNotFound) {
			return Comment{}, apperror.NewBadRequestError("comment author does not exist", err)
		}
		return Comment{}, apperror.NewDatabaseError("failed to create comment", err)
	}
	return comment, nil
}

// Update edits the body. Only the author or an administrator may do so.
func (s *Service) Update(ctx context.Context, postID, id string, req CommentRequest) (Comment, error) {
	comment, err := auth.LoadOwned(ctx, s.finderFor(postID), id, "comment")
	if err != nil {
		return Comment{}, err
	}
	comment.Body = req.Body
	if err := s.store.Save(ctx, &comment); err != nil {
		return Comment{}, apperror.NewDatabaseError("failed to update comment", err)
	}
	return comment, nil
}

// Delete removes a comment. Only the author or an administrator may do so.
func (s *Service) Delete(ctx context.Context, postID, id string) error {
	if _, err := auth.LoadOwned(ctx, s.finderFor(postID), id, "comment"); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return apperror.NewDatabaseError("failed to delete comment", err)
	}
	s.logger.InfoContext(ctx, "comment deleted", "comment_id", id, "post_id", postID)
	return nil
}

// finderFor scopes comment lookups to one post: a comment of another post is not found.
func (s *Service) finderFor(postID string) func(context.Context, string) (Comment, bool, error) {
	return func(ctx context.Context, id string) (Comment, bool, error) {
		comment, found, err := s.store.FindByID(ctx, id)
		if err != nil || !found {
			return Comment{}, false, err
		}
		if comment.PostID != postID {
			return Comment{}, false, nil
		}
		return comment, true, nil
	}
}
