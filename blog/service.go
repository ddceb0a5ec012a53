package blog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/user/portfolio-go/apperror"
	"github.com/user/portfolio-go/auth"
)

// Service implements the post use cases on top of a Store.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns every post, newest first.
func (s *Service) List(ctx context.Context) ([]Post, error) {
	posts, err := s.store.List(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts", err)
	}
	return posts, nil
}

// Get returns a single post or NotFound.
func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	post, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Post{}, apperror.NewDatabaseError("failed to get post", err)
	}
	if !found {
		return Post{}, apperror.NewNotFoundError("post not found", nil)
	}
	return post, nil
}

// Create stores a new post owned by the caller found in ctx.
func (s *Service) Create(ctx context.Context, req CreatePostRequest) (Post, error) {
	caller, ok := auth.FromContext(ctx)
	if !ok {
		return Post{}, apperror.NewUnauthorizedError(auth.MsgNoToken, nil)
	}

	post := Post{
		ID:      uuid.NewString(),
		Title:   req.Title,
		Content: req.Content,
		Author:  auth.Author{ID: caller.ID},
	}
	if err := s.store.Create(ctx, &post); err != nil {
		if errors.Is(err, auth.ErrIdentityNotFound) {
			return Post{}, apperror.NewBadRequestError("post author does not exist", err)
		}
		return Post{}, apperror.NewDatabaseError("failed to create post", err)
	}

	s.logger.InfoContext(ctx, "post created", "post_id", post.ID, "author_id", caller.ID)
	return post, nil
}

// Update applies a partial update. Only the author or an administrator may do so.
func (s *Service) Update(ctx context.Context, id string, req UpdatePostRequest) (Post, error) {
	post, err := auth.LoadOwned(ctx, s.store.FindByID, id, "post")
	if err != nil {
		return Post{}, err
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if err := s.store.Save(ctx, &post); err != nil {
		return Post{}, apperror.NewDatabaseError("failed to update post", err)
	}
	return post, nil
}

// Delete removes the post and its comments. Only the author or an administrator may do so.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := auth.LoadOwned(ctx, s.store.FindByID, id, "post"); err != nil {
		return err
	}
	if err := s.store.DeleteWithComments(ctx, id); err != nil {
		return apperror.NewDatabaseError("failed to delete post", err)
	}
	s.logger.InfoContext(ctx, "post deleted", "post_id", id)
	return nil
}
