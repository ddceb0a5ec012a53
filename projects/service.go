package projects

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/user/portfolio-go/apperror"
	"github.com/user/portfolio-go/auth"
)

// Service implements the project use cases.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns every project, newest first.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	projects, err := s.store.List(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list projects", err)
	}
	return projects, nil
}

// Get returns a single project or NotFound.
func (s *Service) Get(ctx context.Context, id string) (Project, error) {
	project, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Project{}, apperror.NewDatabaseError("failed to get project", err)
	}
	if !found {
		return Project{}, apperror.NewNotFoundError("project not found", nil)
	}
	return project, nil
}

// Create stores a project owned by the caller. The route restricts it to administrators.
func (s *Service) Create(ctx context.Context, req CreateProjectRequest) (Project, error) {
	caller, ok := auth.FromContext(ctx)
	if !ok {
		return Project{}, apperror.NewUnauthorizedError(auth.MsgNoToken, nil)
	}

	project := Project{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		RepoURL:     req.RepoURL,
		LiveURL:     req.LiveURL,
		Owner:       auth.Author{ID: caller.ID},
	}
	if err := s.store.Create(ctx, &project); err != nil {
		if errors.Is(err, auth.ErrIdentityNotFound) {
			return Project{}, apperror.NewBadRequestError("project owner does not exist", err)
		}
		return Project{}, apperror.NewDatabaseError("failed to create project", err)
	}
	s.logger.InfoContext(ctx, "project created", "project_id", project.ID)
	return project, nil
}

// Update applies a partial update. Only the owner or an administrator may do so.
func (s *Service) Update(ctx context.Context, id string, req UpdateProjectRequest) (Project, error) {
	project, err := auth.LoadOwned(ctx, s.store.FindByID, id, "project")
	if err != nil {
		return Project{}, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&project.Title, req.Title)
	apply(&project.Description, req.Description)
	apply(&project.ImageURL, req.ImageURL)
	apply(&project.RepoURL, req.RepoURL)
	apply(&project.LiveURL, req.LiveURL)

	if err := s.store.Save(ctx, &project); err != nil {
		return Project{}, apperror.NewDatabaseError("failed to update project", err)
	}
	return project, nil
}

// Delete removes a project. Only the owner or an administrator may do so.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := auth.LoadOwned(ctx, s.store.FindByID, id, "project"); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return apperror.NewDatabaseError("failed to delete project", err)
	}
	s.logger.InfoContext(ctx, "project deleted", "project_id", id)
	return nil
}
