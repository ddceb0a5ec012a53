// Package projects implements the portfolio project listing. Anyone may read it,
// administrators create entries, and the owner or an administrator may change them.
package projects

import (
	"context"
	"time"

	"github.com/user/portfolio-go/auth"
)

// Project is a portfolio entry.
type Project struct {
	ID          string      `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	ImageURL    string      `json:"imageUrl,omitempty" db:"image_url"`
	RepoURL     string      `json:"repoUrl,omitempty" db:"repo_url"`
	LiveURL     string      `json:"liveUrl,omitempty" db:"live_url"`
	Owner       auth.Author `json:"user" db:"owner"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// OwnerID implements auth.Owned.
func (p Project) OwnerID() string { return p.Owner.ID }

// CreateProjectRequest is the payload for POST /api/projects.
type CreateProjectRequest struct {
	Title       string `json:"title" validate:"required,max=200" example:"portfolio-go"`
	Description string `json:"description" validate:"required" example:"Personal site backend"`
	ImageURL    string `json:"imageUrl,omitempty" validate:"omitempty,url" example:"https://example.com/shot.png"`
	RepoURL     string `json:"repoUrl,omitempty" validate:"omitempty,url" example:"https://github.com/user/portfolio-go"`
	LiveURL     string `json:"liveUrl,omitempty" validate:"omitempty,url" example:"https://example.com"`
}

// UpdateProjectRequest is a partial update; absent fields are left unchanged.
type UpdateProjectRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=1"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	RepoURL     *string `json:"repoUrl,omitempty" validate:"omitempty,url"`
	LiveURL     *string `json:"liveUrl,omitempty" validate:"omitempty,url"`
}

// Store persists projects.
type Store interface {
	// List returns all projects, newest first.
	List(ctx context.Context) ([]Project, error)
	FindByID(ctx context.Context, id string) (Project, bool, error)
	// Create inserts the project after checking that its owner exists.
	Create(ctx context.Context, project *Project) error
	Save(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id string) error
}
