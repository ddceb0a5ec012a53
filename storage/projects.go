package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/user/portfolio-go/projects"
)

// ProjectStore implements projects.Store.
type ProjectStore struct{ base }

var _ projects.Store = (*ProjectStore)(nil)

const selectProjects = `
	SELECT p.id, p.title, p.description, p.image_url, p.repo_url, p.live_url, p.created_at, p.updated_at,
	       u.id AS "owner.id", u.username AS "owner.username"
	FROM projects p
	JOIN users u ON u.id = p.owner_id`

// List returns all projects, newest first.
func (s *ProjectStore) List(ctx context.Context) ([]projects.Project, error) {
	list := []projects.Project{}
	if err := s.db.SelectContext(ctx, &list, selectProjects+` ORDER BY p.created_at DESC, p.id`); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return list, nil
}

// FindByID returns a project with its owner populated.
func (s *ProjectStore) FindByID(ctx context.Context, id string) (projects.Project, bool, error) {
	var project projects.Project
	ok, err := found(s.db.GetContext(ctx, &project, s.db.Rebind(selectProjects+` WHERE p.id = ?`), id))
	if err != nil {
		return projects.Project{}, false, fmt.Errorf("failed to get project: %w", err)
	}
	return project, ok, nil
}

// Create inserts the project once its owner is known to exist.
func (s *ProjectStore) Create(ctx context.Context, project *projects.Project) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		username, err := ownerUsername(ctx, tx, project.Owner.ID)
		if err != nil {
			return err
		}

		project.Owner.Username = username
		project.CreatedAt = now()
		project.UpdatedAt = project.CreatedAt
		_, err = tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO projects (id, title, description, image_url, repo_url, live_url, owner_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			project.ID, project.Title, project.Description, project.ImageURL, project.RepoURL, project.LiveURL,
			project.Owner.ID, project.CreatedAt, project.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert project: %w", err)
		}
		return nil
	})
}

// Save writes every mutable field. The owner is never changed.
func (s *ProjectStore) Save(ctx context.Context, project *projects.Project) error {
	project.UpdatedAt = now()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE projects SET title = ?, description = ?, image_url = ?, repo_url = ?, live_url = ?, updated_at = ? WHERE id = ?`),
		project.Title, project.Description, project.ImageURL, project.RepoURL, project.LiveURL, project.UpdatedAt, project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// Delete removes one project.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM projects WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
