package usecase

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
	"github.com/mmuslimabdulj/goat-collab/internal/store"
)

// ProjectDetails is what a member loads before joining the room
type ProjectDetails struct {
	ID       string          `json:"_id"`
	Name     string          `json:"name"`
	Users    []domain.User   `json:"users"`
	FileTree domain.FileTree `json:"fileTree"`
}

// Projects serves read access to projects
type Projects struct {
	projects ProjectStore
}

// NewProjects creates the project read use case
func NewProjects(projects ProjectStore) *Projects {
	return &Projects{projects: projects}
}

// Get returns the project with its members resolved. Only members may read it.
func (p *Projects) Get(ctx context.Context, projectID string, requester domain.User) (ProjectDetails, error) {
	project, err := p.projects.FindProject(ctx, projectID)
	if err != nil {
		return ProjectDetails{}, err
	}
	if !lo.Contains(project.Members, requester.ID) {
		return ProjectDetails{}, fmt.Errorf("read project %s: %w", projectID, store.ErrForbidden)
	}

	users, err := p.projects.Members(ctx, projectID)
	if err != nil {
		return ProjectDetails{}, err
	}
	tree := project.FileTree
	if tree == nil {
		tree = domain.FileTree{}
	}
	return ProjectDetails{
		ID:       project.ID,
		Name:     project.Name,
		Users:    lo.Ternary(users == nil, []domain.User{}, users),
		FileTree: tree,
	}, nil
}
