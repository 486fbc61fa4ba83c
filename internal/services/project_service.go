package services

import (
	"context"
	"errors"
	"strings"

	"aiwriter/internal/models"
	"aiwriter/internal/repositories"
)

// ProjectService manages projects, their members and the reference data
// issues point at.
type ProjectService interface {
	Create(ctx context.Context, identifier, name, description string) (*models.Project, error)
	Get(ctx context.Context, id uint) (*models.Project, error)
	AddMember(ctx context.Context, projectID, userID uint, permissions ...string) (*models.Membership, error)
	CreateTracker(ctx context.Context, name string) (*models.Tracker, error)
	CreateCustomField(ctx context.Context, name string) (*models.CustomField, error)
}

type projectService struct {
	projects    repositories.ProjectRepository
	memberships repositories.MembershipRepository
	issues      repositories.IssueRepository
}

func NewProjectService(projects repositories.ProjectRepository, memberships repositories.MembershipRepository, issues repositories.IssueRepository) ProjectService {
	return &projectService{projects: projects, memberships: memberships, issues: issues}
}

func (s *projectService) Create(ctx context.Context, identifier, name, description string) (*models.Project, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errors.New("identifier is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name is required")
	}
	p := &models.Project{Identifier: identifier, Name: name, Description: description}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) Get(ctx context.Context, id uint) (*models.Project, error) {
	return s.projects.FindByID(ctx, id)
}

func (s *projectService) AddMember(ctx context.Context, projectID, userID uint, permissions ...string) (*models.Membership, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.memberships.Upsert(ctx, projectID, userID, permissions)
}

func (s *projectService) CreateTracker(ctx context.Context, name string) (*models.Tracker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("tracker name is required")
	}
	t := &models.Tracker{Name: name}
	if err := s.projects.CreateTracker(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *projectService) CreateCustomField(ctx context.Context, name string) (*models.CustomField, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("custom field name is required")
	}
	f := &models.CustomField{Name: name}
	if err := s.issues.CreateCustomField(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}
