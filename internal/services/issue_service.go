package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aiwriter/internal/models"
	"aiwriter/internal/repositories"
)

// IssueInput describes an issue to create.
type IssueInput struct {
	ProjectID    uint            `json:"project_id"`
	TrackerID    uint            `json:"tracker_id"`
	ParentID     *uint           `json:"parent_id,omitempty"`
	Subject      string          `json:"subject"`
	Description  string          `json:"description"`
	CustomFields map[uint]string `json:"custom_fields,omitempty"`
}

// IssueChanges describes an edit to an existing issue. Nil fields are left
// unchanged; a zero ParentID detaches the issue from its parent.
type IssueChanges struct {
	Subject      *string         `json:"subject,omitempty"`
	Description  *string         `json:"description,omitempty"`
	ParentID     *uint           `json:"parent_id,omitempty"`
	CustomFields map[uint]string `json:"custom_fields,omitempty"`
}

type IssueService interface {
	Create(ctx context.Context, author *models.User, in IssueInput) (*models.Issue, error)
	Get(ctx context.Context, id uint) (*models.Issue, error)
	// Update loads an issue, applies changes and saves it.
	Update(ctx context.Context, id uint, changes IssueChanges) (*models.Issue, error)
	// Save persists changes to an existing issue.
	Save(ctx context.Context, issue *models.Issue) error
}

type issueService struct {
	issues   repositories.IssueRepository
	projects repositories.ProjectRepository
	prompts  PromptService
}

func NewIssueService(issues repositories.IssueRepository, projects repositories.ProjectRepository, prompts PromptService) IssueService {
	return &issueService{issues: issues, projects: projects, prompts: prompts}
}

func (s *issueService) Create(ctx context.Context, author *models.User, in IssueInput) (*models.Issue, error) {
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return nil, errors.New("subject is required")
	}
	if in.TrackerID == 0 {
		return nil, errors.New("tracker is required")
	}
	project, err := s.projects.FindByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		if err := s.checkParent(ctx, *in.ParentID, 0, project.ID); err != nil {
			return nil, err
		}
	}

	issue := &models.Issue{
		ProjectID:   project.ID,
		Project:     project,
		TrackerID:   in.TrackerID,
		ParentID:    in.ParentID,
		Subject:     subject,
		Description: in.Description,
	}
	if author != nil {
		issue.AuthorID = author.ID
	}
	for fieldID, value := range in.CustomFields {
		issue.SetCustomValue(fieldID, value)
	}
	s.beforeSave(ctx, issue)

	// Project is only attached for the prompt fill; do not upsert it again.
	issue.Project = nil
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}
	issue.Project = project
	return issue, nil
}

func (s *issueService) Get(ctx context.Context, id uint) (*models.Issue, error) {
	return s.issues.Get(ctx, id)
}

func (s *issueService) Update(ctx context.Context, id uint, changes IssueChanges) (*models.Issue, error) {
	issue, err := s.issues.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if changes.Subject != nil {
		issue.Subject = strings.TrimSpace(*changes.Subject)
	}
	if changes.Description != nil {
		issue.Description = *changes.Description
	}
	if changes.ParentID != nil {
		if *changes.ParentID == 0 {
			issue.ParentID = nil
		} else {
			if err := s.checkParent(ctx, *changes.ParentID, issue.ID, issue.ProjectID); err != nil {
				return nil, err
			}
			parentID := *changes.ParentID
			issue.ParentID = &parentID
		}
	}
	for fieldID, value := range changes.CustomFields {
		issue.SetCustomValue(fieldID, value)
	}
	if err := s.Save(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *issueService) checkParent(ctx context.Context, parentID, issueID, projectID uint) error {
	if parentID == issueID {
		return errors.New("an issue cannot be its own parent")
	}
	parent, err := s.issues.Get(ctx, parentID)
	if err != nil {
		return fmt.Errorf("service: parent: %w", err)
	}
	if parent.ProjectID != projectID {
		return errors.New("parent issue belongs to another project")
	}
	return nil
}

func (s *issueService) Save(ctx context.Context, issue *models.Issue) error {
	if issue == nil || issue.ID == 0 {
		return errors.New("issue is required")
	}
	if strings.TrimSpace(issue.Subject) == "" {
		return errors.New("subject is required")
	}
	s.beforeSave(ctx, issue)
	return s.issues.Update(ctx, issue)
}

func (s *issueService) beforeSave(ctx context.Context, issue *models.Issue) {
	if s.prompts != nil {
		s.prompts.FillFromTemplate(ctx, issue)
	}
}
