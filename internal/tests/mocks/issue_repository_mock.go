package mocks

import (
	"context"

	"aiwriter/internal/models"
)

type IssueRepositoryMock struct {
	CreateFunc            func(ctx context.Context, issue *models.Issue) error
	GetFunc               func(ctx context.Context, id uint) (*models.Issue, error)
	UpdateFunc            func(ctx context.Context, issue *models.Issue) error
	ListByProjectFunc     func(ctx context.Context, projectID uint) ([]models.Issue, error)
	CreateCustomFieldFunc func(ctx context.Context, field *models.CustomField) error
}

func (m *IssueRepositoryMock) Create(ctx context.Context, issue *models.Issue) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, issue)
	}
	return nil
}

func (m *IssueRepositoryMock) Get(ctx context.Context, id uint) (*models.Issue, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *IssueRepositoryMock) Update(ctx context.Context, issue *models.Issue) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, issue)
	}
	return nil
}

func (m *IssueRepositoryMock) ListByProject(ctx context.Context, projectID uint) ([]models.Issue, error) {
	if m.ListByProjectFunc != nil {
		return m.ListByProjectFunc(ctx, projectID)
	}
	return []models.Issue{}, nil
}

func (m *IssueRepositoryMock) CreateCustomField(ctx context.Context, field *models.CustomField) error {
	if m.CreateCustomFieldFunc != nil {
		return m.CreateCustomFieldFunc(ctx, field)
	}
	return nil
}
