package mocks

import (
	"context"

	"aiwriter/internal/models"
)

type DraftRepositoryMock struct {
	CreateFunc        func(ctx context.Context, d *models.Draft) error
	GetFunc           func(ctx context.Context, id uint) (*models.Draft, error)
	UpdateContentFunc func(ctx context.Context, id uint, content string) (*models.Draft, error)
	ApplyFunc         func(ctx context.Context, id uint) (*models.Draft, error)
	ListByIssueFunc   func(ctx context.Context, issueID uint) ([]models.Draft, error)
}

func (m *DraftRepositoryMock) Create(ctx context.Context, d *models.Draft) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, d)
	}
	return nil
}

func (m *DraftRepositoryMock) Get(ctx context.Context, id uint) (*models.Draft, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *DraftRepositoryMock) UpdateContent(ctx context.Context, id uint, content string) (*models.Draft, error) {
	if m.UpdateContentFunc != nil {
		return m.UpdateContentFunc(ctx, id, content)
	}
	return nil, nil
}

func (m *DraftRepositoryMock) Apply(ctx context.Context, id uint) (*models.Draft, error) {
	if m.ApplyFunc != nil {
		return m.ApplyFunc(ctx, id)
	}
	return nil, nil
}

func (m *DraftRepositoryMock) ListByIssue(ctx context.Context, issueID uint) ([]models.Draft, error) {
	if m.ListByIssueFunc != nil {
		return m.ListByIssueFunc(ctx, issueID)
	}
	return []models.Draft{}, nil
}
