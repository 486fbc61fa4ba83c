package mocks

import (
	"context"

	"aiwriter/internal/models"
)

type ProjectRepositoryMock struct {
	CreateFunc           func(ctx context.Context, p *models.Project) error
	FindByIDFunc         func(ctx context.Context, id uint) (*models.Project, error)
	FindByIdentifierFunc func(ctx context.Context, identifier string) (*models.Project, error)
	CreateTrackerFunc    func(ctx context.Context, t *models.Tracker) error
}

func (m *ProjectRepositoryMock) Create(ctx context.Context, p *models.Project) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return nil
}

func (m *ProjectRepositoryMock) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *ProjectRepositoryMock) FindByIdentifier(ctx context.Context, identifier string) (*models.Project, error) {
	if m.FindByIdentifierFunc != nil {
		return m.FindByIdentifierFunc(ctx, identifier)
	}
	return nil, nil
}

func (m *ProjectRepositoryMock) CreateTracker(ctx context.Context, t *models.Tracker) error {
	if m.CreateTrackerFunc != nil {
		return m.CreateTrackerFunc(ctx, t)
	}
	return nil
}
