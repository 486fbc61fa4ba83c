package mocks

import (
	"context"

	"aiwriter/internal/models"
)

type UserRepositoryMock struct {
	CreateFunc      func(ctx context.Context, u *models.User) error
	FindByIDFunc    func(ctx context.Context, id uint) (*models.User, error)
	FindByLoginFunc func(ctx context.Context, login string) (*models.User, error)
	ListFunc        func(ctx context.Context, limit, offset int) ([]models.User, error)
}

func (m *UserRepositoryMock) Create(ctx context.Context, u *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return nil
}

func (m *UserRepositoryMock) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *UserRepositoryMock) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	if m.FindByLoginFunc != nil {
		return m.FindByLoginFunc(ctx, login)
	}
	return nil, nil
}

func (m *UserRepositoryMock) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []models.User{}, nil
}
