package mocks

import (
	"context"

	"aiwriter/internal/models"
)

// SettingsRepositoryMock serves Settings (or a zero row) unless GetFunc is set.
type SettingsRepositoryMock struct {
	Settings   models.Settings
	GetFunc    func(ctx context.Context) (*models.Settings, error)
	UpdateFunc func(ctx context.Context, s *models.Settings) error
}

func (m *SettingsRepositoryMock) Get(ctx context.Context) (*models.Settings, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	s := m.Settings
	return &s, nil
}

func (m *SettingsRepositoryMock) Update(ctx context.Context, s *models.Settings) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, s)
	}
	m.Settings = *s
	return nil
}
