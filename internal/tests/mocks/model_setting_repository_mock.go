package mocks

import (
	"context"

	"aiwriter/internal/models"
)

type ModelSettingRepositoryMock struct {
	ListFunc               func(ctx context.Context) ([]models.ModelSetting, error)
	UpsertFunc             func(ctx context.Context, modelKey, provider string, enabled bool) (*models.ModelSetting, error)
	SetProviderEnabledFunc func(ctx context.Context, provider string, enabled bool) error
}

func (m *ModelSettingRepositoryMock) List(ctx context.Context) ([]models.ModelSetting, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []models.ModelSetting{}, nil
}

func (m *ModelSettingRepositoryMock) Upsert(ctx context.Context, modelKey, provider string, enabled bool) (*models.ModelSetting, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, modelKey, provider, enabled)
	}
	return &models.ModelSetting{ModelKey: modelKey, Provider: provider, Enabled: enabled}, nil
}

func (m *ModelSettingRepositoryMock) SetProviderEnabled(ctx context.Context, provider string, enabled bool) error {
	if m.SetProviderEnabledFunc != nil {
		return m.SetProviderEnabledFunc(ctx, provider, enabled)
	}
	return nil
}
