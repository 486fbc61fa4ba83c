package mocks

import (
	"context"

	"aiwriter/internal/llm/client"
	"aiwriter/internal/models"
)

type PermissionServiceMock struct {
	AllowedFunc         func(ctx context.Context, user *models.User, permission string, projectID uint) (bool, error)
	WriterAvailableFunc func(ctx context.Context, user *models.User, issue *models.Issue) (bool, error)
}

func (m *PermissionServiceMock) Allowed(ctx context.Context, user *models.User, permission string, projectID uint) (bool, error) {
	if m.AllowedFunc != nil {
		return m.AllowedFunc(ctx, user, permission, projectID)
	}
	return true, nil
}

func (m *PermissionServiceMock) WriterAvailable(ctx context.Context, user *models.User, issue *models.Issue) (bool, error) {
	if m.WriterAvailableFunc != nil {
		return m.WriterAvailableFunc(ctx, user, issue)
	}
	return true, nil
}

type CompleterFactoryMock struct {
	ForModelFunc func(ctx context.Context, modelKey string) (client.Completer, *models.LLMModel, error)
}

func (m *CompleterFactoryMock) ForModel(ctx context.Context, modelKey string) (client.Completer, *models.LLMModel, error) {
	if m.ForModelFunc != nil {
		return m.ForModelFunc(ctx, modelKey)
	}
	return &client.MockClient{}, &models.LLMModel{Key: "mock|echo", ProviderID: "mock", DisplayName: "Echo", Enabled: true}, nil
}

type APIKeyStoreMock struct {
	Keys map[string]string
	Err  error
}

func (m *APIKeyStoreMock) GetApiKey(provider string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Keys[provider], nil
}
