package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aiwriter/internal/models"
	"aiwriter/internal/repositories"
)

// SettingsInput is the editable part of the writer settings.
type SettingsInput struct {
	TrackerID                   uint   `json:"tracker_id"`
	PromptCustomFieldID         uint   `json:"prompt_custom_field_id"`
	PromptTemplateCustomFieldID uint   `json:"prompt_template_custom_field_id"`
	SystemPrompt                string `json:"system_prompt"`
	ModelKey                    string `json:"model_key"`
}

type SettingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, in SettingsInput) (*models.Settings, error)
	Startup(ctx context.Context)
}

type settingsService struct {
	settings     repositories.SettingsRepository
	modelConfigs ModelConfigService
	context      context.Context
}

func (s *settingsService) Startup(ctx context.Context) {
	s.context = ctx
}

// NewSettingsService validates model keys against modelConfigs when it is non-nil.
func NewSettingsService(settings repositories.SettingsRepository, modelConfigs ModelConfigService) SettingsService {
	return &settingsService{settings: settings, modelConfigs: modelConfigs}
}

func (s *settingsService) Get(ctx context.Context) (*models.Settings, error) {
	return s.settings.Get(ctx)
}

func (s *settingsService) Update(ctx context.Context, in SettingsInput) (*models.Settings, error) {
	if in.TrackerID == 0 {
		return nil, errors.New("tracker is required")
	}
	if in.PromptCustomFieldID == 0 {
		return nil, errors.New("prompt custom field is required")
	}
	if in.PromptTemplateCustomFieldID != 0 && in.PromptTemplateCustomFieldID == in.PromptCustomFieldID {
		return nil, errors.New("prompt template field must differ from the prompt field")
	}
	systemPrompt := strings.TrimSpace(in.SystemPrompt)
	if systemPrompt == "" {
		return nil, errors.New("system prompt is required")
	}
	modelKey := strings.TrimSpace(in.ModelKey)
	if modelKey != "" && s.modelConfigs != nil {
		if _, err := s.modelConfigs.GetModel(modelKey); err != nil {
			return nil, fmt.Errorf("service: %w", err)
		}
	}

	current, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	current.TrackerID = in.TrackerID
	current.PromptCustomFieldID = in.PromptCustomFieldID
	current.PromptTemplateCustomFieldID = in.PromptTemplateCustomFieldID
	current.SystemPrompt = systemPrompt
	current.ModelKey = modelKey

	if err := s.settings.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}
