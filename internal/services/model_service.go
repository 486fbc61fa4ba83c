package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"aiwriter/internal/assets"
	"aiwriter/internal/models"
	"aiwriter/internal/repositories"
)

type ModelConfigService interface {
	Startup(ctx context.Context) error
	ListModelGroups() ([]models.LLMModelGroup, error)
	SetModelEnabled(modelKey string, enabled bool) (*models.LLMModel, error)
	SetProviderEnabled(provider string, enabled bool) ([]models.LLMModel, error)
	GetModel(modelKey string) (*models.LLMModel, error)
	// DefaultModel returns the first enabled model in catalog order.
	DefaultModel() (*models.LLMModel, error)
}

type modelConfigService struct {
	repo repositories.ModelSettingRepository
	data []byte
	ctx  context.Context

	mu            sync.RWMutex
	providerOrder []string
	providerNames map[string]string
	modelOrder    []string
	models        map[string]*catalogModel
	settings      map[string]bool
}

type catalogModel struct {
	Key         string
	ProviderID  string
	Provider    string
	DisplayName string
	APIName     string
	MaxTokens   int
}

type rawModelFile struct {
	Providers []rawProvider `json:"providers"`
}

type rawProvider struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	Models      []rawModel `json:"models"`
}

type rawModel struct {
	DisplayName string `json:"displayName"`
	APIName     string `json:"apiName"`
	MaxTokens   int    `json:"maxTokens,omitempty"`
}

// NewModelConfigService builds the catalog from the embedded models asset.
func NewModelConfigService(repo repositories.ModelSettingRepository) ModelConfigService {
	return NewModelConfigServiceFrom(repo, assets.ModelsData)
}

// NewModelConfigServiceFrom builds the catalog from raw JSON.
func NewModelConfigServiceFrom(repo repositories.ModelSettingRepository, data []byte) ModelConfigService {
	return &modelConfigService{
		repo:          repo,
		data:          data,
		models:        make(map[string]*catalogModel),
		settings:      make(map[string]bool),
		providerNames: make(map[string]string),
	}
}

func (s *modelConfigService) Startup(ctx context.Context) error {
	s.ctx = ctx

	var parsed rawModelFile
	if err := json.Unmarshal(s.data, &parsed); err != nil {
		return fmt.Errorf("parse models asset: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.providerOrder = make([]string, 0, len(parsed.Providers))
	for _, provider := range parsed.Providers {
		providerID := strings.TrimSpace(provider.ID)
		if providerID == "" {
			continue
		}
		providerName := strings.TrimSpace(provider.DisplayName)
		s.providerNames[providerID] = providerName
		s.providerOrder = append(s.providerOrder, providerID)
		for _, mdl := range provider.Models {
			key := computeModelKey(providerID, mdl)
			if _, dup := s.models[key]; !dup {
				s.modelOrder = append(s.modelOrder, key)
			}
			s.models[key] = &catalogModel{
				Key:         key,
				ProviderID:  providerID,
				Provider:    providerName,
				DisplayName: strings.TrimSpace(mdl.DisplayName),
				APIName:     strings.TrimSpace(mdl.APIName),
				MaxTokens:   mdl.MaxTokens,
			}
		}
	}

	// Load existing toggles and seed the rest as enabled.
	existing, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load model settings: %w", err)
	}
	for _, setting := range existing {
		s.settings[setting.ModelKey] = setting.Enabled
	}
	for _, key := range s.modelOrder {
		if _, ok := s.settings[key]; ok {
			continue
		}
		if _, err := s.repo.Upsert(ctx, key, s.models[key].ProviderID, true); err != nil {
			return fmt.Errorf("seed model setting for %s: %w", key, err)
		}
		s.settings[key] = true
	}

	return nil
}

func (s *modelConfigService) ListModelGroups() ([]models.LLMModelGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]models.LLMModelGroup, 0, len(s.providerOrder))
	for _, providerID := range s.providerOrder {
		group := models.LLMModelGroup{
			ProviderID:   providerID,
			ProviderName: s.providerName(providerID),
		}
		var modelsForProvider []models.LLMModel
		for _, mdl := range s.models {
			if mdl.ProviderID != providerID {
				continue
			}
			modelsForProvider = append(modelsForProvider, s.toLLMModel(mdl))
		}
		sortByDisplayName(modelsForProvider)
		group.Models = modelsForProvider
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *modelConfigService) SetModelEnabled(modelKey string, enabled bool) (*models.LLMModel, error) {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, ok := s.models[modelKey]
	if !ok {
		return nil, fmt.Errorf("model %s not found", modelKey)
	}

	if _, err := s.repo.Upsert(s.context(), modelKey, catalog.ProviderID, enabled); err != nil {
		return nil, err
	}
	s.settings[modelKey] = enabled
	model := s.toLLMModel(catalog)
	return &model, nil
}

func (s *modelConfigService) SetProviderEnabled(provider string, enabled bool) ([]models.LLMModel, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SetProviderEnabled(s.context(), provider, enabled); err != nil {
		return nil, err
	}

	updated := make([]models.LLMModel, 0)
	for _, mdl := range s.models {
		if mdl.ProviderID != provider {
			continue
		}
		s.settings[mdl.Key] = enabled
		updated = append(updated, s.toLLMModel(mdl))
	}
	sortByDisplayName(updated)
	return updated, nil
}

func (s *modelConfigService) GetModel(modelKey string) (*models.LLMModel, error) {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	catalog, ok := s.models[modelKey]
	if !ok {
		return nil, fmt.Errorf("model %s not found", modelKey)
	}
	model := s.toLLMModel(catalog)
	return &model, nil
}

func (s *modelConfigService) DefaultModel() (*models.LLMModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, key := range s.modelOrder {
		if s.settings[key] {
			model := s.toLLMModel(s.models[key])
			return &model, nil
		}
	}
	return nil, fmt.Errorf("no enabled model")
}

func (s *modelConfigService) context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *modelConfigService) providerName(providerID string) string {
	if name, ok := s.providerNames[providerID]; ok && strings.TrimSpace(name) != "" {
		return name
	}
	return providerID
}

func (s *modelConfigService) toLLMModel(mdl *catalogModel) models.LLMModel {
	return models.LLMModel{
		Key:          mdl.Key,
		DisplayName:  mdl.DisplayName,
		APIName:      mdl.APIName,
		ProviderID:   mdl.ProviderID,
		ProviderName: mdl.Provider,
		MaxTokens:    mdl.MaxTokens,
		Enabled:      s.settings[mdl.Key],
	}
}

func sortByDisplayName(list []models.LLMModel) {
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].DisplayName) < strings.ToLower(list[j].DisplayName)
	})
}

func computeModelKey(providerID string, mdl rawModel) string {
	return strings.TrimSpace(providerID) + "|" + strings.TrimSpace(mdl.APIName)
}
