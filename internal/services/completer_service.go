package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"aiwriter/internal/llm/client"
	"aiwriter/internal/models"
)

// APIKeyStore resolves provider API keys.
type APIKeyStore interface {
	GetApiKey(provider string) (string, error)
}

// CompleterFactory hands out LLM clients for catalog models.
type CompleterFactory interface {
	ForModel(ctx context.Context, modelKey string) (client.Completer, *models.LLMModel, error)
}

type completerFactory struct {
	modelConfigs ModelConfigService
	keys         APIKeyStore
	baseURLs     map[string]string

	mu      sync.Mutex
	clients map[string]client.Completer // model key -> client
}

// NewCompleterFactory builds clients lazily and reuses them per model.
// baseURLs optionally overrides the endpoint per provider id.
func NewCompleterFactory(modelConfigs ModelConfigService, keys APIKeyStore, baseURLs map[string]string) CompleterFactory {
	return &completerFactory{
		modelConfigs: modelConfigs,
		keys:         keys,
		baseURLs:     baseURLs,
		clients:      make(map[string]client.Completer),
	}
}

func (f *completerFactory) ForModel(ctx context.Context, modelKey string) (client.Completer, *models.LLMModel, error) {
	var (
		model *models.LLMModel
		err   error
	)
	if strings.TrimSpace(modelKey) == "" {
		model, err = f.modelConfigs.DefaultModel()
	} else {
		model, err = f.modelConfigs.GetModel(modelKey)
	}
	if err != nil {
		return nil, nil, err
	}
	if !model.Enabled {
		return nil, nil, fmt.Errorf("model %s is disabled", model.DisplayName)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.clients[model.Key]; ok {
		return c, model, nil
	}
	c, err := f.instantiate(ctx, model)
	if err != nil {
		return nil, nil, err
	}
	f.clients[model.Key] = c
	return c, model, nil
}

func (f *completerFactory) instantiate(ctx context.Context, model *models.LLMModel) (client.Completer, error) {
	providerID := strings.TrimSpace(model.ProviderID)
	if providerID == "" {
		return nil, fmt.Errorf("model %s is missing provider information", model.DisplayName)
	}
	if providerID == "mock" {
		return &client.MockClient{}, nil
	}

	if f.keys == nil {
		return nil, fmt.Errorf("no API key store configured for %s", providerID)
	}
	apiKey, err := f.keys.GetApiKey(providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get API key for %s: %w", providerID, err)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key for %s is not configured", providerID)
	}

	var (
		llmClient *client.LLMClient
		createErr error
	)
	switch providerID {
	case "anthropic":
		llmClient, createErr = client.NewClaudeClient(ctx, apiKey, client.ClaudeModelOptions{
			Model:     model.APIName,
			MaxTokens: model.MaxTokens,
			BaseURL:   f.baseURLs[providerID],
		})
	case "openai":
		llmClient, createErr = client.NewOpenAIClient(ctx, apiKey, client.OpenAIModelOptions{
			Model:   model.APIName,
			BaseURL: f.baseURLs[providerID],
		})
	case "gemini":
		llmClient, createErr = client.NewGeminiClient(ctx, apiKey, client.GeminiModelOptions{
			Model: model.APIName,
		})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerID)
	}
	if createErr != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", providerID, createErr)
	}
	return llmClient, nil
}
