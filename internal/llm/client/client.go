package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

const defaultMaxTokens = 2048

// ErrEmptyCompletion is returned when the model answered with no text.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// Completer produces one completion for a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMClient wraps an eino chat model for single-shot draft generation.
type LLMClient struct {
	chatModel model.BaseChatModel
	provider  string
	modelName string
}

var _ Completer = (*LLMClient)(nil)

type OpenAIModelOptions struct {
	Model   string
	BaseURL string
}

type ClaudeModelOptions struct {
	Model     string
	MaxTokens int
	BaseURL   string
}

type GeminiModelOptions struct {
	Model string
}

func NewOpenAIClient(ctx context.Context, key string, opts OpenAIModelOptions) (*LLMClient, error) {
	modelName := strings.TrimSpace(opts.Model)
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  key,
		Model:   modelName,
		BaseURL: strings.TrimSpace(opts.BaseURL),
	})
	if err != nil {
		slog.Error("creating OpenAI client", "error", err)
		return nil, err
	}
	return &LLMClient{chatModel: chatModel, provider: "openai", modelName: modelName}, nil
}

func NewClaudeClient(ctx context.Context, key string, opts ClaudeModelOptions) (*LLMClient, error) {
	modelName := strings.TrimSpace(opts.Model)
	if modelName == "" {
		modelName = "claude-3-5-haiku-latest"
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	cfg := &claude.Config{
		APIKey:    key,
		Model:     modelName,
		MaxTokens: maxTokens,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.BaseURL = &base
	}
	chatModel, err := claude.NewChatModel(ctx, cfg)
	if err != nil {
		slog.Error("creating Claude client", "error", err)
		return nil, err
	}
	return &LLMClient{chatModel: chatModel, provider: "anthropic", modelName: modelName}, nil
}

func NewGeminiClient(ctx context.Context, key string, opts GeminiModelOptions) (*LLMClient, error) {
	modelName := strings.TrimSpace(opts.Model)
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: genaiClient,
		Model:  modelName,
	})
	if err != nil {
		slog.Error("creating Gemini client", "error", err)
		return nil, err
	}
	return &LLMClient{chatModel: chatModel, provider: "gemini", modelName: modelName}, nil
}

// Provider returns the provider id the client talks to.
func (c *LLMClient) Provider() string { return c.provider }

// Model returns the provider-side model name.
func (c *LLMClient) Model() string { return c.modelName }

// Complete sends one system and one user message and returns the trimmed
// assistant text.
func (c *LLMClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c == nil || c.chatModel == nil {
		return "", errors.New("llm client not initialized")
	}
	msgs := make([]*schema.Message, 0, 2)
	if s := strings.TrimSpace(systemPrompt); s != "" {
		msgs = append(msgs, schema.SystemMessage(s))
	}
	msgs = append(msgs, schema.UserMessage(userPrompt))

	out, err := c.chatModel.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", c.provider, err)
	}
	return completionText(out)
}

func completionText(msg *schema.Message) (string, error) {
	if msg == nil {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
