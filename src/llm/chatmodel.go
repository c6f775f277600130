// Package llm adapts eino chat models into the narrow capabilities the advisor needs:
// summarisation, entity extraction, slot filling, plan ranking, query rewriting and answering.
package llm

import (
	"context"
	"fmt"
	"strings"

	"plan_advisor/src/model"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
)

const defaultOllamaURL = "http://localhost:11434"

// NewChatModel builds the provider's chat model for modelName, falling back to cfg.Model,
// and wraps it in a circuit breaker with the configured per-call timeout.
func NewChatModel(ctx context.Context, cfg model.LLMConfig, modelName string) (einomodel.BaseChatModel, error) {
	if modelName == "" {
		modelName = cfg.Model
	}

	var (
		chatModel einomodel.BaseChatModel
		err       error
	)

	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		maxTokens := cfg.MaxTokens
		temperature := float32(cfg.Temperature)
		var m *openai.ChatModel
		m, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       modelName,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
		chatModel = m
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		var m *ollama.ChatModel
		m, err = ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: baseURL,
			Model:   modelName,
		})
		chatModel = m
	case "ark":
		var m *ark.ChatModel
		m, err = ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   modelName,
		})
		chatModel = m
	case "deepseek":
		var m *deepseek.ChatModel
		m, err = deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   modelName,
		})
		chatModel = m
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating %s chat model: %w", cfg.Provider, err)
	}

	return NewGuardedModel(chatModel, modelName, cfg), nil
}
