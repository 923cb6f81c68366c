package factory

import (
	"fmt"
	"time"

	"ai-chat-quota-be/internal/config"
	"ai-chat-quota-be/pkg/llm"
	"ai-chat-quota-be/pkg/llm/mock"
	"ai-chat-quota-be/pkg/llm/ollama"
)

func NewResponseGenerator(cfg config.MockAIConfig) (llm.ResponseGenerator, error) {
	switch cfg.Provider {
	case "", mock.ProviderName:
		return mock.NewProvider(mock.Config{
			MinDelay:  cfg.MinDelay,
			MaxDelay:  cfg.MaxDelay,
			MinTokens: cfg.MinTokens,
			MaxTokens: cfg.MaxTokens,
		}, time.Now().UnixNano()), nil
	case ollama.ProviderName:
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
