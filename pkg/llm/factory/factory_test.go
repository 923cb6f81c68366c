package factory

import (
	"testing"

	"ai-chat-quota-be/internal/config"
	"ai-chat-quota-be/pkg/llm/mock"
	"ai-chat-quota-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponseGenerator(t *testing.T) {
	g, err := NewResponseGenerator(config.MockAIConfig{Provider: "mock", MinTokens: 1, MaxTokens: 2})
	require.NoError(t, err)
	assert.IsType(t, &mock.Provider{}, g)

	g, err = NewResponseGenerator(config.MockAIConfig{Provider: "ollama", OllamaModel: "llama3"})
	require.NoError(t, err)
	assert.IsType(t, &ollama.OllamaProvider{}, g)

	_, err = NewResponseGenerator(config.MockAIConfig{Provider: "gpt"})
	assert.Error(t, err)
}
