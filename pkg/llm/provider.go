package llm

import (
	"context"
	"time"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Completion is one generated answer.
type Completion struct {
	Answer     string
	TokensUsed int
	Provider   string
	Latency    time.Duration
}

// ResponseGenerator produces the answer to a single user question.
type ResponseGenerator interface {
	Generate(ctx context.Context, question string) (*Completion, error)
}

// SystemPrompt is sent ahead of every question by model-backed generators.
const SystemPrompt = "You are a helpful assistant. Answer the user's question clearly and concisely."
