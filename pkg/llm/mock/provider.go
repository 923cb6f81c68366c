package mock

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"ai-chat-quota-be/pkg/llm"
)

const ProviderName = "mock"

var cannedAnswers = []string{
	"That's a great question! Based on my analysis, I'd suggest breaking the problem into smaller steps and tackling them one at a time.",
	"Here is a concise answer: the key idea is to focus on the fundamentals first, then iterate on the details once the basics work.",
	"There are several ways to look at this. The most practical approach is usually the simplest one that meets your requirements.",
	"I understand what you're asking. In short, it depends on your context, but the common best approach is to start small and measure.",
	"Good question. The answer involves a few considerations: correctness first, then clarity, and finally performance where it matters.",
}

type Config struct {
	MinDelay  time.Duration
	MaxDelay  time.Duration
	MinTokens int
	MaxTokens int
}

// Provider simulates a hosted model: it waits a random delay and returns a canned answer.
type Provider struct {
	cfg Config

	mu  sync.Mutex
	rng *rand.Rand
}

var _ llm.ResponseGenerator = &Provider{}

func NewProvider(cfg Config, seed int64) *Provider {
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	if cfg.MinTokens < 0 {
		cfg.MinTokens = 0
	}
	if cfg.MaxTokens < cfg.MinTokens {
		cfg.MaxTokens = cfg.MinTokens
	}
	return &Provider{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (p *Provider) Generate(ctx context.Context, question string) (*llm.Completion, error) {
	start := time.Now()

	p.mu.Lock()
	delay := p.cfg.MinDelay + time.Duration(p.rng.Int63n(int64(p.cfg.MaxDelay-p.cfg.MinDelay)+1))
	tokens := p.cfg.MinTokens + p.rng.Intn(p.cfg.MaxTokens-p.cfg.MinTokens+1)
	answer := cannedAnswers[p.rng.Intn(len(cannedAnswers))]
	p.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return &llm.Completion{
		Answer:     answer,
		TokensUsed: tokens,
		Provider:   ProviderName,
		Latency:    time.Since(start),
	}, nil
}
