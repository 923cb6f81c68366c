package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/pkg/logger"
	"ai-chat-quota-be/internal/repository/memory"
	"ai-chat-quota-be/internal/testutil"
	"ai-chat-quota-be/pkg/billing"
	"ai-chat-quota-be/pkg/clock"
	"ai-chat-quota-be/pkg/events"
	"ai-chat-quota-be/pkg/llm"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// stubGenerator answers instantly.
type stubGenerator struct {
	err error
}

func (g *stubGenerator) Generate(ctx context.Context, question string) (*llm.Completion, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &llm.Completion{Answer: "answer to: " + question, TokensUsed: 42, Provider: "stub", Latency: time.Millisecond}, nil
}

// errAuthorizer fails every charge with an unknown outcome.
type errAuthorizer struct{ err error }

func (a errAuthorizer) Authorize(ctx context.Context, charge billing.Charge) (bool, error) {
	return false, a.err
}

type fixture struct {
	store     *testutil.MemoryStore
	clock     *clock.Fixed
	publisher *recordingPublisher
	catalog   *memory.BundleCatalogCache
	log       logger.ILogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		store:     testutil.NewMemoryStore(),
		clock:     clock.NewFixed(testNow),
		publisher: &recordingPublisher{},
		catalog:   memory.NewBundleCatalogCache(time.Minute),
		log:       logger.NewNopLogger(),
	}
}

func (f *fixture) seedUser(t *testing.T, email string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		FullName:     "Test User",
		PasswordHash: string(hash),
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	f.store.SeedUser(u)
	return u
}

func (f *fixture) seedBundle(userId uuid.UUID, tier entity.BundleTier, max *int, used int) *entity.Bundle {
	b := entity.NewBundle(userId, tier, max, 9.99, entity.BillingCycleMonthly, f.clock.Now())
	b.MessagesUsed = used
	f.store.SeedBundle(b)
	return b
}

func (f *fixture) subscriptions(authorizer billing.PaymentAuthorizer) ISubscriptionService {
	return NewSubscriptionService(f.store, authorizer, f.publisher, f.catalog, f.clock, f.log)
}

func (f *fixture) renewals(authorizer billing.PaymentAuthorizer) IRenewalService {
	return NewRenewalService(f.store, authorizer, f.publisher, f.catalog, f.clock, f.log)
}

func (f *fixture) auth() IAuthService {
	return NewAuthService(f.store, f.publisher, f.catalog, f.clock, AuthSettings{
		JwtSecret:      "test-secret",
		AccessTokenTTL: time.Hour,
		BcryptCost:     bcrypt.MinCost,
	}, f.log)
}
