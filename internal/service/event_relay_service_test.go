package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-chat-quota-be/internal/pkg/logger"
	"ai-chat-quota-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeForwarder struct {
	mu    sync.Mutex
	types []string
	err   error
}

func (f *fakeForwarder) Publish(ctx context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = append(f.types, event.EventType())
	return f.err
}

func (f *fakeForwarder) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.types...)
}

type fakeMailer struct {
	mu       sync.Mutex
	welcomed []string
	failed   []string
	failedAt []time.Time
}

func (m *fakeMailer) SendWelcome(toEmail, fullName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomed = append(m.welcomed, toEmail)
	return nil
}

func (m *fakeMailer) SendPaymentFailed(toEmail, tier string, failedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, toEmail+"/"+tier)
	m.failedAt = append(m.failedAt, failedAt)
	return nil
}

func (m *fakeMailer) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.welcomed), len(m.failed)
}

func startRelay(t *testing.T, forwarder EventForwarder, mail *fakeMailer) IPublisherService {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := logger.NewNopLogger()
	relay := NewEventRelayService(pubSub, DomainEventsTopic, forwarder, mail, log)
	require.NoError(t, relay.Consume(ctx))

	return NewPublisherService(DomainEventsTopic, pubSub, log)
}

func TestEventRelay_ForwardsAndMails(t *testing.T) {
	fwd := &fakeForwarder{}
	mail := &fakeMailer{}
	pub := startRelay(t, fwd, mail)
	ctx := context.Background()

	failedAt := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	pub.Publish(ctx, events.New(events.UserRegistered, map[string]interface{}{
		"email": "pat@example.com", "full_name": "Pat",
	}, testNow))
	pub.Publish(ctx, events.New(events.BundleCreated, map[string]interface{}{"tier": "PRO"}, testNow))
	pub.Publish(ctx, events.New(events.BundlePaymentFailed, map[string]interface{}{
		"email": "pat@example.com", "tier": "PRO", "failed_at": failedAt,
	}, testNow))

	require.Eventually(t, func() bool { return len(fwd.seen()) == 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{events.UserRegistered, events.BundleCreated, events.BundlePaymentFailed}, fwd.seen())

	require.Eventually(t, func() bool {
		w, f := mail.counts()
		return w == 1 && f == 1
	}, 2*time.Second, 10*time.Millisecond)
	mail.mu.Lock()
	defer mail.mu.Unlock()
	assert.Equal(t, []string{"pat@example.com"}, mail.welcomed)
	assert.Equal(t, []string{"pat@example.com/PRO"}, mail.failed)
	assert.True(t, failedAt.Equal(mail.failedAt[0]))
}

func TestEventRelay_ForwarderErrorStillMails(t *testing.T) {
	fwd := &fakeForwarder{err: errors.New("nats down")}
	mail := &fakeMailer{}
	pub := startRelay(t, fwd, mail)

	pub.Publish(context.Background(), events.New(events.UserRegistered, map[string]interface{}{
		"email": "quinn@example.com", "full_name": "Quinn",
	}, testNow))

	require.Eventually(t, func() bool {
		w, _ := mail.counts()
		return w == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEventRelay_NoForwarderNoMailer(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	relay := NewEventRelayService(pubSub, DomainEventsTopic, nil, nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, relay.Consume(ctx))

	pub := NewPublisherService(DomainEventsTopic, pubSub, logger.NewNopLogger())
	assert.NotPanics(t, func() {
		pub.Publish(ctx, events.New(events.QuotaExhausted, map[string]interface{}{"user_id": "x"}, testNow))
	})
}
