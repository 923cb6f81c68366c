package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"ai-chat-quota-be/internal/pkg/logger"
	"ai-chat-quota-be/internal/service"
	"ai-chat-quota-be/pkg/lock"

	"github.com/stretchr/testify/assert"
)

type countingRenewalService struct {
	calls int32
	err   error
}

func (s *countingRenewalService) RenewDueBundles(ctx context.Context) (*service.RenewalReport, error) {
	atomic.AddInt32(&s.calls, 1)
	return &service.RenewalReport{}, s.err
}

type heldLocker struct{}

func (heldLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	return nil, false, nil
}

type brokenLocker struct{}

func (brokenLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	return nil, false, errors.New("redis down")
}

func TestTick_RunsWhenLockAcquired(t *testing.T) {
	svc := &countingRenewalService{}
	timer := NewRenewalTimer(svc, lock.Local{}, time.Hour, 0, logger.NewNopLogger())

	assert.True(t, timer.Tick(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&svc.calls))
}

func TestTick_SkipsWhenLockHeld(t *testing.T) {
	svc := &countingRenewalService{}

	assert.False(t, NewRenewalTimer(svc, heldLocker{}, time.Hour, 0, logger.NewNopLogger()).Tick(context.Background()))
	assert.False(t, NewRenewalTimer(svc, brokenLocker{}, time.Hour, 0, logger.NewNopLogger()).Tick(context.Background()))
	assert.Equal(t, int32(0), atomic.LoadInt32(&svc.calls))
}

func TestTick_SweepErrorIsSwallowed(t *testing.T) {
	svc := &countingRenewalService{err: errors.New("db down")}
	timer := NewRenewalTimer(svc, lock.Local{}, time.Hour, 0, logger.NewNopLogger())

	assert.True(t, timer.Tick(context.Background()))
}

func TestStart_TicksUntilStopped(t *testing.T) {
	svc := &countingRenewalService{}
	timer := NewRenewalTimer(svc, lock.Local{}, 5*time.Millisecond, time.Second, logger.NewNopLogger())

	done := make(chan struct{})
	go func() {
		timer.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&svc.calls) >= 2 }, time.Second, 5*time.Millisecond)
	timer.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not stop")
	}
}
