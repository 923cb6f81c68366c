package scheduler

import (
	"context"
	"sync"
	"time"

	"ai-chat-quota-be/internal/pkg/logger"
	"ai-chat-quota-be/internal/service"
	"ai-chat-quota-be/pkg/lock"
)

const renewalLockKey = "locks:renewal-sweep"

// RenewalTimer periodically runs the renewal sweep. Only the replica holding
// the lock sweeps on a given tick.
type RenewalTimer struct {
	service  service.IRenewalService
	locker   lock.Locker
	interval time.Duration
	lockTTL  time.Duration
	logger   logger.ILogger
	stop     chan struct{}
	stopOnce sync.Once
}

func NewRenewalTimer(svc service.IRenewalService, locker lock.Locker, interval, lockTTL time.Duration, log logger.ILogger) *RenewalTimer {
	if interval <= 0 {
		interval = time.Hour
	}
	if lockTTL <= 0 {
		lockTTL = interval
	}
	return &RenewalTimer{
		service:  svc,
		locker:   locker,
		interval: interval,
		lockTTL:  lockTTL,
		logger:   log,
		stop:     make(chan struct{}),
	}
}

// Start begins the sweep loop. Call in a goroutine.
func (t *RenewalTimer) Start(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

// Stop signals the timer to stop.
func (t *RenewalTimer) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Tick runs one guarded sweep. It reports whether this replica ran it.
func (t *RenewalTimer) Tick(ctx context.Context) bool {
	release, acquired, err := t.locker.TryLock(ctx, renewalLockKey, t.lockTTL)
	if err != nil {
		t.logger.Warn(logger.ModuleRenewal, "Failed to acquire renewal lock", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	if !acquired {
		t.logger.Debug(logger.ModuleRenewal, "Renewal sweep held by another replica", nil)
		return false
	}
	defer release()

	if _, err := t.service.RenewDueBundles(ctx); err != nil {
		t.logger.Warn(logger.ModuleRenewal, "Renewal sweep failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return true
}
