package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/pkg/billing"
	"ai-chat-quota-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAuthorizer answers per bundle id; unknown ids are approved.
type scriptedAuthorizer struct {
	mu      sync.Mutex
	decline map[uuid.UUID]bool
	fail    map[uuid.UUID]error
	calls   int
}

func (a *scriptedAuthorizer) Authorize(ctx context.Context, charge billing.Charge) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if err := a.fail[charge.BundleId]; err != nil {
		return false, err
	}
	return !a.decline[charge.BundleId], nil
}

func TestRenewDueBundles_NothingDue(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "jo@example.com")
	f.seedBundle(user.Id, entity.BundleTierBasic, intPtr(10), 3)

	auth := &scriptedAuthorizer{}
	report, err := f.renewals(auth).RenewDueBundles(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Due)
	assert.Equal(t, 0, auth.calls)
}

func TestRenewDueBundles_MixedOutcomes(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "kim@example.com")

	renewed := f.seedBundle(user.Id, entity.BundleTierBasic, intPtr(10), 10)
	declined := f.seedBundle(user.Id, entity.BundleTierPro, intPtr(100), 40)
	broken := f.seedBundle(user.Id, entity.BundleTierPro, intPtr(100), 7)
	optedOut := f.seedBundle(user.Id, entity.BundleTierBasic, intPtr(10), 2)
	optedOut.AutoRenew = false
	f.store.SeedBundle(optedOut)
	cancelled := f.seedBundle(user.Id, entity.BundleTierBasic, intPtr(10), 2)
	cancelled.Cancel(testNow)
	f.store.SeedBundle(cancelled)

	auth := &scriptedAuthorizer{
		decline: map[uuid.UUID]bool{declined.Id: true},
		fail:    map[uuid.UUID]error{broken.Id: errors.New("gateway unavailable")},
	}

	f.clock.Advance(31 * 24 * time.Hour)
	report, err := f.renewals(auth).RenewDueBundles(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, report.Due)
	assert.Equal(t, 1, report.Renewed)
	assert.Equal(t, 1, report.PaymentFailed)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 0, report.Skipped)

	r := f.store.Bundle(renewed.Id)
	assert.Equal(t, 0, r.MessagesUsed)
	assert.Equal(t, entity.BundleStatusActive, r.Status)
	assert.Equal(t, f.clock.Now().AddDate(0, 1, 0), r.EndDate)

	d := f.store.Bundle(declined.Id)
	assert.Equal(t, entity.BundleStatusInactive, d.Status)
	assert.Equal(t, 40, d.MessagesUsed)
	require.NotNil(t, d.PaymentFailedAt)

	b := f.store.Bundle(broken.Id)
	assert.Equal(t, entity.BundleStatusActive, b.Status)
	assert.Equal(t, 7, b.MessagesUsed)

	assert.Equal(t, 2, f.store.Bundle(optedOut.Id).MessagesUsed)
	assert.Equal(t, entity.BundleStatusCancelled, f.store.Bundle(cancelled.Id).Status)

	assert.ElementsMatch(t, []string{events.BundleRenewed, events.BundlePaymentFailed}, f.publisher.types())
}

func TestRenewDueBundles_SecondSweepFindsNothing(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "lee@example.com")
	f.seedBundle(user.Id, entity.BundleTierBasic, intPtr(10), 10)
	svc := f.renewals(billing.AlwaysSucceeds())

	f.clock.Advance(31 * 24 * time.Hour)
	first, err := svc.RenewDueBundles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Renewed)

	second, err := svc.RenewDueBundles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Due)
}

func TestRenewDueBundles_SaveFailureCounted(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "max@example.com")
	b := f.seedBundle(user.Id, entity.BundleTierBasic, intPtr(10), 5)
	f.store.FailBundleUpdates = errors.New("disk full")

	f.clock.Advance(31 * 24 * time.Hour)
	report, err := f.renewals(billing.AlwaysSucceeds()).RenewDueBundles(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 5, f.store.Bundle(b.Id).MessagesUsed)
	assert.Empty(t, f.publisher.types())
}

func TestRenewDueBundles_MissingOwnerCounted(t *testing.T) {
	f := newFixture(t)
	b := f.seedBundle(uuid.New(), entity.BundleTierBasic, intPtr(10), 5)

	f.clock.Advance(31 * 24 * time.Hour)
	report, err := f.renewals(billing.AlwaysSucceeds()).RenewDueBundles(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, entity.BundleStatusActive, f.store.Bundle(b.Id).Status)
}
