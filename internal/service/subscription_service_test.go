package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-chat-quota-be/internal/dto"
	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/pkg/billing"
	"ai-chat-quota-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBundle_Pricing(t *testing.T) {
	f := newFixture(t)
	svc := f.subscriptions(billing.AlwaysSucceeds())
	ctx := context.Background()
	userId := uuid.New()

	pro, err := svc.CreateBundle(ctx, userId, &dto.CreateBundleRequest{Tier: "PRO", BillingCycle: "YEARLY"})
	require.NoError(t, err)
	assert.Equal(t, 100, *pro.MaxMessages)
	assert.InDelta(t, 499.90, pro.Price, 0.001)
	assert.Equal(t, testNow.AddDate(1, 0, 0), pro.EndDate)
	assert.Equal(t, "ACTIVE", pro.Status)

	ent, err := svc.CreateBundle(ctx, userId, &dto.CreateBundleRequest{Tier: "ENTERPRISE", BillingCycle: "MONTHLY"})
	require.NoError(t, err)
	assert.Nil(t, ent.MaxMessages)
	assert.Nil(t, ent.RemainingMessages)
	assert.InDelta(t, 199.99, ent.Price, 0.001)

	assert.Equal(t, []string{events.BundleCreated, events.BundleCreated}, f.publisher.types())
}

func TestCreateBundle_InvalidInput(t *testing.T) {
	f := newFixture(t)
	svc := f.subscriptions(billing.AlwaysSucceeds())

	_, err := svc.CreateBundle(context.Background(), uuid.New(), &dto.CreateBundleRequest{Tier: "GOLD", BillingCycle: "MONTHLY"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetBundles_NewestFirst(t *testing.T) {
	f := newFixture(t)
	svc := f.subscriptions(billing.AlwaysSucceeds())
	ctx := context.Background()
	userId := uuid.New()

	older := f.seedBundle(userId, entity.BundleTierBasic, intPtr(10), 0)
	f.clock.Advance(time.Hour)
	newer := f.seedBundle(userId, entity.BundleTierPro, intPtr(100), 0)
	f.clock.Advance(time.Hour)
	cancelled := f.seedBundle(userId, entity.BundleTierPro, intPtr(100), 0)
	_, err := svc.CancelBundle(ctx, userId, cancelled.Id)
	require.NoError(t, err)
	f.seedBundle(uuid.New(), entity.BundleTierEnterprise, nil, 0)

	all, err := svc.GetBundles(ctx, userId)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, cancelled.Id, all[0].Id)
	assert.Equal(t, newer.Id, all[1].Id)
	assert.Equal(t, older.Id, all[2].Id)

	active, err := svc.GetActiveBundles(ctx, userId)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, newer.Id, active[0].Id)
	assert.Equal(t, older.Id, active[1].Id)
}

func TestGetPublicBundles_CachedAndInvalidated(t *testing.T) {
	f := newFixture(t)
	svc := f.subscriptions(billing.AlwaysSucceeds())
	ctx := context.Background()
	userId := uuid.New()
	f.seedBundle(userId, entity.BundleTierBasic, intPtr(10), 0)

	first, err := svc.GetPublicBundles(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Seeded directly, so the cache does not know about it yet.
	f.seedBundle(uuid.New(), entity.BundleTierPro, intPtr(100), 0)
	cached, err := svc.GetPublicBundles(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	_, err = svc.CreateBundle(ctx, userId, &dto.CreateBundleRequest{Tier: "ENTERPRISE", BillingCycle: "MONTHLY"})
	require.NoError(t, err)
	fresh, err := svc.GetPublicBundles(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestCancelBundle(t *testing.T) {
	f := newFixture(t)
	svc := f.subscriptions(billing.AlwaysSucceeds())
	ctx := context.Background()
	userId := uuid.New()
	b := f.seedBundle(userId, entity.BundleTierPro, intPtr(100), 3)

	res, err := svc.CancelBundle(ctx, userId, b.Id)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", res.Status)
	assert.False(t, res.AutoRenew)
	require.NotNil(t, res.CancelledAt)

	stored := f.store.Bundle(b.Id)
	assert.Equal(t, entity.BundleStatusCancelled, stored.Status)
	assert.Equal(t, 3, stored.MessagesUsed)
	assert.Contains(t, f.publisher.types(), events.BundleCancelled)

	// Idempotent.
	_, err = svc.CancelBundle(ctx, userId, b.Id)
	assert.NoError(t, err)
}

func TestMutations_NotFoundAndForbidden(t *testing.T) {
	f := newFixture(t)
	svc := f.subscriptions(billing.AlwaysSucceeds())
	ctx := context.Background()
	owner := uuid.New()
	b := f.seedBundle(owner, entity.BundleTierBasic, intPtr(10), 0)

	_, err := svc.CancelBundle(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, ErrBundleNotFound)

	stranger := uuid.New()
	_, err = svc.CancelBundle(ctx, stranger, b.Id)
	assert.ErrorIs(t, err, ErrBundleForbidden)
	_, err = svc.RenewBundle(ctx, stranger, b.Id)
	assert.ErrorIs(t, err, ErrBundleForbidden)
	_, err = svc.ToggleAutoRenew(ctx, stranger, b.Id)
	assert.ErrorIs(t, err, ErrBundleForbidden)

	assert.Equal(t, entity.BundleStatusActive, f.store.Bundle(b.Id).Status)
}

func TestRenewBundle_Approved(t *testing.T) {
	f := newFixture(t)
	svc := f.subscriptions(billing.AlwaysSucceeds())
	ctx := context.Background()
	user := f.seedUser(t, "erin@example.com")
	b := f.seedBundle(user.Id, entity.BundleTierBasic, intPtr(10), 10)

	f.clock.Advance(40 * 24 * time.Hour)
	res, err := svc.RenewBundle(ctx, user.Id, b.Id)

	require.NoError(t, err)
	assert.Equal(t, 0, res.MessagesUsed)
	assert.Equal(t, "ACTIVE", res.Status)
	assert.Equal(t, f.clock.Now().AddDate(0, 1, 0), res.EndDate)
	assert.Equal(t, res.EndDate, *res.RenewalDate)
	assert.Contains(t, f.publisher.types(), events.BundleRenewed)
}

func TestRenewBundle_Declined(t *testing.T) {
	f := newFixture(t)
	svc := f.subscriptions(billing.AlwaysDeclines())
	ctx := context.Background()
	user := f.seedUser(t, "frank@example.com")
	b := f.seedBundle(user.Id, entity.BundleTierBasic, intPtr(10), 6)

	res, err := svc.RenewBundle(ctx, user.Id, b.Id)

	require.NoError(t, err)
	assert.Equal(t, "INACTIVE", res.Status)
	assert.Equal(t, 6, res.MessagesUsed)
	require.NotNil(t, res.PaymentFailedAt)
	assert.Equal(t, testNow, *res.PaymentFailedAt)
	assert.Contains(t, f.publisher.types(), events.BundlePaymentFailed)
}

func TestRenewBundle_AutoRenewOff(t *testing.T) {
	f := newFixture(t)
	svc := f.subscriptions(billing.AlwaysSucceeds())
	ctx := context.Background()
	user := f.seedUser(t, "gina@example.com")
	b := f.seedBundle(user.Id, entity.BundleTierBasic, intPtr(10), 6)

	_, err := svc.ToggleAutoRenew(ctx, user.Id, b.Id)
	require.NoError(t, err)

	_, err = svc.RenewBundle(ctx, user.Id, b.Id)
	assert.ErrorIs(t, err, entity.ErrInvalidStateTransition)
	assert.Equal(t, 6, f.store.Bundle(b.Id).MessagesUsed)
}

func TestRenewBundle_GatewayErrorLeavesBundle(t *testing.T) {
	f := newFixture(t)
	svc := f.subscriptions(errAuthorizer{err: errors.New("gateway timeout")})
	ctx := context.Background()
	user := f.seedUser(t, "hank@example.com")
	b := f.seedBundle(user.Id, entity.BundleTierBasic, intPtr(10), 6)

	_, err := svc.RenewBundle(ctx, user.Id, b.Id)

	require.Error(t, err)
	stored := f.store.Bundle(b.Id)
	assert.Equal(t, entity.BundleStatusActive, stored.Status)
	assert.Equal(t, 6, stored.MessagesUsed)
	assert.Nil(t, stored.PaymentFailedAt)
}

func TestToggleAutoRenew(t *testing.T) {
	f := newFixture(t)
	svc := f.subscriptions(billing.AlwaysSucceeds())
	ctx := context.Background()
	userId := uuid.New()
	b := f.seedBundle(userId, entity.BundleTierPro, intPtr(100), 0)

	res, err := svc.ToggleAutoRenew(ctx, userId, b.Id)
	require.NoError(t, err)
	assert.False(t, res.AutoRenew)

	res, err = svc.ToggleAutoRenew(ctx, userId, b.Id)
	require.NoError(t, err)
	assert.True(t, res.AutoRenew)

	_, err = svc.CancelBundle(ctx, userId, b.Id)
	require.NoError(t, err)
	_, err = svc.ToggleAutoRenew(ctx, userId, b.Id)
	assert.ErrorIs(t, err, entity.ErrInvalidStateTransition)
	assert.False(t, f.store.Bundle(b.Id).AutoRenew)
}
