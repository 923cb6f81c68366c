package service

import (
	"context"
	"fmt"

	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/repository/specification"
	"ai-chat-quota-be/internal/repository/unitofwork"
	"ai-chat-quota-be/pkg/billing"
	"ai-chat-quota-be/pkg/clock"
	"ai-chat-quota-be/pkg/events"
)

type renewalOutcome string

const (
	outcomeRenewed       renewalOutcome = "renewed"
	outcomePaymentFailed renewalOutcome = "payment_failed"
)

// bundleRenewer charges a locked bundle and applies Renew or MarkPaymentFailed.
// Used by the manual renew endpoint and the periodic sweep.
type bundleRenewer struct {
	authorizer billing.PaymentAuthorizer
	clock      clock.Clock
}

// attempt must run inside uow's transaction with b loaded under a row lock.
// It saves b but does not commit. The returned event is published by the caller after commit.
func (r *bundleRenewer) attempt(ctx context.Context, uow unitofwork.UnitOfWork, b *entity.Bundle) (renewalOutcome, events.BaseEvent, error) {
	if !b.CanRenew() {
		return "", events.BaseEvent{}, fmt.Errorf("%w: auto-renew is disabled", entity.ErrInvalidStateTransition)
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: b.UserId})
	if err != nil {
		return "", events.BaseEvent{}, err
	}
	if user == nil {
		return "", events.BaseEvent{}, ErrUserNotFound
	}

	approved, err := r.authorizer.Authorize(ctx, billing.Charge{
		BundleId:  b.Id,
		UserId:    b.UserId,
		Amount:    b.Price,
		CardToken: user.PaymentCardToken,
	})
	if err != nil {
		return "", events.BaseEvent{}, fmt.Errorf("authorize renewal: %w", err)
	}

	now := r.clock.Now()
	payload := map[string]interface{}{
		"bundle_id": b.Id.String(),
		"user_id":   b.UserId.String(),
		"email":     user.Email,
		"tier":      string(b.Tier),
		"amount":    b.Price,
	}

	var outcome renewalOutcome
	var evt events.BaseEvent
	if approved {
		if err := b.Renew(now); err != nil {
			return "", events.BaseEvent{}, err
		}
		payload["end_date"] = b.EndDate
		outcome = outcomeRenewed
		evt = events.New(events.BundleRenewed, payload, now)
	} else {
		b.MarkPaymentFailed(now)
		payload["failed_at"] = now
		outcome = outcomePaymentFailed
		evt = events.New(events.BundlePaymentFailed, payload, now)
	}
	b.UpdatedAt = now

	if err := uow.BundleRepository().Update(ctx, b); err != nil {
		return "", events.BaseEvent{}, fmt.Errorf("save bundle: %w", err)
	}
	return outcome, evt, nil
}
