package quota

import (
	"context"
	"fmt"

	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/repository/specification"
	"ai-chat-quota-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ai-chat-quota-be/pkg/quota")

// Ledger performs the check-and-deduct step that gates one chat interaction.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// ConsumeOneUnit charges one message to the best active bundle of userId and returns it.
//
// The caller owns the transaction: uow must already be inside Begin so the active bundles
// stay locked from read to save. The bundle is saved but not committed here.
func (l *Ledger) ConsumeOneUnit(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.Bundle, error) {
	ctx, span := tracer.Start(ctx, "quota.ConsumeOneUnit")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userId.String()))

	activeBundles, err := uow.BundleRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByBundleStatus{Status: entity.BundleStatusActive},
		specification.ForUpdate{},
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load active bundles")
		return nil, fmt.Errorf("load active bundles: %w", err)
	}

	if len(activeBundles) == 0 {
		span.SetStatus(codes.Error, "no active subscription")
		return nil, ErrNoActiveSubscription
	}

	selected := SelectBundle(activeBundles)
	if selected == nil {
		span.SetStatus(codes.Error, "quota exhausted")
		return nil, ErrQuotaExhausted
	}

	selected.IncrementUsage()
	if err := uow.BundleRepository().Update(ctx, selected); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save bundle")
		return nil, fmt.Errorf("save bundle usage: %w", err)
	}

	span.SetAttributes(
		attribute.String("bundle.id", selected.Id.String()),
		attribute.String("bundle.tier", string(selected.Tier)),
		attribute.Int("bundle.messages_used", selected.MessagesUsed),
	)
	return selected, nil
}
