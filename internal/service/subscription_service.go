package service

import (
	"context"
	"fmt"

	"ai-chat-quota-be/internal/dto"
	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/mapper"
	"ai-chat-quota-be/internal/pkg/logger"
	"ai-chat-quota-be/internal/pkg/metrics"
	"ai-chat-quota-be/internal/repository/memory"
	"ai-chat-quota-be/internal/repository/specification"
	"ai-chat-quota-be/internal/repository/unitofwork"
	"ai-chat-quota-be/pkg/billing"
	"ai-chat-quota-be/pkg/clock"
	"ai-chat-quota-be/pkg/events"

	"github.com/google/uuid"
)

type ISubscriptionService interface {
	CreateBundle(ctx context.Context, userId uuid.UUID, req *dto.CreateBundleRequest) (*dto.BundleResponse, error)
	GetBundles(ctx context.Context, userId uuid.UUID) ([]*dto.BundleResponse, error)
	GetActiveBundles(ctx context.Context, userId uuid.UUID) ([]*dto.BundleResponse, error)
	GetPublicBundles(ctx context.Context) ([]*dto.BundleResponse, error)
	CancelBundle(ctx context.Context, userId, bundleId uuid.UUID) (*dto.BundleResponse, error)
	RenewBundle(ctx context.Context, userId, bundleId uuid.UUID) (*dto.BundleResponse, error)
	ToggleAutoRenew(ctx context.Context, userId, bundleId uuid.UUID) (*dto.BundleResponse, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	catalog    *memory.BundleCatalogCache
	renewer    *bundleRenewer
	clock      clock.Clock
	logger     logger.ILogger
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	authorizer billing.PaymentAuthorizer,
	publisher IPublisherService,
	catalog *memory.BundleCatalogCache,
	clk clock.Clock,
	logger logger.ILogger,
) ISubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		publisher:  publisher,
		catalog:    catalog,
		renewer:    &bundleRenewer{authorizer: authorizer, clock: clk},
		clock:      clk,
		logger:     logger,
	}
}

func (s *subscriptionService) CreateBundle(ctx context.Context, userId uuid.UUID, req *dto.CreateBundleRequest) (*dto.BundleResponse, error) {
	tier := entity.BundleTier(req.Tier)
	cycle := entity.BillingCycle(req.BillingCycle)
	if !tier.IsValid() || !cycle.IsValid() {
		return nil, fmt.Errorf("%w: tier %q, billing cycle %q", ErrInvalidInput, req.Tier, req.BillingCycle)
	}

	maxMessages, price, err := billing.PriceFor(tier, cycle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.clock.Now()
	bundle := entity.NewBundle(userId, tier, maxMessages, price, cycle, now)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.BundleRepository().Create(ctx, bundle); err != nil {
		return nil, fmt.Errorf("create bundle: %w", err)
	}

	s.catalog.Invalidate()
	metrics.BundleOperationsTotal.WithLabelValues("create", string(tier)).Inc()
	s.logger.Info(logger.ModuleSubscription, "Bundle created", map[string]interface{}{
		"user_id":       userId.String(),
		"bundle_id":     bundle.Id.String(),
		"tier":          string(tier),
		"billing_cycle": string(cycle),
	})
	s.publisher.Publish(ctx, events.New(events.BundleCreated, map[string]interface{}{
		"bundle_id":     bundle.Id.String(),
		"user_id":       userId.String(),
		"tier":          string(tier),
		"billing_cycle": string(cycle),
		"price":         price,
	}, now))

	return mapper.ToBundleResponse(bundle), nil
}

func (s *subscriptionService) GetBundles(ctx context.Context, userId uuid.UUID) ([]*dto.BundleResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	bundles, err := uow.BundleRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.NewestFirst(),
	)
	if err != nil {
		return nil, err
	}
	return mapper.ToBundleResponses(bundles), nil
}

func (s *subscriptionService) GetActiveBundles(ctx context.Context, userId uuid.UUID) ([]*dto.BundleResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	bundles, err := uow.BundleRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByBundleStatus{Status: entity.BundleStatusActive},
		specification.NewestFirst(),
	)
	if err != nil {
		return nil, err
	}
	return mapper.ToBundleResponses(bundles), nil
}

// GetPublicBundles lists every ACTIVE bundle. Served from a short-lived cache.
func (s *subscriptionService) GetPublicBundles(ctx context.Context) ([]*dto.BundleResponse, error) {
	if cached, ok := s.catalog.Get(); ok {
		return cached, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	bundles, err := uow.BundleRepository().FindAll(ctx,
		specification.ByBundleStatus{Status: entity.BundleStatusActive},
		specification.NewestFirst(),
	)
	if err != nil {
		return nil, err
	}

	res := mapper.ToBundleResponses(bundles)
	s.catalog.Save(res)
	return res, nil
}

func (s *subscriptionService) CancelBundle(ctx context.Context, userId, bundleId uuid.UUID) (*dto.BundleResponse, error) {
	var evt events.BaseEvent
	bundle, err := s.mutateOwned(ctx, userId, bundleId, func(uow unitofwork.UnitOfWork, b *entity.Bundle) error {
		now := s.clock.Now()
		b.Cancel(now)
		b.UpdatedAt = now
		evt = events.New(events.BundleCancelled, map[string]interface{}{
			"bundle_id": b.Id.String(),
			"user_id":   b.UserId.String(),
			"tier":      string(b.Tier),
		}, now)
		return uow.BundleRepository().Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	metrics.BundleOperationsTotal.WithLabelValues("cancel", string(bundle.Tier)).Inc()
	s.logger.Info(logger.ModuleSubscription, "Bundle cancelled", map[string]interface{}{
		"user_id":   userId.String(),
		"bundle_id": bundleId.String(),
	})
	s.publisher.Publish(ctx, evt)
	return mapper.ToBundleResponse(bundle), nil
}

// RenewBundle charges the owner's payment method now. A declined charge marks the
// bundle payment-failed and still returns it.
func (s *subscriptionService) RenewBundle(ctx context.Context, userId, bundleId uuid.UUID) (*dto.BundleResponse, error) {
	var outcome renewalOutcome
	var evt events.BaseEvent
	bundle, err := s.mutateOwned(ctx, userId, bundleId, func(uow unitofwork.UnitOfWork, b *entity.Bundle) error {
		var err error
		outcome, evt, err = s.renewer.attempt(ctx, uow, b)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.BundleOperationsTotal.WithLabelValues("renew", string(bundle.Tier)).Inc()
	metrics.RenewalsTotal.WithLabelValues(string(outcome)).Inc()
	s.logger.Info(logger.ModuleSubscription, "Manual bundle renewal", map[string]interface{}{
		"user_id":   userId.String(),
		"bundle_id": bundleId.String(),
		"outcome":   string(outcome),
	})
	s.publisher.Publish(ctx, evt)
	return mapper.ToBundleResponse(bundle), nil
}

func (s *subscriptionService) ToggleAutoRenew(ctx context.Context, userId, bundleId uuid.UUID) (*dto.BundleResponse, error) {
	var evt events.BaseEvent
	bundle, err := s.mutateOwned(ctx, userId, bundleId, func(uow unitofwork.UnitOfWork, b *entity.Bundle) error {
		if err := b.ToggleAutoRenew(); err != nil {
			return err
		}
		now := s.clock.Now()
		b.UpdatedAt = now
		evt = events.New(events.BundleAutoRenewToggled, map[string]interface{}{
			"bundle_id":  b.Id.String(),
			"user_id":    b.UserId.String(),
			"auto_renew": b.AutoRenew,
		}, now)
		return uow.BundleRepository().Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	metrics.BundleOperationsTotal.WithLabelValues("toggle_auto_renew", string(bundle.Tier)).Inc()
	s.publisher.Publish(ctx, evt)
	return mapper.ToBundleResponse(bundle), nil
}

// mutateOwned loads the bundle under a row lock, checks ownership, runs fn and commits.
func (s *subscriptionService) mutateOwned(
	ctx context.Context,
	userId, bundleId uuid.UUID,
	fn func(uow unitofwork.UnitOfWork, b *entity.Bundle) error,
) (*entity.Bundle, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	bundle, err := uow.BundleRepository().FindOne(ctx,
		specification.ByID{ID: bundleId},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, err
	}
	if bundle == nil {
		return nil, ErrBundleNotFound
	}
	if !bundle.IsOwnedBy(userId) {
		return nil, ErrBundleForbidden
	}

	if err := fn(uow, bundle); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	s.catalog.Invalidate()
	return bundle, nil
}
