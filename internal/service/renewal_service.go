package service

import (
	"context"
	"errors"
	"time"

	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/pkg/logger"
	"ai-chat-quota-be/internal/pkg/metrics"
	"ai-chat-quota-be/internal/repository/memory"
	"ai-chat-quota-be/internal/repository/specification"
	"ai-chat-quota-be/internal/repository/unitofwork"
	"ai-chat-quota-be/pkg/billing"
	"ai-chat-quota-be/pkg/clock"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// RenewalReport summarizes one sweep.
type RenewalReport struct {
	Due           int
	Renewed       int
	PaymentFailed int
	Skipped       int // no longer due once locked
	Errors        int
	Duration      time.Duration
}

type IRenewalService interface {
	RenewDueBundles(ctx context.Context) (*RenewalReport, error)
}

type renewalService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	catalog    *memory.BundleCatalogCache
	renewer    *bundleRenewer
	clock      clock.Clock
	logger     logger.ILogger
}

func NewRenewalService(
	uowFactory unitofwork.RepositoryFactory,
	authorizer billing.PaymentAuthorizer,
	publisher IPublisherService,
	catalog *memory.BundleCatalogCache,
	clk clock.Clock,
	logger logger.ILogger,
) IRenewalService {
	return &renewalService{
		uowFactory: uowFactory,
		publisher:  publisher,
		catalog:    catalog,
		renewer:    &bundleRenewer{authorizer: authorizer, clock: clk},
		clock:      clk,
		logger:     logger,
	}
}

var errNotDue = errors.New("bundle no longer due for renewal")

// RenewDueBundles renews every ACTIVE auto-renewing bundle whose renewal date has passed.
// Each bundle is processed in its own transaction; one failure never stops the sweep.
func (s *renewalService) RenewDueBundles(ctx context.Context) (*RenewalReport, error) {
	ctx, span := otel.Tracer("ai-chat-quota-be/internal/service").Start(ctx, "renewal.RenewDueBundles")
	defer span.End()

	start := time.Now()
	now := s.clock.Now()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	due, err := uow.BundleRepository().FindAll(ctx,
		specification.ByBundleStatus{Status: entity.BundleStatusActive},
		specification.AutoRenewEnabled{},
		specification.RenewalDueBy{At: now},
	)
	if err != nil {
		s.logger.Error(logger.ModuleRenewal, "Failed to load bundles due for renewal", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	report := &RenewalReport{Due: len(due)}
	s.logger.Info(logger.ModuleRenewal, "Renewal sweep started", map[string]interface{}{
		"due": len(due),
	})

	for _, candidate := range due {
		if ctx.Err() != nil {
			break
		}

		outcome, err := s.renewOne(ctx, candidate.Id)
		switch {
		case errors.Is(err, errNotDue):
			report.Skipped++
			metrics.RenewalsTotal.WithLabelValues("skipped").Inc()
		case err != nil:
			report.Errors++
			metrics.RenewalsTotal.WithLabelValues("error").Inc()
			s.logger.Error(logger.ModuleRenewal, "Failed to renew bundle", map[string]interface{}{
				"bundle_id": candidate.Id.String(),
				"user_id":   candidate.UserId.String(),
				"error":     err.Error(),
			})
		case outcome == outcomeRenewed:
			report.Renewed++
			metrics.RenewalsTotal.WithLabelValues(string(outcome)).Inc()
		case outcome == outcomePaymentFailed:
			report.PaymentFailed++
			metrics.RenewalsTotal.WithLabelValues(string(outcome)).Inc()
			s.logger.Warn(logger.ModuleRenewal, "Renewal payment failed", map[string]interface{}{
				"bundle_id": candidate.Id.String(),
				"user_id":   candidate.UserId.String(),
			})
		}
	}

	if report.Renewed+report.PaymentFailed > 0 {
		s.catalog.Invalidate()
	}

	report.Duration = time.Since(start)
	metrics.RenewalSweepDuration.Observe(report.Duration.Seconds())
	span.SetAttributes(
		attribute.Int("renewal.due", report.Due),
		attribute.Int("renewal.renewed", report.Renewed),
		attribute.Int("renewal.payment_failed", report.PaymentFailed),
		attribute.Int("renewal.errors", report.Errors),
	)
	s.logger.Info(logger.ModuleRenewal, "Renewal sweep finished", map[string]interface{}{
		"due":            report.Due,
		"renewed":        report.Renewed,
		"payment_failed": report.PaymentFailed,
		"skipped":        report.Skipped,
		"errors":         report.Errors,
		"duration_ms":    report.Duration.Milliseconds(),
	})
	return report, nil
}

// renewOne re-reads the bundle under a row lock, so a concurrent cancel or toggle wins.
func (s *renewalService) renewOne(ctx context.Context, bundleId uuid.UUID) (renewalOutcome, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return "", err
	}
	defer uow.Rollback()

	bundle, err := uow.BundleRepository().FindOne(ctx,
		specification.ByID{ID: bundleId},
		specification.ForUpdate{},
	)
	if err != nil {
		return "", err
	}
	if bundle == nil || !bundle.IsDueForRenewal(s.clock.Now()) {
		return "", errNotDue
	}

	outcome, evt, err := s.renewer.attempt(ctx, uow, bundle)
	if err != nil {
		return "", err
	}

	if err := uow.Commit(); err != nil {
		return "", err
	}

	s.publisher.Publish(ctx, evt)
	return outcome, nil
}

