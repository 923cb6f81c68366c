// FILE: internal/entity/bundle_entity.go
package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BundleTier string
type BillingCycle string
type BundleStatus string

const (
	BundleTierBasic      BundleTier = "BASIC"
	BundleTierPro        BundleTier = "PRO"
	BundleTierEnterprise BundleTier = "ENTERPRISE"

	BillingCycleMonthly BillingCycle = "MONTHLY"
	BillingCycleYearly  BillingCycle = "YEARLY"

	BundleStatusActive    BundleStatus = "ACTIVE"
	BundleStatusInactive  BundleStatus = "INACTIVE"
	BundleStatusCancelled BundleStatus = "CANCELLED"
)

// ErrInvalidStateTransition is returned when a lifecycle operation is not allowed
// from the bundle's current state.
var ErrInvalidStateTransition = errors.New("invalid bundle state transition")

// Priority ranks tiers for quota consumption. Higher is consumed first.
func (t BundleTier) Priority() int {
	switch t {
	case BundleTierEnterprise:
		return 3
	case BundleTierPro:
		return 2
	case BundleTierBasic:
		return 1
	default:
		return 0
	}
}

func (t BundleTier) IsValid() bool {
	return t.Priority() > 0
}

func (c BillingCycle) IsValid() bool {
	return c == BillingCycleMonthly || c == BillingCycleYearly
}

// EndDateFrom returns the end of one billing period starting at start.
func (c BillingCycle) EndDateFrom(start time.Time) time.Time {
	if c == BillingCycleYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// Bundle is one purchased allotment of chat messages.
// MaxMessages == nil means unlimited.
type Bundle struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	Tier            BundleTier
	MaxMessages     *int
	MessagesUsed    int
	Price           float64
	BillingCycle    BillingCycle
	Status          BundleStatus
	AutoRenew       bool
	StartDate       time.Time
	EndDate         time.Time
	RenewalDate     *time.Time
	CancelledAt     *time.Time
	PaymentFailedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewBundle(userId uuid.UUID, tier BundleTier, maxMessages *int, price float64, cycle BillingCycle, now time.Time) *Bundle {
	endDate := cycle.EndDateFrom(now)
	renewalDate := endDate

	return &Bundle{
		Id:           uuid.New(),
		UserId:       userId,
		Tier:         tier,
		MaxMessages:  maxMessages,
		MessagesUsed: 0,
		Price:        price,
		BillingCycle: cycle,
		Status:       BundleStatusActive,
		AutoRenew:    true,
		StartDate:    now,
		EndDate:      endDate,
		RenewalDate:  &renewalDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (b *Bundle) IsUnlimited() bool {
	return b.MaxMessages == nil
}

func (b *Bundle) IsActive() bool {
	return b.Status == BundleStatusActive
}

func (b *Bundle) IsOwnedBy(userId uuid.UUID) bool {
	return b.UserId == userId
}

func (b *Bundle) HasRemainingMessages() bool {
	if b.MaxMessages == nil {
		return true
	}
	return b.MessagesUsed < *b.MaxMessages
}

// RemainingMessages returns nil for unlimited bundles.
func (b *Bundle) RemainingMessages() *int {
	if b.MaxMessages == nil {
		return nil
	}
	remaining := *b.MaxMessages - b.MessagesUsed
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// IncrementUsage does not check the cap. Callers check HasRemainingMessages first.
func (b *Bundle) IncrementUsage() {
	b.MessagesUsed++
}

func (b *Bundle) Cancel(now time.Time) {
	b.Status = BundleStatusCancelled
	b.CancelledAt = &now
	b.AutoRenew = false
}

func (b *Bundle) MarkPaymentFailed(now time.Time) {
	b.Status = BundleStatusInactive
	b.PaymentFailedAt = &now
}

// CanRenew reports whether Renew would succeed.
func (b *Bundle) CanRenew() bool {
	return b.AutoRenew
}

func (b *Bundle) Renew(now time.Time) error {
	if !b.AutoRenew {
		return fmt.Errorf("%w: cannot renew a bundle with auto-renew disabled", ErrInvalidStateTransition)
	}

	endDate := b.BillingCycle.EndDateFrom(now)
	renewalDate := endDate

	b.MessagesUsed = 0
	b.Status = BundleStatusActive
	b.EndDate = endDate
	b.RenewalDate = &renewalDate
	b.PaymentFailedAt = nil
	return nil
}

// ToggleAutoRenew flips the auto-renew flag. It refuses CANCELLED bundles so
// that a cancelled bundle always has AutoRenew false and is never picked up
// by the renewal sweep again.
func (b *Bundle) ToggleAutoRenew() error {
	if b.Status == BundleStatusCancelled {
		return fmt.Errorf("%w: cannot change auto-renew on a cancelled bundle", ErrInvalidStateTransition)
	}
	b.AutoRenew = !b.AutoRenew
	return nil
}

func (b *Bundle) IsDueForRenewal(now time.Time) bool {
	return b.Status == BundleStatusActive &&
		b.AutoRenew &&
		b.RenewalDate != nil &&
		!b.RenewalDate.After(now)
}
