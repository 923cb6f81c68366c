package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateBundleRequest struct {
	Tier         string `json:"tier" validate:"required,oneof=BASIC PRO ENTERPRISE"`
	BillingCycle string `json:"billing_cycle" validate:"required,oneof=MONTHLY YEARLY"`
}

type BundleResponse struct {
	Id                uuid.UUID  `json:"id"`
	Tier              string     `json:"tier"`
	MaxMessages       *int       `json:"max_messages"`
	MessagesUsed      int        `json:"messages_used"`
	RemainingMessages *int       `json:"remaining_messages"`
	Price             float64    `json:"price"`
	BillingCycle      string     `json:"billing_cycle"`
	Status            string     `json:"status"`
	AutoRenew         bool       `json:"auto_renew"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           time.Time  `json:"end_date"`
	RenewalDate       *time.Time `json:"renewal_date"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	PaymentFailedAt   *time.Time `json:"payment_failed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
