package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatRequest struct {
	Question string `json:"question" validate:"required,min=1,max=2000"`
}

type ChatResponse struct {
	Id         uuid.UUID `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	TokensUsed int       `json:"tokens_used"`
	BundleId   uuid.UUID `json:"bundle_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type BundleUsage struct {
	BundleId          uuid.UUID `json:"bundle_id"`
	Tier              string    `json:"tier"`
	MessagesUsed      int       `json:"messages_used"`
	MaxMessages       *int      `json:"max_messages"`
	RemainingMessages *int      `json:"remaining_messages"`
}

type MonthlyUsageResponse struct {
	BundleUsages []BundleUsage `json:"bundle_usages"`
}
