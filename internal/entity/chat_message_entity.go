// FILE: internal/entity/chat_message_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is the append-only usage record of one chat interaction.
type ChatMessage struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Question   string
	Answer     string
	TokensUsed int
	Metadata   ChatMessageMetadata
	CreatedAt  time.Time
}

// ChatMessageMetadata records which bundle absorbed the message.
type ChatMessageMetadata struct {
	BundleId  uuid.UUID  `json:"bundle_id"`
	Tier      BundleTier `json:"tier"`
	LatencyMs int64      `json:"latency_ms"`
	Provider  string     `json:"provider,omitempty"`
}
