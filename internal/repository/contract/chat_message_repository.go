package contract

import (
	"context"

	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/repository/specification"
)

// ChatMessageRepository is append-only: there is no update or delete.
type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
