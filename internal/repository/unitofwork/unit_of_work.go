package unitofwork

import (
	"context"

	"ai-chat-quota-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	BundleRepository() contract.BundleRepository
	ChatMessageRepository() contract.ChatMessageRepository
}
