package contract

import (
	"context"

	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/repository/specification"
)

type BundleRepository interface {
	Create(ctx context.Context, bundle *entity.Bundle) error
	Update(ctx context.Context, bundle *entity.Bundle) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Bundle, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Bundle, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
