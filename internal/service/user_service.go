// FILE: internal/service/user_service.go
package service

import (
	"context"
	"strings"

	"ai-chat-quota-be/internal/dto"
	"ai-chat-quota-be/internal/mapper"
	"ai-chat-quota-be/internal/pkg/logger"
	"ai-chat-quota-be/internal/repository/specification"
	"ai-chat-quota-be/internal/repository/unitofwork"
	"ai-chat-quota-be/pkg/clock"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
	UpdatePaymentMethod(ctx context.Context, userId uuid.UUID, req *dto.UpdatePaymentMethodRequest) (*dto.UserResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	clock      clock.Clock
	logger     logger.ILogger
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, clk clock.Clock, logger logger.ILogger) IUserService {
	return &userService{
		uowFactory: uowFactory,
		clock:      clk,
		logger:     logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	res := mapper.ToUserResponse(user)
	return &res, nil
}

// UpdatePaymentMethod stores the gateway card token charged on renewal.
func (s *userService) UpdatePaymentMethod(ctx context.Context, userId uuid.UUID, req *dto.UpdatePaymentMethodRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	token := strings.TrimSpace(req.CardToken)
	user.PaymentCardToken = &token
	user.UpdatedAt = s.clock.Now()

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(logger.ModuleAuth, "Payment method updated", map[string]interface{}{
		"user_id": userId.String(),
	})

	res := mapper.ToUserResponse(user)
	return &res, nil
}
