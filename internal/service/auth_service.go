// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-chat-quota-be/internal/dto"
	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/mapper"
	"ai-chat-quota-be/internal/pkg/logger"
	"ai-chat-quota-be/internal/pkg/serverutils"
	"ai-chat-quota-be/internal/repository/contract"
	"ai-chat-quota-be/internal/repository/memory"
	"ai-chat-quota-be/internal/repository/specification"
	"ai-chat-quota-be/internal/repository/unitofwork"
	"ai-chat-quota-be/pkg/billing"
	"ai-chat-quota-be/pkg/clock"
	"ai-chat-quota-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type AuthSettings struct {
	JwtSecret      string
	AccessTokenTTL time.Duration
	BcryptCost     int // 0 uses bcrypt.DefaultCost
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	catalog    *memory.BundleCatalogCache
	clock      clock.Clock
	settings   AuthSettings
	logger     logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	catalog *memory.BundleCatalogCache,
	clk clock.Clock,
	settings AuthSettings,
	logger logger.ILogger,
) IAuthService {
	if settings.BcryptCost == 0 {
		settings.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		uowFactory: uowFactory,
		publisher:  publisher,
		catalog:    catalog,
		clock:      clk,
		settings:   settings,
		logger:     logger,
	}
}

// Register creates the user together with a default BASIC monthly bundle.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.settings.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	maxMessages, price, err := billing.PriceFor(entity.BundleTierBasic, entity.BillingCycleMonthly)
	if err != nil {
		return nil, err
	}
	defaultBundle := entity.NewBundle(user.Id, entity.BundleTierBasic, maxMessages, price, entity.BillingCycleMonthly, now)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		// A concurrent registration can win between the lookup and the insert.
		if errors.Is(err, contract.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := uow.BundleRepository().Create(ctx, defaultBundle); err != nil {
		return nil, fmt.Errorf("create default bundle: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	s.catalog.Invalidate()

	s.logger.Info(logger.ModuleAuth, "User registered", map[string]interface{}{
		"user_id":   user.Id.String(),
		"bundle_id": defaultBundle.Id.String(),
	})

	s.publisher.Publish(ctx, events.New(events.UserRegistered, map[string]interface{}{
		"user_id":   user.Id.String(),
		"email":     user.Email,
		"full_name": user.FullName,
		"bundle_id": defaultBundle.Id.String(),
	}, now))

	res := mapper.ToUserResponse(user)
	return &res, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Warn(logger.ModuleAuth, "Failed login attempt", map[string]interface{}{
				"user_id": user.Id.String(),
			})
			return nil, ErrInvalidPassword
		}
		return nil, err
	}

	token, err := serverutils.GenerateAccessToken(s.settings.JwtSecret, user.Id, user.Email, s.settings.AccessTokenTTL, s.clock.Now())
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		User:        mapper.ToUserResponse(user),
		AccessToken: token,
	}, nil
}
