package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-chat-quota-be/internal/dto"
	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/mapper"
	"ai-chat-quota-be/internal/pkg/logger"
	"ai-chat-quota-be/internal/pkg/metrics"
	"ai-chat-quota-be/internal/repository/memory"
	"ai-chat-quota-be/internal/repository/specification"
	"ai-chat-quota-be/internal/repository/unitofwork"
	"ai-chat-quota-be/pkg/clock"
	"ai-chat-quota-be/pkg/events"
	"ai-chat-quota-be/pkg/llm"
	"ai-chat-quota-be/pkg/quota"

	"github.com/google/uuid"
)

type IChatService interface {
	Chat(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*dto.ChatResponse, error)
	GetMonthlyUsage(ctx context.Context, userId uuid.UUID) (*dto.MonthlyUsageResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	ledger     *quota.Ledger
	generator  llm.ResponseGenerator
	publisher  IPublisherService
	catalog    *memory.BundleCatalogCache
	clock      clock.Clock
	logger     logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	ledger *quota.Ledger,
	generator llm.ResponseGenerator,
	publisher IPublisherService,
	catalog *memory.BundleCatalogCache,
	clk clock.Clock,
	logger logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		ledger:     ledger,
		generator:  generator,
		publisher:  publisher,
		catalog:    catalog,
		clock:      clk,
		logger:     logger,
	}
}

// Chat charges one message, then generates the answer and records the interaction.
// The charge is committed before generation and is not refunded if generation fails.
func (s *chatService) Chat(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question must not be empty", ErrInvalidInput)
	}

	charged, err := s.chargeOne(ctx, userId)
	if err != nil {
		return nil, err
	}

	completion, err := s.generator.Generate(ctx, question)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Error(logger.ModuleChat, "Answer generation failed after quota was charged", map[string]interface{}{
			"user_id":   userId.String(),
			"bundle_id": charged.Id.String(),
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	message := &entity.ChatMessage{
		Id:         uuid.New(),
		UserId:     userId,
		Question:   question,
		Answer:     completion.Answer,
		TokensUsed: completion.TokensUsed,
		Metadata: entity.ChatMessageMetadata{
			BundleId:  charged.Id,
			Tier:      charged.Tier,
			LatencyMs: completion.Latency.Milliseconds(),
			Provider:  completion.Provider,
		},
		CreatedAt: s.clock.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().Create(ctx, message); err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Error(logger.ModuleChat, "Failed to save chat message", map[string]interface{}{
			"user_id":   userId.String(),
			"bundle_id": charged.Id.String(),
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("save chat message: %w", err)
	}

	metrics.ChatRequestsTotal.WithLabelValues("answered").Inc()
	metrics.ChatTokensTotal.Add(float64(completion.TokensUsed))
	metrics.AnswerLatency.Observe(completion.Latency.Seconds())

	return mapper.ToChatResponse(message), nil
}

func (s *chatService) chargeOne(ctx context.Context, userId uuid.UUID) (*entity.Bundle, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	charged, err := s.ledger.ConsumeOneUnit(ctx, uow, userId)
	if err != nil {
		switch {
		case errors.Is(err, quota.ErrNoActiveSubscription):
			metrics.ChatRequestsTotal.WithLabelValues("no_subscription").Inc()
		case errors.Is(err, quota.ErrQuotaExhausted):
			metrics.ChatRequestsTotal.WithLabelValues("exhausted").Inc()
			s.publisher.Publish(ctx, events.New(events.QuotaExhausted, map[string]interface{}{
				"user_id": userId.String(),
			}, s.clock.Now()))
		default:
			metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	s.catalog.Invalidate()

	metrics.QuotaConsumedTotal.WithLabelValues(string(charged.Tier)).Inc()
	s.logger.Debug(logger.ModuleChat, "Quota charged", map[string]interface{}{
		"user_id":       userId.String(),
		"bundle_id":     charged.Id.String(),
		"tier":          string(charged.Tier),
		"messages_used": charged.MessagesUsed,
	})
	return charged, nil
}

// GetChatHistory returns the user's chat records newest first. A limit of 0 returns all of them.
func (s *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*dto.ChatResponse, error) {
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", ErrInvalidInput)
	}

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.NewestFirst(),
	}
	if limit > 0 {
		specs = append(specs, specification.Pagination{Limit: limit, Offset: offset})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChatResponse, 0, len(messages))
	for _, m := range messages {
		res = append(res, mapper.ToChatResponse(m))
	}
	return res, nil
}

// GetMonthlyUsage reports usage of each ACTIVE bundle, newest first.
func (s *chatService) GetMonthlyUsage(ctx context.Context, userId uuid.UUID) (*dto.MonthlyUsageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	bundles, err := uow.BundleRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByBundleStatus{Status: entity.BundleStatusActive},
		specification.NewestFirst(),
	)
	if err != nil {
		return nil, err
	}

	usages := make([]dto.BundleUsage, 0, len(bundles))
	for _, b := range bundles {
		usages = append(usages, dto.BundleUsage{
			BundleId:          b.Id,
			Tier:              string(b.Tier),
			MessagesUsed:      b.MessagesUsed,
			MaxMessages:       b.MaxMessages,
			RemainingMessages: b.RemainingMessages(),
		})
	}
	return &dto.MonthlyUsageResponse{BundleUsages: usages}, nil
}
