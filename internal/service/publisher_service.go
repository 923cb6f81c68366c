package service

import (
	"context"
	"fmt"

	"ai-chat-quota-be/internal/pkg/logger"
	"ai-chat-quota-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// DomainEventsTopic is the in-process topic every domain event is published on.
const DomainEventsTopic = "domain.events"

type IPublisherService interface {
	// Publish is best effort: failures are logged, never returned to the caller's flow.
	Publish(ctx context.Context, event events.Event)
}

type publisherService struct {
	topicName string
	publisher message.Publisher
	logger    logger.ILogger
}

func NewPublisherService(topicName string, publisher message.Publisher, logger logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *publisherService) Publish(ctx context.Context, event events.Event) {
	if err := s.publish(ctx, event); err != nil {
		s.logger.Warn(logger.ModuleEvents, "Failed to publish domain event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

func (s *publisherService) publish(ctx context.Context, event events.Event) error {
	payload, err := events.Encode(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", event.EventType())

	if err := s.publisher.Publish(s.topicName, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.EventType(), err)
	}
	return nil
}
