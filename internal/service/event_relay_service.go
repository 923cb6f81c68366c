// FILE: internal/service/event_relay_service.go
package service

import (
	"context"
	"time"

	"ai-chat-quota-be/internal/pkg/logger"
	"ai-chat-quota-be/internal/pkg/mailer"
	"ai-chat-quota-be/internal/pkg/metrics"
	"ai-chat-quota-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder ships events out of the process. *nats.Publisher implements it.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type IEventRelayService interface {
	Consume(ctx context.Context) error
}

type eventRelayService struct {
	subscriber   message.Subscriber
	topicName    string
	forwarder    EventForwarder // nil when NATS is not configured
	emailService mailer.IEmailService
	logger       logger.ILogger
}

func NewEventRelayService(
	subscriber message.Subscriber,
	topicName string,
	forwarder EventForwarder,
	emailService mailer.IEmailService,
	logger logger.ILogger,
) IEventRelayService {
	return &eventRelayService{
		subscriber:   subscriber,
		topicName:    topicName,
		forwarder:    forwarder,
		emailService: emailService,
		logger:       logger,
	}
}

// Consume subscribes to the domain topic and handles messages until ctx is done.
func (s *eventRelayService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *eventRelayService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Decode(msg.Payload)
	if err != nil {
		s.logger.Error(logger.ModuleEvents, "Dropping malformed domain event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if s.forwarder != nil {
		fwdCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := s.forwarder.Publish(fwdCtx, event)
		cancel()
		if err != nil {
			metrics.EventsRelayedTotal.WithLabelValues(event.Type, "error").Inc()
			s.logger.Warn(logger.ModuleEvents, "Failed to forward event to NATS", map[string]interface{}{
				"type":  event.Type,
				"error": err.Error(),
			})
		} else {
			metrics.EventsRelayedTotal.WithLabelValues(event.Type, "ok").Inc()
		}
	}

	s.notify(event)
	msg.Ack()
}

// notify sends the user-facing mail for the events that have one.
func (s *eventRelayService) notify(event events.BaseEvent) {
	if s.emailService == nil {
		return
	}

	var err error
	switch event.Type {
	case events.UserRegistered:
		err = s.emailService.SendWelcome(event.String("email"), event.String("full_name"))
	case events.BundlePaymentFailed:
		failedAt, parseErr := time.Parse(time.RFC3339Nano, event.String("failed_at"))
		if parseErr != nil {
			failedAt = event.OccurredAt
		}
		err = s.emailService.SendPaymentFailed(event.String("email"), event.String("tier"), failedAt)
	default:
		return
	}

	if err != nil {
		s.logger.Warn(logger.ModuleEvents, "Failed to send notification email", map[string]interface{}{
			"type":  event.Type,
			"error": err.Error(),
		})
	}
}
