package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"ai-chat-quota-be/internal/config"
	"ai-chat-quota-be/internal/controller"
	"ai-chat-quota-be/internal/pkg/logger"
	"ai-chat-quota-be/internal/pkg/mailer"
	"ai-chat-quota-be/internal/pkg/serverutils"
	"ai-chat-quota-be/internal/repository/memory"
	"ai-chat-quota-be/internal/repository/unitofwork"
	"ai-chat-quota-be/internal/scheduler"
	"ai-chat-quota-be/internal/service"
	"ai-chat-quota-be/pkg/billing"
	"ai-chat-quota-be/pkg/clock"
	"ai-chat-quota-be/pkg/llm/factory"
	"ai-chat-quota-be/pkg/lock"
	"ai-chat-quota-be/pkg/quota"

	pktNats "ai-chat-quota-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Container struct {
	Logger *logger.ZapLogger

	// Controllers
	AuthController         controller.IAuthController
	UserController         controller.IUserController
	SubscriptionController controller.ISubscriptionController
	ChatController         controller.IChatController

	// Background Services (Exposed for main.go to run)
	EventRelayService service.IEventRelayService
	RenewalService    service.IRenewalService
	RenewalTimer      *scheduler.RenewalTimer

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	clk := clock.Real()
	c := &Container{Logger: sysLogger}

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			fmt.Sprintf("%s <%s>", cfg.SMTP.SenderName, cfg.SMTP.Email),
			sysLogger,
		)
	} else {
		log.Printf("[WARN] SMTP_HOST not set, notification emails are disabled")
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var locker lock.Locker = lock.Local{}
	if cfg.App.RedisURL != "" {
		rdb := lock.NewRedisClient(cfg.App.RedisURL)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Renewal sweep runs without a lock", err)
		} else {
			locker = lock.NewRedisLocker(rdb)
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	authorizer, err := newAuthorizer(cfg.Billing)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize payment authorizer: %v", err)
	}
	log.Printf("[INFO] Using payment authorizer: %s", cfg.Billing.Authorizer)

	generator, err := factory.NewResponseGenerator(cfg.MockAI)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize answer generator: %v", err)
	}
	log.Printf("[INFO] Using answer generator: %s", cfg.MockAI.Provider)

	catalog := memory.NewBundleCatalogCache(cfg.Cache.PublicBundlesTTL)

	// 4. Services
	publisherService := service.NewPublisherService(service.DomainEventsTopic, pubSub, sysLogger)
	c.EventRelayService = service.NewEventRelayService(
		pubSub,
		service.DomainEventsTopic,
		forwarder,
		emailService,
		sysLogger,
	)

	authService := service.NewAuthService(uowFactory, publisherService, catalog, clk, service.AuthSettings{
		JwtSecret:      cfg.Auth.JwtSecret,
		AccessTokenTTL: cfg.Auth.AccessTokenTTL,
		BcryptCost:     bcrypt.DefaultCost,
	}, sysLogger)
	userService := service.NewUserService(uowFactory, clk, sysLogger)
	subscriptionService := service.NewSubscriptionService(uowFactory, authorizer, publisherService, catalog, clk, sysLogger)
	chatService := service.NewChatService(uowFactory, quota.NewLedger(), generator, publisherService, catalog, clk, sysLogger)
	c.RenewalService = service.NewRenewalService(uowFactory, authorizer, publisherService, catalog, clk, sysLogger)

	c.RenewalTimer = scheduler.NewRenewalTimer(
		c.RenewalService,
		locker,
		cfg.Billing.RenewalInterval,
		cfg.Billing.RenewalLockTTL,
		sysLogger,
	)

	// 5. Controllers
	jwt := serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret, clk)
	c.AuthController = controller.NewAuthController(authService)
	c.UserController = controller.NewUserController(userService, jwt)
	c.SubscriptionController = controller.NewSubscriptionController(subscriptionService, jwt)
	c.ChatController = controller.NewChatController(chatService, jwt)

	return c
}

// Close releases connections opened by NewContainer, newest first.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newAuthorizer(cfg config.BillingConfig) (billing.PaymentAuthorizer, error) {
	switch cfg.Authorizer {
	case "", "random":
		return billing.NewRandomFailure(cfg.FailureRate, time.Now().UnixNano()), nil
	case "always":
		return billing.AlwaysSucceeds(), nil
	case "midtrans":
		if cfg.MidtransServerKey == "" {
			return nil, fmt.Errorf("MIDTRANS_SERVER_KEY is required for the midtrans authorizer")
		}
		return billing.NewMidtransAuthorizer(cfg.MidtransServerKey, cfg.MidtransIsProd), nil
	default:
		return nil, fmt.Errorf("unsupported payment authorizer: %s", cfg.Authorizer)
	}
}
