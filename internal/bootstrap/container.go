package bootstrap

import (
	"context"
	"log"
	"time"

	"confidential-chat-be/internal/config"
	"confidential-chat-be/internal/controller"
	"confidential-chat-be/internal/pkg/logger"
	"confidential-chat-be/internal/pkg/mailer"
	"confidential-chat-be/internal/pkg/privacy"
	"confidential-chat-be/internal/pkg/serverutils"
	"confidential-chat-be/internal/repository/memory"
	"confidential-chat-be/internal/repository/unitofwork"
	"confidential-chat-be/internal/service"
	"confidential-chat-be/pkg/chatevents"
	"confidential-chat-be/pkg/wellness"

	pktNats "confidential-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController      controller.IChatController
	InstituteController controller.IInstituteController
	Auth                fiber.Handler

	// Background Services (Exposed for main.go to run)
	ExpiryService      service.IExpiryService
	EscalationConsumer service.IEscalationConsumer

	Logger  logger.ILogger
	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	masker := privacy.NewPseudonymizer(cfg.App.PseudonymKey)
	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	// NATS audit stream
	var auditPublisher chatevents.Publisher = chatevents.NopPublisher{}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, cfg.Session.TTL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		auditPublisher = chatevents.NewNatsPublisher(natsPub, masker, sysLogger)
		c.closers = append(c.closers, natsPub.Close)
	}

	// Poll cache: Redis when reachable so every instance sees the same
	// invalidations, process memory otherwise.
	pollCache := newPollCache(cfg, sysLogger, c)

	// Mailer
	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			sysLogger,
		)
	} else {
		log.Println("[INFO] SMTP not configured, escalations are logged only")
	}

	// 4. Services
	clock := service.Clock(service.SystemClock)
	ttl := cfg.Session.TTL

	escalationPublisher := service.NewEscalationPublisher(service.EscalationTopic, pubSub)
	escalationLogger := logger.NewIsolatedLogger("logs/escalation.log")

	sessionService := service.NewSessionService(uowFactory, auditPublisher, pollCache, sysLogger, ttl, clock)
	messageService := service.NewMessageService(uowFactory, auditPublisher, pollCache, sysLogger, ttl, cfg.Session.MessageListLimit, clock)
	clinicalService := service.NewClinicalService(sessionService, escalationPublisher, sysLogger, clock)
	wellnessService := service.NewWellnessService(uowFactory, wellness.NewAggregator(sysLogger), ttl, clock)
	inboxService := service.NewInboxService(sessionService, messageService, pollCache, ttl, clock)

	c.ExpiryService = service.NewExpiryService(uowFactory, auditPublisher, sysLogger, ttl, cfg.Session.ReapInterval, clock)
	c.EscalationConsumer = service.NewEscalationConsumer(
		pubSub,
		service.EscalationTopic,
		emailService,
		cfg.SMTP.EscalationRecipient,
		escalationLogger,
	)

	// 5. Controllers
	c.Auth = serverutils.IdentityMiddleware(cfg.App.JwtSecret)
	c.ChatController = controller.NewChatController(sessionService, clinicalService, messageService, inboxService)
	c.InstituteController = controller.NewInstituteController(sessionService, clinicalService, wellnessService)

	return c
}

func newPollCache(cfg *config.Config, sysLogger logger.ILogger, c *Container) memory.PollCache {
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Using in-process poll cache", err)
		_ = rdb.Close()
		return memory.NewLocalPollCache(cfg.Session.PollCacheTTL)
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return memory.NewRedisPollCache(rdb, cfg.Session.PollCacheTTL, sysLogger)
}

// Close releases the broker and cache connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
