package bootstrap

import (
	"context"
	"log"

	"drive-copilot-be/internal/config"
	"drive-copilot-be/internal/controller"
	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/internal/pkg/secretbox"
	"drive-copilot-be/internal/pkg/serverutils"
	"drive-copilot-be/internal/repository/memory"
	"drive-copilot-be/internal/repository/unitofwork"
	"drive-copilot-be/internal/service"
	"drive-copilot-be/pkg/conversation/executor"
	"drive-copilot-be/pkg/conversation/generator"
	"drive-copilot-be/pkg/conversation/intent"
	"drive-copilot-be/pkg/conversation/state"
	"drive-copilot-be/pkg/drive"
	"drive-copilot-be/pkg/driveindex"
	"drive-copilot-be/pkg/llm/factory"

	pktNats "drive-copilot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	OAuthController     controller.IOAuthController
	AssistantController controller.IAssistantController
	DriveController     controller.IDriveController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func() error
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	crawlLogger := logger.NewIsolatedLogger(cfg.App.CrawlLogFilePath)

	box, err := secretbox.New(cfg.Keys.TokenEncryptionKey)
	if err != nil {
		log.Fatalf("[FATAL] TOKEN_ENCRYPTION_KEY is required: %v", err)
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	c := &Container{}
	c.closers = append(c.closers, pubSub.Close)

	// 2.5 Infrastructure
	// NATS
	var indexEvents service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		indexEvents = natsPub
		c.closers = append(c.closers, func() error {
			natsPub.Close()
			return nil
		})
	}

	// Drive index store
	var indexStore driveindex.Store
	switch cfg.Drive.IndexStore {
	case "redis":
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, rdb.Close)
		indexStore = driveindex.NewRedisStore(rdb)
		log.Printf("[INFO] Using Drive index store: REDIS")
	default:
		fileStore, err := driveindex.NewFileStore(cfg.Drive.CacheDir)
		if err != nil {
			log.Fatalf("[FATAL] Failed to prepare Drive cache dir %s: %v", cfg.Drive.CacheDir, err)
		}
		indexStore = fileStore
		log.Printf("[INFO] Using Drive index store: FILE (%s)", cfg.Drive.CacheDir)
	}

	// LLM Provider
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  llmBaseURL(cfg),
		APIKey:   cfg.Keys.GoogleGemini,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3. Services
	uowFactory := unitofwork.NewRepositoryFactory(db)
	oauthConf := service.NewGoogleOAuthConfig(cfg.Google)
	credentialService := service.NewCredentialService(
		uowFactory,
		box,
		oauthConf,
		drive.ClientConfig{PageSize: int64(cfg.Drive.PageSize), Retry: drive.DefaultRetryPolicy()},
		sysLogger,
	)

	crawler := driveindex.NewCrawler(drive.DefaultRetryPolicy(), cfg.Timeouts.Google, crawlLogger)
	indexManager := driveindex.NewManager(indexStore, crawler, cfg.Drive.IndexTTL, cfg.Timeouts.Crawl, crawlLogger)

	publisherService := service.NewPublisherService(cfg.App.CrawlTopic, pubSub)
	driveIndexService := service.NewDriveIndexService(
		indexManager,
		credentialService,
		publisherService,
		indexEvents,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.CrawlTopic,
		driveIndexService,
		cfg.Drive.Workers,
		cfg.Timeouts.Crawl,
		crawlLogger,
	)

	// In-Memory Conversation Storage
	conversations := memory.NewConversationRepository(
		cfg.Conversation.PendingTTL,
		cfg.Conversation.HistoryTTL,
		cfg.Conversation.MaxHistory,
	)

	conversationExecutor := executor.NewExecutor(executor.Dependencies{
		Store:         conversations,
		Parser:        intent.NewParser(llmProvider, cfg.Timeouts.LLM, sysLogger),
		Generator:     generator.NewGenerator(llmProvider, cfg.Timeouts.LLM, sysLogger),
		Connector:     credentialService,
		Indexes:       indexManager,
		Resolver:      driveindex.NewResolver(indexManager),
		Rebuilds:      driveIndexService,
		States:        state.NewManager(sysLogger),
		Logger:        sysLogger,
		GoogleTimeout: cfg.Timeouts.Google,
	})

	assistantService := service.NewAssistantService(conversationExecutor, conversations, sysLogger)
	oauthService := service.NewOAuthService(oauthConf, cfg.App.JwtSecret, credentialService, driveIndexService, sysLogger)

	// 4. Controllers
	auth := serverutils.JwtMiddleware(cfg.App.JwtSecret)

	c.OAuthController = controller.NewOAuthController(oauthService, auth, cfg.App.ClientURL, cfg.IsProduction())
	c.AssistantController = controller.NewAssistantController(assistantService, auth)
	c.DriveController = controller.NewDriveController(driveIndexService, auth)
	c.ConsumerService = consumerService

	return c
}

// Close releases the event bus and the broker connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			log.Printf("[WARN] Failed to close resource: %v", err)
		}
	}
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.GeminiBaseURL
}
