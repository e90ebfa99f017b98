package bootstrap

import (
	"context"
	"log"

	"ai-traininglab-be/internal/config"
	"ai-traininglab-be/internal/controller"
	"ai-traininglab-be/internal/pkg/logger"
	"ai-traininglab-be/internal/repository/memory"
	"ai-traininglab-be/internal/repository/unitofwork"
	"ai-traininglab-be/internal/service"
	"ai-traininglab-be/internal/websocket"
	"ai-traininglab-be/pkg/dispatch"
	"ai-traininglab-be/pkg/filehost"
	"ai-traininglab-be/pkg/llm"
	"ai-traininglab-be/pkg/llm/factory"
	"ai-traininglab-be/pkg/registry"
	"ai-traininglab-be/pkg/usage"

	pktNats "ai-traininglab-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatbotController      controller.IChatbotController
	ComparisonController   controller.IComparisonController
	UploadController       controller.IUploadController
	ModelController        controller.IModelController
	NotificationController controller.INotificationController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService

	// WebSockets & Notification
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
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

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Model catalog and dispatch
	reg := registry.New(registry.DefaultModels())

	providers := make(map[string]llm.LLMProvider)
	for _, providerType := range []string{"openai", "ollama"} {
		baseURL := cfg.Ai.OllamaBaseURL
		if providerType == "openai" {
			baseURL = cfg.Ai.OpenAIBaseURL
		}
		p, err := factory.NewLLMProvider(providerType, "", baseURL, cfg.Ai.OpenAIAPIKey)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize LLM Provider %s: %v", providerType, err)
		}
		providers[providerType] = p
	}
	dispatcher := dispatch.NewRelay(reg, providers)
	log.Printf("[INFO] Model catalog loaded with %d models", len(reg.List()))

	limiter := usage.NewLimiter(rdb, cfg.Usage.DailyDispatchLimit)
	fileHost := filehost.NewClient(cfg.FileHost.BaseURL, cfg.FileHost.APIKey)

	// Per-user engine runtime cache
	engineRepo := memory.NewEngineRepository()

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.PersistTopicName)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.PersistTopicName,
		uowFactory,
	)

	chatService := service.NewChatService(
		uowFactory,
		engineRepo,
		publisherService,
		natsPub,
		dispatcher,
		reg,
		limiter,
		fileHost,
		sysLogger,
		cfg.Ai.DefaultModel,
		cfg.Ai.CompareLeft,
		cfg.Ai.CompareRight,
	)
	uploadService := service.NewUploadService(chatService, natsPub, sysLogger)

	notifService := service.NewNotificationService(uowFactory, natsSub, wsHub, wsLogger) // Hub implements NotificationDelivery

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	// 5. Controllers
	return &Container{
		ChatbotController:      controller.NewChatbotController(chatService),
		ComparisonController:   controller.NewComparisonController(chatService),
		UploadController:       controller.NewUploadController(uploadService),
		ModelController:        controller.NewModelController(chatService),
		NotificationController: controller.NewNotificationController(notifService, wsHub, wsLogger),

		ConsumerService:     consumerService,
		NotificationService: notifService,
		WebSocketHub:        wsHub,
	}
}
