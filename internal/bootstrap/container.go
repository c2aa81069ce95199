package bootstrap

import (
	"context"
	"log"
	"os"

	"adaptive-rag-be/internal/config"
	"adaptive-rag-be/internal/controller"
	"adaptive-rag-be/internal/pkg/logger"
	"adaptive-rag-be/internal/repository/unitofwork"
	"adaptive-rag-be/internal/service"
	"adaptive-rag-be/pkg/agent"
	"adaptive-rag-be/pkg/embedding"
	"adaptive-rag-be/pkg/llm/factory"
	pktNats "adaptive-rag-be/pkg/nats"
	"adaptive-rag-be/pkg/retrieval"
	"adaptive-rag-be/pkg/turnlock"
	"adaptive-rag-be/pkg/websearch"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config, db *gorm.DB) *Container {
	appLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 1. Event Bus (in-process, feeds the embedding consumer)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2. AI providers
	embeddingProvider := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}

	searchClient := websearch.NewTavilyClient(cfg.Keys.Tavily)

	// 3. Repositories
	uowFactory := unitofwork.NewRepositoryFactory(db)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		appLogger.Warn("bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		natsPub = nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		appLogger.Warn("bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		appLogger.Warn("bootstrap", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}

	turnLocker := turnlock.NewRedisLocker(rdb, 0)

	// 5. Answer engine, one instance per user built lazily
	retrievalStore := retrieval.NewStore(uowFactory, embeddingProvider, searchClient)
	completionGateway := agent.NewLLMGateway(llmProvider)
	flowLogger := log.New(os.Stdout, "[AGENT] ", log.LstdFlags)

	engineCache := agent.NewEngineCache(func() *agent.Engine {
		return agent.NewEngine(completionGateway, retrievalStore, flowLogger)
	})

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.ExampleTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.ExampleTopic,
		uowFactory,
		embeddingProvider,
	)

	authService := service.NewAuthService(uowFactory, cfg.Keys.JwtSecret, natsPub)
	chatService := service.NewChatService(uowFactory, engineCache, turnLocker, natsPub, cfg.Ai.MaxRetries)
	documentService := service.NewDocumentService(uowFactory, publisherService, natsPub)

	// 7. Controllers
	return &Container{
		AuthController:     controller.NewAuthController(authService),
		ChatController:     controller.NewChatController(chatService),
		DocumentController: controller.NewDocumentController(documentService),
		ConsumerService:    consumerService,
		Logger:             appLogger,
	}
}
