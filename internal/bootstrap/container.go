package bootstrap

import (
	"context"
	"fmt"
	"log"

	"stock-ticker-be/internal/config"
	"stock-ticker-be/internal/controller"
	"stock-ticker-be/internal/handler"
	"stock-ticker-be/internal/pkg/logger"
	"stock-ticker-be/internal/repository/unitofwork"
	"stock-ticker-be/internal/service"
	internalWS "stock-ticker-be/internal/websocket"
	"stock-ticker-be/pkg/catalog"
	"stock-ticker-be/pkg/database"
	"stock-ticker-be/pkg/llm/factory"
	pktNats "stock-ticker-be/pkg/nats"
	"stock-ticker-be/pkg/reasoning"
	"stock-ticker-be/pkg/ticker"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	TickerController   controller.ITickerController
	ExchangeController controller.IExchangeController
	HealthController   controller.IHealthController

	// WebSockets
	FeedHandler *handler.FeedHandler
	FeedHub     *internalWS.Hub

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Pipeline is shared with the CLI.
	Pipeline *ticker.Pipeline
	Logger   logger.ILogger

	closers []func()
}

// Options tweak the container for non-HTTP entrypoints.
type Options struct {
	Observer ticker.Observer
	Logger   logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config, opts Options) (*Container, error) {
	if err := cfg.Pipeline.Validate(); err != nil {
		return nil, err
	}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := opts.Logger
	if sysLogger == nil {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	}
	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// Redis backs the L2 catalog cache and the cross-instance feed; both
	// work without it.
	rdb := newRedis(cfg.App.RedisURL)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 3. Catalog
	var store ticker.CatalogStore = catalog.NewStore(uowFactory, cfg.Database.SearchConfig, cfg.Database.LookupLimit)
	if cfg.Cache.Enabled {
		store = catalog.NewCachedStore(store, cfg.Cache.L1TTL, cfg.Cache.L2TTL, rdb, sysLogger)
	}

	// 4. Reasoning
	llmProvider, err := factory.NewLLMProvider(context.Background(), cfg.Ai)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	capability := reasoning.NewLLMCapability(llmProvider)

	// 5. Pipeline
	pipelineOpts := []ticker.Option{
		ticker.WithMaxCycles(cfg.Pipeline.MaxCycles),
		ticker.WithRequestTimeout(cfg.Pipeline.RequestTimeout),
		ticker.WithLogger(sysLogger),
	}
	if opts.Observer != nil {
		pipelineOpts = append(pipelineOpts, ticker.WithObserver(opts.Observer))
	}
	c.Pipeline = ticker.NewPipeline(
		ticker.NewExtractor(capability, cfg.Pipeline.ReasoningTimeout),
		ticker.NewResolver(store, cfg.Pipeline.StoreTimeout, sysLogger),
		ticker.NewGrader(capability, cfg.Pipeline.ReasoningTimeout),
		ticker.NewRewriter(capability, cfg.Pipeline.ReasoningTimeout),
		pipelineOpts...,
	)

	// 6. Events: in-process bus, forwarded to the websocket feed and to
	// NATS when it is reachable.
	eventLogger := logger.NewIsolatedLogger("logs/events.log")
	c.FeedHub = internalWS.NewHub(rdb, eventLogger)
	c.FeedHandler = handler.NewFeedHandler(c.FeedHub, sysLogger)
	bus := service.FanoutPublisher{c.FeedHub}

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		bus = append(bus, natsPub)
		c.closers = append(c.closers, natsPub.Close)
	}

	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.App.EventTopic,
		bus,
		eventLogger,
	)

	// 7. Services & Controllers
	tickerService := service.NewTickerService(c.Pipeline, publisherService, sysLogger)
	healthService := service.NewHealthService(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	})

	c.TickerController = controller.NewTickerController(tickerService)
	c.ExchangeController = controller.NewExchangeController(service.NewExchangeService(uowFactory))
	c.HealthController = controller.NewHealthController(healthService)

	return c, nil
}

// Close releases the connections opened by NewContainer, newest first.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

// newRedis returns nil when no URL is configured; the catalog cache then
// stays process-local.
func newRedis(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}
