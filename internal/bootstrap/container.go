package bootstrap

import (
	"context"
	"fmt"
	"log"

	"ai-scheduler-be/internal/config"
	"ai-scheduler-be/internal/controller"
	"ai-scheduler-be/internal/pkg/logger"
	"ai-scheduler-be/internal/repository/contract"
	"ai-scheduler-be/internal/repository/implementation"
	"ai-scheduler-be/internal/repository/memory"
	"ai-scheduler-be/internal/service"
	"ai-scheduler-be/pkg/ai/fallback"
	"ai-scheduler-be/pkg/database"
	"ai-scheduler-be/pkg/dispatch"
	"ai-scheduler-be/pkg/events"
	"ai-scheduler-be/pkg/intent/classifier"
	"ai-scheduler-be/pkg/llm"
	"ai-scheduler-be/pkg/llm/factory"
	pktNats "ai-scheduler-be/pkg/nats"
	"ai-scheduler-be/pkg/pending"
	"ai-scheduler-be/pkg/pending/gormstore"
	"ai-scheduler-be/pkg/pending/redisstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	IntentController controller.IIntentController

	// Services (exposed for cmd/simulation)
	IntentService service.IIntentService

	Logger logger.ILogger

	closers  []func()
	listener func(ctx context.Context) error
}

// NewContainer wires every dependency named by cfg. Connections that are not
// needed by the selected backends are never opened.
func NewContainer(cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger}

	var db *gorm.DB
	openDB := func() (*gorm.DB, error) {
		if db != nil {
			return db, nil
		}
		var err error
		db, err = database.Open(database.Options{
			DSN:             cfg.Database.Connection,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		return db, nil
	}

	// 1. Pending store
	store, err := newPendingStore(cfg, openDB)
	if err != nil {
		return nil, err
	}

	// 2. Contact directory
	var contacts contract.ContactRepository
	switch cfg.Intent.ContactsBackend {
	case "gorm":
		gdb, err := openDB()
		if err != nil {
			return nil, err
		}
		repo := implementation.NewContactRepository(gdb).(*implementation.ContactRepositoryImpl)
		if err := repo.Migrate(context.Background()); err != nil {
			return nil, fmt.Errorf("migrate contacts: %w", err)
		}
		contacts = repo
	default:
		contacts = memory.NewContactRepository()
	}

	// 3. Model fallback
	var router *fallback.Router
	if cfg.Intent.AIEnabled {
		provider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.LLMBaseURL, cfg.Ai.HuggingFaceKey)
		if err != nil {
			return nil, fmt.Errorf("init LLM provider: %w", err)
		}
		if provider != nil {
			router = fallback.NewRouter(
				fallback.FromProvider(provider, llm.WithJSON(), llm.WithTemperature(0)),
				fallback.Config{
					Timeout:      cfg.Intent.AITimeout,
					Retries:      cfg.Intent.AIRetries,
					Threshold:    cfg.Intent.ConfidenceThreshold,
					HistoryTurns: cfg.Intent.HistoryTurns,
				},
				sysLogger,
			)
			log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
		}
	}

	// 4. Executor hand-off
	dispatcher, err := c.newDispatcher(cfg, sysLogger)
	if err != nil {
		return nil, err
	}

	intentService := service.NewIntentService(service.IntentServiceDeps{
		Chain:      classifier.NewDefault(),
		Store:      store,
		Router:     router,
		Contacts:   contacts,
		Dispatcher: dispatcher,
		TTL: service.PendingTTL{
			Confirmation: cfg.Intent.ConfirmationTTL,
			Selection:    cfg.Intent.SelectionTTL,
		},
		Logger: sysLogger,
	})

	c.IntentService = intentService
	c.IntentController = controller.NewIntentController(intentService)
	return c, nil
}

func newPendingStore(cfg *config.Config, openDB func() (*gorm.DB, error)) (pending.Store, error) {
	switch cfg.Intent.PendingBackend {
	case "redis":
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return redisstore.New(rdb, cfg.Intent.PendingTTL), nil
	case "gorm":
		gdb, err := openDB()
		if err != nil {
			return nil, err
		}
		store := gormstore.New(gdb)
		if err := store.Migrate(context.Background()); err != nil {
			return nil, fmt.Errorf("migrate pending: %w", err)
		}
		return store, nil
	case "memory", "":
		return pending.NewMemoryStore(cfg.Intent.PendingTTL, cfg.Intent.PendingTTL/3), nil
	default:
		return nil, fmt.Errorf("unsupported pending backend: %s", cfg.Intent.PendingBackend)
	}
}

func (c *Container) newDispatcher(cfg *config.Config, sysLogger logger.ILogger) (dispatch.Dispatcher, error) {
	switch cfg.Intent.DispatchDriver {
	case "nats":
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, natsPub.Close)

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			c.closers = append(c.closers, natsSub.Close)
			c.listener = func(ctx context.Context) error {
				return natsSub.Subscribe(ctx, pktNats.SubjectPrefix+".>", "intent-audit", func(_ context.Context, ev events.Event) error {
					auditEvent(sysLogger, ev)
					return nil
				})
			}
		}
		return dispatch.NewJetStream(natsPub, sysLogger), nil

	case "gochannel":
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
		c.closers = append(c.closers, func() { _ = pubSub.Close() })
		c.listener = func(ctx context.Context) error {
			return dispatch.Listen(ctx, pubSub, sysLogger, func(_ context.Context, ev events.IntentResolved) error {
				auditEvent(sysLogger, ev)
				return nil
			})
		}
		return dispatch.NewBus(pubSub, sysLogger), nil

	case "none", "":
		return dispatch.Nop{}, nil
	default:
		return nil, fmt.Errorf("unsupported dispatch driver: %s", cfg.Intent.DispatchDriver)
	}
}

// auditEvent records what executors were handed; it executes nothing
func auditEvent(l logger.ILogger, ev events.Event) {
	l.Info("DISPATCH", "Intent handed to executors", map[string]interface{}{
		"event_type": ev.EventType(),
		"payload":    ev.Payload(),
	})
}

// StartListeners starts the dispatch audit consumer, if the driver has one
func (c *Container) StartListeners(ctx context.Context) error {
	if c.listener == nil {
		return nil
	}
	return c.listener(ctx)
}

// Close releases bus connections and flushes the logger
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
