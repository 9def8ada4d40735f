package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"voice-coach-be/internal/config"
	"voice-coach-be/internal/controller"
	"voice-coach-be/internal/pkg/logger"
	"voice-coach-be/internal/pkg/serverutils"
	"voice-coach-be/internal/repository/contract"
	"voice-coach-be/internal/repository/implementation"
	"voice-coach-be/internal/repository/memory"
	"voice-coach-be/internal/repository/sqlite"
	"voice-coach-be/internal/service"
	"voice-coach-be/internal/websocket"
	"voice-coach-be/pkg/ai/prompt"
	"voice-coach-be/pkg/ai/router"
	"voice-coach-be/pkg/database"
	"voice-coach-be/pkg/document"
	"voice-coach-be/pkg/signal"

	pktNats "voice-coach-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	TokenController    controller.ITokenController
	HealthController   controller.IHealthController
	SessionController  controller.ISessionController

	// Long-lived pieces main.go runs and stops
	Orchestrator service.ISessionOrchestrator
	WebSocketHub *websocket.Hub
	Logger       logger.ILogger

	closers []func() error
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	channelLogger := logger.NewIsolatedLogger(cfg.App.ChannelLogFilePath)
	c.Logger = sysLogger
	c.closers = append(c.closers, func() error {
		// stdout cannot always be synced; losing that error is fine
		_ = channelLogger.Sync()
		_ = sysLogger.Sync()
		return nil
	})

	// 2. Profile persistence
	profileRepo, err := c.newProfileRepository(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	// 3. Document update signal
	bus, err := c.newSignalBus(ctx, cfg, sysLogger)
	if err != nil {
		c.Close()
		return nil, err
	}
	log.Printf("[INFO] Using document signal backend: %s", cfg.Signal.Backend)

	// 4. Document pipeline
	documentRepo := memory.NewDocumentRepository()
	documentService := service.NewDocumentService(document.NewTextExtractor(), documentRepo, bus, sysLogger)

	candidates := document.CandidatesFromEndpoints(cfg.Session.DocumentEndpoints, documentRepo, &http.Client{})
	for _, cand := range candidates {
		log.Printf("[INFO] Document candidate: %s (timeout %s)", cand.Source.Name(), cand.Timeout)
	}
	fetcher := document.NewFetcher(sysLogger, candidates...)

	// 5. Session core
	renderer := prompt.NewCoachRenderer()
	msgRouter := router.NewRouter(renderer, cfg.Session.ReminderExcerpt)
	poller := service.NewContextPoller(bus, bus, cfg.Session.PollInterval, cfg.Session.PollMaxBackoff, sysLogger)

	orchestrator := service.NewSessionOrchestrator(
		fetcher,
		renderer,
		msgRouter,
		poller,
		service.OrchestratorOptions{
			WelcomeAttempts:   cfg.Session.WelcomeAttempts,
			WelcomeRetryDelay: cfg.Session.WelcomeRetryDelay,
		},
		sysLogger,
	)
	c.Orchestrator = orchestrator
	profileService := service.NewProfileService(profileRepo, orchestrator, sysLogger)

	// 6. Conversation channel
	wsHub := websocket.NewHub(orchestrator.OnSessionEnded, channelLogger)
	sessionHandler := websocket.NewSessionHandler(wsHub, orchestrator, profileService, sysLogger, channelLogger)
	c.WebSocketHub = wsHub

	// 7. Controllers
	issuer := serverutils.NewJoinTokenIssuer(cfg.Keys.LiveKitAPIKey, cfg.Keys.LiveKitAPISecret, cfg.Keys.TokenTTL)
	c.DocumentController = controller.NewDocumentController(documentService)
	c.TokenController = controller.NewTokenController(issuer, orchestrator)
	c.HealthController = controller.NewHealthController(orchestrator, documentService)
	c.SessionController = controller.NewSessionController(sessionHandler, issuer)

	return c, nil
}

func (c *Container) newProfileRepository(ctx context.Context, cfg *config.Config) (contract.ProfileRepository, error) {
	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.Connection == "" {
			return nil, errors.New("DB_CONNECTION_STRING is required for the postgres driver")
		}
		gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to postgres: %w", err)
		}
		if sqlDB, err := gormDB.DB(); err == nil {
			c.closers = append(c.closers, sqlDB.Close)
		}
		log.Printf("[INFO] Using profile store: POSTGRES")
		return implementation.NewProfileRepository(gormDB), nil

	case "sqlite", "":
		db, err := database.NewSQLiteDB(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, db.Close)
		repo, err := sqlite.NewProfileRepository(ctx, db)
		if err != nil {
			return nil, err
		}
		log.Printf("[INFO] Using profile store: SQLITE (%s)", cfg.Database.SQLitePath)
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Database.Driver)
	}
}

func (c *Container) newSignalBus(ctx context.Context, cfg *config.Config, sysLogger logger.ILogger) (signal.Bus, error) {
	var (
		bus signal.Bus
		err error
	)

	switch cfg.Signal.Backend {
	case signal.BackendMemory, "":
		bus = signal.NewMemorySignal()

	case signal.BackendWatermill:
		pubSub := gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(false, false),
		)
		c.closers = append(c.closers, pubSub.Close)
		bus, err = signal.NewWatermillSignal(pubSub, cfg.Signal.Topic, sysLogger)

	case signal.BackendFile:
		bus, err = signal.NewFileSignal(cfg.Signal.MarkerDir, sysLogger)

	case signal.BackendRedis:
		opt, parseErr := redis.ParseURL(cfg.App.RedisURL)
		if parseErr != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", parseErr)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, pingErr := rdb.Ping(ctx).Result(); pingErr != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", pingErr)
		}
		c.closers = append(c.closers, rdb.Close)
		bus = signal.NewRedisSignal(rdb, cfg.Signal.KeyPrefix)

	case signal.BackendNats:
		natsPub, pubErr := pktNats.NewPublisher(cfg.App.NatsURL)
		if pubErr != nil {
			return nil, fmt.Errorf("failed to connect to NATS publisher: %w", pubErr)
		}
		natsSub, subErr := pktNats.NewSubscriber(cfg.App.NatsURL)
		if subErr != nil {
			natsPub.Close()
			return nil, fmt.Errorf("failed to connect to NATS subscriber: %w", subErr)
		}
		// NewNatsSignal closes both connections if it cannot subscribe.
		bus, err = signal.NewNatsSignal(ctx, natsPub, natsSub)

	default:
		return nil, fmt.Errorf("unknown SIGNAL_BACKEND %q", cfg.Signal.Backend)
	}

	if err != nil {
		return nil, err
	}
	// The bus must stop before anything it was built on.
	c.closers = append(c.closers, bus.Close)
	return bus, nil
}

// Close releases everything the container opened, newest first.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
