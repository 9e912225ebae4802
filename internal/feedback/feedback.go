// Package feedback wires the meal-feedback engine together: store and
// journal adapters, the live stream manager, the aggregation engine, the
// menu edit sessions, and the HTTP/WebSocket surface.
package feedback

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	httpadapter "pgfeedback/internal/feedback/adapter/http"
	redispersistence "pgfeedback/internal/feedback/adapter/persistence"
	mongodbpersistence "pgfeedback/internal/feedback/adapter/persistence/mongodb"
	"pgfeedback/internal/feedback/config"
	"pgfeedback/internal/feedback/domain/port"
	"pgfeedback/internal/feedback/usecase"
	"pgfeedback/internal/identity"
	"pgfeedback/internal/shared/eventbus"
	"pgfeedback/internal/shared/logger"
)

// Module bundles the engine's components behind one constructor.
type Module struct {
	Config *config.Config
	Logger logger.Logger

	Store   port.DocumentStore
	Journal port.EventJournal

	StreamManager   *usecase.StreamManager
	Aggregation     *usecase.AggregationEngine
	FeedbackService *usecase.FeedbackService
	MenuSessions    *usecase.MenuSessionRegistry
	AccessGate      *usecase.AccessGate
	Verifier        *identity.Verifier
	EventBus        *eventbus.EventBus

	RedisClient *redis.Client

	trimStop chan struct{}
}

// NewModule creates and wires the feedback module on top of the given
// database handles.
func NewModule(cfg *config.Config, log logger.Logger, db *mongo.Database, redisClient *redis.Client) (*Module, error) {
	log.Info("Initializing feedback module...")

	verifier, err := identity.NewVerifier(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	bus := eventbus.NewEventBus(log)
	journal := redispersistence.NewRedisEventJournal(redisClient, log)
	store := mongodbpersistence.NewStore(db, log)

	usecase.NewJournalRecorder(journal, log).Register(bus)

	m := &Module{
		Config:          cfg,
		Logger:          log,
		Store:           store,
		Journal:         journal,
		StreamManager:   usecase.NewStreamManager(store, log),
		Aggregation:     usecase.NewAggregationEngine(),
		FeedbackService: usecase.NewFeedbackService(store, bus, log),
		MenuSessions:    usecase.NewMenuSessionRegistry(store, bus, log),
		AccessGate:      usecase.NewAccessGate(),
		Verifier:        verifier,
		EventBus:        bus,
		RedisClient:     redisClient,
		trimStop:        make(chan struct{}),
	}

	log.Info("Feedback module initialized.")
	return m, nil
}

// RegisterRoutes mounts the REST and WebSocket surfaces on the router.
func (m *Module) RegisterRoutes(router fiber.Router) {
	middleware := httpadapter.NewAuthMiddleware(m.Verifier, m.AccessGate)

	router.Use(httpadapter.RequestID())
	router.Use(httpadapter.CORS())
	router.Use(middleware.ResolveIdentity())

	handler := httpadapter.NewHandler(
		m.FeedbackService,
		m.Aggregation,
		m.MenuSessions,
		m.Store,
		m.Journal,
		middleware,
		m.Logger,
	)
	handler.RegisterRoutes(router)

	wsHandler := httpadapter.NewWebSocketHandler(
		m.StreamManager,
		m.Aggregation,
		m.Verifier,
		m.AccessGate,
		m.Logger,
	)
	wsHandler.RegisterRoutes(router, m.Config.Realtime.WebSocketPath)

	m.Logger.Info("Feedback HTTP and WebSocket routes registered.")
}

// StartBackgroundServices starts the periodic journal trim.
func (m *Module) StartBackgroundServices() {
	retention, err := time.ParseDuration(m.Config.JournalRetention)
	if err != nil || retention <= 0 {
		retention = 7 * 24 * time.Hour
	}

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-m.trimStop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := m.Journal.Trim(ctx, retention); err != nil {
					m.Logger.Warn("journal trim failed: ", err)
				}
				cancel()
			}
		}
	}()
	m.Logger.Info("Journal trim service started.")
}

// Stop shuts the module's background services down.
func (m *Module) Stop() error {
	m.Logger.Info("Stopping feedback module...")
	close(m.trimStop)
	return nil
}
