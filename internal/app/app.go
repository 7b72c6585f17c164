package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	mongoadapter "github.com/fwwzhai/thrifty-backend/internal/adapter/mongo"
	natsadapter "github.com/fwwzhai/thrifty-backend/internal/adapter/nats"
	redisadapter "github.com/fwwzhai/thrifty-backend/internal/adapter/redis"
	s3adapter "github.com/fwwzhai/thrifty-backend/internal/adapter/storage/s3"
	"github.com/fwwzhai/thrifty-backend/internal/app/config"
	"github.com/fwwzhai/thrifty-backend/internal/identity"
	"github.com/fwwzhai/thrifty-backend/internal/mailer"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/platform/metrics"
	httpport "github.com/fwwzhai/thrifty-backend/internal/port/http"
	"github.com/fwwzhai/thrifty-backend/internal/service"
)

const metricsNamespace = "thrifty"

type App struct {
	cfg         *config.Config
	log         logger.Logger
	server      *http.Server
	mongoClient *mongo.Client
	redisClient *redis.Client
	publisher   *natsadapter.Publisher
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("configuration loaded: env=%s, http port=%s", cfg.Env, cfg.HTTPServer.Port)

	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mongodb client: %w", err)
	}
	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongoadapter.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}
	appLogger.Info("mongodb client initialized")

	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis client: %w", err)
	}
	appLogger.Info("redis client initialized")

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize nats publisher: %w", err)
	}
	appLogger.Info("nats publisher initialized")

	imageStorage, err := s3adapter.NewStorage(ctx, cfg.S3, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image storage: %w", err)
	}
	appLogger.Info("image storage initialized")

	listingRepo := mongoadapter.NewListingRepository(db)
	wishlistRepo := mongoadapter.NewWishlistRepository(db)
	followRepo := mongoadapter.NewFollowRepository(db)
	historyRepo := mongoadapter.NewHistoryRepository(db)
	inboxRepo := mongoadapter.NewInboxRepository(db)
	userRepo := mongoadapter.NewUserRepository(db)

	listingCache := redisadapter.NewListingCache(redisClient)
	followingCache := redisadapter.NewFollowingCache(redisClient)

	metricsManager := metrics.NewManager(metricsNamespace)
	saleMailer := mailer.New(cfg.SMTP)

	listingService := service.NewListingService(
		listingRepo, historyRepo, inboxRepo, userRepo,
		listingCache, publisher, saleMailer,
		cfg.Retry, metricsManager, appLogger,
	)
	relationshipService := service.NewRelationshipService(
		wishlistRepo, followRepo, listingRepo, followingCache,
		cfg.Retry, metricsManager, appLogger,
	)
	feedService := service.NewFeedService(listingRepo, relationshipService, imageStorage, appLogger)
	notificationService := service.NewNotificationService(inboxRepo, appLogger)
	userService := service.NewUserService(userRepo, appLogger)

	verifier := identity.NewVerifier(cfg.JWT.Secret)
	sessions := identity.NewSessionBroadcaster()

	router := httpport.NewRouter(httpport.Deps{
		Listings:      listingService,
		Relationships: relationshipService,
		Feed:          feedService,
		Notifications: notificationService,
		Users:         userService,
		Verifier:      verifier,
		Sessions:      sessions,
		Metrics:       metricsManager,
		Log:           appLogger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	go func() {
		if err := metrics.StartServer(cfg.Metrics.Port, appLogger, metricsManager.Registry); err != nil && err != http.ErrServerClosed {
			appLogger.Errorf("metrics server stopped: %v", err)
		}
	}()

	return &App{
		cfg:         cfg,
		log:         appLogger,
		server:      server,
		mongoClient: mongoClient,
		redisClient: redisClient,
		publisher:   publisher,
	}, nil
}

func (a *App) Run() {
	go func() {
		a.log.Infof("http server starting on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Fatalf("failed to start http server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("received shutdown signal: %v, shutting down", receivedSignal)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("error during http server shutdown: %v", err)
	} else {
		a.log.Info("http server stopped")
	}

	a.publisher.Close()

	if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
		a.log.Errorf("error disconnecting from mongodb: %v", err)
	}
	if err := a.redisClient.Close(); err != nil {
		a.log.Errorf("error closing redis client: %v", err)
	}

	a.log.Info("application stopped")
}
