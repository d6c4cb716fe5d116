package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	saleapp "github.com/gestion/backend/internal/application/sale"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/infrastructure/auth"
	"github.com/gestion/backend/internal/infrastructure/cache"
	"github.com/gestion/backend/internal/infrastructure/config"
	"github.com/gestion/backend/internal/infrastructure/event"
	"github.com/gestion/backend/internal/infrastructure/logger"
	"github.com/gestion/backend/internal/infrastructure/persistence"
	"github.com/gestion/backend/internal/interfaces/http/handler"
	"github.com/gestion/backend/internal/interfaces/http/middleware"
	"github.com/gestion/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting sale reconciliation backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	// Idempotency store for return deduplication. Redis when reachable,
	// in-memory fallback for single-instance deployments.
	var idempotencyStore shared.IdempotencyStore
	if cfg.Returns.IdempotencyEnabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
			idempotencyStore = cache.NewInMemoryIdempotencyStore()
		} else {
			idempotencyStore = redisStore
		}
		defer func() {
			if err := idempotencyStore.Close(); err != nil {
				log.Error("Error closing idempotency store", zap.Error(err))
			}
		}()
	}

	eventBus := event.NewInMemoryEventBus(log.Named("eventbus"))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = eventBus.Stop(ctx)
	}()

	// Application services share one transaction scope over the database
	txScope := persistence.NewGormTransactionScope(db.DB)

	saleService := saleapp.NewSaleService(txScope, log.Named("sales"))
	saleService.SetEventPublisher(eventBus)

	reconciler := saleapp.NewReconcilerService(txScope)
	reconciler.SetEventPublisher(eventBus)

	returnService := saleapp.NewReturnService(txScope, log.Named("returns"))
	returnService.SetEventPublisher(eventBus)
	if idempotencyStore != nil {
		returnService.SetIdempotencyStore(idempotencyStore, shared.IdempotencyConfig{
			TTL:     cfg.Returns.IdempotencyTTL,
			Enabled: cfg.Returns.IdempotencyEnabled,
		})
	}

	lifecycleService := saleapp.NewLifecycleService(txScope)
	lifecycleService.SetEventPublisher(eventBus)

	stockQuery := saleapp.NewStockQueryService(persistence.NewGormStockItemRepository(db.DB))

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	middleware.SetupValidator()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(log.Named("http")))
	engine.Use(middleware.BodyLimit(maxBodyBytes))

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.Logger = log.Named("auth")
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))

	r := router.NewRouter(engine)
	r.Register(handler.NewSaleHandler(saleService, reconciler, returnService, lifecycleService))
	r.Register(handler.NewStockHandler(stockQuery))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
