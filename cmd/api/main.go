package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/cityaid-service/internal/api/http"
	"github.com/spec-kit/cityaid-service/internal/api/http/handlers"
	"github.com/spec-kit/cityaid-service/internal/auth"
	"github.com/spec-kit/cityaid-service/internal/config"
	"github.com/spec-kit/cityaid-service/internal/events"
	"github.com/spec-kit/cityaid-service/internal/observability"
	"github.com/spec-kit/cityaid-service/internal/persistence"
	"github.com/spec-kit/cityaid-service/internal/repository"
	"github.com/spec-kit/cityaid-service/internal/service"
	"github.com/spec-kit/cityaid-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	caseRepo := repository.NewCaseRepository(pool)
	fileRepo := repository.NewFileRepository(pool)
	sequenceRepo := repository.NewSequenceRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	events.NewRedisPublisher(redis.Client, cfg.Events.RedisChannel, logger).Register(dispatcher)

	allocator := service.NewAllocator(sequenceRepo)
	caseService := service.NewCaseService(service.CaseDependencies{
		CaseRepo:   caseRepo,
		Allocator:  allocator,
		Dispatcher: dispatcher,
	})
	fileService := service.NewFileService(caseRepo, fileRepo, dispatcher)
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger))

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Cases:          handlers.NewCasesHandler(caseService),
		Files:          handlers.NewFilesHandler(fileService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
