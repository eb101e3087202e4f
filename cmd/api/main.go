package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/fixhub/repairshop/internal/api/http"
	"github.com/fixhub/repairshop/internal/api/http/handlers"
	"github.com/fixhub/repairshop/internal/auth"
	"github.com/fixhub/repairshop/internal/config"
	"github.com/fixhub/repairshop/internal/events"
	"github.com/fixhub/repairshop/internal/observability"
	"github.com/fixhub/repairshop/internal/persistence"
	"github.com/fixhub/repairshop/internal/policy"
	"github.com/fixhub/repairshop/internal/repository"
	"github.com/fixhub/repairshop/internal/service"
	"github.com/fixhub/repairshop/internal/worker"
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
	repos := repository.NewRepositories(pool)
	txRunner := repository.NewTxRunner(pool)
	policies := policy.NewSettingsProvider(pool)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	ticketService := service.NewTicketService(repos, txRunner, dispatcher)
	inventoryService := service.NewInventoryService(repos, txRunner, policies, dispatcher)
	returnsService := service.NewReturnsService(repos, txRunner, policies, dispatcher)
	financeService := service.NewFinanceService(repos, txRunner, dispatcher)
	customerService := service.NewCustomerService(repos.Customers)
	notificationService := service.NewNotificationService(dispatcher, redis, logger, cfg.Events)
	worker.StartNotificationWorker(notificationService)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)
	authMiddleware := auth.NewMiddleware(tokens)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics,
		time.Duration(cfg.App.RequestTimeoutSeconds)*time.Second)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService, financeService),
		Parts:          handlers.NewPartsHandler(inventoryService),
		Returns:        handlers.NewReturnsHandler(returnsService),
		Finance:        handlers.NewFinanceHandler(financeService),
		Customers:      handlers.NewCustomersHandler(customerService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
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
