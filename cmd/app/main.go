package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cryptowallet/configs"
	"cryptowallet/internal/database"
	httpdelivery "cryptowallet/internal/delivery/http"
	"cryptowallet/internal/delivery/tcp"
	"cryptowallet/internal/domain"
	"cryptowallet/internal/infra"
	"cryptowallet/internal/middleware"
	"cryptowallet/internal/repository"
	"cryptowallet/internal/service"
	"cryptowallet/internal/usecase"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	cfg := configs.Load()

	logger, err := infra.NewLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Stop on SIGINT/SIGTERM as well as on the shutdown command
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize account store
	userRepo, closeStore, err := newUserRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize account store", zap.Error(err))
	}
	defer closeStore()

	accounts := usecase.NewAccountService(userRepo, logger)
	if err := accounts.Load(ctx); err != nil {
		logger.Fatal("failed to load accounts", zap.Error(err))
	}

	// Initialize price feed
	catalog := domain.NewCatalog()
	priceService := service.NewMarketPriceService(cfg.Prices.URL, cfg.Prices.APIKey)
	scheduler := infra.NewScheduler(priceService, catalog, cfg.Prices.RefreshSpec, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("failed to start price refresh scheduler", zap.Error(err))
	}

	// Initialize wallet server
	sessions := middleware.NewRegistry()
	router := tcp.NewRouter(logger)
	tcp.SetupRoutes(router, tcp.NewHandler(accounts, sessions, catalog, logger))

	server := tcp.NewServer(cfg.Server.Addr(), cfg.Server.ReadBufferSize, router, sessions, logger)
	if err := server.Listen(); err != nil {
		logger.Fatal("failed to bind wallet server", zap.String("addr", cfg.Server.Addr()), zap.Error(err))
	}

	// Ops HTTP server
	var ops *echo.Echo
	if cfg.Admin.Enabled() {
		ops = httpdelivery.NewServer(&httpdelivery.RouterConfig{
			OpsHandler: httpdelivery.NewOpsHandler(catalog, server, scheduler, logger),
			Logger:     logger,
		})

		addr := fmt.Sprintf(":%s", cfg.Admin.Port)
		logger.Info("ops server starting", zap.String("addr", addr))
		go func() {
			if err := ops.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("ops server failed", zap.Error(err))
			}
		}()
	}

	if err := server.Serve(ctx); err != nil {
		logger.Error("wallet server stopped with error", zap.Error(err))
	}

	logger.Info("shutting down")
	scheduler.Stop()

	if ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := ops.Shutdown(shutdownCtx); err != nil {
			logger.Error("ops server forced to shutdown", zap.Error(err))
		}
		cancel()
	}

	// Accounts are written once, after the dispatch loop has stopped
	persistCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := accounts.Persist(persistCtx); err != nil {
		logger.Error("failed to persist accounts", zap.Error(err))
		return
	}

	logger.Info("server exited gracefully")
}

// newUserRepository selects the PostgreSQL store when DATABASE_URL is set and the file store otherwise
func newUserRepository(ctx context.Context, cfg *configs.Config, logger *zap.Logger) (domain.UserRepository, func(), error) {
	if cfg.Database.URL == "" {
		logger.Info("using file account store", zap.String("path", cfg.Database.UsersFile))
		return repository.NewUserFileRepository(cfg.Database.UsersFile), func() {}, nil
	}

	db, err := infra.NewDatabase(ctx, cfg.Database.URL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("using PostgreSQL account store")
	return repository.NewUserRepository(db), db.Close, nil
}
