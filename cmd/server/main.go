package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/sunrisecafe/pkg/auth"
	"github.com/example/sunrisecafe/pkg/cart"
	"github.com/example/sunrisecafe/pkg/catalog"
	"github.com/example/sunrisecafe/pkg/config"
	"github.com/example/sunrisecafe/pkg/discovery"
	"github.com/example/sunrisecafe/pkg/order"
	"github.com/example/sunrisecafe/pkg/repository"
	"github.com/example/sunrisecafe/server"
)

func main() {
	// Load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting café API",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	ctx := context.Background()

	// MongoDB
	mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := mongoRepo.Ping(ctx); err != nil {
		logger.Fatal("MongoDB ping failed", zap.Error(err))
	}
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to ensure indexes", zap.Error(err))
	}

	// Redis
	redisRepo := repository.NewRedisRepository(&cfg.Redis)
	if err := redisRepo.Ping(ctx); err != nil {
		logger.Warn("Redis connection failed, menu reads fall back to MongoDB", zap.Error(err))
	} else {
		logger.Info("Redis connected successfully")
	}

	// Services
	catalogRepo := repository.NewCatalogRepository(mongoRepo)
	cartRepo := repository.NewCartRepository(mongoRepo)
	orderRepo := repository.NewOrderRepository(mongoRepo)

	catalogSvc := catalog.NewService(catalogRepo, redisRepo, logger)
	aggregator := cart.NewAggregator(cartRepo, catalogRepo, logger)
	builder := order.NewBuilder(orderRepo, catalogRepo, logger)
	authMgr := auth.NewManager(&cfg.Auth)

	// Optional etcd registration
	reg, err := discovery.NewRegistrar(&cfg.Etcd)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without registration", zap.Error(err))
		reg = nil
	} else if err := reg.Register(ctx, cfg.Server.Name, cfg.Server.Host, cfg.Server.Port); err != nil {
		logger.Warn("Failed to register instance in etcd", zap.Error(err))
	}

	// HTTP server
	srv := server.New(cfg, logger, catalogSvc, aggregator, builder, authMgr)
	srv.SetupRoutes()

	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			srvErr <- err
		}
	}()

	logger.Info("Café API started successfully")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-srvErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	if reg != nil {
		if err := reg.Deregister(ctx); err != nil {
			logger.Error("Failed to deregister instance", zap.Error(err))
		}
		reg.Close()
	}

	redisRepo.Close()
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mongoRepo.Close(closeCtx); err != nil {
		logger.Error("Failed to close MongoDB connection", zap.Error(err))
	}

	logger.Info("Café API stopped")
}
