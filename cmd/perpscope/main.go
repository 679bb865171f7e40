package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"github.com/washantonfcb10/perpscope/internal/app/service"
	"github.com/washantonfcb10/perpscope/internal/config"
	"github.com/washantonfcb10/perpscope/internal/infrastructure/hyperliquid"
	"github.com/washantonfcb10/perpscope/internal/infrastructure/restapi"
	"github.com/washantonfcb10/perpscope/internal/pkg/logger"
	"github.com/washantonfcb10/perpscope/internal/pkg/utils"
	"github.com/washantonfcb10/perpscope/pkg/metrics"
)

func main() {
	// Config loading logs through logrus before the main zap logger
	// exists; everything after initialization goes through zap.
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	configPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logrus.WithError(err).WithField("path", configPath).Fatal("Failed to load configuration")
	}

	zapLogger, err := logger.New(cfg.Logging.Level)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}
	defer zapLogger.Sync()

	// Route slog users (including net/http internals) into zap.
	slog.SetDefault(slog.New(zapslog.NewHandler(zapLogger.Core())))

	zapLogger.Info("Starting perpscope",
		zap.String("configPath", configPath),
		zap.String("logLevel", cfg.Logging.Level),
	)

	metrics.MustRegisterMetrics()

	exchange := hyperliquid.NewClient(
		cfg.Hyperliquid.BaseURL,
		time.Duration(cfg.Hyperliquid.RequestTimeoutMillis)*time.Millisecond,
		cfg.Hyperliquid.RateLimit,
		cfg.Hyperliquid.BurstLimit,
		zapLogger,
	)

	registry := service.NewRegistryService(cfg.Registry.MaxWalletsPerUser, zapLogger)

	marketData := service.NewMarketDataService(
		exchange,
		time.Duration(cfg.MarketData.CacheTTLSeconds)*time.Second,
		time.Duration(cfg.MarketData.CacheCleanupTTLSeconds)*time.Second,
		zapLogger,
	)

	aggregator := service.NewAggregatorService(
		registry,
		exchange,
		marketData,
		cfg.Aggregator.MaxConcurrentFetches,
		zapLogger,
	)

	navigation := service.NewNavigationService(registry, aggregator, zapLogger)
	// Removing a wallet must repair any navigation state pointing at it.
	registry.SetObserver(navigation)

	handler := restapi.NewHandler(registry, navigation, marketData, zapLogger)
	router := restapi.SetupRouter(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	zapLogger.Info("Shutdown signal received, stopping HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Graceful shutdown failed", zap.Error(err))
	} else {
		zapLogger.Info("HTTP server stopped")
	}
}
