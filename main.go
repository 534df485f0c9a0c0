package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"funpay/lotworker/config"
	"funpay/lotworker/internal/lots"
	"funpay/lotworker/logger"
	"funpay/lotworker/services/cache"
	"funpay/lotworker/services/publisher"
	"funpay/lotworker/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("base_url", cfg.BaseURL).
		Ints64("lot_nodes", cfg.LotNodes).
		Dur("crawl_interval", cfg.CrawlInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	redisPublisher := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	defer redisPublisher.Close()
	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	// Create the scraper pipeline
	scraper := &lots.Scraper{
		BaseURL:   cfg.BaseURL,
		MaxLots:   cfg.MaxLotsPerNode,
		SortOrder: cfg.SortOrder,
		Cache:     cacheService,
		BlockTime: cfg.FetchBlockTime,
	}

	// Create and start worker
	w := worker.NewWorker(
		ctx,
		scraper,
		cfg.LotNodes,
		redisPublisher,
		cfg.CrawlInterval,
	)

	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting lot worker")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case err := <-workerDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
}
