package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eventflow-systems/eventflow-ingest/internal/config"
	"github.com/eventflow-systems/eventflow-ingest/internal/dedup"
	"github.com/eventflow-systems/eventflow-ingest/internal/dlq"
	"github.com/eventflow-systems/eventflow-ingest/internal/handlers"
	"github.com/eventflow-systems/eventflow-ingest/internal/logging"
	"github.com/eventflow-systems/eventflow-ingest/internal/messaging"
	natsclient "github.com/eventflow-systems/eventflow-ingest/internal/messaging/nats"
	"github.com/eventflow-systems/eventflow-ingest/internal/publisher"
	"github.com/eventflow-systems/eventflow-ingest/internal/server"
	"github.com/eventflow-systems/eventflow-ingest/internal/service"
	"github.com/eventflow-systems/eventflow-ingest/internal/stats"
	"github.com/eventflow-systems/eventflow-ingest/internal/validator"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("ingest"))
	logging.SetDefault(logger)

	slog.Info("Starting EventFlow ingest service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("nats_url", cfg.NATS.URL),
	)

	// Dedup store
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Invalid Redis URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	deduper := dedup.NewRedis(redisClient, cfg.Redis.DedupTTL)

	// Message bus
	busClient, err := natsclient.NewClient(natsclient.Config{
		URL:           cfg.NATS.URL,
		Name:          "eventflow-ingest",
		MaxReconnects: cfg.NATS.MaxReconnects,
		ReconnectWait: cfg.NATS.ReconnectWait,
		Timeout:       cfg.NATS.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}

	// Channels are a fixed, pre-provisioned set; ensure the backing
	// streams exist before accepting traffic.
	streamCtx, streamCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := busClient.EnsureStream(streamCtx, natsclient.StreamConfig{
		Name: messaging.StreamEvents,
		Subjects: []string{
			messaging.ChannelUser,
			messaging.ChannelTransaction,
			messaging.ChannelAnalytics,
			messaging.ChannelSystem,
			messaging.ChannelCritical,
			messaging.ChannelRaw,
		},
		MaxAge:   7 * 24 * time.Hour,
		MaxBytes: 8 << 30,
	}); err != nil {
		log.Fatalf("Failed to provision events stream: %v", err)
	}
	if err := busClient.EnsureStream(streamCtx, natsclient.StreamConfig{
		Name:     messaging.StreamDeadLetter,
		Subjects: []string{messaging.ChannelDeadLetter},
		MaxAge:   30 * 24 * time.Hour,
		MaxBytes: 2 << 30,
	}); err != nil {
		log.Fatalf("Failed to provision dead-letter stream: %v", err)
	}
	streamCancel()

	// Pipeline
	pub := publisher.NewJetStream(busClient, cfg.NATS.AckTimeout, logger.Logger)
	deadLetter := dlq.NewWriter(pub, logger.Logger)
	aggregator := stats.New()
	coordinator := service.NewCoordinator(deduper, nil, pub, deadLetter, aggregator, logger.Logger)

	// HTTP surface
	handler := handlers.NewEventsHandler(
		coordinator,
		validator.New(),
		logger,
		cfg.Ingestion.MaxBatchSize,
		cfg.Ingestion.StatsPushInterval,
	)
	router := server.NewRouter(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Ingest service listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown: stop accepting requests, then drain in-flight
	// publishes before closing the broker connection.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
	if err := pub.Flush(shutdownCtx); err != nil {
		slog.Error("Publisher flush incomplete", slog.String("error", err.Error()))
	}
	if err := busClient.Drain(); err != nil {
		slog.Error("NATS drain failed", slog.String("error", err.Error()))
	}

	slog.Info("Server stopped")
}
