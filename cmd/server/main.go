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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/abdul-hamid-achik/videopipeline/internal/api"
	"github.com/abdul-hamid-achik/videopipeline/internal/config"
	"github.com/abdul-hamid-achik/videopipeline/internal/encoder"
	"github.com/abdul-hamid-achik/videopipeline/internal/eventbus"
	"github.com/abdul-hamid-achik/videopipeline/internal/gc"
	"github.com/abdul-hamid-achik/videopipeline/internal/health"
	"github.com/abdul-hamid-achik/videopipeline/internal/live"
	"github.com/abdul-hamid-achik/videopipeline/internal/logger"
	"github.com/abdul-hamid-achik/videopipeline/internal/metrics"
	"github.com/abdul-hamid-achik/videopipeline/internal/queue"
	"github.com/abdul-hamid-achik/videopipeline/internal/statestore"
	"github.com/abdul-hamid-achik/videopipeline/internal/storage"
	"github.com/abdul-hamid-achik/videopipeline/internal/tracing"
	"github.com/abdul-hamid-achik/videopipeline/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Init(cfg.LogLevel)
	log := logger.Default()
	log.Info("configuration loaded", "storage_dir", cfg.StorageDir, "environment", cfg.Environment)

	zerologger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerologger.Info().Str("port", fmt.Sprint(cfg.Port)).Msg("server booting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracingShutdown, err := tracing.Init(ctx, &tracing.Config{
		ServiceName:    "videopipeline",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTLPEndpoint != "",
		SampleRate:     1.0,
	})
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() { _ = tracingShutdown(context.Background()) }()

	disk, err := storage.NewDisk(cfg.StorageDir)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	log.Info("local storage ready", "root", disk.Root())

	store := statestore.NewInMemory()

	var redisClient *redis.Client
	if cfg.UsesExternalBroker() {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opt)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable at startup, continuing in local-only mode", "error", err)
			redisClient = nil
		} else {
			log.Info("redis connected")
		}
	}

	bus := eventbus.New(redisClient)

	var jobQueue queue.Queue
	if redisClient != nil {
		jobQueue = queue.NewRedisQueue(redisClient)
		log.Info("using brokered (redis) job queue")
	} else {
		jobQueue = queue.NewLocalQueue()
		log.Info("using local in-process job queue")
	}

	enc, err := encoder.New()
	if err != nil {
		return fmt.Errorf("failed to locate ffmpeg/ffprobe: %w", err)
	}

	collector := gc.New(disk, store)
	go collector.Start(ctx)

	deps := &worker.Dependencies{
		Store:   store,
		Bus:     bus,
		Encoder: enc,
	}
	jobQueue.SetHandler(worker.Handler(deps))
	jobQueue.Start(ctx)

	hub := live.NewHub(bus)
	go hub.Run(ctx)

	apiCfg := &api.Config{
		Store:         store,
		Bus:           bus,
		Disk:          disk,
		Queue:         jobQueue,
		GC:            collector,
		MaxUploadSize: cfg.MaxUploadSize,
	}

	mux := http.NewServeMux()
	mux.Handle("/", api.NewRouter(apiCfg))
	mux.HandleFunc("/live", hub.ServeHTTP)

	metrics.SetAppInfo("1.0.0", cfg.Environment, "videopipeline")
	metrics.AppUp.Set(1)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: tracing.HTTPMiddleware("videopipeline")(metrics.HTTPMetricsMiddleware(mux)),
	}

	healthChecker := health.NewChecker(redisClient, disk)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", health.LivenessHandler())
	metricsMux.HandleFunc("/readyz", health.ReadinessHandler(healthChecker))
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: metricsMux,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	go func() {
		log.Info("metrics server starting", "port", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server error", "error", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server error: %w", err)
	case sig := <-shutdown:
		log.Info("shutdown signal received", "signal", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("error stopping http server", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("error stopping metrics server", "error", err)
	}

	jobQueue.Stop()
	cancel()

	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Info("server stopped gracefully")
	return nil
}
