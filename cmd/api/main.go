package main

import (
	"context"
	"log"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"voicebank/internal/config"
	handlers "voicebank/internal/http/handler"
	"voicebank/internal/http/middleware"
	"voicebank/internal/logging"
	"voicebank/internal/otel"
	"voicebank/internal/repository/csvlog"
	"voicebank/internal/service"
	"voicebank/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Tracing degrades to noop when no collector is configured.
	shutdownTracing, err := otel.Init(context.Background(), logger)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	// Audio blob storage: local disk by default, S3-compatible when configured.
	var store storage.BlobStore
	switch cfg.StorageBackend {
	case "s3":
		store, err = storage.NewMinIO(cfg.MinIO)
	default:
		store, err = storage.NewLocal(cfg.Dataset.AudioDir())
	}
	if err != nil {
		logger.Fatal("failed to initialize audio storage", zap.Error(err))
	}

	// Append-only CSV metadata log, created with its header on first run.
	sampleLog, err := csvlog.New(cfg.Dataset.MetadataFile())
	if err != nil {
		logger.Fatal("failed to initialize metadata log", zap.Error(err))
	}

	sampleSvc := service.NewSampleService(store, sampleLog, logger, service.Options{
		MaxAudioBytes: int64(cfg.Dataset.AudioMaxMB) << 20,
		MaxTextChars:  cfg.Dataset.TextMaxChars,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    (cfg.Dataset.AudioMaxMB + 1) << 20,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Contributor recording page
	app.Static("/", "./web")

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, cfg.Dataset.Dir, sampleSvc, promMW.ObserveAccepted)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("dataset_dir", cfg.Dataset.Dir))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
