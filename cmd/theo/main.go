package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tht-digital/theo-relay/completion"
	"github.com/tht-digital/theo-relay/config"
	"github.com/tht-digital/theo-relay/errors"
	"github.com/tht-digital/theo-relay/fonnte"
	"github.com/tht-digital/theo-relay/server"
	"github.com/tht-digital/theo-relay/server/handlers"
	"github.com/tht-digital/theo-relay/server/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configFile = flag.String("config", "theo.yaml", "Path to configuration file")
	validate   = flag.Bool("validate", false, "Validate configuration and exit")
	version    = flag.Bool("version", false, "Print version and exit")
)

const Version = "v0.1.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("theo-relay %s\n", Version)
		os.Exit(0)
	}

	// Secrets conventionally live in a .env file next to the binary.
	// A missing file is fine; the environment may carry them directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Just validate and exit if requested
	if *validate {
		fmt.Println("Configuration is valid")
		os.Exit(0)
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	errors.SetLogger(logger)

	// Missing secrets keep the process alive in a degraded state: the
	// webhook still acknowledges verification probes and status callbacks.
	if cfg.Fonnte.Token == "" {
		logger.Error("FONNTE_API_TOKEN not set, outbound sends will fail")
	}
	if cfg.LLM.APIKey == "" {
		logger.Error("completion API key not set, completions will be unavailable")
	}

	m := metrics.NewMetrics()
	sender := fonnte.NewClient(cfg.Fonnte, logger)
	model := completion.New(cfg.LLM, logger)

	webhook := handlers.NewWebhookHandler(model, sender, m, logger)
	router := server.NewRouter(cfg, webhook, m, logger)
	srv := server.NewServer(cfg.Server, router, logger)

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	logger.Info("Starting theo-relay",
		zap.String("version", Version),
		zap.Int("port", cfg.Server.Port),
	)
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

// loadConfig reads the YAML file when it exists and falls back to defaults
// (with environment references resolved) when the default path is absent.
// An explicitly named file must exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if path != "theo.yaml" {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		return config.Default()
	}
	return config.LoadFile(path)
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.Format == "text" {
		zcfg.Encoding = "console"
	}

	return zcfg.Build()
}
