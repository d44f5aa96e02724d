package main

// Package main is the entry point for the netai server application.
//
// Responsibilities:
//   - Load and validate configuration from YAML, environment variables, and CLI flags
//   - Build the process-wide structured logger
//   - Wire the telemetry source, tracer, and anomaly detector into the processor
//   - Wire the conversation store, prompt engine, and context composer
//   - Select the LLM client (real OpenAI-compatible endpoint, or canned responses in mock mode)
//   - Start the REST API and WebSocket server
//   - Implement graceful shutdown with context cancellation
//
// Graceful Shutdown:
//   - Cancels all in-flight chat streams
//   - Drains active HTTP requests within the shutdown timeout
//   - Flushes buffered log entries

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kohanfikr/netai/internal/anomaly"
	"github.com/kohanfikr/netai/internal/chat"
	"github.com/kohanfikr/netai/internal/config"
	"github.com/kohanfikr/netai/internal/conversation"
	"github.com/kohanfikr/netai/internal/llm"
	"github.com/kohanfikr/netai/internal/logging"
	"github.com/kohanfikr/netai/internal/measure"
	"github.com/kohanfikr/netai/internal/prompt"
	"github.com/kohanfikr/netai/internal/route"
	"github.com/kohanfikr/netai/internal/server"
	"github.com/kohanfikr/netai/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	manager := config.NewManager(*configPath)
	cfg, err := manager.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	srv, err := buildServer(cfg, log)
	if err != nil {
		log.Fatal("failed to wire server", zap.Error(err))
	}

	if err := srv.Start(); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}

	// Components hold their startup configuration; a file edit takes effect
	// on the next restart.
	manager.Watch(func(updated *config.Config) {
		log.Info("configuration file changed; restart to apply",
			zap.Int("port", updated.Server.Port),
			zap.String("default_model", updated.LLM.DefaultModel),
		)
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("shutdown signal received", zap.String("signal", sig.String()))

	if err := srv.Stop(); err != nil {
		log.Error("error stopping server", zap.Error(err))
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// buildServer wires every component from configuration. Only simulated
// telemetry sources exist today; the SimulateData flag is still honored so
// a perfSONAR-backed source can slot in without touching the wiring.
func buildServer(cfg *config.Config, log *zap.Logger) (*server.Server, error) {
	var (
		source measure.Source
		tracer route.Tracer
	)
	if cfg.Telemetry.SimulateData {
		source = measure.NewSimulatedSource()
		tracer = route.NewSimulatedTracer()
	} else {
		return nil, fmt.Errorf("no live telemetry source configured; set telemetry.simulatedata=true")
	}

	detector := anomaly.NewDetector(anomaly.DefaultThresholds())
	processor := telemetry.NewProcessor(source, tracer, detector, log)
	engine := prompt.NewEngine()
	store := conversation.NewStore(cfg.Chat.MaxHistory, log)

	fetchTimeout := time.Duration(cfg.Telemetry.FetchTimeoutSeconds) * time.Second
	composer := chat.NewComposer(store, engine, processor, cfg.Chat.ContextWindow, fetchTimeout, log)

	llmCfg := llm.Config{
		BaseURL:      cfg.LLM.BaseURL,
		APIKey:       cfg.LLM.APIKey,
		DefaultModel: llm.Model(cfg.LLM.DefaultModel),
		Temperature:  float32(cfg.LLM.Temperature),
		MaxTokens:    cfg.LLM.MaxTokens,
	}
	var client llm.Client
	if cfg.LLM.MockMode {
		log.Info("mock mode enabled; no LLM calls will be made")
		client = llm.NewMockClient(llmCfg)
	} else {
		c, err := llm.NewClient(llmCfg, log)
		if err != nil {
			return nil, fmt.Errorf("build LLM client: %w", err)
		}
		client = c
	}

	return server.New(cfg, server.Deps{
		Store:     store,
		Composer:  composer,
		Engine:    engine,
		Processor: processor,
		Tracer:    tracer,
		LLM:       client,
	}, log)
}
