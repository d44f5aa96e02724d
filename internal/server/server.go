package server

// Package server is the HTTP surface over the diagnostics core.
//
// Responsibilities:
//   - REST routes for chat, conversation CRUD, telemetry, traces, models
//   - WebSocket endpoint streaming assistant replies token by token
//   - Request logging, duration metrics, graceful shutdown
//
// The server is a caller of the context engine: all domain decisions live
// in the injected components, never in handlers.

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kohanfikr/netai/internal/chat"
	"github.com/kohanfikr/netai/internal/config"
	"github.com/kohanfikr/netai/internal/conversation"
	"github.com/kohanfikr/netai/internal/llm"
	"github.com/kohanfikr/netai/internal/prompt"
	"github.com/kohanfikr/netai/internal/route"
	"github.com/kohanfikr/netai/internal/telemetry"
)

// Server hosts the REST and WebSocket API.
type Server struct {
	cfg *config.Config
	log *zap.Logger

	// Core components, injected by the process wiring.
	store     *conversation.Store
	composer  *chat.Composer
	engine    *prompt.Engine
	processor *telemetry.Processor
	tracer    route.Tracer
	llmClient llm.Client

	httpServer *http.Server
	limiter    *rateLimiter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// Deps carries the injected components.
type Deps struct {
	Store     *conversation.Store
	Composer  *chat.Composer
	Engine    *prompt.Engine
	Processor *telemetry.Processor
	Tracer    route.Tracer
	LLM       llm.Client
}

// New creates the server. All dependencies are required.
func New(cfg *config.Config, deps Deps, log *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if deps.Store == nil || deps.Composer == nil || deps.Engine == nil ||
		deps.Processor == nil || deps.Tracer == nil || deps.LLM == nil {
		return nil, fmt.Errorf("all server dependencies are required")
	}

	var limiter *rateLimiter
	if cfg.Server.RateLimitPerMin > 0 {
		limiter = newRateLimiter(cfg.Server.RateLimitPerMin)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:       cfg,
		log:       log,
		store:     deps.Store,
		composer:  deps.Composer,
		engine:    deps.Engine,
		processor: deps.Processor,
		tracer:    deps.Tracer,
		llmClient: deps.LLM,
		limiter:   limiter,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Router builds the route table. Exposed for handler tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	if s.limiter != nil {
		api.Use(s.limiter.middleware)
	}

	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	api.HandleFunc("/chat/stream", s.handleChatStream).Methods(http.MethodGet)

	api.HandleFunc("/conversations", s.handleCreateConversation).Methods(http.MethodPost)
	api.HandleFunc("/conversations", s.handleListConversations).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{id}", s.handleGetConversation).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{id}", s.handleDeleteConversation).Methods(http.MethodDelete)

	api.HandleFunc("/telemetry/summary", s.handleTelemetrySummary).Methods(http.MethodGet)
	api.HandleFunc("/telemetry/path", s.handlePathDiagnostics).Methods(http.MethodGet)
	api.HandleFunc("/telemetry/trace", s.handleTrace).Methods(http.MethodPost)
	api.HandleFunc("/telemetry/trace/compare", s.handleTraceCompare).Methods(http.MethodPost)

	api.HandleFunc("/models", s.handleListModels).Methods(http.MethodGet)
	api.HandleFunc("/templates", s.handleListTemplates).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start begins serving. Non-blocking; errors from the listener are logged.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.running = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.log.Info("http server starting",
			zap.String("host", s.cfg.Server.Host),
			zap.Int("port", s.cfg.Server.Port),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("http server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is not running")
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	if s.limiter != nil {
		s.limiter.stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	s.wg.Wait()
	return nil
}
