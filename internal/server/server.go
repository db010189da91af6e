package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labelwise/labelwise/internal/api"
	"github.com/labelwise/labelwise/internal/assess"
	"github.com/labelwise/labelwise/internal/auth"
	"github.com/labelwise/labelwise/internal/config"
	"github.com/labelwise/labelwise/internal/defra"
	"github.com/labelwise/labelwise/internal/extract"
	"github.com/labelwise/labelwise/internal/home"
	"github.com/labelwise/labelwise/internal/llmcall"
	"github.com/labelwise/labelwise/internal/profiles"
	"github.com/labelwise/labelwise/internal/prompts"
	assessprompt "github.com/labelwise/labelwise/internal/prompts/assess"
	extractprompt "github.com/labelwise/labelwise/internal/prompts/extract"
	"github.com/labelwise/labelwise/internal/providers"
	"github.com/labelwise/labelwise/internal/scans"
	"github.com/labelwise/labelwise/internal/schema"
	"github.com/labelwise/labelwise/internal/server/endpoints"
	"github.com/labelwise/labelwise/internal/svcctx"
)

// Server is the main Labelwise HTTP server.
// It manages the DefraDB container lifecycle - starting it on server start
// and stopping it on server shutdown.
type Server struct {
	httpServer   *http.Server
	defraManager *defra.DockerManager
	defraClient  *defra.Client
	registry     *providers.Registry
	resolver     *prompts.Resolver
	verifier     *auth.Verifier
	configMgr    *config.Manager
	home         *home.Dir
	logger       *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// DefraDataPath is the path to persist DefraDB data
	DefraDataPath string
	// DefraConfig holds DefraDB container settings
	DefraConfig defra.DockerConfig
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// AuthSecret signs and verifies access tokens. Required.
	AuthSecret string
	// TokenTTL bounds issued token lifetime (default: 24h)
	TokenTTL time.Duration
	// Home is the application home directory for uploads and data
	Home *home.Dir
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	verifier, err := auth.NewVerifier(cfg.AuthSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth setup failed: %w", err)
	}

	// Set up DefraDB data path
	if cfg.DefraDataPath != "" {
		cfg.DefraConfig.DataPath = cfg.DefraDataPath
	}

	defraManager, err := defra.NewDockerManager(cfg.DefraConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create defra manager: %w", err)
	}

	// Create provider registry
	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)

	// If config manager provided, set up providers and hot reload
	if cfg.ConfigManager != nil {
		registry.Reload(cfg.ConfigManager.Get().ToProviderRegistryConfig())

		// Watch for config changes
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			registry.Reload(c.ToProviderRegistryConfig())
			cfg.Logger.Info("provider registry reloaded from config")
		})
	}

	// Register embedded prompts
	resolver := prompts.NewResolver(cfg.Logger)
	assessprompt.RegisterPrompts(resolver)
	extractprompt.RegisterPrompts(resolver)

	s := &Server{
		defraManager: defraManager,
		registry:     registry,
		resolver:     resolver,
		verifier:     verifier,
		configMgr:    cfg.ConfigManager,
		home:         cfg.Home,
		logger:       cfg.Logger,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{DefraManager: defraManager}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit, auth.Middleware(verifier))

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // Assessments wait on model inference
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server and DefraDB.
// It blocks until the context is cancelled or an error occurs.
// If an existing DefraDB container exists, it validates the configuration matches.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	// Validate any existing container matches our config
	if err := s.defraManager.ValidateExisting(ctx); err != nil {
		s.setNotRunning()
		return fmt.Errorf("existing DefraDB container incompatible: %w", err)
	}

	// Start DefraDB
	s.logger.Info("starting DefraDB")
	if err := s.defraManager.Start(ctx); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to start DefraDB: %w", err)
	}

	// Create client after DefraDB is up
	s.defraClient = defra.NewClient(s.defraManager.URL())

	// Verify DefraDB is healthy
	if err := s.defraClient.HealthCheck(ctx); err != nil {
		_ = s.shutdown() // Clean up DefraDB on failure
		return fmt.Errorf("DefraDB health check failed: %w", err)
	}
	s.logger.Info("DefraDB is ready", "url", s.defraManager.URL())

	// Initialize schemas
	s.logger.Info("initializing schemas")
	if err := schema.Initialize(ctx, s.defraClient, s.logger); err != nil {
		_ = s.shutdown()
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// Create stores and services for context enrichment
	callStore := llmcall.NewStore(s.defraClient)
	s.services = &svcctx.Services{
		DefraClient:  s.defraClient,
		Registry:     s.registry,
		Resolver:     s.resolver,
		Assess:       assess.NewService(s.assessClient(), callStore, s.logger),
		Extract:      extract.NewService(s.visionClient(), callStore, s.logger),
		ScanStore:    scans.NewStore(s.defraClient),
		ProfileStore: profiles.NewStore(s.defraClient),
		LLMCallStore: callStore,
		Verifier:     s.verifier,
		Logger:       s.logger,
		Home:         s.home,
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown() // Clean up DefraDB on HTTP error
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// assessClient returns the client used for safety assessments. The
// provider is resolved per call so config hot reload takes effect
// without a restart.
func (s *Server) assessClient() providers.LLMClient {
	return &registryClient{
		registry: s.registry,
		name: func() string {
			if s.configMgr == nil {
				return ""
			}
			return s.configMgr.Get().Defaults.LLMProvider
		},
	}
}

// visionClient returns the client used for label image extraction.
func (s *Server) visionClient() providers.LLMClient {
	return &registryClient{
		registry: s.registry,
		name: func() string {
			if s.configMgr == nil {
				return ""
			}
			return s.configMgr.Get().VisionProviderName()
		},
	}
}

// shutdown performs graceful shutdown of both HTTP server and DefraDB.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	// Stop DefraDB
	s.logger.Info("stopping DefraDB")
	if err := s.defraManager.Stop(shutdownCtx); err != nil {
		s.logger.Error("DefraDB stop error", "error", err)
	}

	// Close Docker client
	if err := s.defraManager.Close(); err != nil {
		s.logger.Error("DefraDB manager close error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// DefraClient returns the DefraDB client.
// Returns nil if the server hasn't started yet.
func (s *Server) DefraClient() *defra.Client {
	return s.defraClient
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Verifier returns the token verifier.
func (s *Server) Verifier() *auth.Verifier {
	return s.verifier
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable if DefraDB isn't ready.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.defraClient == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}

// registryClient resolves its backing LLM client from the provider
// registry on every call, so provider reconfiguration applies to
// in-flight services.
type registryClient struct {
	registry *providers.Registry
	name     func() string
}

func (c *registryClient) Chat(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResult, error) {
	name := c.name()
	if name == "" {
		return nil, errors.New("no default LLM provider configured")
	}
	client, err := c.registry.GetLLM(name)
	if err != nil {
		return nil, err
	}
	return client.Chat(ctx, req)
}

func (c *registryClient) Name() string {
	if name := c.name(); name != "" {
		return name
	}
	return "unconfigured"
}
