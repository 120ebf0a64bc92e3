package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"tandem/internal/api"
	"tandem/internal/config"
	"tandem/internal/hub"
	"tandem/internal/match"
	"tandem/internal/registry"
	"tandem/internal/router"
	"tandem/internal/websocket"
)

// Application wires all components and owns their lifecycle.
type Application struct {
	config      *config.Config
	registry    *registry.Registry
	engine      *match.Engine
	eventRouter *router.Router
	coordinator *hub.Coordinator
	apiServer   *api.Server
	httpServer  *http.Server
}

// NewApplication builds the component graph in dependency order:
// Registry -> Engine -> Router -> Coordinator -> WebSocket handler -> API -> HTTP.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	reg := registry.NewRegistry()
	engine := match.NewEngine(reg)
	eventRouter := router.NewRouter(reg, engine, cfg.Chat.MaxMessageLength, cfg.Chat.MessagesPerMinute)
	coordinator := hub.NewCoordinator(reg, engine, eventRouter, cfg.Chat.RematchDelay)

	wsHandler := websocket.NewHandler(coordinator, websocket.Options{
		PingInterval: cfg.WebSocket.PingInterval,
		ReadTimeout:  cfg.WebSocket.ReadTimeout,
		SendBuffer:   cfg.WebSocket.SendBuffer,
	})
	apiServer := api.NewServer(reg, engine)

	mux := http.NewServeMux()
	mux.Handle("/api/", apiServer)
	mux.Handle("/health", apiServer)
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &Application{
		config:      cfg,
		registry:    reg,
		engine:      engine,
		eventRouter: eventRouter,
		coordinator: coordinator,
		apiServer:   apiServer,
		httpServer:  httpServer,
	}, nil
}

// Start begins serving. It returns once the HTTP listener is up or fails.
func (app *Application) Start(ctx context.Context) error {
	log.Printf("Starting tandem on %s", app.httpServer.Addr)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case err := <-serverErrCh:
		return err
	case <-time.After(100 * time.Millisecond):
		log.Printf("tandem started")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop shuts down: first the listener, then every live connection, whose
// read loops run the normal disconnect cleanup.
func (app *Application) Stop(ctx context.Context) error {
	log.Printf("Shutting down tandem")

	if err := app.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	for _, client := range app.registry.All() {
		if err := client.Close(); err != nil {
			log.Printf("connection close error for %s: %v", client.ID(), err)
		}
	}

	log.Printf("tandem shutdown complete")
	return nil
}

// Addr returns the server address for external connections.
func (app *Application) Addr() string {
	return app.httpServer.Addr
}
