package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tandem/internal/match"
	"tandem/internal/registry"
	"tandem/pkg/types"
)

// Server is the HTTP monitoring surface: health and live pairing stats.
// No business logic lives here, only JSON over the registry and engine
// read paths.
type Server struct {
	registry  *registry.Registry
	engine    *match.Engine
	startTime time.Time
	router    *http.ServeMux
}

// NewServer creates the API server.
func NewServer(reg *registry.Registry, engine *match.Engine) *Server {
	s := &Server{
		registry:  reg,
		engine:    engine,
		startTime: time.Now(),
		router:    http.NewServeMux(),
	}

	s.router.Handle("/api/stats", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.handleStats))))
	s.router.Handle("/health", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.handleHealth))))

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// StatsResponse reports live counts for monitoring.
type StatsResponse struct {
	OnlineCount    int     `json:"online_count"`
	WaitingCount   int     `json:"waiting_count"`
	ActivePairings int     `json:"active_pairings"`
	IdleCount      int     `json:"idle_count"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	waiting, pairings := s.engine.Stats()
	byState := s.registry.CountByState()

	s.sendJSON(w, http.StatusOK, StatsResponse{
		OnlineCount:    s.registry.Count(),
		WaitingCount:   waiting,
		ActivePairings: pairings,
		IdleCount:      byState[types.StateIdle],
		UptimeSeconds:  time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: failed to encode response: %v", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, message string, status int) {
	s.sendJSON(w, status, map[string]string{"error": message})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
