// Package dashboard serves the backlog dashboard over HTTP: a server-rendered
// HTML page, a JSON API, and an SSE stream announcing cache refreshes.
package dashboard

import (
	"log/slog"
	"net/http"

	"backlog/internal/config"
	"backlog/internal/logging"
	"backlog/internal/snapshot"
)

// Server holds the dashboard's HTTP surface.
type Server struct {
	cfg    *config.Config
	cache  *snapshot.Cache
	logger *slog.Logger
	events *broker
	mux    *http.ServeMux
}

// New wires the routes over the given configuration and snapshot cache.
func New(cfg *config.Config, cache *snapshot.Cache) *Server {
	s := &Server{
		cfg:    cfg,
		cache:  cache,
		logger: logging.New("dashboard"),
		events: newBroker(),
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/plans", s.handlePlans)
	s.mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /events", s.handleEvents)

	return s
}

// Handler returns the full handler chain.
func (s *Server) Handler() http.Handler {
	return requestLogging(s.logger, s.mux)
}
