package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/seabattle/internal/api/handler"
	"github.com/mcoot/seabattle/internal/api/middleware"
	"github.com/mcoot/seabattle/internal/services/directory"
	"github.com/mcoot/seabattle/internal/services/game"
	"github.com/mcoot/seabattle/internal/services/room"
	"github.com/mcoot/seabattle/internal/services/session"
	"github.com/mcoot/seabattle/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Hub        *ws.Hub
	Directory  *directory.Service
	Matchmaker *room.Matchmaker
	Engine     *game.Engine
	Sessions   *session.Registry
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	statusHandler := handler.NewStatusHandler(cfg.Hub, cfg.Directory, cfg.Matchmaker, cfg.Engine, cfg.Sessions)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// Game protocol endpoint
	r.Handle("/ws", recoveryMiddleware(loggingMiddleware(http.HandlerFunc(cfg.Hub.ServeWS)))).Methods(http.MethodGet)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", statusHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/winners", statusHandler.Winners).Methods(http.MethodGet)
	api.HandleFunc("/rooms", statusHandler.Rooms).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}", statusHandler.Room).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", statusHandler.Player).Methods(http.MethodGet)

	return r
}
