package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/travelbudgetfx/internal/audit"
	"github.com/ziadkadry99/travelbudgetfx/internal/chatws"
	"github.com/ziadkadry99/travelbudgetfx/internal/db"
	"github.com/ziadkadry99/travelbudgetfx/internal/dialogue"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server is the TravelBudgetFX HTTP API: planning sessions, currency and
// scoring helpers, the audit trail and the websocket chat.
type Server struct {
	cfg        Config
	db         *db.DB
	engine     *dialogue.Engine
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with every route mounted.
func New(cfg Config, database *db.DB, engine *dialogue.Engine) *Server {
	s := &Server{
		cfg:    cfg,
		db:     database,
		engine: engine,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Chat replies can take a while; the websocket is long-lived and stays
	// outside the timeout.
	api := r.With(middleware.Timeout(120 * time.Second))
	if s.engine != nil {
		dialogue.RegisterRoutes(api, s.engine)
		chatws.New(s.engine).RegisterRoutes(r)
	}
	if s.db != nil {
		audit.RegisterRoutes(api, audit.NewStore(s.db))
	}
	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("travelfx server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
