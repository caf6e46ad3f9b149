// Package simapi serves the reference simulator over HTTP, with a websocket
// stream that rebroadcasts every simulation result.
package simapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"qviz/sim"
)

// Config holds server configuration.
type Config struct {
	Addr      string
	Log       zerolog.Logger
	Simulator *sim.Simulator
	DevMode   bool
}

// Server is the simulation API.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	sim    *sim.Simulator
	store  *store
	hub    *hub
}

// New creates a server with routes and middleware installed.
func New(cfg Config) *Server {
	log := cfg.Log.With().Str("component", "simapi").Logger()
	simulator := cfg.Simulator
	if simulator == nil {
		simulator = sim.New(sim.WithLogger(log))
	}
	s := &Server{
		router: chi.NewRouter(),
		log:    log,
		sim:    simulator,
		store:  newStore(),
		hub:    newHub(log),
	}
	s.setupMiddleware()
	s.setupRoutes(cfg.DevMode)

	s.server = &http.Server{
		Addr:        cfg.Addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Subscribers returns the number of connected stream clients.
func (s *Server) Subscribers() int { return s.hub.len() }

// Start blocks serving until Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting simulation API")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains connections and closes every stream subscriber.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down simulation API")
	s.hub.closeAll()
	return s.server.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

}

func (s *Server) setupRoutes(devMode bool) {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// The stream lives outside the request timeout.
		r.Get("/stream", s.hub.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			if !devMode {
				r.Use(middleware.Compress(5))
			}

			r.Route("/circuit", func(r chi.Router) {
				r.Post("/create", s.handleCreateCircuit)
				r.Post("/simulate", s.handleSimulate)
				r.Post("/{circuitID}/gate", s.handleAddGate)
				r.Post("/{circuitID}/simulate", s.handleSimulateCircuit)
			})

			r.Route("/algorithms", func(r chi.Router) {
				r.Get("/bell-state", s.handleBellState)
				r.Get("/teleportation", s.handleTeleportation)
				r.Post("/grover", s.handleGrover)
				r.Post("/qft", s.handleQFT)
				r.Post("/shor", s.handleShor)
			})
		})
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
