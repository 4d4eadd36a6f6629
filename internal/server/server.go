// ABOUTME: Dev server for station audio and the shared broadcast clock
// ABOUTME: Serves the REST API, clock websocket, metrics and mDNS advertisement
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Resonate-Protocol/gtaradio-go/internal/assets"
	"github.com/Resonate-Protocol/gtaradio-go/internal/discovery"
	"github.com/Resonate-Protocol/gtaradio-go/pkg/stations"
	gtsync "github.com/Resonate-Protocol/gtaradio-go/pkg/sync"
)

// Config holds server configuration
type Config struct {
	Addr         string
	Name         string
	Advertise    bool
	AllowOrigins []string

	// ImportTarget is where POST /api/import copies station files
	ImportTarget string

	// DecodeADPCM allows the audio endpoint to decode IMA ADPCM on request
	DecodeADPCM bool

	// TickInterval paces clock messages on /ws (default 1s)
	TickInterval time.Duration

	Clock  gtsync.Clock
	Logger *zap.SugaredLogger
}

// Server is the dev server
type Server struct {
	config   Config
	serverID string
	logger   *zap.SugaredLogger

	game     *stations.Game
	provider assets.Provider
	session  *gtsync.Session
	importer *assets.Importer

	upgrader   websocket.Upgrader
	router     chi.Router
	httpServer *http.Server

	// mDNS discovery
	mdnsManager *discovery.Manager

	// Websocket clock clients
	clients   map[string]*client
	clientsMu sync.RWMutex

	// Learned from prepared audio, keyed by station id
	durations   map[string]stationMeta
	durationsMu sync.RWMutex

	// Control
	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// New creates a server for game, reading station files from provider and
// sharing the broadcast offset held by session.
func New(config Config, game *stations.Game, provider assets.Provider, session *gtsync.Session) (*Server, error) {
	if game == nil {
		return nil, errors.New("game is required")
	}
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	if session == nil {
		return nil, errors.New("session is required")
	}
	if config.Name == "" {
		config.Name = "gtaradio"
	}
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	if config.Clock == nil {
		config.Clock = gtsync.SystemClock{}
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop().Sugar()
	}

	s := &Server{
		config:    config,
		serverID:  uuid.New().String(),
		logger:    config.Logger,
		game:      game,
		provider:  provider,
		session:   session,
		importer:  assets.NewImporter(game.Stems(), config.Logger),
		clients:   make(map[string]*client),
		durations: make(map[string]stationMeta),
		stopChan:  make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.router
}

// ID returns the server instance id reported in clock messages
func (s *Server) ID() string {
	return s.serverID
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"X-Station-Format", "X-Station-Duration", "X-Station-Note"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Route("/stations", func(r chi.Router) {
			r.Get("/", s.handleStations)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/raw", s.handleRaw)
				r.Get("/audio", s.handleAudio)
			})
		})
		r.Get("/offset", s.handleOffset)
		r.Post("/offset/skip", s.handleSkip)
		r.Post("/import", s.handleImport)
	})
	return r
}

// requestLogger logs one line per request
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()))
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients
		return true
	}
	for _, allowed := range s.config.AllowOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	s.logger.Warnw("rejecting websocket origin", "origin", origin)
	return false
}

// Start serves until Stop is called or the listener fails
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Stop is called or the listener fails
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Infow("server starting", "name", s.config.Name, "id", s.serverID, "addr", ln.Addr().String())

	if s.config.Advertise {
		port := 0
		if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
			port = tcp.Port
		} else if _, p, err := net.SplitHostPort(ln.Addr().String()); err == nil {
			port, _ = strconv.Atoi(p)
		}
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        port,
			Logger:      s.logger,
		})
		if err := s.mdnsManager.Advertise(); err != nil {
			s.logger.Warnw("failed to start mDNS advertisement", "error", err)
		} else {
			s.logger.Infow("mDNS advertisement started", "service", discovery.ServiceType, "port", port)
		}
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-s.stopChan:
		s.logger.Infow("server shutting down")
	case err := <-errChan:
		s.logger.Errorw("HTTP server error", "error", err)
		serverErr = err
	}

	// Reject new websocket clients
	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warnw("HTTP server shutdown error", "error", err)
	}

	// Hijacked websocket connections are not closed by Shutdown
	s.closeClients()

	s.wg.Wait()
	s.logger.Infow("server stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}
