// Package server exposes the calculators as a JSON and SVG dashboard API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TFMV/tenlab/config"
	"github.com/TFMV/tenlab/presets"
	"github.com/TFMV/tenlab/render"
)

// ServiceVersion is reported by the health endpoint
const ServiceVersion = "0.1.0"

// Server holds the dashboard state. Graphs and sessions live in memory
// only; nothing survives a restart.
type Server struct {
	cfg      config.Config
	logger   *slog.Logger
	presets  *presets.Set
	validate *validator.Validate

	graphs   *store[graphEntry]
	descents *store[descentSession]
	bandits  *store[banditSession]
	cache    *lru.Cache[string, []byte]

	// ctx bounds every background task started by a session
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a server. A nil preset set uses the embedded catalog.
func New(cfg config.Config, set *presets.Set, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if set == nil {
		var err error
		if set, err = presets.Builtin(); err != nil {
			return nil, fmt.Errorf("load presets: %w", err)
		}
	}
	cache, err := lru.New[string, []byte](cfg.Server.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("render cache: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:      cfg,
		logger:   logger,
		presets:  set,
		validate: validator.New(),
		graphs:   newStore[graphEntry]("graph", cfg.Server.MaxSessions, ErrGraphNotFound),
		descents: newStore[descentSession]("descent", cfg.Server.MaxSessions, ErrSessionNotFound),
		bandits:  newStore[banditSession]("bandit", cfg.Server.MaxSessions, ErrSessionNotFound),
		cache:    cache,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Handler builds the gin engine with every route registered
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterRoutes(router.Group("/api"), s)
	return router
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close stops every running animation and batch
func (s *Server) Close() {
	s.cancel()
}

// HealthResponse is returned by GET /healthz
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Graphs   int    `json:"graphs"`
	Sessions int    `json:"sessions"`
}

// HandleHealth handles GET /healthz
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "healthy",
		Version:  ServiceVersion,
		Graphs:   s.graphs.Len(),
		Sessions: s.descents.Len() + s.bandits.Len(),
	})
}

func (s *Server) renderOptions(format string) *render.OutputOptions {
	opts := render.NewDefaultOptions(format)
	opts.Width = s.cfg.Render.Width
	opts.Height = s.cfg.Render.Height
	opts.Background = s.cfg.Render.Background
	opts.Accent = s.cfg.Render.Accent
	return opts
}

// cached returns the memoized render for key or computes and stores it
func (s *Server) cached(key string, build func() ([]byte, error)) ([]byte, error) {
	if out, ok := s.cache.Get(key); ok {
		renderCacheTotal.WithLabelValues("hit").Inc()
		return out, nil
	}
	renderCacheTotal.WithLabelValues("miss").Inc()
	out, err := build()
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, out)
	return out, nil
}
