package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Zachdehooge/teleconnection-dashboard/internal/config"
	"github.com/Zachdehooge/teleconnection-dashboard/internal/fetcher"
	"github.com/Zachdehooge/teleconnection-dashboard/internal/generator"
	"github.com/Zachdehooge/teleconnection-dashboard/internal/metrics"
)

// IndexFetcher retrieves index sources
type IndexFetcher interface {
	Fetch(ctx context.Context, src fetcher.Source) fetcher.Result
	FetchAll(ctx context.Context, sources []fetcher.Source) []fetcher.Result
}

// Server serves the dashboard page and the series API
type Server struct {
	cfg      *config.Config
	fetcher  IndexFetcher
	logger   *slog.Logger
	metrics  *metrics.Collector
	gatherer prometheus.Gatherer
	router   chi.Router
}

// New wires the router. metrics may be nil; gatherer backs /metrics when non-nil.
func New(cfg *config.Config, f IndexFetcher, logger *slog.Logger, m *metrics.Collector, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		cfg:      cfg,
		fetcher:  f,
		logger:   logger.With(slog.String("component", "server")),
		metrics:  m,
		gatherer: gatherer,
	}
	s.router = s.routes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(StructuredLogger(s.logger))
	r.Use(Recoverer(s.logger))

	r.Get("/", s.handleDashboard)
	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/series", s.handleSeriesList)
		r.Get("/series/{name}", s.handleSeries)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", s.cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// handleDashboard runs the whole fetch, parse and plot pipeline for every view
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d := generator.Build(r.Context(), s.fetcher, s.cfg.Sources, generator.Options{
		Window: s.cfg.Dashboard.Window,
		Now:    time.Now(),
		Logger: s.logger,
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	err := generator.Render(w, d)
	if s.metrics != nil {
		s.metrics.ObserveRender(err)
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "dashboard render failed", slog.String("error", err.Error()))
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// SeriesResponse is the API view of one source
type SeriesResponse struct {
	Name    string           `json:"name"`
	URL     string           `json:"url"`
	Total   int              `json:"total"`
	Records []fetcher.Record `json:"records"`
	Error   *SeriesError     `json:"error,omitempty"`
}

// SeriesError describes why a source is missing
type SeriesError struct {
	Reason  fetcher.Reason `json:"reason"`
	Message string         `json:"message"`
}

func (s *Server) toResponse(res fetcher.Result, all bool) SeriesResponse {
	resp := SeriesResponse{
		Name:    res.Source.Name,
		URL:     res.Source.URL,
		Total:   res.Series.Len(),
		Records: []fetcher.Record{},
	}
	if !res.OK() {
		resp.Error = &SeriesError{Reason: res.Err.Reason, Message: res.Err.Error()}
		return resp
	}
	view := res.Series
	if !all {
		view = view.Tail(s.cfg.Dashboard.Window)
	}
	if view.Records != nil {
		resp.Records = view.Records
	}
	return resp
}

// handleSeriesList handles GET /api/series
func (s *Server) handleSeriesList(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "true"
	results := s.fetcher.FetchAll(r.Context(), s.cfg.Sources)

	out := make([]SeriesResponse, 0, len(results))
	for _, res := range results {
		out = append(out, s.toResponse(res, all))
	}
	render.JSON(w, r, out)
}

// handleSeries handles GET /api/series/{name}
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	src, ok := s.lookup(name)
	if !ok {
		render.Render(w, r, errUnknownIndex(name))
		return
	}

	res := s.fetcher.Fetch(r.Context(), src)
	if !res.OK() {
		render.Render(w, r, errUpstream(res.Err))
		return
	}
	render.JSON(w, r, s.toResponse(res, r.URL.Query().Get("all") == "true"))
}

func (s *Server) lookup(name string) (fetcher.Source, bool) {
	for _, src := range s.cfg.Sources {
		if strings.EqualFold(src.Name, name) {
			return src, true
		}
	}
	return fetcher.Source{}, false
}
