// Package server exposes dashboards, chart images and data exports over HTTP.
// Every request recomputes its views from the cached table; no per-client
// state is kept.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spektr-org/gdpboard/engine"
	"github.com/spektr-org/gdpboard/render"
)

// TableSource loads the normalized table for a path.
type TableSource interface {
	Load(ctx context.Context, path string) (*engine.Table, error)
}

// Server serves the GDP dashboard API.
type Server struct {
	source TableSource
	path   string

	title            string
	currencySymbol   string
	defaultCountries int
	chartSize        render.Size
	readTimeout      time.Duration
	writeTimeout     time.Duration

	logger   *zap.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	router   *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithRegistry serves and registers metrics on reg.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithTitle sets the dashboard title.
func WithTitle(title string) Option {
	return func(s *Server) { s.title = title }
}

// WithCurrencySymbol sets the currency prefix of formatted values.
func WithCurrencySymbol(symbol string) Option {
	return func(s *Server) { s.currencySymbol = symbol }
}

// WithDefaultCountries sets how many countries the default selection holds.
func WithDefaultCountries(n int) Option {
	return func(s *Server) { s.defaultCountries = n }
}

// WithChartSize sets the PNG chart size.
func WithChartSize(size render.Size) Option {
	return func(s *Server) { s.chartSize = size }
}

// WithTimeouts sets the HTTP read and write timeouts.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
	}
}

// New creates a Server reading the table at path from source.
func New(source TableSource, path string, opts ...Option) *Server {
	s := &Server{
		source:           source,
		path:             path,
		title:            "Global GDP Dashboard",
		currencySymbol:   "$",
		defaultCountries: engine.DefaultCountryCount,
		chartSize:        render.DefaultSize,
		readTimeout:      10 * time.Second,
		writeTimeout:     30 * time.Second,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}

	f := promauto.With(s.registry)
	s.requests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gdpboard",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	s.latency = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gdpboard",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.requestID, s.instrument)

	// API
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/options", s.handleOptions).Methods(http.MethodGet)
	api.HandleFunc("/trend", s.handleTrend).Methods(http.MethodGet)
	api.HandleFunc("/ranking", s.handleRanking).Methods(http.MethodGet)

	// Charts
	router.HandleFunc("/charts/trend.png", s.handleTrendPNG).Methods(http.MethodGet)
	router.HandleFunc("/charts/ranking.png", s.handleRankingPNG).Methods(http.MethodGet)

	// Exports
	router.HandleFunc("/export/data.csv", s.handleExportCSV).Methods(http.MethodGet)
	router.HandleFunc("/export/data.xlsx", s.handleExportXLSX).Methods(http.MethodGet)

	// Operations
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return router
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		s.logger.Info("server stopped")
		return nil
	}
}

func (s *Server) engineOptions() []engine.Option {
	return []engine.Option{
		engine.WithTitle(s.title),
		engine.WithCurrencySymbol(s.currencySymbol),
		engine.WithDefaultCountries(s.defaultCountries),
	}
}
