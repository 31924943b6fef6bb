package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/assetpath/internal/config"
	"github.com/vango-dev/assetpath/internal/errors"
	"github.com/vango-dev/assetpath/pkg/assets"
	"github.com/vango-dev/assetpath/pkg/middleware"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// AssetSource is the catalog managed asset bodies are served from.
// *catalog.Catalog implements it.
type AssetSource interface {
	Resolve(logical string) (*assets.Asset, bool)
	ResolveDigest(digestPath string) (*assets.Asset, bool)
	Open(logical string) (io.ReadCloser, error)
	Concat(logical string) ([]byte, error)
}

// Server serves resolutions over HTTP and WebSocket, managed asset bodies
// under the mount prefix, and the public directory.
type Server struct {
	config *config.Config
	helper *assets.Helper
	source AssetSource

	metrics  *middleware.Metrics
	gatherer prometheus.Gatherer
	tracer   trace.TracerProvider

	publicFS  http.FileSystem
	publicDir string
	prefix    string

	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool

	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records HTTP metrics into m and exposes g at /metrics.
// Share m with the Helper's observer so resolutions are counted too.
func WithMetrics(m *middleware.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithTracerProvider sets the tracer provider for request spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracer = tp
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCheckOrigin sets the WebSocket origin check. The default accepts
// same-origin requests only.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// New creates a new Server. source may be nil, in which case only the
// public directory is served.
func New(cfg *config.Config, helper *assets.Helper, source AssetSource, opts ...Option) *Server {
	s := &Server{
		config:    cfg,
		helper:    helper,
		source:    source,
		publicDir: cfg.PublicPath(),
		prefix:    cfg.MountPrefix(),
		clients:   make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		reg := prometheus.NewRegistry()
		s.metrics = middleware.NewMetrics(middleware.WithRegistry(reg))
		s.gatherer = reg
	}
	if s.publicDir != "" {
		if info, err := os.Stat(s.publicDir); err == nil && info.IsDir() {
			s.publicFS = http.Dir(s.publicDir)
		}
	}

	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	tracing := []middleware.OTelOption{middleware.WithTracerName("assetpath/server")}
	if s.tracer != nil {
		tracing = append(tracing, middleware.WithTracerProvider(s.tracer))
	}
	r.Use(middleware.Tracing(tracing...))
	r.Use(s.metrics.Handler)

	r.Get("/ws", s.handleWebSocket)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if s.config.Compress() {
			r.Use(func(next http.Handler) http.Handler {
				return gzhttp.GzipHandler(next)
			})
		}
		r.Get("/resolve", s.handleResolve)
		if s.prefix != "" {
			r.Get(s.prefix+"/*", s.serveAsset)
			r.Head(s.prefix+"/*", s.serveAsset)
			r.Get("/*", s.servePublic)
			r.Head("/*", s.servePublic)
		} else {
			r.Get("/*", s.serveAsset)
			r.Head("/*", s.serveAsset)
		}
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// logRequests logs every request once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Addr
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.New("E160").
			WithDetail("Cannot listen on " + addr).
			WithSuggestion("Choose another address with --addr").
			Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String(), "prefix", s.prefix)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.New("E160").Wrap(err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server and closes WebSocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	s.mu.Lock()
	srv := s.httpServer
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
	s.mu.Unlock()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
