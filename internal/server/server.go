// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/storefront/internal/auth"
	"github.com/vyrodovalexey/storefront/internal/config"
	"github.com/vyrodovalexey/storefront/internal/handler"
	"github.com/vyrodovalexey/storefront/internal/lock"
	"github.com/vyrodovalexey/storefront/internal/middleware"
	"github.com/vyrodovalexey/storefront/internal/service"
	"github.com/vyrodovalexey/storefront/internal/store"
)

// Dependencies are the backends the server is built on.
type Dependencies struct {
	Items store.ItemStore
	Cart  store.CartStore
	// Locker serializes per-item writes in locked consistency mode. Nil selects an in-process lock.
	Locker lock.Locker
	// Checks are pinged by the readiness probe.
	Checks map[string]store.Pinger
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     *config.Config
	logger     *zap.Logger
	feed       *handler.StockFeed
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *zap.Logger, deps Dependencies) (*Server, error) {
	admin, err := auth.NewStaticAdmin(cfg.AdminID)
	if err != nil {
		return nil, fmt.Errorf("creating admin authorizer: %w", err)
	}

	s := &Server{
		router: mux.NewRouter(),
		config: cfg,
		logger: logger,
		feed:   handler.NewStockFeed(logger),
	}

	s.setupMiddleware()
	s.setupRoutes(admin, deps)
	s.setupHTTPServer()

	return s, nil
}

// setupMiddleware configures the middleware chain.
func (s *Server) setupMiddleware() {
	cors := middleware.CORSConfig{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         s.config.CORSMaxAge,
	}

	// Apply middleware in order (first applied = outermost). The request ID
	// is assigned first so a recovered panic can be correlated.
	s.router.Use(mux.MiddlewareFunc(middleware.RequestID()))
	s.router.Use(mux.MiddlewareFunc(middleware.Recovery(s.logger)))

	if s.config.MetricsEnabled {
		s.router.Use(mux.MiddlewareFunc(middleware.NewHTTPMetrics(prometheus.DefaultRegisterer).Middleware()))
	}

	s.router.Use(mux.MiddlewareFunc(middleware.Logging(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.CORS(cors)))
}

// setupRoutes builds the services and registers every route.
func (s *Server) setupRoutes(admin auth.Authorizer, deps Dependencies) {
	consistency := service.ConsistencyMode(s.config.ConsistencyMode)

	// Catalog updates take the same item lock as purchases in locked mode.
	var catalogLocker lock.Locker
	locker := deps.Locker
	if consistency == service.ConsistencyLocked {
		if locker == nil {
			locker = lock.NewKeyedMutex()
		}
		catalogLocker = locker
	}

	catalog := service.NewCatalogService(deps.Items, admin, s.logger, service.CatalogOptions{
		Locker:    catalogLocker,
		Publisher: s.feed,
	})
	orders := service.NewOrderService(deps.Items, deps.Cart, s.logger, service.OrderOptions{
		Consistency: consistency,
		CartCheck:   service.CartCheckMode(s.config.CartCheck),
		CartTotal:   service.CartTotalMode(s.config.CartTotal),
		Locker:      locker,
		Publisher:   s.feed,
	})

	handler.NewHealthHandler(deps.Checks, s.logger).RegisterRoutes(s.router)
	handler.NewRESTHandler(catalog, orders, handler.ResponseMode(s.config.ResponseMode), s.logger).
		RegisterRoutes(s.router)
	s.feed.RegisterRoutes(s.router)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
}

// setupHTTPServer configures the HTTP server.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
		zap.String("response_mode", s.config.ResponseMode),
		zap.String("consistency_mode", s.config.ConsistencyMode),
		zap.String("cart_check", s.config.CartCheck),
		zap.String("cart_total", s.config.CartTotal),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server. New connections are refused
// before the stock feed subscribers are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	err := s.httpServer.Shutdown(ctx)
	s.feed.CloseAllConnections()

	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Router returns the server's router for testing purposes.
func (s *Server) Router() *mux.Router {
	return s.router
}
