package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/initcareer/init-web/config"
	httpx "github.com/initcareer/init-web/internal/http"
	"github.com/initcareer/init-web/internal/observability/metrics"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// ErrCh receives a listen failure; nil only logs it.
	ErrCh chan<- error
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := buildHTTPHandler(httpHandlerConfig{
		Logger:   logger,
		Services: routerServices(appCfg, cfg.Services, logger),
		HTTP:     appCfg.HTTP,
	})

	return startServer(serverConfig{Logger: logger, Handler: handler, Addr: appCfg.HTTP.Addr, ErrCh: cfg.ErrCh})
}

// routerServices maps the service container onto the router's dependencies.
func routerServices(appCfg *config.AppConfig, svc ServiceContainer, logger *slog.Logger) httpx.RouterServices {
	rs := httpx.RouterServices{
		Auth:      svc.Auth,
		Signup:    svc.Signup,
		Dashboard: svc.Dashboard,
		Theme:     svc.Theme,
		Resolver:  svc.Resolver,
		Client: httpx.ClientConfig{
			Durable:            svc.Storage.Durable,
			Session:            svc.Storage.Session,
			Events:             svc.Storage.Events,
			CredentialHTTPOnly: appCfg.Credential.HTTPOnly,
			CookieMaxAge:       appCfg.Credential.CookieMaxAge,
		},
		CookieDomain:   appCfg.HTTP.CookieDomain,
		GoogleLoginURL: appCfg.Backend.GoogleLoginURL,
		Metrics:        svc.Metrics,
		IsDev:          appCfg.IsDev,
		Logger:         logger,
	}
	if svc.Backend != nil {
		rs.Client.Backend = httpx.BindCaller(svc.Backend)
	}
	if appCfg.Observability.Metrics.IsEnabled() && svc.Registry != nil {
		rs.MetricsHandler = metrics.Handler(svc.Registry)
		rs.MetricsPath = appCfg.Observability.Metrics.Path
	}
	return rs
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services httpx.RouterServices
	HTTP     config.HTTPConfig
}

func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	router := httpx.NewRouter(cfg.Services)

	// Apply compression middleware first (innermost) so logging captures compressed sizes
	// Order: Recover -> Logging -> Compression -> Router
	h := router
	if cfg.HTTP.CompressionEnabled {
		cfg.Logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		h = httpx.Compression(httpx.CompressionConfig{Level: cfg.HTTP.CompressionLevel, Logger: cfg.Logger})(h)
	}

	h = httpx.Logging(cfg.Logger)(h)
	h = httpx.Recover(cfg.Logger)(h)

	return h
}

type serverConfig struct {
	Logger  *slog.Logger
	Handler http.Handler
	Addr    string
	ErrCh   chan<- error
}

func startServer(cfg serverConfig) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	addr := cfg.Addr
	if addr == "" {
		addr = ":3000"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           cfg.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No write timeout: /events/storage holds its response open.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		cfg.Logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Logger.Error("HTTP server failed", "error", err)
			if cfg.ErrCh != nil {
				select {
				case cfg.ErrCh <- err:
				default:
				}
			}
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server. Open event streams
// end when their request contexts are cancelled by Shutdown's deadline.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = shutdownWaitTimeout
	}
	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}
	shutdownCtx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// Streams that outlive the deadline are cut off.
			return cfg.Server.Close()
		}
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
