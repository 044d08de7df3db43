package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	initweb "github.com/initcareer/init-web"
	httpassets "github.com/initcareer/init-web/internal/http/assets"
	"github.com/initcareer/init-web/internal/observability/metrics"
	"github.com/initcareer/init-web/internal/ports"
	"github.com/initcareer/init-web/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth      *service.AuthService
	Signup    *service.SignupService
	Dashboard *service.DashboardService
	Theme     *service.ThemeService
	Resolver  ports.AuthResolver
	// Client configures the per-request device scope: storage tiers, events and backend binding.
	Client ClientConfig

	CookieDomain   string
	GoogleLoginURL string
	Metrics        *metrics.Recorder
	// MetricsHandler is mounted at MetricsPath when both are set.
	MetricsHandler http.Handler
	MetricsPath    string

	IsDev  bool         // Development mode flag for hot reloading, etc.
	Logger *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates and configures a new HTTP router with browser middleware.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	if services.MetricsHandler != nil && services.MetricsPath != "" {
		mux.Handle("GET "+services.MetricsPath, services.MetricsHandler)
	}

	// Static assets at /static
	// Dev mode: serve from disk for hot reloading
	// Prod mode: serve from embedded FS
	mux.Handle("GET /static/", staticWithFallback(services.IsDev))

	if uiHandlers := setupUIHandlers(services); uiHandlers != nil {
		registerUIRoutes(mux, uiHandlers, newRouteChains(services))
	}

	// Apply browser detection middleware
	return BrowserDetection()(mux)
}

// routeChains are the middleware stacks a route can be mounted behind.
type routeChains struct {
	// client attaches the device Client only.
	client func(http.Handler) http.Handler
	// form adds CSRF protection for state-changing endpoints that are not gated.
	form func(http.Handler) http.Handler
	// page adds the route gate on top of form.
	page func(http.Handler) http.Handler
	// gate is the route gate alone, for handlers that must run between client scope and the gate.
	gate func(http.Handler) http.Handler
}

func newRouteChains(services RouterServices) routeChains {
	clientCfg := services.Client
	if clientCfg.Logger == nil {
		clientCfg.Logger = services.Logger
	}
	if clientCfg.CookieDomain == "" {
		clientCfg.CookieDomain = services.CookieDomain
	}
	client := ClientScope(clientCfg)
	csrf := CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain, Logger: services.Logger})
	gate := RouteGate(GateConfig{Resolver: services.Resolver, Metrics: services.Metrics, Logger: services.Logger})

	return routeChains{
		client: client,
		form:   func(h http.Handler) http.Handler { return client(csrf(h)) },
		page:   func(h http.Handler) http.Handler { return client(csrf(gate(h))) },
		gate:   gate,
	}
}

// setupDevMode configures template FS, critical CSS FS, and asset resolver for dev mode.
func setupDevMode(diskManifestPath string, logger *slog.Logger) (fs.FS, fs.FS, *AssetResolver) {
	templateFS := os.DirFS(TemplatePathFromRoot)
	criticalCSSFS := os.DirFS("frontend/static")

	resolver, err := httpassets.NewAssetResolverFromDisk(diskManifestPath)
	if err != nil {
		logger.Warn("failed to load asset manifest, falling back to logical asset names",
			slog.String("manifest", diskManifestPath),
			slog.Any("error", err),
		)
	}
	return templateFS, criticalCSSFS, resolver
}

// setupProdMode configures template FS, critical CSS FS, and asset resolver for production mode.
func setupProdMode(diskManifestPath string, logger *slog.Logger) (fs.FS, fs.FS, *AssetResolver) {
	templateFS, err := fs.Sub(initweb.TemplateFS, "frontend/templates")
	if err != nil {
		logger.Warn("failed to create sub-filesystem for templates, falling back to disk", slog.Any("error", err))
		templateFS = os.DirFS(TemplatePathFromRoot)
	}

	staticSub, err := fs.Sub(initweb.StaticFS, "frontend/static")
	if err != nil {
		logger.Warn("failed to create sub-filesystem for static assets", slog.Any("error", err))
		return templateFS, nil, tryDiskManifest(diskManifestPath, logger)
	}
	resolver, err := httpassets.NewAssetResolverFromFS(staticSub, "manifest.json")
	if err != nil {
		logger.Warn("failed to load asset manifest from embedded FS", slog.Any("error", err))
		return templateFS, staticSub, tryDiskManifest(diskManifestPath, logger)
	}
	return templateFS, staticSub, resolver
}

// tryDiskManifest attempts to load the asset manifest from disk as a fallback.
func tryDiskManifest(diskManifestPath string, logger *slog.Logger) *AssetResolver {
	resolver, err := httpassets.NewAssetResolverFromDisk(diskManifestPath)
	if err != nil {
		logger.Warn("failed to load asset manifest, falling back to logical asset names",
			slog.String("manifest", diskManifestPath),
			slog.Any("error", err),
		)
	}
	return resolver
}

// setupUIHandlers creates UI handlers with template renderer and asset resolver.
// In dev mode (services.IsDev=true), templates are loaded from disk for hot reloading.
// In production mode (services.IsDev=false), templates are loaded from embedded FS.
func setupUIHandlers(services RouterServices) *UIHandlers {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		templateFS    fs.FS
		criticalCSSFS fs.FS
		resolver      *AssetResolver
	)
	diskManifestPath := filepath.Join("frontend", "static", "manifest.json")
	if services.IsDev {
		templateFS, criticalCSSFS, resolver = setupDevMode(diskManifestPath, logger)
	} else {
		templateFS, criticalCSSFS, resolver = setupProdMode(diskManifestPath, logger)
	}
	if resolver == nil {
		resolver = &AssetResolver{}
	}
	resolver.SetLogger(logger)

	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS:    templateFS,
		Resolver:      resolver,
		CriticalCSSFS: criticalCSSFS,
		DevMode:       services.IsDev,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("failed to create template renderer", slog.Any("error", err))
		return nil
	}

	return &UIHandlers{
		T:         tr,
		Auth:      services.Auth,
		Signup:    services.Signup,
		Dashboard: services.Dashboard,
		Theme:     services.Theme,
		Resolver:  services.Resolver,
		Events:    services.Client.Events,
		Metrics:   services.Metrics,

		GoogleLoginURL: services.GoogleLoginURL,
		IsDev:          services.IsDev,
		Logger:         logger,
	}
}

// staticWithFallback serves /static/* assets.
// In dev mode (isDev=true), serves from disk for hot reloading.
// In production mode (isDev=false), serves from embedded FS.
func staticWithFallback(isDev bool) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))))
	}

	staticSub, err := fs.Sub(initweb.StaticFS, "frontend/static")
	if err != nil {
		slog.Warn("failed to create sub-filesystem for static assets, serving from disk", slog.Any("error", err))
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))))
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
}

// staticWithCacheHeaders wraps a static file handler to add appropriate cache headers.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	// Regex to match content-hashed filenames including optional .map (e.g., app.abc123.js, styles.def456.css, app.abc123.js.map)
	hashedFilePattern := regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css)(?:\.map)?$`)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedFilePattern.MatchString(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}
		handler.ServeHTTP(w, r)
	})
}

// registerUIRoutes delegates to per-area UI route registration functions.
func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, c routeChains) {
	registerUIAuthRoutes(mux, h, c)
	registerUISignupRoutes(mux, h, c)
	registerUIDashboardRoutes(mux, h, c)
	registerUIPageRoutes(mux, h, c)

	mux.Handle("POST /theme", c.form(http.HandlerFunc(h.ThemeToggle)))
	mux.Handle("GET /events/storage", c.client(http.HandlerFunc(h.StorageEvents)))
}

// registerUIAuthRoutes wires login, logout, find-account and the status endpoints.
func registerUIAuthRoutes(mux *http.ServeMux, h *UIHandlers, c routeChains) {
	// The OAuth landing completes before the gate sees the fresh credential cookies.
	mux.Handle("GET /login", c.form(h.OAuthLanding(c.gate(http.HandlerFunc(h.LoginPage)))))
	mux.Handle("POST /login", c.page(http.HandlerFunc(h.LoginSubmit)))
	mux.Handle("POST /logout", c.form(http.HandlerFunc(h.Logout)))
	mux.Handle("GET /find-account", c.page(http.HandlerFunc(h.FindAccountPage)))
	mux.Handle("POST /find-account", c.page(http.HandlerFunc(h.FindAccountSubmit)))
	mux.Handle("GET /auth/status", c.client(http.HandlerFunc(h.AuthStatus)))
	mux.Handle("GET /auth/session-status", c.client(http.HandlerFunc(h.SessionStatus)))
}

// registerUISignupRoutes wires the signup form and its inline checks. The checks
// are not gated: they run from the signup page before any account exists.
func registerUISignupRoutes(mux *http.ServeMux, h *UIHandlers, c routeChains) {
	mux.Handle("GET /signup", c.page(http.HandlerFunc(h.SignupPage)))
	mux.Handle("POST /signup", c.page(http.HandlerFunc(h.SignupSubmit)))
	mux.Handle("POST /signup/check-userid", c.form(http.HandlerFunc(h.SignupCheckUserID)))
	mux.Handle("POST /signup/email-code", c.form(http.HandlerFunc(h.SignupSendEmailCode)))
	mux.Handle("POST /signup/email-verify", c.form(http.HandlerFunc(h.SignupVerifyEmailCode)))
}

// registerUIDashboardRoutes wires the dashboard page and its card endpoints.
func registerUIDashboardRoutes(mux *http.ServeMux, h *UIHandlers, c routeChains) {
	mux.Handle("GET /dashboard", c.page(http.HandlerFunc(h.DashboardPage)))
	mux.Handle("POST /dashboard/profile", c.page(http.HandlerFunc(h.DashboardProfile)))
	mux.Handle("POST /dashboard/conditions", c.page(http.HandlerFunc(h.DashboardConditions)))
	mux.Handle("POST /dashboard/applications", c.page(http.HandlerFunc(h.DashboardApplications)))
	mux.Handle("GET /dashboard/recommendations", c.page(http.HandlerFunc(h.DashboardRecommendations)))
}

// registerUIPageRoutes wires the landing page, the placeholder user pages, the
// admin console and the catch-all.
func registerUIPageRoutes(mux *http.ServeMux, h *UIHandlers, c routeChains) {
	paths := make([]string, 0, len(placeholderTitles))
	for p := range placeholderTitles {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		mux.Handle("GET "+p, c.page(http.HandlerFunc(h.Placeholder)))
	}
	mux.Handle("GET /admin", c.page(http.HandlerFunc(h.Admin)))
	mux.Handle("GET /", c.page(http.HandlerFunc(h.Root)))
}
