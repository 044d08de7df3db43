package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/initcareer/init-web/internal/adapters/backend"
	"github.com/initcareer/init-web/internal/adapters/cookies"
	"github.com/initcareer/init-web/internal/credstore"
	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/ports"
)

// DefaultDeviceMaxAge is how long the device_id cookie lives.
const DefaultDeviceMaxAge = 400 * 24 * time.Hour

// BackendBinder binds the backend client to one request's cookie and session tiers.
type BackendBinder func(in backend.BindInput) ports.BackendSession

// BindCaller adapts a backend.Caller to BackendBinder.
func BindCaller(c *backend.Caller) BackendBinder {
	return func(in backend.BindInput) ports.BackendSession { return c.Bind(in) }
}

// ClientConfig holds the shared stores behind every request's Client.
type ClientConfig struct {
	Durable ports.KeyValueStore
	Session ports.KeyValueStore
	// Events is optional; without it tabs are not told about storage changes.
	Events  ports.StorageEvents
	Backend BackendBinder

	CookieDomain string
	// CredentialHTTPOnly hides the mirrored credential cookies from page scripts.
	CredentialHTTPOnly bool
	CookieMaxAge       time.Duration
	DeviceMaxAge       time.Duration
	Logger             *slog.Logger
}

// ClientScope returns a middleware that identifies the device behind the request,
// issuing a device_id cookie on first contact, and attaches its Client to the context.
func ClientScope(cfg ClientConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	deviceMaxAge := cfg.DeviceMaxAge
	if deviceMaxAge <= 0 {
		deviceMaxAge = DefaultDeviceMaxAge
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			jar := cookies.New(w, r, cookies.Options{Domain: cfg.CookieDomain, HTTPOnly: cfg.CredentialHTTPOnly})

			device := deviceID(jar.Get(domainauth.KeyDeviceCookie))
			if device == "" {
				device = uuid.NewString()
				jar.Set(&http.Cookie{
					Name:     domainauth.KeyDeviceCookie,
					Value:    device,
					MaxAge:   int(deviceMaxAge / time.Second),
					HttpOnly: true,
				})
			}

			c := &Client{
				Device:  device,
				Cookies: jar,
				Durable: credstore.Bind(credstore.BindOptions{
					Store: cfg.Durable, Scope: device, Events: cfg.Events, Logger: logger,
				}),
				Session: credstore.Bind(credstore.BindOptions{
					Store: cfg.Session, Scope: device, Logger: logger,
				}),
			}
			c.Store = credstore.New(credstore.Options{
				Durable:      c.Durable,
				Cookies:      jar,
				Session:      c.Session,
				CookieMaxAge: cfg.CookieMaxAge,
				Logger:       logger,
			})
			if cfg.Backend != nil {
				c.Backend = cfg.Backend(backend.BindInput{
					Cookies: jar,
					Tracker: c.Session,
					Mobile:  backend.IsMobile(r),
				})
			}

			next.ServeHTTP(w, r.WithContext(SetClientInContext(r.Context(), c)))
		})
	}
}

// deviceID accepts only well-formed UUIDs so a forged cookie cannot pick another scope's key layout.
func deviceID(raw string) string {
	id, err := uuid.Parse(raw)
	if err != nil {
		return ""
	}
	return id.String()
}
