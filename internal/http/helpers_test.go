package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/initcareer/init-web/internal/adapters/backend"
	"github.com/initcareer/init-web/internal/adapters/cookies"
	"github.com/initcareer/init-web/internal/adapters/memstore"
	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/domain/model"
	"github.com/initcareer/init-web/internal/ports"
	"github.com/initcareer/init-web/internal/service"
)

// RequireTemplateRenderer creates a TemplateRenderer for tests, skipping the test if templates are not available.
func RequireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Skipf("Templates not available, skipping: %v", err)
		return nil
	}
	return tr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBackend is a BackendSession whose calls are answered by the xxxFunc fields.
// Calls without a func panic so unexpected traffic fails the test.
type fakeBackend struct {
	loginFunc            func(ctx context.Context, req model.LoginRequest) (domainauth.Credential, error)
	signupFunc           func(ctx context.Context, req model.SignupRequest) (string, error)
	checkUserIDFunc      func(ctx context.Context, userID string) (bool, error)
	checkEmailFunc       func(ctx context.Context, email string) (bool, error)
	sendCodeFunc         func(ctx context.Context, email string) (string, error)
	verifyCodeFunc       func(ctx context.Context, email, code string) (string, error)
	findUserIDFunc       func(ctx context.Context, email string) (string, error)
	allFunc              func(ctx context.Context, b ports.Bearer) (model.DashboardData, error)
	profileFunc          func(ctx context.Context, b ports.Bearer) (model.Profile, error)
	updateProfileFunc    func(ctx context.Context, b ports.Bearer, p model.Profile) (model.Profile, error)
	conditionsFunc       func(ctx context.Context, b ports.Bearer) (model.Conditions, error)
	updateConditionsFunc func(ctx context.Context, b ports.Bearer, c model.Conditions) (model.Conditions, error)
	applicationsFunc     func(ctx context.Context, b ports.Bearer) ([]model.Application, error)
	saveAppsFunc         func(ctx context.Context, b ports.Bearer, apps []model.Application) ([]model.Application, error)
	statsFunc            func(ctx context.Context, b ports.Bearer) (model.Stats, error)
	recommendationsFunc  func(ctx context.Context, b ports.Bearer, q model.RecommendationQuery) ([]model.JobRecommendation, error)
	sessionStatusFunc    func(ctx context.Context) model.SessionStatus
}

var _ ports.BackendSession = (*fakeBackend)(nil)

func (f *fakeBackend) Login(ctx context.Context, req model.LoginRequest) (domainauth.Credential, error) {
	if f.loginFunc == nil {
		panic("unexpected Login call")
	}
	return f.loginFunc(ctx, req)
}

func (f *fakeBackend) Signup(ctx context.Context, req model.SignupRequest) (string, error) {
	if f.signupFunc == nil {
		panic("unexpected Signup call")
	}
	return f.signupFunc(ctx, req)
}

func (f *fakeBackend) CheckUserID(ctx context.Context, userID string) (bool, error) {
	if f.checkUserIDFunc == nil {
		panic("unexpected CheckUserID call")
	}
	return f.checkUserIDFunc(ctx, userID)
}

func (f *fakeBackend) CheckEmail(ctx context.Context, email string) (bool, error) {
	if f.checkEmailFunc == nil {
		panic("unexpected CheckEmail call")
	}
	return f.checkEmailFunc(ctx, email)
}

func (f *fakeBackend) SendEmailCode(ctx context.Context, email string) (string, error) {
	if f.sendCodeFunc == nil {
		panic("unexpected SendEmailCode call")
	}
	return f.sendCodeFunc(ctx, email)
}

func (f *fakeBackend) VerifyEmailCode(ctx context.Context, email, code string) (string, error) {
	if f.verifyCodeFunc == nil {
		panic("unexpected VerifyEmailCode call")
	}
	return f.verifyCodeFunc(ctx, email, code)
}

func (f *fakeBackend) FindUserID(ctx context.Context, email string) (string, error) {
	if f.findUserIDFunc == nil {
		panic("unexpected FindUserID call")
	}
	return f.findUserIDFunc(ctx, email)
}

func (f *fakeBackend) All(ctx context.Context, b ports.Bearer) (model.DashboardData, error) {
	if f.allFunc == nil {
		panic("unexpected All call")
	}
	return f.allFunc(ctx, b)
}

func (f *fakeBackend) Profile(ctx context.Context, b ports.Bearer) (model.Profile, error) {
	if f.profileFunc == nil {
		panic("unexpected Profile call")
	}
	return f.profileFunc(ctx, b)
}

func (f *fakeBackend) UpdateProfile(ctx context.Context, b ports.Bearer, p model.Profile) (model.Profile, error) {
	if f.updateProfileFunc == nil {
		panic("unexpected UpdateProfile call")
	}
	return f.updateProfileFunc(ctx, b, p)
}

func (f *fakeBackend) Conditions(ctx context.Context, b ports.Bearer) (model.Conditions, error) {
	if f.conditionsFunc == nil {
		panic("unexpected Conditions call")
	}
	return f.conditionsFunc(ctx, b)
}

func (f *fakeBackend) UpdateConditions(ctx context.Context, b ports.Bearer, c model.Conditions) (model.Conditions, error) {
	if f.updateConditionsFunc == nil {
		panic("unexpected UpdateConditions call")
	}
	return f.updateConditionsFunc(ctx, b, c)
}

func (f *fakeBackend) Applications(ctx context.Context, b ports.Bearer) ([]model.Application, error) {
	if f.applicationsFunc == nil {
		panic("unexpected Applications call")
	}
	return f.applicationsFunc(ctx, b)
}

func (f *fakeBackend) SaveApplications(
	ctx context.Context,
	b ports.Bearer,
	apps []model.Application,
) ([]model.Application, error) {
	if f.saveAppsFunc == nil {
		panic("unexpected SaveApplications call")
	}
	return f.saveAppsFunc(ctx, b, apps)
}

func (f *fakeBackend) Stats(ctx context.Context, b ports.Bearer) (model.Stats, error) {
	if f.statsFunc == nil {
		panic("unexpected Stats call")
	}
	return f.statsFunc(ctx, b)
}

func (f *fakeBackend) Recommendations(
	ctx context.Context,
	b ports.Bearer,
	q model.RecommendationQuery,
) ([]model.JobRecommendation, error) {
	if f.recommendationsFunc == nil {
		panic("unexpected Recommendations call")
	}
	return f.recommendationsFunc(ctx, b, q)
}

func (f *fakeBackend) SessionStatus(ctx context.Context) model.SessionStatus {
	if f.sessionStatusFunc == nil {
		return model.SessionStatus{}
	}
	return f.sessionStatusFunc(ctx)
}

// testServer is a full router over in-memory storage and a fake backend.
type testServer struct {
	durable *memstore.Store
	session *memstore.Store
	events  *memstore.Broker
	backend *fakeBackend
	theme   *service.ThemeService
	handler http.Handler
}

func newTestServer(t *testing.T, fb *fakeBackend) *testServer {
	t.Helper()
	if fb == nil {
		fb = &fakeBackend{}
	}
	logger := discardLogger()
	ts := &testServer{
		durable: memstore.New(),
		session: memstore.New(),
		events:  memstore.NewBroker(),
		backend: fb,
		theme:   service.NewThemeService(service.ThemeServiceOptions{Logger: logger}),
	}
	ts.handler = NewRouter(RouterServices{
		Auth:      service.NewAuthService(service.AuthServiceOptions{Logger: logger}),
		Signup:    service.NewSignupService(service.SignupServiceOptions{Logger: logger}),
		Dashboard: service.NewDashboardService(service.DashboardServiceOptions{Logger: logger}),
		Theme:     ts.theme,
		Resolver:  service.NewAuthStateResolver(service.AuthStateResolverOptions{Logger: logger}),
		Client: ClientConfig{
			Durable: ts.durable,
			Session: ts.session,
			Events:  ts.events,
			Backend: func(backend.BindInput) ports.BackendSession { return fb },
		},
		GoogleLoginURL: "https://api.example.test/oauth2/authorization/google",
		Logger:         logger,
	})
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

const (
	testDevice = "7b0c5a9e-2f0d-4c8e-9a51-3d7f3f1c2b6a"
	testToken  = "test-csrf-token"
)

// pageRequest is a browser GET for path on the test device.
func pageRequest(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: domainauth.KeyDeviceCookie, Value: testDevice})
	return req
}

// formRequest is a browser form POST carrying a valid CSRF token.
func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	req.Header.Set(DefaultCSRFHeaderName, testToken)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testToken})
	req.AddCookie(&http.Cookie{Name: domainauth.KeyDeviceCookie, Value: testDevice})
	return req
}

func asHTMX(req *http.Request) *http.Request {
	req.Header.Set("HX-Request", "true")
	return req
}

func asJSON(req *http.Request) *http.Request {
	req.Header.Set("Accept", "application/json")
	return req
}

// signIn attaches mirrored credential cookies for user 42.
func signIn(req *http.Request, role domainauth.Role) *http.Request {
	req.AddCookie(&http.Cookie{Name: domainauth.KeyAuthToken, Value: "token-abc"})
	req.AddCookie(&http.Cookie{Name: domainauth.KeyUserID, Value: "42"})
	req.AddCookie(&http.Cookie{Name: domainauth.KeyUserName, Value: "Kim"})
	if role != domainauth.RoleNone {
		req.AddCookie(&http.Cookie{Name: domainauth.KeyUserRole, Value: string(role)})
	}
	return req
}

// responseCookie returns the Set-Cookie named name, or nil.
func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	res := rec.Result()
	defer res.Body.Close()
	var found *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

// takeFlash decodes the flash notice a response queued.
func takeFlash(t *testing.T, rec *httptest.ResponseRecorder) model.Notice {
	t.Helper()
	c := responseCookie(rec, FlashCookieName)
	if c == nil || c.MaxAge < 0 {
		return model.Notice{}
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	return TakeFlash(cookies.New(httptest.NewRecorder(), req, cookies.Options{}))
}
