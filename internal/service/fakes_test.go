package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/initcareer/init-web/internal/adapters/cookies"
	"github.com/initcareer/init-web/internal/adapters/memstore"
	"github.com/initcareer/init-web/internal/credstore"
	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/domain/model"
	"github.com/initcareer/init-web/internal/ports"
)

type fakeAccountAPI struct {
	loginFunc       func(ctx context.Context, req model.LoginRequest) (domainauth.Credential, error)
	signupFunc      func(ctx context.Context, req model.SignupRequest) (string, error)
	checkUserIDFunc func(ctx context.Context, userID string) (bool, error)
	checkEmailFunc  func(ctx context.Context, email string) (bool, error)
	sendCodeFunc    func(ctx context.Context, email string) (string, error)
	verifyCodeFunc  func(ctx context.Context, email, code string) (string, error)
	findUserIDFunc  func(ctx context.Context, email string) (string, error)
}

var _ ports.AccountAPI = (*fakeAccountAPI)(nil)

func (f *fakeAccountAPI) Login(ctx context.Context, req model.LoginRequest) (domainauth.Credential, error) {
	if f.loginFunc == nil {
		panic("unexpected Login call")
	}
	return f.loginFunc(ctx, req)
}

func (f *fakeAccountAPI) Signup(ctx context.Context, req model.SignupRequest) (string, error) {
	if f.signupFunc == nil {
		panic("unexpected Signup call")
	}
	return f.signupFunc(ctx, req)
}

func (f *fakeAccountAPI) CheckUserID(ctx context.Context, userID string) (bool, error) {
	if f.checkUserIDFunc == nil {
		panic("unexpected CheckUserID call")
	}
	return f.checkUserIDFunc(ctx, userID)
}

func (f *fakeAccountAPI) CheckEmail(ctx context.Context, email string) (bool, error) {
	if f.checkEmailFunc == nil {
		panic("unexpected CheckEmail call")
	}
	return f.checkEmailFunc(ctx, email)
}

func (f *fakeAccountAPI) SendEmailCode(ctx context.Context, email string) (string, error) {
	if f.sendCodeFunc == nil {
		panic("unexpected SendEmailCode call")
	}
	return f.sendCodeFunc(ctx, email)
}

func (f *fakeAccountAPI) VerifyEmailCode(ctx context.Context, email, code string) (string, error) {
	if f.verifyCodeFunc == nil {
		panic("unexpected VerifyEmailCode call")
	}
	return f.verifyCodeFunc(ctx, email, code)
}

func (f *fakeAccountAPI) FindUserID(ctx context.Context, email string) (string, error) {
	if f.findUserIDFunc == nil {
		panic("unexpected FindUserID call")
	}
	return f.findUserIDFunc(ctx, email)
}

type fakeDashboardAPI struct {
	allFunc              func(ctx context.Context, b ports.Bearer) (model.DashboardData, error)
	profileFunc          func(ctx context.Context, b ports.Bearer) (model.Profile, error)
	updateProfileFunc    func(ctx context.Context, b ports.Bearer, p model.Profile) (model.Profile, error)
	conditionsFunc       func(ctx context.Context, b ports.Bearer) (model.Conditions, error)
	updateConditionsFunc func(ctx context.Context, b ports.Bearer, c model.Conditions) (model.Conditions, error)
	applicationsFunc     func(ctx context.Context, b ports.Bearer) ([]model.Application, error)
	saveAppsFunc         func(ctx context.Context, b ports.Bearer, apps []model.Application) ([]model.Application, error)
	statsFunc            func(ctx context.Context, b ports.Bearer) (model.Stats, error)
	recommendationsFunc  func(ctx context.Context, b ports.Bearer, q model.RecommendationQuery) ([]model.JobRecommendation, error)
}

var _ ports.DashboardAPI = (*fakeDashboardAPI)(nil)

func (f *fakeDashboardAPI) All(ctx context.Context, b ports.Bearer) (model.DashboardData, error) {
	if f.allFunc == nil {
		panic("unexpected All call")
	}
	return f.allFunc(ctx, b)
}

func (f *fakeDashboardAPI) Profile(ctx context.Context, b ports.Bearer) (model.Profile, error) {
	if f.profileFunc == nil {
		panic("unexpected Profile call")
	}
	return f.profileFunc(ctx, b)
}

func (f *fakeDashboardAPI) UpdateProfile(ctx context.Context, b ports.Bearer, p model.Profile) (model.Profile, error) {
	if f.updateProfileFunc == nil {
		panic("unexpected UpdateProfile call")
	}
	return f.updateProfileFunc(ctx, b, p)
}

func (f *fakeDashboardAPI) Conditions(ctx context.Context, b ports.Bearer) (model.Conditions, error) {
	if f.conditionsFunc == nil {
		panic("unexpected Conditions call")
	}
	return f.conditionsFunc(ctx, b)
}

func (f *fakeDashboardAPI) UpdateConditions(
	ctx context.Context,
	b ports.Bearer,
	c model.Conditions,
) (model.Conditions, error) {
	if f.updateConditionsFunc == nil {
		panic("unexpected UpdateConditions call")
	}
	return f.updateConditionsFunc(ctx, b, c)
}

func (f *fakeDashboardAPI) Applications(ctx context.Context, b ports.Bearer) ([]model.Application, error) {
	if f.applicationsFunc == nil {
		panic("unexpected Applications call")
	}
	return f.applicationsFunc(ctx, b)
}

func (f *fakeDashboardAPI) SaveApplications(
	ctx context.Context,
	b ports.Bearer,
	apps []model.Application,
) ([]model.Application, error) {
	if f.saveAppsFunc == nil {
		panic("unexpected SaveApplications call")
	}
	return f.saveAppsFunc(ctx, b, apps)
}

func (f *fakeDashboardAPI) Stats(ctx context.Context, b ports.Bearer) (model.Stats, error) {
	if f.statsFunc == nil {
		panic("unexpected Stats call")
	}
	return f.statsFunc(ctx, b)
}

func (f *fakeDashboardAPI) Recommendations(
	ctx context.Context,
	b ports.Bearer,
	q model.RecommendationQuery,
) ([]model.JobRecommendation, error) {
	if f.recommendationsFunc == nil {
		panic("unexpected Recommendations call")
	}
	return f.recommendationsFunc(ctx, b, q)
}

// tiers wires a real credential store over in-memory tiers for one device.
type tiers struct {
	kv      *memstore.Store
	durable *credstore.BoundTier
	session *credstore.BoundTier
	cookies *cookies.Tier
	rec     *httptest.ResponseRecorder
	store   *credstore.Store
}

func newTiers(t *testing.T, reqCookies ...*http.Cookie) *tiers {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range reqCookies {
		r.AddCookie(c)
	}
	tt := &tiers{kv: memstore.New(), rec: httptest.NewRecorder()}
	tt.durable = credstore.Bind(credstore.BindOptions{Store: tt.kv, Scope: "device-1"})
	tt.session = credstore.Bind(credstore.BindOptions{Store: memstore.New(), Scope: "device-1"})
	tt.cookies = cookies.New(tt.rec, r, cookies.Options{})
	tt.store = credstore.New(credstore.Options{Durable: tt.durable, Cookies: tt.cookies, Session: tt.session})
	return tt
}

func (tt *tiers) durableValue(t *testing.T, key string) string {
	t.Helper()
	v, err := tt.durable.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("durable get %s: %v", key, err)
	}
	return v
}
