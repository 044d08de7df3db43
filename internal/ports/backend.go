package ports

import (
	"context"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/domain/model"
)

// AccountAPI covers the backend's unauthenticated account endpoints.
type AccountAPI interface {
	Login(ctx context.Context, req model.LoginRequest) (domainauth.Credential, error)
	Signup(ctx context.Context, req model.SignupRequest) (string, error)
	// CheckUserID and CheckEmail return true when the value is already taken.
	CheckUserID(ctx context.Context, userID string) (bool, error)
	CheckEmail(ctx context.Context, email string) (bool, error)
	SendEmailCode(ctx context.Context, email string) (string, error)
	VerifyEmailCode(ctx context.Context, email, code string) (string, error)
	FindUserID(ctx context.Context, email string) (string, error)
}

// Bearer identifies the caller on authenticated dashboard endpoints.
type Bearer struct {
	Token  string
	UserID int64
}

// DashboardAPI covers the backend's token-protected dashboard endpoints.
type DashboardAPI interface {
	All(ctx context.Context, b Bearer) (model.DashboardData, error)
	Profile(ctx context.Context, b Bearer) (model.Profile, error)
	UpdateProfile(ctx context.Context, b Bearer, p model.Profile) (model.Profile, error)
	Conditions(ctx context.Context, b Bearer) (model.Conditions, error)
	UpdateConditions(ctx context.Context, b Bearer, c model.Conditions) (model.Conditions, error)
	Applications(ctx context.Context, b Bearer) ([]model.Application, error)
	SaveApplications(ctx context.Context, b Bearer, apps []model.Application) ([]model.Application, error)
	Stats(ctx context.Context, b Bearer) (model.Stats, error)
	Recommendations(ctx context.Context, b Bearer, q model.RecommendationQuery) ([]model.JobRecommendation, error)
}

// BackendSession is the per-request handle on the backend: both API surfaces plus session diagnostics.
type BackendSession interface {
	AccountAPI
	DashboardAPI
	SessionStatus(ctx context.Context) model.SessionStatus
}
