package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/initcareer/init-web/internal/domain/model"
	apperrors "github.com/initcareer/init-web/internal/errors"
	"github.com/initcareer/init-web/internal/ports"
)

const dashboardPrefix = "/home"

// dashboardCall groups the parameters of one token-protected request.
type dashboardCall struct {
	op     string
	method string
	path   string
	in     any
	out    any
}

func (s *Session) dashboard(ctx context.Context, b ports.Bearer, call dashboardCall) error {
	if b.Token == "" {
		return apperrors.Unauthorized(http.StatusUnauthorized, "no authentication token found")
	}
	req := Request{
		Operation:   call.op,
		Method:      call.method,
		Path:        fmt.Sprintf("%s/%s/%s", dashboardPrefix, call.path, strconv.FormatInt(b.UserID, 10)),
		ContentType: contentJSON,
		Bearer:      b.Token,
	}
	if call.in != nil {
		body, err := json.Marshal(call.in)
		if err != nil {
			return apperrors.Wrapf(err, apperrors.ErrCodeInternal, "encode %s request", call.op)
		}
		req.Body = body
	}

	resp, err := s.Do(ctx, req)
	if err != nil {
		return err
	}
	if isAuthFailure(resp.StatusCode) {
		return apperrors.Unauthorized(resp.StatusCode, "authentication failed")
	}
	if !resp.OK() {
		return apperrors.Upstream(resp.StatusCode, messageFromBody(resp.Body))
	}
	if call.out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, call.out); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeMalformed, "decode %s response", call.op)
	}
	return nil
}

// All fetches every dashboard section at once.
func (s *Session) All(ctx context.Context, b ports.Bearer) (model.DashboardData, error) {
	var out model.DashboardData
	err := s.dashboard(ctx, b, dashboardCall{op: "dashboard_all", method: http.MethodGet, path: "all", out: &out})
	return out, err
}

func (s *Session) Profile(ctx context.Context, b ports.Bearer) (model.Profile, error) {
	var out model.Profile
	err := s.dashboard(ctx, b, dashboardCall{op: "profile_get", method: http.MethodGet, path: "profile", out: &out})
	return out, err
}

func (s *Session) UpdateProfile(ctx context.Context, b ports.Bearer, p model.Profile) (model.Profile, error) {
	var out model.Profile
	err := s.dashboard(ctx, b, dashboardCall{op: "profile_update", method: http.MethodPost, path: "profile", in: p, out: &out})
	return out, err
}

func (s *Session) Conditions(ctx context.Context, b ports.Bearer) (model.Conditions, error) {
	var out model.Conditions
	err := s.dashboard(ctx, b, dashboardCall{op: "conditions_get", method: http.MethodGet, path: "conditions", out: &out})
	return out, err
}

func (s *Session) UpdateConditions(ctx context.Context, b ports.Bearer, c model.Conditions) (model.Conditions, error) {
	var out model.Conditions
	err := s.dashboard(ctx, b, dashboardCall{
		op: "conditions_update", method: http.MethodPost, path: "conditions", in: c, out: &out,
	})
	return out, err
}

func (s *Session) Applications(ctx context.Context, b ports.Bearer) ([]model.Application, error) {
	var out []model.Application
	err := s.dashboard(ctx, b, dashboardCall{op: "applications_get", method: http.MethodGet, path: "applications", out: &out})
	return out, err
}

// SaveApplications replaces the user's applications in one batch.
func (s *Session) SaveApplications(ctx context.Context, b ports.Bearer, apps []model.Application) ([]model.Application, error) {
	if apps == nil {
		apps = []model.Application{}
	}
	var out []model.Application
	err := s.dashboard(ctx, b, dashboardCall{
		op: "applications_batch", method: http.MethodPut, path: "applications/batch", in: apps, out: &out,
	})
	return out, err
}

func (s *Session) Stats(ctx context.Context, b ports.Bearer) (model.Stats, error) {
	var out model.Stats
	err := s.dashboard(ctx, b, dashboardCall{op: "stats_get", method: http.MethodGet, path: "stats", out: &out})
	return out, err
}

// Recommendations fetches postings for the query and fills the fields the backend may omit.
func (s *Session) Recommendations(
	ctx context.Context,
	b ports.Bearer,
	q model.RecommendationQuery,
) ([]model.JobRecommendation, error) {
	if q.Keywords == nil {
		q.Keywords = []string{}
	}
	if q.Locations == nil {
		q.Locations = []string{}
	}
	var out []model.JobRecommendation
	if err := s.dashboard(ctx, b, dashboardCall{
		op: "job_recommendations", method: http.MethodPost, path: "job-recommendations", in: q, out: &out,
	}); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Normalize(i)
	}
	return out, nil
}
