package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/initcareer/init-web/internal/domain/model"
	apperrors "github.com/initcareer/init-web/internal/errors"
	"github.com/initcareer/init-web/internal/ports"
)

var testBearer = ports.Bearer{Token: "jwt", UserID: 42}

func TestDashboard_RequiresToken(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls.Add(1) }))
	defer srv.Close()

	f := newFixture(t, srv.URL, fixtureOptions{})

	_, err := f.session.All(context.Background(), ports.Bearer{UserID: 42})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, int32(0), calls.Load())
}

func TestDashboard_All(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/home/all/42", r.URL.Path)
		assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{
			"profile":{"name":"Kim","careerType":"신입","jobTitle":"Backend"},
			"conditions":{"jobs":["백엔드"],"locations":["서울"],"salary":"4000","others":[]},
			"applications":[{"id":1,"company":"Acme","category":"IT","status":"지원완료","deadline":"2026-11-01"}]
		}`))
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL+"/api/", fixtureOptions{})

	data, err := f.session.All(context.Background(), testBearer)
	require.NoError(t, err)
	require.NotNil(t, data.Profile)
	assert.Equal(t, "Kim", data.Profile.Name)
	require.NotNil(t, data.Conditions)
	assert.Equal(t, []string{"백엔드"}, data.Conditions.Jobs)
	require.Len(t, data.Applications, 1)
	assert.Equal(t, "Acme", data.Applications[0].Company)
	assert.Nil(t, data.Stats)
}

func TestDashboard_UpdateProfileSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/home/profile/42", r.URL.Path)
		assert.Equal(t, contentJSON, r.Header.Get("Content-Type"))
		var p model.Profile
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		p.JobTitle = "saved:" + p.JobTitle
		_ = json.NewEncoder(w).Encode(p)
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL, fixtureOptions{})

	out, err := f.session.UpdateProfile(context.Background(), testBearer, model.Profile{Name: "Kim", JobTitle: "Backend"})
	require.NoError(t, err)
	assert.Equal(t, "saved:Backend", out.JobTitle)
}

func TestDashboard_SaveApplicationsNeverSendsNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/home/applications/batch/42", r.URL.Path)
		var raw json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.JSONEq(t, `[]`, string(raw))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL, fixtureOptions{})

	out, err := f.session.SaveApplications(context.Background(), testBearer, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDashboard_RecommendationsNormalize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/home/job-recommendations/42", r.URL.Path)
		var q map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, []any{"백엔드"}, q["keywords"])
		assert.Equal(t, []any{}, q["locations"])
		_, _ = w.Write([]byte(`[
			{"company":"Acme","title":"Go Developer","matchScore":0.9},
			{"id":"p-2","company":"Beta","title":"SRE","deadline":"2026-12-31","url":"https://jobs.example/2","keywords":["k8s"]}
		]`))
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL, fixtureOptions{})

	recs, err := f.session.Recommendations(context.Background(), testBearer, model.RecommendationQuery{Keywords: []string{"백엔드"}})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "Acme-Go Developer-0", recs[0].ID)
	assert.Equal(t, model.DeadlineUnknown, recs[0].Deadline)
	assert.Equal(t, "#", recs[0].URL)
	assert.NotNil(t, recs[0].Keywords)

	assert.Equal(t, "p-2", recs[1].ID)
	assert.Equal(t, "2026-12-31", recs[1].Deadline)
	assert.Equal(t, []string{"k8s"}, recs[1].Keywords)
}

func TestDashboard_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		check      func(error) bool
		wantStatus int
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, check: apperrors.IsUnauthorized, wantStatus: http.StatusUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, check: apperrors.IsUnauthorized, wantStatus: http.StatusForbidden},
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			body:       `{"message":"db down"}`,
			check:      func(err error) bool { return apperrors.GetCode(err) == apperrors.ErrCodeUpstream },
			wantStatus: http.StatusInternalServerError,
		},
		{name: "bad json", status: http.StatusOK, body: `{"name":`, check: apperrors.IsMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := newFixture(t, srv.URL, fixtureOptions{})
			_, err := f.session.Profile(context.Background(), testBearer)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
			if tt.wantStatus != 0 {
				assert.Equal(t, tt.wantStatus, apperrors.GetStatus(err))
			}
		})
	}
}

func TestDashboard_StatsAndConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/home/stats/42":
			_, _ = w.Write([]byte(`{"totalApplications":3,"profileCompletion":{"basicInfo":true,"completionPercentage":40}}`))
		case "/home/conditions/42":
			_, _ = w.Write([]byte(`{"jobs":["a"],"locations":[],"salary":"0","others":[]}`))
		case "/home/applications/42":
			_, _ = w.Write([]byte(`[{"id":9,"company":"C","category":"x","status":"서류합격"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL, fixtureOptions{})
	ctx := context.Background()

	stats, err := f.session.Stats(ctx, testBearer)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalApplications)
	assert.Equal(t, 40, stats.ProfileCompletion.CompletionPercentage)

	cond, err := f.session.Conditions(ctx, testBearer)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, cond.Jobs)

	apps, err := f.session.Applications(ctx, testBearer)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, int64(9), apps[0].ID)
}
