package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/domain/model"
	apperrors "github.com/initcareer/init-web/internal/errors"
	"github.com/initcareer/init-web/internal/ports"
)

// Dashboard messages.
const (
	MsgRecommendationsFailed = "Failed to load job postings."
	MsgProfileSaved          = "Your profile was saved."
	MsgProfileSaveFailed     = "Failed to save your profile. Please try again."
	MsgConditionsSaved       = "Your desired conditions were saved."
	MsgConditionsSaveFailed  = "Failed to save your desired conditions. Please try again."
	MsgApplicationsCleared   = "All applications were removed."
	MsgApplicationsSaved     = "Saved %d applications."
	MsgApplicationsFailed    = "Failed to save your applications. Please try again."
)

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Now    func() time.Time
	Logger *slog.Logger
}

// DashboardService assembles the dashboard page from the backend's sections and
// applies the fallbacks the page renders when a section is missing.
type DashboardService struct {
	now    func() time.Time
	logger *slog.Logger
}

// NewDashboardService constructs a new DashboardService.
func NewDashboardService(opts DashboardServiceOptions) *DashboardService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{now: now, logger: logger.With("component", "dashboard_service")}
}

// BearerFor builds the backend identity from a stored credential.
func BearerFor(cred domainauth.Credential) (ports.Bearer, error) {
	if cred.Token == "" {
		return ports.Bearer{}, apperrors.Unauthorized(http.StatusUnauthorized, "no authentication token found")
	}
	id, err := strconv.ParseInt(strings.TrimSpace(cred.UserID), 10, 64)
	if err != nil {
		return ports.Bearer{}, apperrors.Wrapf(err, apperrors.ErrCodeValidation, "user id %q is not numeric", cred.UserID)
	}
	return ports.Bearer{Token: cred.Token, UserID: id}, nil
}

// Recommendation is a posting with its deadline countdown.
type Recommendation struct {
	model.JobRecommendation
	DaysLeft int
	Badge    model.BadgeVariant
}

// Dashboard is everything the dashboard page renders.
type Dashboard struct {
	Profile      model.Profile
	Conditions   model.Conditions
	Applications []model.Application
	// Stats is nil when the backend returned none.
	Stats           *model.Stats
	Recommendations []Recommendation
	// RecommendationsError is set when postings could not be loaded.
	RecommendationsError string
	// Degraded is true when some section fell back to its default.
	Degraded bool
}

// Load fetches every section. When the combined endpoint fails the sections are
// fetched individually and concurrently; whatever still fails falls back to its
// default. Only an authorization failure is returned as an error.
func (s *DashboardService) Load(ctx context.Context, api ports.DashboardAPI, b ports.Bearer, userName string) (*Dashboard, error) {
	data, err := api.All(ctx, b)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			return nil, err
		}
		s.logger.WarnContext(ctx, "combined dashboard fetch failed, loading sections", "error", err)
		data, err = s.loadSections(ctx, api, b)
		if err != nil {
			return nil, err
		}
	}

	view := &Dashboard{Applications: data.Applications, Stats: data.Stats}
	if data.Profile != nil {
		view.Profile = *data.Profile
	} else {
		view.Profile = model.DefaultProfile(b.UserID, userName)
		view.Degraded = true
	}
	if data.Conditions != nil {
		view.Conditions = *data.Conditions
	} else {
		view.Conditions = model.DefaultConditions(b.UserID)
		view.Degraded = true
	}
	if view.Applications == nil {
		view.Applications = []model.Application{}
	}

	recs, err := s.Recommendations(ctx, api, b, view.Conditions)
	switch {
	case apperrors.IsUnauthorized(err):
		return nil, err
	case err != nil:
		view.RecommendationsError = MsgRecommendationsFailed
	default:
		view.Recommendations = recs
	}
	return view, nil
}

func (s *DashboardService) loadSections(ctx context.Context, api ports.DashboardAPI, b ports.Bearer) (model.DashboardData, error) {
	var (
		data       model.DashboardData
		profile    model.Profile
		conditions model.Conditions
		apps       []model.Application
		stats      model.Stats
	)
	// Each section tolerates its own failure; only a rejected token aborts the group.
	tolerate := func(section string, err error, ok func()) error {
		if err == nil {
			ok()
			return nil
		}
		if apperrors.IsUnauthorized(err) {
			return err
		}
		s.logger.WarnContext(ctx, "dashboard section unavailable", "section", section, "error", err)
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = api.Profile(gctx, b)
		return tolerate("profile", err, func() { data.Profile = &profile })
	})
	g.Go(func() error {
		var err error
		conditions, err = api.Conditions(gctx, b)
		return tolerate("conditions", err, func() { data.Conditions = &conditions })
	})
	g.Go(func() error {
		var err error
		apps, err = api.Applications(gctx, b)
		return tolerate("applications", err, func() { data.Applications = apps })
	})
	g.Go(func() error {
		var err error
		stats, err = api.Stats(gctx, b)
		return tolerate("stats", err, func() { data.Stats = &stats })
	})
	if err := g.Wait(); err != nil {
		return model.DashboardData{}, err
	}
	return data, nil
}

// Recommendations fetches postings matching the desired jobs and locations.
// Nothing is fetched while no desired job is set.
func (s *DashboardService) Recommendations(
	ctx context.Context,
	api ports.DashboardAPI,
	b ports.Bearer,
	c model.Conditions,
) ([]Recommendation, error) {
	if len(c.Jobs) == 0 {
		return []Recommendation{}, nil
	}
	postings, err := api.Recommendations(ctx, b, model.RecommendationQuery{Keywords: c.Jobs, Locations: c.Locations})
	if err != nil {
		s.logger.WarnContext(ctx, "job recommendations unavailable", "error", err)
		return nil, err
	}
	now := s.now()
	out := make([]Recommendation, 0, len(postings))
	for _, p := range postings {
		days := model.DaysUntilDeadline(p.Deadline, now)
		out = append(out, Recommendation{JobRecommendation: p, DaysLeft: days, Badge: model.DeadlineBadge(days)})
	}
	return out, nil
}

// RecommendationsFor reloads the stored conditions and fetches postings for them.
// A failed conditions fetch is an error, not an empty result.
func (s *DashboardService) RecommendationsFor(ctx context.Context, api ports.DashboardAPI, b ports.Bearer) ([]Recommendation, error) {
	c, err := api.Conditions(ctx, b)
	if err != nil {
		if !apperrors.IsUnauthorized(err) {
			s.logger.WarnContext(ctx, "conditions unavailable for recommendations", "error", err)
		}
		return nil, fmt.Errorf("load conditions: %w", err)
	}
	return s.Recommendations(ctx, api, b, c)
}

// SaveProfile stores the profile and returns the backend's copy.
func (s *DashboardService) SaveProfile(
	ctx context.Context,
	api ports.DashboardAPI,
	b ports.Bearer,
	p model.Profile,
) (model.Profile, model.Notice, error) {
	p.UserID = &b.UserID
	saved, err := api.UpdateProfile(ctx, b, p)
	if err != nil {
		return model.Profile{}, model.Error(MsgProfileSaveFailed), fmt.Errorf("update profile: %w", err)
	}
	return saved, model.Success(MsgProfileSaved), nil
}

// SaveConditions stores the desired conditions. With no desired job the
// profile's job title is used so recommendations have something to match.
func (s *DashboardService) SaveConditions(
	ctx context.Context,
	api ports.DashboardAPI,
	b ports.Bearer,
	c model.Conditions,
	jobTitle string,
) (model.Conditions, model.Notice, error) {
	if len(c.Jobs) == 0 && strings.TrimSpace(jobTitle) != "" {
		c.Jobs = []string{strings.TrimSpace(jobTitle)}
	}
	for _, list := range []*[]string{&c.Jobs, &c.Locations, &c.Others} {
		if *list == nil {
			*list = []string{}
		}
	}
	c.UserID = &b.UserID
	saved, err := api.UpdateConditions(ctx, b, c)
	if err != nil {
		return model.Conditions{}, model.Error(MsgConditionsSaveFailed), fmt.Errorf("update conditions: %w", err)
	}
	return saved, model.Success(MsgConditionsSaved), nil
}

// SaveApplications replaces the application list and refreshes the stats it feeds.
// A stats refresh failure leaves stats nil without failing the save.
func (s *DashboardService) SaveApplications(
	ctx context.Context,
	api ports.DashboardAPI,
	b ports.Bearer,
	apps []model.Application,
) ([]model.Application, *model.Stats, model.Notice, error) {
	saved, err := api.SaveApplications(ctx, b, apps)
	if err != nil {
		return nil, nil, model.Error(MsgApplicationsFailed), fmt.Errorf("save applications: %w", err)
	}
	if saved == nil {
		saved = []model.Application{}
	}

	var stats *model.Stats
	if st, err := api.Stats(ctx, b); err == nil {
		stats = &st
	} else {
		s.logger.WarnContext(ctx, "stats refresh after save failed", "error", err)
	}

	notice := model.Success(fmt.Sprintf(MsgApplicationsSaved, len(saved)))
	if len(saved) == 0 {
		notice = model.Success(MsgApplicationsCleared)
	}
	return saved, stats, notice, nil
}
