package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/initcareer/init-web/internal/domain/model"
	apperrors "github.com/initcareer/init-web/internal/errors"
	"github.com/initcareer/init-web/internal/ports"
	"github.com/initcareer/init-web/internal/service"
)

// RecommendationsRefreshEvent asks the recommendations panel to reload.
const RecommendationsRefreshEvent = "recommendations:refresh"

// Card views rendered by the dashboard fragments.
type (
	profileCardView struct {
		Profile   model.Profile
		Notice    model.Notice
		CSRFToken string
	}
	conditionsCardView struct {
		Conditions model.Conditions
		Notice     model.Notice
		CSRFToken  string
	}
	applicationsCardView struct {
		Applications []model.Application
		Stats        *model.Stats
		Notice       model.Notice
		CSRFToken    string
	}
	recommendationsView struct {
		Recommendations []service.Recommendation
		Error           string
	}
)

// applicationsPayload is the JSON body accepted and returned by the applications endpoint.
type applicationsPayload struct {
	Applications []model.Application `json:"applications"`
	Stats        *model.Stats        `json:"stats,omitempty"`
	Notice       *model.Notice       `json:"notice,omitempty"`
}

func dashboardMeta() PageMeta {
	return PageMeta{Title: "Dashboard - Init", PageTitle: "Dashboard", CurrentPage: PageDashboard}
}

// bearer resolves the backend identity for the request. When the stored
// credential cannot authorize a call the session is expired and false returned.
func (h *UIHandlers) bearer(w http.ResponseWriter, r *http.Request) (*Client, ports.Bearer, bool) {
	c, ok := h.client(w, r)
	if !ok {
		return nil, ports.Bearer{}, false
	}
	b, err := service.BearerFor(c.Store.Read(r.Context()))
	if err != nil {
		h.logger().InfoContext(r.Context(), "stored credential cannot authorize dashboard calls", "error", err)
		h.expireSession(w, r, c)
		return nil, ports.Bearer{}, false
	}
	return c, b, true
}

// expireSession clears credentials after an authorization failure and sends the browser to login.
func (h *UIHandlers) expireSession(w http.ResponseWriter, r *http.Request, c *Client) {
	target, notice := h.Auth.ExpireSession(r.Context(), c.Store, intendedPath(r))
	SetFlash(c.Cookies, notice)
	if acceptsJSON(r) && !IsHTMX(r) {
		WriteJSON(w, http.StatusUnauthorized, map[string]any{"redirect_to": target, "notice": notice})
		return
	}
	redirect(w, r, target)
}

// DashboardPage renders the dashboard page.
// GET /dashboard.
func (h *UIHandlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	c, b, ok := h.bearer(w, r)
	if !ok {
		return
	}
	gate := GetGateFromContext(r.Context())

	dash, err := h.Dashboard.Load(r.Context(), c.Backend, b, gate.Resolution.UserName)
	if apperrors.IsUnauthorized(err) {
		h.expireSession(w, r, c)
		return
	}
	data := h.basePageData(r, dashboardMeta())
	if err != nil {
		h.logger().ErrorContext(r.Context(), "dashboard load failed", "error", err)
		setNotice(data, model.Error(MsgUnexpected))
	}
	data["Dashboard"] = dash
	h.renderPage(w, r, data)
}

// DashboardProfile saves the profile card.
// POST /dashboard/profile.
func (h *UIHandlers) DashboardProfile(w http.ResponseWriter, r *http.Request) {
	c, b, ok := h.bearer(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	p := model.Profile{
		ID:         formInt64(r.PostFormValue("id")),
		Name:       strings.TrimSpace(r.PostFormValue("name")),
		Email:      strings.TrimSpace(r.PostFormValue("email")),
		CareerType: r.PostFormValue("careerType"),
		JobTitle:   strings.TrimSpace(r.PostFormValue("jobTitle")),
		IsMatching: formBool(r.PostFormValue("isMatching")),
	}
	saved, notice, err := h.Dashboard.SaveProfile(r.Context(), c.Backend, b, p)
	if apperrors.IsUnauthorized(err) {
		h.expireSession(w, r, c)
		return
	}
	if err != nil {
		h.logger().WarnContext(r.Context(), "profile save failed", "error", err)
		saved = p
	}
	h.dashboardResult(w, r, c, notice, func() {
		h.renderFragment(w, r, FragmentProfile, profileCardView{Profile: saved, Notice: notice, CSRFToken: GetCSRFToken(r)})
	})
}

// DashboardConditions saves the desired conditions card.
// POST /dashboard/conditions.
func (h *UIHandlers) DashboardConditions(w http.ResponseWriter, r *http.Request) {
	c, b, ok := h.bearer(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	in := model.Conditions{
		ID:        formInt64(r.PostFormValue("id")),
		Jobs:      splitList(r.PostFormValue("jobs")),
		Locations: splitList(r.PostFormValue("locations")),
		Salary:    strings.TrimSpace(r.PostFormValue("salary")),
		Others:    splitList(r.PostFormValue("others")),
	}
	saved, notice, err := h.Dashboard.SaveConditions(r.Context(), c.Backend, b, in, r.PostFormValue("jobTitle"))
	if apperrors.IsUnauthorized(err) {
		h.expireSession(w, r, c)
		return
	}
	if err != nil {
		h.logger().WarnContext(r.Context(), "conditions save failed", "error", err)
		saved = in
	}
	h.dashboardResult(w, r, c, notice, func() {
		if err == nil {
			HTMX(w).Trigger(RecommendationsRefreshEvent, nil)
		}
		h.renderFragment(w, r, FragmentConditions, conditionsCardView{Conditions: saved, Notice: notice, CSRFToken: GetCSRFToken(r)})
	})
}

// DashboardApplications replaces the application list.
// POST /dashboard/applications with form arrays or a JSON applicationsPayload.
func (h *UIHandlers) DashboardApplications(w http.ResponseWriter, r *http.Request) {
	c, b, ok := h.bearer(w, r)
	if !ok {
		return
	}

	var apps []model.Application
	jsonBody := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
	if jsonBody {
		var in applicationsPayload
		if !DecodeJSON(w, r, &in) {
			return
		}
		apps = in.Applications
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		apps = applicationsFromForm(r)
	}

	saved, stats, notice, err := h.Dashboard.SaveApplications(r.Context(), c.Backend, b, apps)
	if apperrors.IsUnauthorized(err) {
		h.expireSession(w, r, c)
		return
	}
	if err != nil {
		h.logger().WarnContext(r.Context(), "applications save failed", "error", err)
		saved = apps
	}

	if jsonBody && !IsHTMX(r) {
		status := http.StatusOK
		if err != nil {
			status = StatusForError(err)
		}
		WriteJSON(w, status, applicationsPayload{Applications: saved, Stats: stats, Notice: &notice})
		return
	}
	h.dashboardResult(w, r, c, notice, func() {
		h.renderFragment(w, r, FragmentApplications, applicationsCardView{
			Applications: saved,
			Stats:        stats,
			Notice:       notice,
			CSRFToken:    GetCSRFToken(r),
		})
	})
}

// DashboardRecommendations reloads the recommendations panel.
// GET /dashboard/recommendations.
func (h *UIHandlers) DashboardRecommendations(w http.ResponseWriter, r *http.Request) {
	c, b, ok := h.bearer(w, r)
	if !ok {
		return
	}
	recs, err := h.Dashboard.RecommendationsFor(r.Context(), c.Backend, b)
	if apperrors.IsUnauthorized(err) {
		h.expireSession(w, r, c)
		return
	}
	view := recommendationsView{Recommendations: recs}
	if err != nil {
		view.Error = service.MsgRecommendationsFailed
	}
	if acceptsJSON(r) && !IsHTMX(r) {
		WriteJSON(w, http.StatusOK, map[string]any{"recommendations": view.Recommendations, "error": view.Error})
		return
	}
	h.renderFragment(w, r, FragmentRecommendations, view)
}

// dashboardResult answers a dashboard form post: htmx swaps the re-rendered
// card, plain forms follow post/redirect/get back to the dashboard.
func (h *UIHandlers) dashboardResult(w http.ResponseWriter, r *http.Request, c *Client, notice model.Notice, fragment func()) {
	if IsHTMX(r) {
		fragment()
		return
	}
	SetFlash(c.Cookies, notice)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// applicationsFromForm zips the parallel id/company/category/status/deadline arrays.
// Rows without a company are dropped.
func applicationsFromForm(r *http.Request) []model.Application {
	ids := r.PostForm["id"]
	companies := r.PostForm["company"]
	categories := r.PostForm["category"]
	statuses := r.PostForm["status"]
	deadlines := r.PostForm["deadline"]

	at := func(list []string, i int) string {
		if i < len(list) {
			return strings.TrimSpace(list[i])
		}
		return ""
	}

	apps := make([]model.Application, 0, len(companies))
	for i := range companies {
		company := at(companies, i)
		if company == "" {
			continue
		}
		var id int64
		if v := formInt64(at(ids, i)); v != nil {
			id = *v
		}
		apps = append(apps, model.Application{
			ID:       id,
			Company:  company,
			Category: at(categories, i),
			Status:   at(statuses, i),
			Deadline: at(deadlines, i),
		})
	}
	return apps
}

// splitList splits a comma separated input, dropping blanks.
func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formInt64(raw string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formBool(raw string) *bool {
	v := raw == "on" || raw == "true"
	return &v
}
