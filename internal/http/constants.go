package httpx

// Page identifiers used in templates and navigation.
const (
	PageLanding     = "landing"
	PageLogin       = "login"
	PageSignup      = "signup"
	PageFindAccount = "find-account"
	PageDashboard   = "dashboard"
	PagePlaceholder = "placeholder"
	PageAdmin       = "admin"
	PageNotFound    = "not-found"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// Fragment templates rendered on their own for htmx swaps.
const (
	FragmentFieldCheck      = "field-check"
	FragmentRecommendations = "recommendations"
	FragmentProfile         = "profile-card"
	FragmentConditions      = "conditions-card"
	FragmentApplications    = "applications-card"
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageLanding:     "landing-content",
	PageLogin:       "login-content",
	PageSignup:      "signup-content",
	PageFindAccount: "find-account-content",
	PageDashboard:   "dashboard-content",
	PagePlaceholder: "placeholder-content",
	PageAdmin:       "admin-content",
	PageNotFound:    "not-found-content",
}

// ContentTemplateFor returns the content template name for the given page.
// Unknown pages render the not-found content.
func ContentTemplateFor(page string) string {
	if name, ok := contentTemplates[page]; ok {
		return name
	}
	return contentTemplates[PageNotFound]
}

// placeholderTitles names the user pages that exist in navigation but have no content yet.
//
//nolint:gochecknoglobals // static read-only lookup
var placeholderTitles = map[string]string{
	"/home":            "Home",
	"/profile":         "Profile",
	"/resume":          "Resume",
	"/introduce":       "Cover Letters",
	"/spec-management": "Qualifications",
	"/job-calendar":    "Job Calendar",
	"/community":       "Community",
	"/statistics":      "Statistics",
	"/settings":        "Settings",
}

// NavItem is one entry of the user sidebar.
type NavItem struct {
	Path  string
	Label string
}

// UserNav is the sidebar navigation in display order.
func UserNav() []NavItem {
	return []NavItem{
		{Path: "/dashboard", Label: "Dashboard"},
		{Path: "/profile", Label: "Profile"},
		{Path: "/resume", Label: "Resume"},
		{Path: "/introduce", Label: "Cover Letters"},
		{Path: "/spec-management", Label: "Qualifications"},
		{Path: "/job-calendar", Label: "Job Calendar"},
		{Path: "/statistics", Label: "Statistics"},
		{Path: "/community", Label: "Community"},
		{Path: "/settings", Label: "Settings"},
	}
}
