package httpx

import (
	"net/http"

	apperrors "github.com/initcareer/init-web/internal/errors"
)

// Root serves the landing page on "/" and the not-found page for every
// path no other route claims.
// GET /.
func (h *UIHandlers) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFound(w, r)
		return
	}
	h.Page(w, r, PageSpec{Meta: PageMeta{Title: "Init - Your career, organized", PageTitle: "Init", CurrentPage: PageLanding}})
}

// Placeholder renders a user page that has navigation but no content yet.
// GET /profile, /resume, /introduce, ...
func (h *UIHandlers) Placeholder(w http.ResponseWriter, r *http.Request) {
	title, ok := placeholderTitles[r.URL.Path]
	if !ok {
		h.NotFound(w, r)
		return
	}
	data := h.basePageData(r, PageMeta{Title: title + " - Init", PageTitle: title, CurrentPage: PagePlaceholder})
	h.renderPage(w, r, data)
}

// Admin renders the admin console.
// GET /admin.
func (h *UIHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	h.Page(w, r, PageSpec{Meta: PageMeta{Title: "Admin - Init", PageTitle: "Admin console", CurrentPage: PageAdmin}})
}

// NotFound renders the 404 page.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) && !IsHTMX(r) {
		writeAppError(w, apperrors.NotFound("page not found"))
		return
	}
	data := h.basePageData(r, PageMeta{Title: "Page not found - Init", PageTitle: "Page not found", CurrentPage: PageNotFound})
	if err := h.T.RenderError(w, http.StatusNotFound, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "not found page")
	}
}
