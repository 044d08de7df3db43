package httpx

import (
	"net/http"

	"github.com/initcareer/init-web/internal/service"
)

// ThemeChangedEvent is the htmx trigger fired after the theme changes.
const ThemeChangedEvent = "theme:changed"

// ThemeToggle flips the device's theme, or sets it when a theme value is posted.
// POST /theme.
func (h *UIHandlers) ThemeToggle(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	var (
		theme service.Theme
		err   error
	)
	if raw := r.PostFormValue("theme"); raw != "" {
		theme = service.ParseTheme(raw)
		err = h.Theme.Set(r.Context(), c.Durable, c.Device, theme)
	} else {
		theme, err = h.Theme.Toggle(r.Context(), c.Durable, c.Device)
	}
	if err != nil {
		h.logger().WarnContext(r.Context(), "theme change failed", "device", c.Device, "error", err)
		theme = h.Theme.Current(r.Context(), c.Durable)
	}

	payload := map[string]string{"theme": string(theme)}
	switch {
	case IsHTMX(r):
		HTMX(w).Trigger(ThemeChangedEvent, payload)
		w.WriteHeader(http.StatusNoContent)
	case acceptsJSON(r):
		WriteJSON(w, http.StatusOK, payload)
	default:
		target := localPathFromURL(r.Header.Get("Referer"))
		if target == "" {
			target = "/"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
