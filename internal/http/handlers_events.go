package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/initcareer/init-web/internal/domain/model"
	"github.com/initcareer/init-web/internal/service"
)

// sseHeartbeatInterval keeps proxies from closing idle event streams.
const sseHeartbeatInterval = 25 * time.Second

// SSE event names.
const (
	SSEEventStorage = "storage"
	SSEEventTheme   = "theme"
)

// StorageEvents streams durable-tier changes of the caller's device so other
// tabs can re-derive their view.
// GET /events/storage.
func (h *UIHandlers) StorageEvents(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var events <-chan model.StorageEvent
	if h.Events != nil {
		ch, cancel, err := h.Events.Subscribe(ctx, c.Device)
		if err != nil {
			h.logger().WarnContext(ctx, "storage event subscription failed", "device", c.Device, "error", err)
			http.Error(w, "event stream unavailable", http.StatusServiceUnavailable)
			return
		}
		defer cancel()
		events = ch
	}

	themes := make(chan service.Theme, 4)
	if h.Theme != nil {
		unsubscribe := h.Theme.Subscribe(c.Device, func(t service.Theme) {
			select {
			case themes <- t:
			default:
			}
		})
		defer unsubscribe()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger().WarnContext(ctx, "event stream flush unsupported", "error", err)
		return
	}

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			h.Metrics.StorageEvent("in")
			seq++
			if err := writeSSE(w, rc, SSEEventStorage, seq, map[string]string{"key": ev.Key, "newValue": ev.NewValue}); err != nil {
				return
			}

		case t := <-themes:
			seq++
			if err := writeSSE(w, rc, SSEEventTheme, seq, map[string]string{"theme": string(t)}); err != nil {
				return
			}

		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

// writeSSE writes one server-sent event frame and flushes it.
func writeSSE(w http.ResponseWriter, rc *http.ResponseController, event string, id uint64, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\nid: %d\ndata: %s\n\n", event, id, data); err != nil {
		return err
	}
	return rc.Flush()
}
