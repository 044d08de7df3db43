package httpx

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/initcareer/init-web/internal/domain/model"
	"github.com/initcareer/init-web/internal/ports"
)

// FlashCookieName carries a Notice to the next page render.
const FlashCookieName = "flash_notice"

const flashMaxAge = 60

// SetFlash queues n for the next rendered page. Zero notices are ignored.
func SetFlash(jar ports.CookieTier, n model.Notice) {
	if jar == nil || n.IsZero() {
		return
	}
	b, err := json.Marshal(n)
	if err != nil {
		return
	}
	jar.Set(&http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		MaxAge:   flashMaxAge,
		HttpOnly: true,
	})
}

// TakeFlash returns the queued notice, if any, and expires the cookie.
func TakeFlash(jar ports.CookieTier) model.Notice {
	if jar == nil {
		return model.Notice{}
	}
	raw := jar.Get(FlashCookieName)
	if raw == "" {
		return model.Notice{}
	}
	jar.Delete(FlashCookieName)

	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return model.Notice{}
	}
	var n model.Notice
	if err := json.Unmarshal(b, &n); err != nil {
		return model.Notice{}
	}
	switch n.Level {
	case model.NoticeInfo, model.NoticeSuccess, model.NoticeWarning, model.NoticeError:
	default:
		n.Level = model.NoticeInfo
	}
	return n
}
