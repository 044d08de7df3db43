package httpx

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/initcareer/init-web/internal/adapters/cookies"
	"github.com/initcareer/init-web/internal/domain/model"
)

func TestFlash_RoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	SetFlash(cookies.New(rec, httptest.NewRequest(http.MethodPost, "/login", nil), cookies.Options{}), model.Success("Welcome, Kim!"))

	c := responseCookie(rec, FlashCookieName)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)

	next := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	next.AddCookie(c)
	nextRec := httptest.NewRecorder()
	jar := cookies.New(nextRec, next, cookies.Options{})

	assert.Equal(t, model.Success("Welcome, Kim!"), TakeFlash(jar))
	assert.True(t, TakeFlash(jar).IsZero(), "a flash is shown once")
	expired := responseCookie(nextRec, FlashCookieName)
	require.NotNil(t, expired)
	assert.Negative(t, expired.MaxAge)
}

func TestFlash_Edges(t *testing.T) {
	t.Run("zero notice is not queued", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SetFlash(cookies.New(rec, httptest.NewRequest(http.MethodGet, "/", nil), cookies.Options{}), model.Notice{})
		assert.Nil(t, responseCookie(rec, FlashCookieName))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		raw := base64.RawURLEncoding.EncodeToString([]byte(`{"level":"shout","message":"hi"}`))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: FlashCookieName, Value: raw})
		n := TakeFlash(cookies.New(httptest.NewRecorder(), req, cookies.Options{}))
		assert.Equal(t, model.Info("hi"), n)
	})

	t.Run("garbage is dropped", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: FlashCookieName, Value: "%%%"})
		assert.True(t, TakeFlash(cookies.New(httptest.NewRecorder(), req, cookies.Options{})).IsZero())
	})

	t.Run("nil jar", func(t *testing.T) {
		SetFlash(nil, model.Info("ignored"))
		assert.True(t, TakeFlash(nil).IsZero())
	})
}
