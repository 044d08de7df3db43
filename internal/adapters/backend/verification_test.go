package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	apperrors "github.com/initcareer/init-web/internal/errors"
)

func TestSendEmailCode_TracksSessionID(t *testing.T) {
	var form atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send-email-code", r.URL.Path)
		assert.Equal(t, contentForm, r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		form.Store(r.PostForm.Get("email"))
		_, _ = w.Write([]byte("sent"))
	}))
	defer srv.Close()

	now := time.UnixMilli(1_700_000_000_000)
	f := newFixture(t, srv.URL, fixtureOptions{
		opts:    Options{Now: func() time.Time { return now }},
		cookies: []*http.Cookie{{Name: "JSESSIONID", Value: "sess-1"}},
	})

	msg, err := f.session.SendEmailCode(context.Background(), "kim@example.com")
	require.NoError(t, err)
	assert.Equal(t, "sent", msg)
	assert.Equal(t, "kim@example.com", form.Load())

	ctx := context.Background()
	tracked, err := f.tracker.Get(ctx, domainauth.KeySendSession)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", tracked)
	sentAt, err := f.tracker.Get(ctx, domainauth.KeySendSentAt)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(now.UnixMilli(), 10), sentAt)
	assert.Empty(t, f.sleeps)
}

func TestSendEmailCode_FailureLeavesTrackerUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"이미 가입된 이메일입니다"}`))
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL, fixtureOptions{cookies: []*http.Cookie{{Name: "JSESSIONID", Value: "sess-1"}}})

	_, err := f.session.SendEmailCode(context.Background(), "kim@example.com")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUpstream, apperrors.GetCode(err))
	assert.Equal(t, http.StatusBadRequest, apperrors.GetStatus(err))

	tracked, _ := f.tracker.Get(context.Background(), domainauth.KeySendSession)
	assert.Empty(t, tracked)
}

func TestVerifyEmailCode_RestoresSendTimeSession(t *testing.T) {
	var sessionHeader atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionHeader.Store(r.Header.Get("X-Session-ID"))
		_, _ = w.Write([]byte("verified"))
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL, fixtureOptions{cookies: []*http.Cookie{{Name: "JSESSIONID", Value: "rotated"}}})
	require.NoError(t, f.tracker.Set(context.Background(), domainauth.KeySendSession, "sess-1"))

	msg, err := f.session.VerifyEmailCode(context.Background(), "kim@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "verified", msg)
	assert.Equal(t, "sess-1", sessionHeader.Load())
	assert.Equal(t, "sess-1", f.cookies.Get("JSESSIONID"))
	assert.Equal(t, []time.Duration{200 * time.Millisecond}, f.sleeps)
}

func TestVerifyEmailCode_NoRestoreWhenSessionMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("verified"))
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL, fixtureOptions{cookies: []*http.Cookie{{Name: "JSESSIONID", Value: "sess-1"}}})
	require.NoError(t, f.tracker.Set(context.Background(), domainauth.KeySendSession, "sess-1"))

	_, err := f.session.VerifyEmailCode(context.Background(), "kim@example.com", "123456")
	require.NoError(t, err)
	assert.Empty(t, f.sleeps)
	assert.Empty(t, f.rec.Result().Cookies())
}

func TestVerifyEmailCode_UsesVerifyRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL, fixtureOptions{opts: Options{MaxAttempts: 3, VerifyMaxAttempts: 5}})

	_, err := f.session.VerifyEmailCode(context.Background(), "kim@example.com", "000000")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err), "got %v", err)
	assert.Equal(t, int32(6), calls.Load())
}

func TestMobileDelays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	tests := []struct {
		name string
		call func(s *Session) error
		want []time.Duration
	}{
		{
			name: "send",
			call: func(s *Session) error {
				_, err := s.SendEmailCode(context.Background(), "a@b.c")
				return err
			},
			want: []time.Duration{500 * time.Millisecond},
		},
		{
			name: "verify",
			call: func(s *Session) error {
				_, err := s.VerifyEmailCode(context.Background(), "a@b.c", "1")
				return err
			},
			want: []time.Duration{time.Second},
		},
		{
			name: "signup",
			call: func(s *Session) error {
				_, err := s.Signup(context.Background(), validSignup())
				return err
			},
			want: []time.Duration{time.Second},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, srv.URL, fixtureOptions{mobile: true})
			require.NoError(t, tt.call(f.session))
			assert.Equal(t, tt.want, f.sleeps)
		})
	}
}

func TestSessionStatus(t *testing.T) {
	now := time.UnixMilli(1_700_000_005_000)
	f := newFixture(t, "http://backend.invalid", fixtureOptions{
		mobile:  true,
		opts:    Options{Now: func() time.Time { return now }},
		cookies: []*http.Cookie{{Name: "JSESSIONID", Value: "a"}, {Name: "SESSIONID", Value: "b"}},
	})
	ctx := context.Background()
	require.NoError(t, f.tracker.Set(ctx, domainauth.KeySendSession, "a"))
	require.NoError(t, f.tracker.Set(ctx, domainauth.KeySendSentAt, "1700000000000"))

	st := f.session.SessionStatus(ctx)

	assert.Equal(t, "a", st.PrimaryID)
	assert.Equal(t, []string{"a", "b"}, st.AllIDs)
	assert.Equal(t, "a", st.TrackedID)
	require.NotNil(t, st.SinceSendMillis)
	assert.Equal(t, int64(5000), *st.SinceSendMillis)
	assert.True(t, st.Mobile)
}

func TestSessionStatus_Empty(t *testing.T) {
	f := newFixture(t, "http://backend.invalid", fixtureOptions{})

	st := f.session.SessionStatus(context.Background())

	assert.Empty(t, st.PrimaryID)
	assert.NotNil(t, st.AllIDs)
	assert.Empty(t, st.AllIDs)
	assert.Nil(t, st.SinceSendMillis)
	assert.False(t, st.Mobile)
}
