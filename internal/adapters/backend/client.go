// Package backend is the session-reconciling client for the external REST backend.
//
// A Caller holds process-wide settings (base URL, retry policy, transport). Bind
// attaches it to one browser request's cookie tier and session-scoped tier, and
// the resulting Session implements ports.BackendSession.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/initcareer/init-web/internal/errors"
	"github.com/initcareer/init-web/internal/observability/metrics"
	"github.com/initcareer/init-web/internal/ports"
)

const maxBodyBytes = 1 << 20

// Timing groups the fixed delays of the email-code and signup flows.
type Timing struct {
	MobileSendDelay   time.Duration
	MobileVerifyDelay time.Duration
	MobileSignupDelay time.Duration
	SettleDelay       time.Duration
}

// DefaultTiming returns the delays used when none are configured.
func DefaultTiming() Timing {
	return Timing{
		MobileSendDelay:   500 * time.Millisecond,
		MobileVerifyDelay: time.Second,
		MobileSignupDelay: time.Second,
		SettleDelay:       200 * time.Millisecond,
	}
}

// Options configures a Caller.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	// Timeout bounds each attempt. Zero leaves it to HTTPClient.
	Timeout time.Duration
	// MaxAttempts is the number of retries after the initial attempt.
	MaxAttempts int
	// VerifyMaxAttempts is used for email-code verification.
	VerifyMaxAttempts int
	// BackoffUnit is multiplied by the attempt number between retries.
	BackoffUnit time.Duration
	Timing      Timing
	Login       *LoginMapper

	// Sleep overrides the context-aware wait used for backoff and fixed delays.
	Sleep func(ctx context.Context, d time.Duration) error
	// Now overrides time.Now.
	Now func() time.Time

	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Caller performs backend requests with retry and session-id reconciliation.
type Caller struct {
	baseURL     string
	client      *http.Client
	timeout     time.Duration
	maxAttempts int
	verifyMax   int
	backoffUnit time.Duration
	timing      Timing
	login       *LoginMapper
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
	metrics     *metrics.Recorder
	logger      *slog.Logger
}

// NewCaller creates a Caller. A nil Login mapper falls back to DefaultLoginMapper.
func NewCaller(opts Options) *Caller {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 0 {
		maxAttempts = 0
	}
	verifyMax := opts.VerifyMaxAttempts
	if verifyMax < maxAttempts {
		verifyMax = maxAttempts
	}
	timing := opts.Timing
	if timing == (Timing{}) {
		timing = DefaultTiming()
	}
	login := opts.Login
	if login == nil {
		login = DefaultLoginMapper()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Caller{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		client:      hc,
		timeout:     opts.Timeout,
		maxAttempts: maxAttempts,
		verifyMax:   verifyMax,
		backoffUnit: opts.BackoffUnit,
		timing:      timing,
		login:       login,
		sleep:       sleep,
		now:         now,
		metrics:     opts.Metrics,
		logger:      logger.With("component", "backend"),
	}
}

// BindInput carries the per-request state a Session works against.
type BindInput struct {
	Cookies ports.CookieTier
	// Tracker is the session-scoped tier that remembers the send-time session id.
	Tracker ports.StorageTier
	Mobile  bool
}

// Session is a Caller bound to one browser request.
type Session struct {
	c       *Caller
	cookies ports.CookieTier
	tracker ports.StorageTier
	mobile  bool
}

var _ ports.BackendSession = (*Session)(nil)

// Bind attaches the caller to one request's cookie and session tiers.
func (c *Caller) Bind(in BindInput) *Session {
	return &Session{c: c, cookies: in.Cookies, tracker: in.Tracker, mobile: in.Mobile}
}

// Request describes one logical backend call.
type Request struct {
	// Operation labels logs and metrics.
	Operation   string
	Method      string
	Path        string
	Body        []byte
	ContentType string
	Bearer      string
	// MaxAttempts overrides the caller's retry count when positive; NoRetry asks for a single attempt.
	MaxAttempts int
}

// NoRetry as Request.MaxAttempts disables retries for one request.
const NoRetry = -1

// Response is a fully-read backend answer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Text returns the trimmed body as a string.
func (r *Response) Text() string { return strings.TrimSpace(string(r.Body)) }

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// Do runs req with the retry policy: network errors back off linearly and retry,
// 401/403 clear the session cookies and retry, any other answer returns immediately.
// The final attempt's response is returned as-is whatever its status.
func (s *Session) Do(ctx context.Context, req Request) (*Response, error) {
	retries := s.c.maxAttempts
	switch {
	case req.MaxAttempts > 0:
		retries = req.MaxAttempts
	case req.MaxAttempts < 0:
		retries = 0
	}
	attempts := retries + 1
	op := req.Operation
	if op == "" {
		op = req.Method + " " + req.Path
	}

	start := s.c.now()
	defer func() { s.c.metrics.BackendCall(op, s.c.now().Sub(start)) }()

	var lastErr error
	for attempt := range attempts {
		last := attempt == attempts-1
		resp, err := s.once(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, contextError(ctxErr)
			}
			var bad *buildError
			if errors.As(err, &bad) {
				s.c.logger.ErrorContext(ctx, "backend request not built", "operation", op, "error", bad.err)
				return nil, apperrors.Wrapf(bad.err, apperrors.ErrCodeInternal, "%s: invalid backend request", op)
			}
			s.c.metrics.BackendAttempt(op, metrics.OutcomeNetworkError)
			s.c.logger.WarnContext(ctx, "backend attempt failed",
				"operation", op, "attempt", attempt+1, "of", attempts, "error", err)
			lastErr = err
			if last {
				break
			}
			if waitErr := s.backoff(ctx, attempt); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		s.reconcile(ctx, resp)

		switch {
		case resp.OK():
			s.c.metrics.BackendAttempt(op, metrics.OutcomeSuccess)
			return resp, nil
		case isAuthFailure(resp.StatusCode):
			s.c.metrics.BackendAttempt(op, metrics.OutcomeUnauthorized)
		default:
			s.c.metrics.BackendAttempt(op, metrics.OutcomeHTTPError)
		}
		if last || !isAuthFailure(resp.StatusCode) {
			return resp, nil
		}

		s.c.logger.InfoContext(ctx, "backend rejected session, clearing session cookies",
			"operation", op, "status", resp.StatusCode, "attempt", attempt+1)
		ClearSessionCookies(s.cookies)
		if waitErr := s.backoff(ctx, attempt); waitErr != nil {
			return nil, waitErr
		}
	}

	return nil, apperrors.Wrapf(lastErr, apperrors.ErrCodeNetwork,
		"%s: backend unreachable after %d attempts", op, attempts)
}

// buildError marks a request that could not be constructed. Retrying cannot fix it.
type buildError struct{ err error }

func (e *buildError) Error() string { return "create request: " + e.err.Error() }
func (e *buildError) Unwrap() error { return e.err }

func (s *Session) backoff(ctx context.Context, attempt int) error {
	if err := s.c.sleep(ctx, time.Duration(attempt+1)*s.c.backoffUnit); err != nil {
		return contextError(err)
	}
	return nil
}

// pause applies one of the fixed flow delays.
func (s *Session) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if err := s.c.sleep(ctx, d); err != nil {
		return contextError(err)
	}
	return nil
}

func (s *Session) once(ctx context.Context, req Request) (*Response, error) {
	if s.c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.c.timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, s.c.baseURL+req.Path, body)
	if err != nil {
		return nil, &buildError{err: err}
	}
	s.decorate(httpReq, req)

	resp, err := s.c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.c.logger.Debug("close backend response body failed", "error", cerr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (s *Session) decorate(httpReq *http.Request, req Request) {
	h := httpReq.Header
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	if s.mobile {
		h.Set("X-Mobile-Client", "true")
		h.Set("X-Client-Type", "mobile")
	} else {
		h.Set("X-Mobile-Client", "false")
		h.Set("X-Client-Type", "desktop")
	}
	if req.ContentType != "" {
		h.Set("Content-Type", req.ContentType)
	}
	if req.Bearer != "" {
		h.Set("Authorization", "Bearer "+req.Bearer)
	}

	ids := SessionIDs(s.cookies)
	if len(ids) > 0 {
		h.Set("X-Session-ID", ids[0])
		h.Set("X-All-Session-IDS", strings.Join(ids, ","))
	}
	for _, c := range sessionCookies(s.cookies) {
		httpReq.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
}

// reconcile adopts backend session cookies and propagates an unknown X-Session-ID.
func (s *Session) reconcile(ctx context.Context, resp *Response) {
	adoptSessionCookies(s.cookies, resp.Header)

	serverID := strings.TrimSpace(resp.Header.Get("X-Session-ID"))
	if serverID == "" {
		return
	}
	for _, id := range SessionIDs(s.cookies) {
		if id == serverID {
			return
		}
	}
	s.c.logger.DebugContext(ctx, "server session id differs from client, propagating", "session_prefix", prefix(serverID))
	if n := PropagateSessionID(s.cookies, serverID); n > 0 {
		s.c.metrics.SessionPropagated()
	}
}

func prefix(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func contextError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "backend call timed out")
	case errors.Is(err, context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "backend call canceled")
	default:
		return err
	}
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
