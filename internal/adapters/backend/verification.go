package backend

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/domain/model"
)

// SendEmailCode asks the backend to mail a verification code and remembers the
// session id it was sent under, so verification can restore it.
func (s *Session) SendEmailCode(ctx context.Context, email string) (string, error) {
	if s.mobile {
		if err := s.pause(ctx, s.c.timing.MobileSendDelay); err != nil {
			return "", err
		}
	}
	resp, err := s.Do(ctx, Request{
		Operation:   "send_email_code",
		Method:      http.MethodPost,
		Path:        "/send-email-code",
		Body:        []byte(url.Values{"email": {email}}.Encode()),
		ContentType: contentForm,
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", failure(resp, "failed to send verification code")
	}
	s.trackSend(ctx)
	return resp.Text(), nil
}

// VerifyEmailCode checks code against the backend. When the session id captured at
// send time is no longer among the browser's cookies it is re-propagated first.
func (s *Session) VerifyEmailCode(ctx context.Context, email, code string) (string, error) {
	if tracked := s.trackedID(ctx); tracked != "" && !slices.Contains(SessionIDs(s.cookies), tracked) {
		s.c.logger.InfoContext(ctx, "send-time session id missing, restoring", "session_prefix", prefix(tracked))
		if PropagateSessionID(s.cookies, tracked) > 0 {
			s.c.metrics.SessionPropagated()
		}
		if err := s.pause(ctx, s.c.timing.SettleDelay); err != nil {
			return "", err
		}
	}
	if s.mobile {
		if err := s.pause(ctx, s.c.timing.MobileVerifyDelay); err != nil {
			return "", err
		}
	}

	resp, err := s.Do(ctx, Request{
		Operation:   "verify_email_code",
		Method:      http.MethodPost,
		Path:        "/verify-email-code",
		Body:        []byte(url.Values{"email": {email}, "code": {code}}.Encode()),
		ContentType: contentForm,
		MaxAttempts: s.c.verifyMax,
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", failure(resp, "email verification failed")
	}
	return resp.Text(), nil
}

// SessionStatus reports the session-tracking state for diagnostics.
func (s *Session) SessionStatus(ctx context.Context) model.SessionStatus {
	ids := SessionIDs(s.cookies)
	st := model.SessionStatus{
		AllIDs:    ids,
		TrackedID: s.trackedID(ctx),
		Mobile:    s.mobile,
	}
	if st.AllIDs == nil {
		st.AllIDs = []string{}
	}
	if len(ids) > 0 {
		st.PrimaryID = ids[0]
	}
	if s.tracker != nil {
		if raw, err := s.tracker.Get(ctx, domainauth.KeySendSentAt); err == nil && raw != "" {
			if sent, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
				since := s.c.now().UnixMilli() - sent
				st.SinceSendMillis = &since
			}
		}
	}
	return st
}

func (s *Session) trackSend(ctx context.Context) {
	if s.tracker == nil {
		return
	}
	primary := PrimarySessionID(s.cookies)
	var err error
	if primary == "" {
		err = s.tracker.Delete(ctx, domainauth.KeySendSession, domainauth.KeySendSentAt)
	} else {
		err = s.tracker.Set(ctx, domainauth.KeySendSession, primary)
		if err == nil {
			err = s.tracker.Set(ctx, domainauth.KeySendSentAt, strconv.FormatInt(s.c.now().UnixMilli(), 10))
		}
	}
	if err != nil {
		s.c.logger.DebugContext(ctx, "record send-time session id failed", "error", err)
	}
}

func (s *Session) trackedID(ctx context.Context) string {
	if s.tracker == nil {
		return ""
	}
	id, err := s.tracker.Get(ctx, domainauth.KeySendSession)
	if err != nil {
		s.c.logger.DebugContext(ctx, "read send-time session id failed", "error", err)
		return ""
	}
	return id
}
