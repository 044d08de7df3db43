package httpx

import (
	"net/http"
	"strings"

	"github.com/initcareer/init-web/internal/domain/model"
	apperrors "github.com/initcareer/init-web/internal/errors"
	"github.com/initcareer/init-web/internal/service"
)

// signupInterests are the interest checkboxes offered on the signup form.
//
//nolint:gochecknoglobals // static read-only lookup
var signupInterests = []string{"Development", "Design", "Planning", "Marketing", "Data", "Sales"}

// signupForm echoes submitted values back into the form.
type signupForm struct {
	UserID    string
	Name      string
	Phone     string
	Email     string
	Interests []string
	// Google is set while a Google sign-up is being completed.
	Google bool
	// Field names the input an error refers to.
	Field string
}

// fieldCheckView is the data of the field-check fragment.
type fieldCheckView struct {
	Field string
	service.FieldCheck
}

func (h *UIHandlers) signupFlow(c *Client) service.SignupFlow {
	return service.SignupFlow{Backend: c.Backend, Session: c.Session, Cookies: c.Cookies}
}

func signupMeta() PageMeta {
	return PageMeta{Title: "Sign up - Init", PageTitle: "Create your account", CurrentPage: PageSignup}
}

// SignupPage renders the signup form, prefilled when a Google sign-up is in progress.
// GET /signup?googleSignup=true.
func (h *UIHandlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	flow := h.signupFlow(c)
	data := h.basePageData(r, signupMeta())

	form := signupForm{}
	if g, found := h.Signup.GooglePrefill(flow); found {
		form.Email, form.Name, form.Google = g.Email, g.Name, true
	}
	if r.URL.Query().Get("googleSignup") == "true" {
		setNotice(data, h.Signup.PrefillNotice(flow))
	}
	data["Form"] = form
	data["Interests"] = signupInterests
	h.renderPage(w, r, data)
}

// SignupSubmit registers the account.
// POST /signup.
func (h *UIHandlers) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	req := model.SignupRequest{
		UserID:          r.PostFormValue("userId"),
		Name:            strings.TrimSpace(r.PostFormValue("name")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
		Phone:           r.PostFormValue("phone"),
		Email:           r.PostFormValue("email"),
		Interests:       r.PostForm["interests"],
	}
	flow := h.signupFlow(c)
	notice, err := h.Signup.Submit(r.Context(), flow, req)
	if err == nil {
		SetFlash(c.Cookies, notice)
		redirect(w, r, "/login")
		return
	}

	h.logger().InfoContext(r.Context(), "signup rejected", "user_id", strings.TrimSpace(req.UserID), "error", err)
	_, google := h.Signup.GooglePrefill(flow)
	data := h.basePageData(r, signupMeta())
	data["Notice"] = service.SignupFailureNotice(err)
	data["Form"] = signupForm{
		UserID:    req.UserID,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Interests: req.Interests,
		Google:    google,
		Field:     apperrors.GetField(err),
	}
	data["Interests"] = signupInterests
	h.renderPage(w, r, data)
}

// SignupCheckUserID runs the user id duplicate check.
// POST /signup/check-userid.
func (h *UIHandlers) SignupCheckUserID(w http.ResponseWriter, r *http.Request) {
	h.fieldCheck(w, r, "userId", func(flow service.SignupFlow) service.FieldCheck {
		return h.Signup.CheckUserID(r.Context(), flow, r.PostFormValue("userId"))
	})
}

// SignupSendEmailCode checks the email and mails a verification code.
// POST /signup/email-code.
func (h *UIHandlers) SignupSendEmailCode(w http.ResponseWriter, r *http.Request) {
	h.fieldCheck(w, r, "email", func(flow service.SignupFlow) service.FieldCheck {
		return h.Signup.SendEmailCode(r.Context(), flow, r.PostFormValue("email"))
	})
}

// SignupVerifyEmailCode confirms the mailed code.
// POST /signup/email-verify.
func (h *UIHandlers) SignupVerifyEmailCode(w http.ResponseWriter, r *http.Request) {
	h.fieldCheck(w, r, "code", func(flow service.SignupFlow) service.FieldCheck {
		return h.Signup.VerifyEmailCode(r.Context(), flow, r.PostFormValue("email"), r.PostFormValue("code"))
	})
}

// fieldCheck answers an inline signup check with the field-check fragment for
// htmx, or the FieldCheck as JSON.
func (h *UIHandlers) fieldCheck(w http.ResponseWriter, r *http.Request, field string, run func(service.SignupFlow) service.FieldCheck) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	res := run(h.signupFlow(c))
	if IsHTMX(r) {
		h.renderFragment(w, r, FragmentFieldCheck, fieldCheckView{Field: field, FieldCheck: res})
		return
	}
	WriteJSON(w, http.StatusOK, res)
}
