package http_handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/campuskit/auth-service/internal/application/auth"
	"github.com/campuskit/auth-service/internal/domain"
	"github.com/campuskit/auth-service/internal/transport/http/dto"
	"github.com/campuskit/auth-service/internal/transport/http/middleware"
	"github.com/campuskit/auth-service/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), auth.RegisterInput{
		SchoolID:  req.SchoolID,
		CampusID:  req.CampusID,
		RoleID:    req.RoleID,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().
		Int64("user_id", res.User.ID).
		Str("email", res.User.Email).
		Msg("user registered")

	response.Created(w, dto.AuthData{
		User:   dto.NewUserView(res.User),
		Tokens: dto.NewTokensView(res.Tokens),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), auth.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().
		Int64("user_id", res.User.ID).
		Msg("user logged in")

	response.OK(w, dto.AuthData{
		User:   dto.NewUserView(res.User),
		Tokens: dto.NewTokensView(res.Tokens),
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	toks, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.RefreshData{Tokens: dto.NewTokensView(toks)})
}

// Logout invalidates the caller's session. It is idempotent: a missing or
// already-dead token still yields 204.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.BearerToken(r)
	if err == nil && token != "" {
		_ = h.svc.Logout(r.Context(), token)
	}
	response.NoContent(w)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.AuthContextFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}
	response.OK(w, dto.MeData{User: dto.NewUserView(ac.User)})
}

// ---- Email verification ----

func (h *AuthHandler) VerifyEmailGET(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		response.WriteError(w, r, domain.ErrMissingField("token"))
		return
	}
	h.verifyEmail(w, r, token)
}

func (h *AuthHandler) VerifyEmailPOST(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}
	h.verifyEmail(w, r, req.Token)
}

func (h *AuthHandler) verifyEmail(w http.ResponseWriter, r *http.Request, token string) {
	if err := h.svc.VerifyEmail(r.Context(), token); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.StatusData{Status: "verified"})
}

// ---- Password reset ----

// PasswordResetRequest always answers 200 with the same body so callers
// cannot probe which emails are registered.
func (h *AuthHandler) PasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.StatusData{Status: "reset_email_sent"})
}

func (h *AuthHandler) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetConfirmRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.NoContent(w)
}

// ---- Password change (authenticated) ----

func (h *AuthHandler) PasswordChange(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.AuthContextFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	var req dto.PasswordChangeRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), ac.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.NoContent(w)
}

func clientIP(r *http.Request) string {
	xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
