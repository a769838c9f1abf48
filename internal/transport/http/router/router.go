package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	// Core auth
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)

	// Email verification
	VerifyEmailGET(w http.ResponseWriter, r *http.Request)
	VerifyEmailPOST(w http.ResponseWriter, r *http.Request)

	// Password reset / change
	PasswordResetRequest(w http.ResponseWriter, r *http.Request)
	PasswordResetConfirm(w http.ResponseWriter, r *http.Request)
	PasswordChange(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health HealthHandler
	Auth   AuthHandler

	AuthMW func(http.Handler) http.Handler

	// RequestID runs first on every route.
	RequestID func(http.Handler) http.Handler

	// Per-route rate limits; nil means no limit on that route.
	LoginRateMW    func(http.Handler) http.Handler
	RegisterRateMW func(http.Handler) http.Handler
	ResetRateMW    func(http.Handler) http.Handler
	GlobalRateMW   func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}

	r := chi.NewRouter()
	if deps.RequestID != nil {
		r.Use(deps.RequestID)
	}

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)

	r.Route("/auth/v1", func(r chi.Router) {
		if deps.GlobalRateMW != nil {
			r.Use(deps.GlobalRateMW)
		}

		// --- Core auth ---
		r.With(maybe(deps.RegisterRateMW)).Post("/register", deps.Auth.Register)
		r.With(maybe(deps.LoginRateMW)).Post("/login", deps.Auth.Login)
		r.Post("/refresh", deps.Auth.Refresh)
		r.Post("/logout", deps.Auth.Logout)
		r.With(deps.AuthMW).Get("/me", deps.Auth.Me)

		// --- Email verification ---
		r.Get("/verify-email", deps.Auth.VerifyEmailGET) // ?token=...
		r.Post("/verify-email", deps.Auth.VerifyEmailPOST)

		// --- Password reset ---
		r.With(maybe(deps.ResetRateMW)).Post("/password/reset/request", deps.Auth.PasswordResetRequest)
		r.Post("/password/reset/confirm", deps.Auth.PasswordResetConfirm)

		// --- Password change (authenticated) ---
		r.With(deps.AuthMW).Post("/password/change", deps.Auth.PasswordChange)
	})

	return r, nil
}

// maybe turns a nil middleware into a no-op so chi route chains stay simple.
func maybe(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw != nil {
		return mw
	}
	return func(next http.Handler) http.Handler { return next }
}
