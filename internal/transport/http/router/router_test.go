package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/auth-service/internal/transport/http/router"
)

// stubHandlers records which endpoint got hit.
type stubHandlers struct {
	hits []string
}

func (s *stubHandlers) hit(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.hits = append(s.hits, name)
		w.WriteHeader(http.StatusOK)
	}
}

func (s *stubHandlers) Healthz(w http.ResponseWriter, r *http.Request) { s.hit("healthz")(w, r) }
func (s *stubHandlers) Readyz(w http.ResponseWriter, r *http.Request)  { s.hit("readyz")(w, r) }

func (s *stubHandlers) Register(w http.ResponseWriter, r *http.Request) { s.hit("register")(w, r) }
func (s *stubHandlers) Login(w http.ResponseWriter, r *http.Request)    { s.hit("login")(w, r) }
func (s *stubHandlers) Refresh(w http.ResponseWriter, r *http.Request)  { s.hit("refresh")(w, r) }
func (s *stubHandlers) Logout(w http.ResponseWriter, r *http.Request)   { s.hit("logout")(w, r) }
func (s *stubHandlers) Me(w http.ResponseWriter, r *http.Request)       { s.hit("me")(w, r) }

func (s *stubHandlers) VerifyEmailGET(w http.ResponseWriter, r *http.Request) {
	s.hit("verify_get")(w, r)
}
func (s *stubHandlers) VerifyEmailPOST(w http.ResponseWriter, r *http.Request) {
	s.hit("verify_post")(w, r)
}

func (s *stubHandlers) PasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	s.hit("reset_request")(w, r)
}
func (s *stubHandlers) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	s.hit("reset_confirm")(w, r)
}
func (s *stubHandlers) PasswordChange(w http.ResponseWriter, r *http.Request) {
	s.hit("password_change")(w, r)
}

func tagMW(name string, order *[]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, name)
			next.ServeHTTP(w, r)
		})
	}
}

func passMW(next http.Handler) http.Handler { return next }

func TestNew_RejectsNilDeps(t *testing.T) {
	s := &stubHandlers{}

	_, err := router.New(router.Deps{Auth: s, AuthMW: passMW})
	assert.ErrorContains(t, err, "Health")

	_, err = router.New(router.Deps{Health: s, AuthMW: passMW})
	assert.ErrorContains(t, err, "Auth")

	_, err = router.New(router.Deps{Health: s, Auth: s})
	assert.ErrorContains(t, err, "middleware")
}

func TestNew_Routes(t *testing.T) {
	s := &stubHandlers{}
	h, err := router.New(router.Deps{Health: s, Auth: s, AuthMW: passMW})
	require.NoError(t, err)

	cases := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/healthz", "healthz"},
		{http.MethodGet, "/readyz", "readyz"},
		{http.MethodPost, "/auth/v1/register", "register"},
		{http.MethodPost, "/auth/v1/login", "login"},
		{http.MethodPost, "/auth/v1/refresh", "refresh"},
		{http.MethodPost, "/auth/v1/logout", "logout"},
		{http.MethodGet, "/auth/v1/me", "me"},
		{http.MethodGet, "/auth/v1/verify-email", "verify_get"},
		{http.MethodPost, "/auth/v1/verify-email", "verify_post"},
		{http.MethodPost, "/auth/v1/password/reset/request", "reset_request"},
		{http.MethodPost, "/auth/v1/password/reset/confirm", "reset_confirm"},
		{http.MethodPost, "/auth/v1/password/change", "password_change"},
	}

	for _, tc := range cases {
		s.hits = nil
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

		assert.Equal(t, http.StatusOK, rec.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, []string{tc.want}, s.hits, "%s %s", tc.method, tc.path)
	}
}

func TestNew_MethodNotAllowed(t *testing.T) {
	s := &stubHandlers{}
	h, err := router.New(router.Deps{Health: s, Auth: s, AuthMW: passMW})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/v1/login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNew_MiddlewareOrder(t *testing.T) {
	s := &stubHandlers{}
	var order []string

	h, err := router.New(router.Deps{
		Health:       s,
		Auth:         s,
		AuthMW:       passMW,
		RequestID:    tagMW("request_id", &order),
		GlobalRateMW: tagMW("global", &order),
		LoginRateMW:  tagMW("login", &order),
	})
	require.NoError(t, err)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/auth/v1/login", nil))
	assert.Equal(t, []string{"request_id", "global", "login"}, order)

	// Health endpoints bypass the auth group limits.
	order = nil
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, []string{"request_id"}, order)
}

func TestNew_NilRateMiddlewareIsNoop(t *testing.T) {
	s := &stubHandlers{}
	h, err := router.New(router.Deps{Health: s, Auth: s, AuthMW: passMW})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/v1/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
