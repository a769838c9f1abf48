package http_handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/auth-service/internal/application/auth"
	"github.com/campuskit/auth-service/internal/infrastructure/memory"
	"github.com/campuskit/auth-service/internal/infrastructure/security"
	"github.com/campuskit/auth-service/internal/logger"
	http_handlers "github.com/campuskit/auth-service/internal/transport/http/handlers"
	"github.com/campuskit/auth-service/internal/transport/http/middleware"
	"github.com/campuskit/auth-service/internal/transport/http/response"
	"github.com/campuskit/auth-service/internal/transport/http/router"
)

type testEnv struct {
	handler  http.Handler
	svc      *auth.Service
	users    *memory.UserRepo
	sessions *memory.SessionRepo
	pub      *memory.NoopPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger.InitWithWriter(io.Discard)

	users := memory.NewUserRepo()
	sessions := memory.NewSessionRepo()
	pub := memory.NewNoopPublisher()

	svc := auth.NewService(
		users,
		sessions,
		security.NewBcryptHasher(4),
		security.NewJWTCodec("test-secret", "campuskit-auth-test"),
		pub,
		auth.Config{
			MaxLoginAttempts:     5,
			LockoutDuration:      30 * time.Minute,
			VerifyEmailBaseURL:   "https://app.test/verify-email?token=",
			PasswordResetBaseURL: "https://app.test/reset-password?token=",
		},
	)

	h, err := router.New(router.Deps{
		Health:    http_handlers.NewHealthHandler(nil),
		Auth:      http_handlers.NewAuthHandler(svc),
		AuthMW:    middleware.Auth(svc, response.WriteError),
		RequestID: middleware.RequestID,
	})
	require.NoError(t, err)

	return &testEnv{handler: h, svc: svc, users: users, sessions: sessions, pub: pub}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func registerBody(email string) map[string]any {
	return map[string]any{
		"school_id": 1,
		"role_id":   3,
		"email":     email,
		"password":  "Str0ngPass!",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/v1/register", registerBody("ada@example.com"), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var data struct {
		User struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
		Tokens struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
			TokenType    string `json:"token_type"`
		} `json:"tokens"`
	}
	decodeData(t, rec, &data)
	assert.Equal(t, "ada@example.com", data.User.Email)
	assert.Equal(t, "Bearer", data.Tokens.TokenType)
	assert.NotEmpty(t, data.Tokens.AccessToken)
	assert.NotEmpty(t, data.Tokens.RefreshToken)

	// password_hash and tokens never leak through the user view
	assert.NotContains(t, rec.Body.String(), "password_hash")
	assert.NotContains(t, rec.Body.String(), "email_verification_token")

	t.Run("duplicate email", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/v1/register", registerBody("ada@example.com"), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "email_already_exists", errorCode(t, rec))
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/v1/register", registerBody("not-an-email"), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_field", errorCode(t, rec))
	})

	t.Run("missing password", func(t *testing.T) {
		body := registerBody("bob@example.com")
		delete(body, "password")
		rec := env.do(t, http.MethodPost, "/auth/v1/register", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "missing_field", errorCode(t, rec))
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/v1/register", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_json", errorCode(t, rec))
	})
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/auth/v1/register", registerBody("carol@example.com"), nil)

	t.Run("success", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/v1/login", map[string]any{
			"email":    "carol@example.com",
			"password": "Str0ngPass!",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/v1/login", map[string]any{
			"email":    "carol@example.com",
			"password": "Wr0ngPass!",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credentials", errorCode(t, rec))
	})

	t.Run("unknown email is indistinguishable", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/v1/login", map[string]any{
			"email":    "ghost@example.com",
			"password": "Str0ngPass!",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credentials", errorCode(t, rec))
	})
}

func TestMeEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/v1/register", registerBody("dave@example.com"), nil)
	var data struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	decodeData(t, rec, &data)

	t.Run("with bearer token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/auth/v1/me", nil, map[string]string{
			"Authorization": "Bearer " + data.Tokens.AccessToken,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var me struct {
			User struct {
				Email string `json:"email"`
			} `json:"user"`
		}
		decodeData(t, rec, &me)
		assert.Equal(t, "dave@example.com", me.User.Email)
	})

	t.Run("without token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/auth/v1/me", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "token_missing", errorCode(t, rec))
	})

	t.Run("mangled header", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/auth/v1/me", nil, map[string]string{
			"Authorization": "Token abc",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "token_invalid", errorCode(t, rec))
	})
}

func TestRefreshAndLogoutEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/v1/register", registerBody("erin@example.com"), nil)
	var data struct {
		Tokens struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"tokens"`
	}
	decodeData(t, rec, &data)

	rec = env.do(t, http.MethodPost, "/auth/v1/refresh", map[string]any{
		"refresh_token": data.Tokens.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var refreshed struct {
		Tokens struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"tokens"`
	}
	decodeData(t, rec, &refreshed)
	assert.NotEqual(t, data.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)

	// replaying the pre-rotation token fails
	rec = env.do(t, http.MethodPost, "/auth/v1/refresh", map[string]any{
		"refresh_token": data.Tokens.RefreshToken,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "refresh_token_invalid", errorCode(t, rec))

	// logout is a 204 and is idempotent
	for i := 0; i < 2; i++ {
		rec = env.do(t, http.MethodPost, "/auth/v1/logout", nil, map[string]string{
			"Authorization": "Bearer " + refreshed.Tokens.AccessToken,
		})
		assert.Equal(t, http.StatusNoContent, rec.Code, "logout attempt %d", i+1)
	}

	rec = env.do(t, http.MethodGet, "/auth/v1/me", nil, map[string]string{
		"Authorization": "Bearer " + refreshed.Tokens.AccessToken,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyEmailEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/auth/v1/register", registerBody("frank@example.com"), nil)
	u, err := env.users.GetByEmail(context.Background(), "frank@example.com")
	require.NoError(t, err)
	require.NotNil(t, u.EmailVerificationToken)
	token := *u.EmailVerificationToken

	rec := env.do(t, http.MethodGet, "/auth/v1/verify-email?token="+token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// single use
	rec = env.do(t, http.MethodGet, "/auth/v1/verify-email?token="+token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "verify_token_invalid", errorCode(t, rec))

	t.Run("post variant", func(t *testing.T) {
		env.do(t, http.MethodPost, "/auth/v1/register", registerBody("gina@example.com"), nil)
		u, err := env.users.GetByEmail(context.Background(), "gina@example.com")
		require.NoError(t, err)

		rec := env.do(t, http.MethodPost, "/auth/v1/verify-email", map[string]any{
			"token": *u.EmailVerificationToken,
		}, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPasswordResetEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/auth/v1/register", registerBody("heidi@example.com"), nil)

	t.Run("request is non-enumerating", func(t *testing.T) {
		known := env.do(t, http.MethodPost, "/auth/v1/password/reset/request", map[string]any{
			"email": "heidi@example.com",
		}, nil)
		unknown := env.do(t, http.MethodPost, "/auth/v1/password/reset/request", map[string]any{
			"email": "ghost@example.com",
		}, nil)

		assert.Equal(t, http.StatusOK, known.Code)
		assert.Equal(t, http.StatusOK, unknown.Code)
		assert.JSONEq(t, known.Body.String(), unknown.Body.String())
	})

	t.Run("confirm", func(t *testing.T) {
		u, err := env.users.GetByEmail(context.Background(), "heidi@example.com")
		require.NoError(t, err)
		require.NotNil(t, u.PasswordResetToken)

		rec := env.do(t, http.MethodPost, "/auth/v1/password/reset/confirm", map[string]any{
			"token":        *u.PasswordResetToken,
			"new_password": "N3wStr0ng!pw",
		}, nil)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodPost, "/auth/v1/login", map[string]any{
			"email":    "heidi@example.com",
			"password": "N3wStr0ng!pw",
		}, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("confirm with bad token", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/v1/password/reset/confirm", map[string]any{
			"token":        "bogus",
			"new_password": "N3wStr0ng!pw",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "reset_token_invalid", errorCode(t, rec))
	})
}

func TestPasswordChangeEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/v1/register", registerBody("ivan@example.com"), nil)
	var data struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	decodeData(t, rec, &data)
	authz := map[string]string{"Authorization": "Bearer " + data.Tokens.AccessToken}

	t.Run("requires auth", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/v1/password/change", map[string]any{
			"current_password": "Str0ngPass!",
			"new_password":     "N3wStr0ng!pw",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong current password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/v1/password/change", map[string]any{
			"current_password": "Wr0ngPass!",
			"new_password":     "N3wStr0ng!pw",
		}, authz)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "current_password_incorrect", errorCode(t, rec))
	})

	t.Run("success keeps the session", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/v1/password/change", map[string]any{
			"current_password": "Str0ngPass!",
			"new_password":     "N3wStr0ng!pw",
		}, authz)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodGet, "/auth/v1/me", nil, authz)
		assert.Equal(t, http.StatusOK, rec.Code, "session must survive a password change")
	})
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/v1/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "Str0ngPass!",
	}, map[string]string{"X-Request-Id": "req-123"})

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))

	var body struct {
		Error struct {
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-123", body.Error.RequestID, "error bodies carry the request id")
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/auth/v1/%s", "nope"), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
