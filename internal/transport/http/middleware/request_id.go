package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/campuskit/auth-service/internal/logger"
	"github.com/campuskit/auth-service/internal/pkg/reqid"
)

const HeaderXRequestID = "X-Request-Id"

// RequestID assigns a request id (reusing the inbound header when present),
// echoes it back, and binds a request-scoped logger carrying it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(HeaderXRequestID, id)

		ctx := reqid.WithRequestID(r.Context(), id)
		l := logger.Logger.With().Str("request_id", id).Logger()
		ctx = l.WithContext(ctx)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
