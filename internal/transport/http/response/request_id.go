package response

import (
	"net/http"

	"github.com/campuskit/auth-service/internal/pkg/reqid"
)

// RequestIDFromContext extracts the request id set by the RequestID middleware.
func RequestIDFromContext(r *http.Request) string {
	return reqid.FromContext(r.Context())
}
