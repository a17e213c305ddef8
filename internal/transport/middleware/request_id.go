package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/pkg/ctxutil"
)

// RequestID echoes an incoming X-Request-Id header or generates one, and
// stores it in the request context for log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		ctx := ctxutil.WithRequestID(r.Context(), id)
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
