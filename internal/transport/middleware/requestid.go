package middleware

import (
	"net/http"

	"github.com/frahmantamala/timesheet-management/pkg/logger"

	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

// RequestID propagates a trace id across service boundaries: an incoming
// X-Trace-ID wins, then chi's per-request id, then a fresh UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = chiMiddleware.GetReqID(r.Context())
		}
		if traceID == "" {
			traceID = uuid.NewString()
		}

		// every log line in this request carries the trace id
		ctx := logger.With(r.Context(), "traceID", traceID)

		// propagate back to response
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
