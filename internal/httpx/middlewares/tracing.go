package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AttachTracingMetadata tags the active span with the request ID and echoes
// the ID back so a customer report can be matched to its logs.
func AttachTracingMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		if requestID != "" {
			w.Header().Set(HeaderXRequestID, requestID)
			trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("http.request_id", requestID))
		}
		next.ServeHTTP(w, r)
	})
}
