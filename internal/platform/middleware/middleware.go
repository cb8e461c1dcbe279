// Package middleware carries the cross-cutting HTTP layers of the ledger
// API: request correlation, panic containment, request logging, and caller
// authentication. Handlers behind the stack can assume a JSON request with
// an attributed caller identity.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "kyc-ledger/pkg/domain-errors"
	"kyc-ledger/pkg/httputil"
)

type contextKeyRequestID struct{}
type contextKeyCaller struct{}

// callerTag is placed in the context by Logger and filled in by RequireAuth
// once the token is validated, so the request log can attribute the call
// even though authentication sits further down the chain.
type callerTag struct {
	address string
}

// RequestID tags every request with a correlation identifier. A
// client-supplied X-Request-ID is honored so member banks can trace a call
// across their own gateways and the ledger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)

		ctx := context.WithValue(r.Context(), contextKeyRequestID{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the correlation identifier from the context.
func GetRequestID(ctx context.Context) string {
	id, ok := ctx.Value(contextKeyRequestID{}).(string)
	if !ok {
		return ""
	}
	return id
}

// Recovery converts a handler panic into an internal_error response. One
// misbehaving operation must not take the registry down for the rest of the
// consortium.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic in handler",
						"panic", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"request_id", GetRequestID(r.Context()),
						"stack", string(debug.Stack()),
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the status code written by the handler chain.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Logger emits one structured line per completed request. The caller field
// appears only on routes behind RequireAuth.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			tag := &callerTag{}
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			r = r.WithContext(context.WithValue(r.Context(), contextKeyCaller{}, tag))

			next.ServeHTTP(rec, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", GetRequestID(r.Context()),
				"remote_addr", r.RemoteAddr,
			}
			if tag.address != "" {
				attrs = append(attrs, "caller", tag.address)
			}
			logger.Info("request completed", attrs...)
		})
	}
}

// Timeout bounds end-to-end request handling. The transaction layer applies
// its own tighter deadline to mutations.
func Timeout(limit time.Duration) func(http.Handler) http.Handler {
	body := `{"error":"timeout","error_description":"request processing exceeded the time limit"}`
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, limit, body)
	}
}

// ContentTypeJSON rejects mutation requests whose body is not declared as
// JSON. An absent Content-Type passes, since several mutations carry no body
// at all.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, map[string]string{
					"error":             "invalid_content_type",
					"error_description": "Content-Type must be application/json",
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
