package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fwwzhai/thrifty-backend/internal/identity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/platform/metrics"
)

// jwtAuth rejects requests without a valid bearer token and attaches
// the user id to the request context.
func jwtAuth(verifier *identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithUserID(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Websocket clients cannot set headers from browsers; accept the
	// token as a query parameter there.
	return r.URL.Query().Get("token")
}

// requestMetrics records latency per route pattern and counts error
// responses by class.
func requestMetrics(m *metrics.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			m.APILatency.WithLabelValues(route).Observe(time.Since(start).Seconds())

			switch {
			case ww.Status() >= 500:
				m.APIErrorsTotal.WithLabelValues(route, "server").Inc()
			case ww.Status() >= 400:
				m.APIErrorsTotal.WithLabelValues(route, "client").Inc()
			}
		})
	}
}

// requestLogger logs one line per request.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debugf("%s %s completed in %s", r.Method, r.URL.Path, time.Since(start))
		})
	}
}
