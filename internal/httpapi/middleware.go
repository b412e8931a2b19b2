package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/carmarket/orders/internal/observability"
)

type ctxKey int

const userIDKey ctxKey = iota

// Identity lifts the verified user id set by the upstream auth layer out
// of the X-User-ID header. The core trusts the caller-supplied identity;
// verification happens before requests reach this service.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid := r.Header.Get("X-User-ID"); uid != "" {
			r = r.WithContext(context.WithValue(r.Context(), userIDKey, uid))
		}
		next.ServeHTTP(w, r)
	})
}

// UserID returns the authenticated user id, if any.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}

// ServerTimingApp measures total request processing time, writes
// app;dur=... to Server-Timing and reports to Metrics.ObserveHTTP.
func ServerTimingApp(m observability.Metrics) func(http.Handler) http.Handler {
	if m == nil {
		m = observability.Noop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			dur := float64(time.Since(start).Microseconds()) / 1000.0
			observability.AppendServerTiming(w, "app", dur, "")
			m.ObserveHTTP(r.Method, r.URL.Path, ww.Status(), dur)
		})
	}
}
