package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"library-service/internal/result"
)

func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func BodySizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				result.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLog logs one line per request once the handler has finished.
func RequestLog(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			slot := new(string)

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), ctxUserSlotKey{}, slot)))

			fields := logrus.Fields{
				"http.method":      r.Method,
				"http.path":        r.URL.Path,
				"http.status_code": ww.Status(),
				"http.bytes":       ww.BytesWritten(),
				"http.duration":    time.Since(start),
				"http.remote_ip":   clientIP(r),
			}
			if id := middleware.GetReqID(r.Context()); id != "" {
				fields["http.request_id"] = id
			}
			if *slot != "" {
				fields["user.id"] = *slot
			}

			entry := logger.WithFields(fields)
			if ww.Status() >= http.StatusInternalServerError {
				entry.Warn("library-service: request")
				return
			}
			entry.Info("library-service: request")
		})
	}
}

// ctxUserSlotKey carries a pointer that Authenticate fills in, so the
// request log sees the user id set further down the chain.
type ctxUserSlotKey struct{}

func recordUserID(ctx context.Context, userID string) {
	if slot, ok := ctx.Value(ctxUserSlotKey{}).(*string); ok {
		*slot = userID
	}
}

// clientIP uses RemoteAddr only; chi's RealIP middleware rewrites it when
// the service runs behind a trusted gateway.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
