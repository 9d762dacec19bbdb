package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mkarpis/accountd/internal/logging"
	"github.com/mkarpis/accountd/internal/server/metrics"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs each request with latency, status, and a request id. The
// id is taken from X-Request-ID when the client supplies one, generated
// otherwise, and echoed back on the response.
func withLogging(logger logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		requestID := req.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)

		latency := time.Since(start)
		args := []any{
			"request_id", requestID,
			"method", req.Method,
			"path", req.URL.Path,
			"status", rec.status,
			"latency", latency.String(),
		}

		switch {
		case rec.status >= 500:
			logger.Error(req.Context(), "http request", args...)
		case rec.status >= 400:
			logger.Warn(req.Context(), "http request", args...)
		default:
			logger.Info(req.Context(), "http request", args...)
		}
	})
}

// withMetrics records the request counter and latency histogram.
func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)

		metrics.RequestsTotal.WithLabelValues(req.URL.Path, strconv.Itoa(rec.status)).Inc()
		metrics.RequestDuration.WithLabelValues(req.URL.Path).Observe(time.Since(start).Seconds())
	})
}
