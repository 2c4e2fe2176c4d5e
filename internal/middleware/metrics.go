package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"weather-dashboard/internal/observability"
)

// Metrics records request counts and latency per method, path and status.
// Numeric sponsor index segments are collapsed into one label value so the
// metric cardinality stays bounded no matter how many sponsors exist.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			path := metricsPath(r.URL.Path)
			status := strconv.Itoa(rec.status)
			elapsed := time.Since(start).Seconds()

			observability.HTTPRequestDuration.WithLabelValues(r.Method, path, status).Observe(elapsed)
			observability.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}

// metricsPath replaces a numeric sponsor index with a placeholder, so
// /api/v1/sponsors/3/edit and /api/v1/sponsors/17/edit report as one route.
// Non-numeric segments (the /sponsors/edit state routes) pass unchanged.
func metricsPath(path string) string {
	const prefix = "/api/v1/sponsors/"
	rest, found := strings.CutPrefix(path, prefix)
	if !found {
		return path
	}

	seg, tail, _ := strings.Cut(rest, "/")
	if !isAllDigits(seg) {
		return path
	}
	if tail == "" {
		return prefix + "{index}"
	}
	return prefix + "{index}/" + tail
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// statusRecorder captures the status code written downstream.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack keeps WebSocket upgrades working through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}
