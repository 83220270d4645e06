package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/danielgtaylor/huma/v2"
)

// Middlewares come in two flavors sharing the same logger and metrics:
// huma middlewares for the API operations and route middlewares, taking
// the [http.ServeMux] pattern of the route, for the HTML editor.

// ctxlog is a [context.Context] key and acts as a virtual package for operations related to it.
type ctxlog struct{}

// logRequest writes the access log line of a terminated request.
func logRequest(logger *slog.Logger, method, path, proto, from, ua string, status int, start time.Time) {
	logger.LogAttrs(context.Background(), slog.LevelInfo,
		joinSpace(method, path, proto),
		slog.String("from", from),
		slog.String("ua", ua),
		slog.Int("status", status),
		slog.Duration("dur", time.Since(start)),
	)
}

// loggerMiddleware returns a middleware that sets a [slog.Logger] in
// the [context.Context] and logs the request after it has terminated.
func (key ctxlog) loggerMiddleware(parent *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		logger := parent.With("x-request-id", ctx.Header("X-Request-Id"))

		start := time.Now()
		next(huma.WithValue(ctx, key, logger.WithGroup("op").With("id", ctx.Operation().OperationID)))

		op := ctx.Operation()
		logRequest(logger, op.Method, op.Path, ctx.Version().Proto,
			ctx.RemoteAddr(), ctx.Header("User-Agent"), ctx.Status(), start)
	}
}

// loggerRoute is [ctxlog.loggerMiddleware] for a route of pattern.
func (key ctxlog) loggerRoute(parent *slog.Logger) func(string, http.Handler) http.Handler {
	return func(pattern string, next http.Handler) http.Handler {
		method, path := splitPattern(pattern)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := parent.With("x-request-id", r.Header.Get("X-Request-Id"))

			start, sw := time.Now(), &statusWriter{ResponseWriter: w}
			ctx := context.WithValue(r.Context(), key, logger.WithGroup("route").With("pattern", pattern))
			next.ServeHTTP(sw, r.WithContext(ctx))

			logRequest(logger, method, path, r.Proto, r.RemoteAddr, r.UserAgent(), sw.Status(), start)
		})
	}
}

// recoverMiddleware returns a middleware that recovers and logs the value from panic.
// Also sets status response to [http.StatusInternalServerError].
func (key ctxlog) recoverMiddleware(fallback *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		defer func() {
			v := recover()
			if v != nil {
				key.logger(ctx.Context(), fallback).LogAttrs(context.Background(), slog.LevelError,
					"panic occurred", slog.Any("recovered", v))
				ctx.SetStatus(http.StatusInternalServerError)
			}
		}()
		next(ctx)
	}
}

// recoverRoute is [ctxlog.recoverMiddleware] for a route.
func (key ctxlog) recoverRoute(fallback *slog.Logger) func(string, http.Handler) http.Handler {
	return func(_ string, next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v != nil {
					key.logger(r.Context(), fallback).LogAttrs(context.Background(), slog.LevelError,
						"panic occurred", slog.Any("recovered", v))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// errorHandler returns a function that gets the [slog.Logger] from [context.Context] and logs the error.
func (key ctxlog) errorHandler(fallback *slog.Logger) func(context.Context, error) {
	return func(ctx context.Context, err error) {
		level := slog.LevelError
		attrs := []slog.Attr{slog.Any("err", err)}

		var statusErr huma.StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.GetStatus() / 100 {
			case 5: //nolint: mnd // 5XX HTTP Status Codes
				level = slog.LevelError
			case 4: //nolint: mnd // 4XX HTTP Status Codes
				level = slog.LevelWarn
			case 3: //nolint: mnd // 3XX HTTP Status Codes
				level = slog.LevelInfo
			}
			attrs = append(attrs, slog.Int("status", statusErr.GetStatus()))
		}

		key.logger(ctx, fallback).LogAttrs(context.Background(), level, "error occurred", attrs...)
	}
}

func (key ctxlog) logger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	logger, ok := ctx.Value(key).(*slog.Logger)
	if !ok {
		return fallback
	}
	return logger
}

// requestMeter counts requests and observes their duration
// by method, path and status.
type requestMeter struct {
	set     *metrics.Set
	buckets []float64
	refs    sync.Map
	refsMu  sync.Mutex
}

type requestMeterRef struct {
	*metrics.Counter
	*metrics.PrometheusHistogram
}

func newRequestMeter(set *metrics.Set) *requestMeter {
	return &requestMeter{
		set:     set,
		buckets: metrics.ExponentialBuckets(1e-3, 5, 6), //nolint: mnd // arbitrary
	}
}

func (m *requestMeter) observe(method, path string, status int, start time.Time) {
	labels := joinQuote("{method=", method, ",path=", path, ",status=", strconv.Itoa(status), "}")
	val, ok := m.refs.Load(labels)
	if !ok {
		m.refsMu.Lock()
		val, ok = m.refs.Load(labels)
		if !ok {
			val = requestMeterRef{
				m.set.NewCounter("http_requests_total" + labels),
				m.set.NewPrometheusHistogramExt("http_request_duration_seconds"+labels, m.buckets),
			}
			m.refs.Store(labels, val)
		}
		m.refsMu.Unlock()
	}
	ref := val.(requestMeterRef) //nolint: errcheck // always true
	ref.Counter.Inc()
	ref.PrometheusHistogram.UpdateDuration(start)
}

func (m *requestMeter) middleware(ctx huma.Context, next func(huma.Context)) {
	op, start := ctx.Operation(), time.Now()
	next(ctx)
	m.observe(op.Method, op.Path, ctx.Status(), start)
}

func (m *requestMeter) route(pattern string, next http.Handler) http.Handler {
	method, path := splitPattern(pattern)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, sw := time.Now(), &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		m.observe(method, path, sw.Status(), start)
	})
}

// statusWriter records the status code written to a [http.ResponseWriter].
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// splitPattern splits a [http.ServeMux] pattern such as "POST /save".
func splitPattern(pattern string) (method, path string) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		return "", pattern
	}
	return method, path
}

// joinQuote is [strings.Join] with " as separator.
func joinQuote(elems ...string) string { return strings.Join(elems, `"`) }

// joinSpace is [strings.Join] with space as separator.
func joinSpace(elems ...string) string { return strings.Join(elems, ` `) }
