package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/oaiiae/addressbook/datastores"
	"github.com/oaiiae/addressbook/handlers"
	"github.com/oaiiae/addressbook/router"
	"github.com/oaiiae/addressbook/views"
)

type ServerOptions struct {
	Host              string        `short:"H" doc:"host to listen on"                    default:""`
	Port              string        `short:"p" doc:"port to listen on"                    default:"8888"`
	ReadHeaderTimeout time.Duration `          doc:"time allowed to read request headers" default:"15s"`
}

func NewServer(options *ServerOptions, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              options.Host + ":" + options.Port,
		ReadHeaderTimeout: options.ReadHeaderTimeout,
		Handler:           handler,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

type RouterOptions struct {
	EndpointsPrefix string        `doc:"mount endpoints at a prefix"          default:"/api"`
	ReadinessWait   time.Duration `doc:"time allowed to the readiness probe" default:"2s"`
}

// Build describes the running binary in the build_info metric.
type Build struct {
	Title, Version, Revision, Created string
}

// NewRouter serves the contacts of store as a JSON API under the
// endpoints prefix and as an HTML page at the root.
func NewRouter(
	options *RouterOptions,
	build Build,
	store datastores.ContactsStore,
	slot datastores.Slot,
	logger *slog.Logger,
) http.Handler {
	buildinfoMetric := joinQuote("build_info{goversion=", runtime.Version(),
		",title=", build.Title,
		",version=", build.Version,
		",revision=", build.Revision,
		",created=", build.Created,
		"} 1\n")
	metriks := metrics.NewSet()
	metriks.NewGauge("contacts_total", func() float64 { return float64(store.Count()) })
	meter := newRequestMeter(metriks)

	return router.New(build.Title, build.Version,
		readiness(slot, options.ReadinessWait, logger),
		func(w io.Writer) {
			fmt.Fprint(w, buildinfoMetric)
			metriks.WritePrometheus(w)
			metrics.WriteProcessMetrics(w)
		},
		views.NewHandler(store, logger,
			ctxlog{}.loggerRoute(logger),
			meter.route,
			ctxlog{}.recoverRoute(logger),
		),
		router.OptUseMiddleware(
			ctxlog{}.loggerMiddleware(logger),
			meter.middleware,
			ctxlog{}.recoverMiddleware(logger),
		),
		router.OptGroup(options.EndpointsPrefix,
			router.OptGroup("/contacts", router.OptAutoRegister(&handlers.Contacts{
				Store:        store,
				ErrorHandler: ctxlog{}.errorHandler(logger),
			})),
		),
	)
}

// readiness returns a probe pinging slot when it supports it.
func readiness(slot datastores.Slot, wait time.Duration, logger *slog.Logger) http.HandlerFunc {
	pinger, ok := slot.(datastores.Pinger)
	if !ok {
		return func(http.ResponseWriter, *http.Request) {}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), wait)
		defer cancel()
		err := pinger.Ping(ctx)
		if err != nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "storage not ready", slog.Any("err", err))
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}
}
