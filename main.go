package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/oaiiae/addressbook/cli/api"
	"github.com/oaiiae/addressbook/cli/logger"
	"github.com/oaiiae/addressbook/cli/storage"
	"github.com/oaiiae/addressbook/datastores"
)

// Set with -ldflags "-X main.version=...".
var (
	version  = "dev"
	revision = ""
	created  = ""
)

// Options for the CLI. Pass `--port` or set the `SERVICE_PORT` env var.
type Options struct {
	api.ServerOptions
	api.RouterOptions
	logger.Options
	storage.SlotOptions
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		logger := logger.New(&options.Options)

		slot, closeSlot, err := storage.Open(context.Background(), &options.SlotOptions)
		if err != nil {
			logger.Error("could not open storage", "backend", options.StorageBackend, "err", err)
			os.Exit(1)
		}
		store := datastores.NewContactsInmem(slot,
			datastores.WithSlotKey(options.SlotKey),
			datastores.WithLogger(logger),
		)
		store.Load(context.Background())
		logger.Info("contacts loaded", "backend", options.StorageBackend, "count", store.Count())

		srv := api.NewServer(&options.ServerOptions,
			api.NewRouter(&options.RouterOptions,
				api.Build{Title: "Address book", Version: version, Revision: revision, Created: created},
				store, slot, logger),
			logger,
		)
		hooks.OnStart(func() {
			logger.Info("listening", "addr", srv.Addr)
			err := srv.ListenAndServe()
			if err != http.ErrServerClosed {
				logger.Error("failed to listen and serve", "err", err)
			} else {
				logger.Info("server closed")
			}
		})
		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			err := srv.Shutdown(ctx)
			if err != nil {
				logger.Warn("could not shutdown the server", "err", err)
			}
			err = closeSlot()
			if err != nil {
				logger.LogAttrs(ctx, slog.LevelWarn, "could not close storage", slog.Any("err", err))
			}
		})
	})
	cli.Run()
}
