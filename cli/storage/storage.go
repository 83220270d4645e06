package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oaiiae/addressbook/datastores"
)

type SlotOptions struct {
	StorageBackend string        `doc:"persist contacts in memory, file, sqlite or redis" default:"file"`
	StoragePath    string        `doc:"directory of the file backend or database of the sqlite backend" default:"data"`
	RedisURL       string        `doc:"redis URL of the redis backend" default:"redis://localhost:6379/0"`
	RedisPrefix    string        `doc:"prefix of the redis keys" default:"addressbook:"`
	SlotKey        string        `doc:"key of the contacts snapshot" default:"contacts"`
	DialTimeout    time.Duration `doc:"time allowed to reach the storage, 0 waits forever" default:"5s"`
}

// Open returns the slot configured by options and a function releasing it.
func Open(ctx context.Context, options *SlotOptions) (datastores.Slot, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(options.StorageBackend) {
	case "memory":
		return new(datastores.SlotInmem), noop, nil

	case "file", "":
		return &datastores.SlotFile{Dir: options.StoragePath}, noop, nil

	case "sqlite":
		path := options.StoragePath
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "addressbook.db")
		}
		slot, err := datastores.OpenSlotSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return slot, slot.Close, nil

	case "redis":
		opts, err := redis.ParseURL(options.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis URL: %w", err)
		}
		opts.DialTimeout = options.DialTimeout
		slot := datastores.NewSlotRedis(redis.NewClient(opts), options.RedisPrefix)

		ctx, cancel := dialContext(ctx, options.DialTimeout)
		defer cancel()
		err = slot.Ping(ctx)
		if err != nil {
			_ = slot.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return slot, slot.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", options.StorageBackend)
	}
}

// dialContext bounds ctx by timeout unless it is zero or negative.
func dialContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
