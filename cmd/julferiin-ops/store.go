package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"julferiin-ops/internal/config"
	"julferiin-ops/internal/notify"
)

const defaultRedisAddr = "localhost:6379"

// newStorage opens the durable backend named by cfg.Storage.
func newStorage(ctx context.Context, cfg config.Notifications) (notify.Storage, func(), error) {
	noop := func() {}
	switch cfg.Storage {
	case "", "file":
		fs, err := notify.NewFileStorage(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return fs, noop, nil
	case "memory":
		return notify.NewMemoryStorage(), noop, nil
	case "redis":
		addr := cfg.RedisAddr
		if addr == "" {
			addr = defaultRedisAddr
		}
		rs, err := notify.DialRedis(ctx, addr, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return rs, closer(rs), nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("postgres storage requires DATABASE_URL")
		}
		ps, err := notify.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return ps, closer(ps), nil
	}
	return nil, nil, fmt.Errorf("unknown notification storage %q", cfg.Storage)
}

func closer(c io.Closer) func() {
	return func() { c.Close() }
}

// newStore builds the notification store over the configured storage.
func newStore(ctx context.Context, cfg config.Notifications, host notify.Host, log *slog.Logger) (*notify.Store, func(), error) {
	storage, cleanup, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	store := notify.NewStore(ctx, notify.Options{
		Persister:   notify.NewPersister(storage, cfg.Key),
		Host:        host,
		Logger:      log,
		TitlePrefix: cfg.TitlePrefix,
		ToastWindow: cfg.ToastWindow,
		ToastLimit:  cfg.ToastLimit,
	})
	return store, cleanup, nil
}

// newHost picks the desktop notification capability.
func newHost(cfg config.Notifications) notify.Host {
	if cfg.Desktop {
		return notify.NewTerminalHost()
	}
	return notify.NoHost{}
}
