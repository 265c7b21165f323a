// Package app assembles the dependencies a resource service process needs.
package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/unclebandit/storefront-backend/internal/config"
	"github.com/unclebandit/storefront-backend/internal/db"
	"github.com/unclebandit/storefront-backend/internal/queue"
)

// Deps holds the store connection and event publisher. DB is nil when the
// memory driver is selected.
type Deps struct {
	DB     *sql.DB
	Events queue.Publisher

	closers []func() error
}

// Topics lists the event patterns a collection publishes on.
func Topics(collection string) []string {
	return []string{collection + ".*"}
}

// Bootstrap opens the configured store and event publisher. Without
// AMQP_URL events go to an in-process queue that only logs them.
func Bootstrap(ctx context.Context, cfg config.Service, collection string) (*Deps, error) {
	d := &Deps{}

	if cfg.StoreDriver == config.DriverPostgres {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		d.DB = conn
		d.closers = append(d.closers, conn.Close)
	} else {
		slog.Warn("using in-memory store; data is lost on restart", "service", cfg.Name)
	}

	if cfg.AMQPURL != "" {
		q, err := queue.DialAMQP(cfg.AMQPURL, cfg.EventsExchange)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.Events = q
		d.closers = append(d.closers, q.Close)
		slog.Info("publishing events", "exchange", cfg.EventsExchange)
	} else {
		q := queue.NewInMemoryQueue()
		if err := queue.StartEventLogger(q, Topics(collection)...); err != nil {
			d.Close()
			return nil, err
		}
		d.Events = q
	}
	return d, nil
}

// Close releases everything Bootstrap opened, last opened first.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
