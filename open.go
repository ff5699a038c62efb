package dbhandler

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Open connects to the database described by cfg and returns a Handler
// for it. The connection is verified with a ping, retried
// cfg.ConnectRetries times, and the session variables of cfg.Session are
// set before Open returns. Any failure is fatal and wraps ErrConnect.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Handler, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	driverName := cfg.Driver
	if cfg.Tracing {
		driverName, err = otelsql.Register(
			cfg.Driver,
			otelsql.WithAttributes(attribute.String("db.system", DialectFor(cfg.Driver).Name)),
			otelsql.WithSpanOptions(otelsql.SpanOptions{
				DisableErrSkip: true,
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed registering traced driver: %v", ErrConnect, err)
		}
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)

	if err := ping(ctx, db, cfg); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	h := New(db, cfg.Driver, opts...)

	for _, name := range slices.Sorted(maps.Keys(cfg.Session)) {
		if err := h.SetSession(ctx, name, cfg.Session[name]); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: failed setting %s: %w", ErrConnect, name, err)
		}
	}

	h.opts.logger.Info("database opened",
		zap.String("driver", cfg.Driver),
		zap.String("server", cfg.Server),
		zap.String("database", cfg.Database))

	return h, nil
}

func ping(ctx context.Context, db *sql.DB, cfg Config) error {
	interval := cfg.ConnectRetryInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	retries := cfg.ConnectRetries
	if retries < 0 {
		retries = 0
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), uint64(retries)),
		ctx,
	)
	return backoff.Retry(func() error {
		return db.PingContext(ctx)
	}, b)
}
