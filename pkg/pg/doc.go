// Package pg provides utilities for interacting with PostgreSQL using the
// pgx/v5 driver: connection pooling with retry, goose schema migrations,
// health checks, and common error helpers.
//
// Config is populated from environment variables via github.com/caarlos0/env
// and controls pool limits, health-check cadence and migration paths.
// Connect opens a *pgxpool.Pool with exponential back-off until the database
// becomes available; Migrate runs goose migrations against the same pool so
// the schema is current before the service starts serving traffic.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//
// Helpers such as IsNotFoundError and IsDuplicateKeyError classify errors
// returned by pgx so business logic never matches on SQLSTATE strings.
package pg
