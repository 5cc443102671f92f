// Package httpserver provides a lightweight wrapper around net/http that
// adds graceful shutdown, configurable server timeouts, health-check
// handlers, and structured logging via slog.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal is
// received, then shuts the server down with a configurable deadline.
// Construction goes through New or NewFromConfig together with Option
// helpers such as WithAddr and WithLogger; WithStartHook and WithStopHook
// let callers execute side effects around the server life-cycle.
//
//	r := chi.NewRouter()
//	r.Get("/health", httpserver.HealthCheckHandler(ctx, log, pg.Healthcheck(pool)))
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, r); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// Run wraps listen errors with ErrStart and Shutdown wraps shutdown errors
// with ErrShutdown; use errors.Is to distinguish them.
package httpserver
