// Package logger provides a context-aware wrapper around log/slog with
// functional options for configuration, helper attribute constructors, and
// transparent injection of values stored in context.Context.
//
// New builds a *slog.Logger from a set of Option functions: output format
// (text or json), minimum level, static attributes applied to every record,
// and ContextExtractor callbacks that pull request-scoped values (such as a
// request id) out of the context on every Handle call.
//
// WithDevelopment and WithProduction bundle sensible per-environment
// defaults; WithEnvironment selects between them by name.
//
//	log := logger.New(logger.WithEnvironment(cfg.Environment, "rtdnserver"))
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "notification processed",
//	    logger.UserID(userID),
//	    logger.Duration(time.Since(start)),
//	)
//
// Helper constructors such as Error and Component keep attribute naming
// consistent across the codebase; Error produces an attribute only when the
// supplied error is non-nil, so no extra nil check is needed at call sites.
package logger
