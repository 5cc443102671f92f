package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/muscleai/entitlement/pkg/config"
	"github.com/muscleai/entitlement/pkg/httpserver"
	"github.com/muscleai/entitlement/pkg/logger"
	"github.com/muscleai/entitlement/pkg/pg"
	"github.com/muscleai/entitlement/pkg/plans"
	"github.com/muscleai/entitlement/pkg/quota"
	"github.com/muscleai/entitlement/pkg/redis"
	"github.com/muscleai/entitlement/pkg/rtdn"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	BillingMode string `env:"BILLING_MODE" envDefault:"production"` // "sandbox" shortens billing cycles for testing
	PlansFile   string `env:"PLANS_FILE"`                           // optional YAML plan catalog; built-in defaults when empty
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("rtdnserver exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg   appConfig
		pgCfg    pg.Config
		redisCfg redis.Config
		httpCfg  httpserver.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, "rtdnserver"))
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	source := plans.Source(plans.NewInMemSource(plans.DefaultPlans()...))
	if appCfg.PlansFile != "" {
		source = plans.NewYAMLSource(appCfg.PlansFile)
	}
	catalog, err := plans.NewCatalog(ctx, source)
	if err != nil {
		return err
	}

	svc := quota.NewService(quota.NewPostgresStore(pool), catalog,
		quota.WithMode(plans.Mode(appCfg.BillingMode)),
		quota.WithLogger(log.With(logger.Component("quota"))),
	)

	handler := rtdn.NewHandler(
		rtdn.NewProcessor(svc, rtdn.WithProcessorLogger(log.With(logger.Component("rtdn")))),
		rtdn.WithHandlerLogger(log.With(logger.Component("rtdn"))),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Method("POST", "/rtdn", handler)
	r.Get("/health", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))

	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("rtdnserver listening", slog.String("addr", httpCfg.Addr))
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			l.Info("rtdnserver stopped")
		}),
	)
	return srv.Run(ctx, r)
}
