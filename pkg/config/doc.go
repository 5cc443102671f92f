// Package config provides a type-safe, generic and cached way to load
// application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11 behind a
// small API: Load parses the environment into any struct with `env` field
// tags, loading the default .env file first if present, and caches each
// successfully loaded configuration type so it is parsed at most once per
// process. MustLoad panics on failure for configuration the service cannot
// start without.
//
//	type serverConfig struct {
//	    Addr        string `env:"HTTP_ADDR" envDefault:":8080"`
//	    Environment string `env:"APP_ENV" envDefault:"development"`
//	}
//
//	var cfg serverConfig
//	config.MustLoad(&cfg)
//
// Sentinel errors (ErrParsingConfig, ErrNilPointer, ErrConfigNotLoaded) can
// be compared with errors.Is. ResetCache and ForceReloadConfig exist for
// tests that mutate the process environment between loads.
package config
