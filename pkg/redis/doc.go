// Package redis provides helpers for connecting to a Redis server with the
// go-redis client.
//
// Connect retries the connection using the supplied configuration until the
// server becomes ready or the attempts are exhausted. Healthcheck returns a
// probe function suitable for HTTP liveness and readiness endpoints.
//
// Configuration is described by the Config struct whose fields are populated
// from environment variables via github.com/caarlos0/env.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Sentinel errors such as ErrRedisNotReady wrap the underlying go-redis
// errors using errors.Join so they can be compared with errors.Is.
package redis
