package subcache_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/muscleai/entitlement/pkg/subcache"
)

// newRedisTestClient connects to the redis named by TEST_REDIS_ADDR and
// returns a client plus a per-test key prefix. Skips when no address is
// configured so the suite stays runnable without infrastructure.
func newRedisTestClient(t *testing.T) (*redis.Client, string) {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	prefix := "test:subcache:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		keys, err := client.Keys(ctx, prefix+"*").Result()
		if err == nil && len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		_ = client.Close()
	})
	return client, prefix
}

func newRedisTestStore(t *testing.T) subcache.Store {
	t.Helper()
	client, prefix := newRedisTestClient(t)
	return subcache.NewRedisStore(client, subcache.WithKeyPrefix(prefix))
}

func TestRedisStore_CorruptBlob(t *testing.T) {
	t.Parallel()

	client, prefix := newRedisTestClient(t)
	store := subcache.NewRedisStore(client, subcache.WithKeyPrefix(prefix))
	userID := uuid.New()

	require.NoError(t, client.Set(context.Background(), prefix+userID.String(), "not json", 0).Err())

	_, err := store.Load(context.Background(), userID)
	require.ErrorIs(t, err, subcache.ErrFailedToLoadState)
}

func TestRedisStore_Panics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { subcache.NewRedisStore(nil) })
	require.Panics(t, func() { subcache.WithKeyPrefix("") })
}
