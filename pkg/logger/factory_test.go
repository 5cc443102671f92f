package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muscleai/entitlement/pkg/logger"
)

type ctxKey string

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json format by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf))
		log.Info("hello", slog.String("k", "v"))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "hello", rec["msg"])
		assert.Equal(t, "v", rec["k"])
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")

		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		log.Warn("kept")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("static attributes on every record", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "rtdnserver")),
		)
		log.Info("one")
		log.Info("two")

		for _, line := range strings.SplitAfter(strings.TrimSpace(buf.String()), "\n") {
			assert.Contains(t, line, `"service":"rtdnserver"`)
		}
	})

	t.Run("context value extraction", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		key := ctxKey("request_id")
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithContextValue("request_id", key),
		)

		ctx := context.WithValue(context.Background(), key, "req-42")
		log.InfoContext(ctx, "handled")

		assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
	})

	t.Run("environment presets", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithEnvironment("production", "rtdnserver"),
			logger.WithOutput(&buf),
		)
		log.Debug("dropped at info level")
		log.Info("kept")

		out := buf.String()
		assert.NotContains(t, out, "dropped at info level")
		assert.Contains(t, out, `"env":"production"`)
		assert.Contains(t, out, `"service":"rtdnserver"`)
	})
}

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	assert.Equal(t, "error", logger.Error(assert.AnError).Key)
	assert.Equal(t, slog.Attr{}, logger.UserID(nil))
	assert.Equal(t, "component", logger.Component("rtdn").Key)
	assert.Equal(t, "event", logger.Event("renewed").Key)
}
