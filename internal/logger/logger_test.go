package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appCtx "github.com/baechuer/tracking-service/internal/pkg/context"
)

func TestInitWithWriter(t *testing.T) {
	t.Run("defaults_to_info_and_console", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("LOG_FORMAT", "")

		var buf bytes.Buffer
		InitWithWriter(&buf)

		assert.Equal(t, "info", Logger.GetLevel().String())
		assert.Equal(t, "info", zlog.Logger.GetLevel().String())

		Logger.Debug().Msg("hidden")
		Logger.Info().Msg("hello")
		out := buf.String()
		assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
		assert.Contains(t, out, "hello")
		assert.NotContains(t, out, "hidden")
	})

	t.Run("invalid_level_falls_back_to_info", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		t.Setenv("LOG_FORMAT", "json")

		var buf bytes.Buffer
		InitWithWriter(&buf)
		assert.Equal(t, "info", Logger.GetLevel().String())
	})

	t.Run("json_with_request_id", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_FORMAT", "json")

		var buf bytes.Buffer
		InitWithWriter(&buf)

		ctx := appCtx.WithRequestID(context.Background(), "req-1")
		WithCtx(ctx).Info().Msg("scoped")

		var line map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
		assert.Equal(t, "req-1", line["request_id"])
		assert.Equal(t, "tracking-service", line["service"])
		assert.Equal(t, "scoped", line["message"])
	})
}
