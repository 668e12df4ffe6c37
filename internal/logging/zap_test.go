package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZapLoggerTo(&buf, slog.LevelInfo)

	log.With("store", "users").Info(context.Background(), "saved", "count", 3)
	require.NoError(t, log.Sync())

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "saved", entry["msg"])
	assert.Equal(t, "users", entry["store"])
	assert.EqualValues(t, 3, entry["count"])
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewZapLoggerTo(&buf, slog.LevelWarn)
	ctx := context.Background()

	log.Debug(ctx, "dbg")
	log.Info(ctx, "inf")
	log.Warn(ctx, "wrn")
	log.Error(ctx, "err")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, `"dbg"`)
	assert.NotContains(t, out, `"inf"`)
	assert.Contains(t, out, `"wrn"`)
	assert.Contains(t, out, `"err"`)
}

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		level   string
		want    string
		wantErr bool
	}{
		{name: "json default", format: "", level: "", want: `"msg":"hello"`},
		{name: "text", format: FormatText, level: "debug", want: "msg=hello"},
		{name: "zap", format: FormatZap, level: "info", want: `"msg":"hello"`},
		{name: "bad format", format: "xml", level: "info", wantErr: true},
		{name: "bad level", format: FormatJSON, level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := New(&buf, tt.format, tt.level)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			log.Info(context.Background(), "hello")
			if z, ok := log.(*ZapLogger); ok {
				require.NoError(t, z.Sync())
			}
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestNop_DiscardsOutput(t *testing.T) {
	log := Nop()
	log.Error(context.Background(), "ignored", "k", "v")
	log.With("a", 1).Info(context.Background(), "ignored")
}

func TestZapLogger_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	log := NewZapLoggerTo(&buf, slog.LevelDebug)

	log.With("secret_key", "k1").Info(context.Background(), "issued", "access_token", "eyJhbGciOi", "user", "alice")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, Redacted, entry["secret_key"])
	assert.Equal(t, Redacted, entry["access_token"])
	assert.Equal(t, "alice", entry["user"])
}
