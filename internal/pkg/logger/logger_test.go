package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.NotNil(t, cfg.Output)
	assert.False(t, cfg.AddSource)
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	}

	logger := New(cfg)
	require.NotNil(t, logger)

	logger.Info("test message", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "key")
	assert.Contains(t, output, "value")

	// Verify it's valid JSON
	var logEntry map[string]interface{}
	err := json.Unmarshal([]byte(output), &logEntry)
	assert.NoError(t, err)
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{
		Level:  "debug",
		Format: "text",
		Output: &buf,
	}

	logger := New(cfg)
	require.NotNil(t, logger)

	logger.Debug("debug message")

	output := buf.String()
	assert.Contains(t, output, "debug message")
}

func TestNew_LogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo}, // default
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &Config{
				Level:  tt.level,
				Format: "json",
				Output: &buf,
			}

			logger := New(cfg)
			require.NotNil(t, logger)

			// Check that the handler is enabled for the expected level
			handler := logger.Handler()
			assert.True(t, handler.Enabled(context.Background(), tt.expected))
		})
	}
}

func TestNew_NilConfig(t *testing.T) {
	logger := New(nil)
	require.NotNil(t, logger)
}

func TestContextHandler_RequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	}

	logger := New(cfg)

	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-456")
	ctx = WithUserID(ctx, "ana")

	logger.InfoContext(ctx, "login succeeded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-456", entry["request_id"])
	assert.Equal(t, "ana", entry["user_id"])
	assert.NotContains(t, entry, "trace_id", "no span, no trace id")
}

func TestContextHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	}

	logger := New(cfg)
	loggerWithAttr := logger.With("procedure", "dbo.sp_Usuario_CRUD")

	loggerWithAttr.Info("test with attr")

	output := buf.String()
	assert.Contains(t, output, "dbo.sp_Usuario_CRUD")
}

func TestContextHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	}

	logger := New(cfg)
	loggerWithGroup := logger.WithGroup("request")

	loggerWithGroup.Info("test with group", "method", "GET")

	output := buf.String()
	assert.Contains(t, output, "request")
	assert.Contains(t, output, "method")
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{
		Level:  "warn",
		Format: "json",
		Output: &buf,
	}

	logger := New(cfg)

	// Debug and Info should be filtered out
	logger.Debug("debug message")
	logger.Info("info message")

	// Warn and Error should appear
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestContextHandler_Enabled(t *testing.T) {
	handler := &ContextHandler{
		handler: slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}),
	}

	assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))
}

func TestContextKeys_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		set  func(context.Context, string) context.Context
		get  func(context.Context) string
	}{
		{"request", WithRequestID, GetRequestID},
		{"user", WithUserID, GetUserID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, tt.get(context.Background()))
			ctx := tt.set(context.Background(), "id-"+tt.name)
			assert.Equal(t, "id-"+tt.name, tt.get(ctx))
		})
	}
}

func TestContextHandler_OpenTelemetrySpan(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: "json", Output: &buf})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.InfoContext(ctx, "inside span")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestOrDefault(t *testing.T) {
	assert.Same(t, slog.Default(), OrDefault(nil))

	custom := New(&Config{Output: &bytes.Buffer{}})
	assert.Same(t, custom, OrDefault(custom))
}

func TestNewRotatingWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")

	w, err := NewRotatingWriter(FileConfig{Path: path, MaxAge: time.Hour, RotationTime: time.Hour})
	require.NoError(t, err)
	defer w.Close()

	logger := New(&Config{Level: "info", Format: "json", Output: w})
	logger.Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNewRotatingWriter_RequiresPath(t *testing.T) {
	_, err := NewRotatingWriter(FileConfig{})
	assert.Error(t, err)
}

func TestNew_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: "json", Output: &buf})

	logger.Info("change password",
		"IdUsuario", "ana",
		"PasswordActual", "old-s3cret",
		"passwordNueva", "new-s3cret",
		slog.Group("request", slog.String("Respuesta", "Firulais")),
	)

	out := buf.String()
	assert.NotContains(t, out, "old-s3cret")
	assert.NotContains(t, out, "new-s3cret")
	assert.NotContains(t, out, "Firulais")
	assert.Contains(t, out, "ana")
	assert.Contains(t, out, Redacted)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestIsSensitive(t *testing.T) {
	assert.True(t, IsSensitive("Password"))
	assert.True(t, IsSensitive("FotografiaBase64"))
	assert.False(t, IsSensitive("Usuario"))
	assert.False(t, IsSensitive("ip"))
}
