package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected Level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected Format 'json', got '%s'", cfg.Format)
	}
	if cfg.Output != OutputStdout {
		t.Errorf("expected Output 'stdout', got '%s'", cfg.Output)
	}
}

func TestConfigTransportLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
		{"dpanic", zapcore.DPanicLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := Config{Level: tt.level}
			if got := cfg.TransportLevel(); got != tt.expected {
				t.Errorf("TransportLevel() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{Level: "debug"}
	cfg.applyDefaults()

	if cfg.Level != "debug" {
		t.Errorf("applyDefaults overwrote Level: %s", cfg.Level)
	}
	if cfg.Format != "json" || cfg.Output != OutputStdout || cfg.MaxSize != 100 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestNewLoggerWritesToFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = OutputFile
	cfg.Filename = filepath.Join(t.TempDir(), "app.log")

	logger := NewLogger(cfg)
	logger.Info("envelope written", zap.Int("status", 201))
	logger.Debug("filtered out")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	raw, err := os.ReadFile(cfg.Filename)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(raw)
	if !strings.Contains(out, `"message":"envelope written"`) || !strings.Contains(out, `"status":201`) {
		t.Errorf("unexpected log output: %s", out)
	}
	if strings.Contains(out, "filtered out") {
		t.Errorf("debug entry should be filtered at info level: %s", out)
	}
}

func TestConsoleFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "console"
	cfg.Output = OutputFile
	cfg.Filename = filepath.Join(t.TempDir(), "console.log")

	logger := NewLogger(cfg)
	logger.Warn("plain text")
	_ = logger.Close()

	raw, err := os.ReadFile(cfg.Filename)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.HasPrefix(string(raw), "{") {
		t.Errorf("console output should not be JSON: %s", raw)
	}
}

func TestLoggerChildren(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.Named("responder").With(zap.String("kind", "created")).Info("written")
	logger.WithError(context.Canceled).Error("failed")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].LoggerName != "responder" || entries[0].ContextMap()["kind"] != "created" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].ContextMap()["error"] != context.Canceled.Error() {
		t.Errorf("unexpected error field: %+v", entries[1].ContextMap())
	}
}

func TestContextFunctions(t *testing.T) {
	ctx := SetTraceID(context.Background(), "trace-123")
	if got := GetTraceID(ctx); got != "trace-123" {
		t.Errorf("GetTraceID() = %s, want trace-123", got)
	}
	//nolint:staticcheck // nil context is handled explicitly
	if got := GetTraceID(nil); got != "" {
		t.Errorf("GetTraceID(nil) = %s, want empty", got)
	}
}

func TestWithContextAddsTraceID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	WithContext(logger, SetTraceID(context.Background(), "abc")).Info("hello")
	WithContext(logger, context.Background()).Info("bare")

	entries := logs.All()
	if entries[0].ContextMap()["trace_id"] != "abc" {
		t.Errorf("expected trace_id field, got %+v", entries[0].ContextMap())
	}
	if _, ok := entries[1].ContextMap()["trace_id"]; ok {
		t.Errorf("unexpected trace_id field on bare entry")
	}
}

func TestContextLoggerStorage(t *testing.T) {
	logger := NewNop()
	ctx := ToContext(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Error("FromContext should return the stored logger")
	}
	if FromContext(context.Background()) != Global() {
		t.Error("FromContext should fall back to the global logger")
	}
}

func TestSetGlobal(t *testing.T) {
	prev := Global()
	t.Cleanup(func() { SetGlobal(prev) })

	core, logs := observer.New(zapcore.DebugLevel)
	SetGlobal(FromZap(zap.New(core)))

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")

	if logs.Len() != 4 {
		t.Errorf("expected 4 entries through the global logger, got %d", logs.Len())
	}
}

func TestHTTPMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	var fromCtx Logger
	handler := HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req = req.WithContext(SetTraceID(req.Context(), "t-1"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if fromCtx == nil {
		t.Fatal("request logger not stored on context")
	}

	entries := logs.FilterMessage("http.request.complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected one completion entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.WarnLevel {
		t.Errorf("expected warn level for 404, got %v", entry.Level)
	}
	fields := entry.ContextMap()
	if fields["status"] != int64(http.StatusNotFound) || fields["trace_id"] != "t-1" || fields["bytes"] != int64(17) {
		t.Errorf("unexpected fields: %+v", fields)
	}
}
