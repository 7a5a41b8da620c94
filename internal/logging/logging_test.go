package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
		want   zapcore.Level
	}{
		{"console debug", "debug", "console", zapcore.DebugLevel},
		{"json info", "info", "json", zapcore.InfoLevel},
		{"unknown level defaults to info", "loud", "json", zapcore.InfoLevel},
		{"warn", "WARN", "console", zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if !logger.Core().Enabled(tt.want) {
				t.Errorf("level %s not enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
				t.Errorf("level %s unexpectedly enabled", tt.want-1)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("RB_LOG_LEVEL", "error")
	t.Setenv("RB_LOG_FORMAT", "json")

	logger, err := FromEnv("debug")
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("expected RB_LOG_LEVEL=error to disable warn")
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel zapcore.Level
	}{
		{"ok", "/api/properties", http.StatusOK, zapcore.InfoLevel},
		{"client error", "/api/properties/x", http.StatusNotFound, zapcore.WarnLevel},
		{"server error", "/api/summary", http.StatusBadGateway, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			handler := RequestLogger(zap.New(core))(inner)
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", tt.path, nil))

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("got %d log entries, want 1", len(entries))
			}
			e := entries[0]
			if e.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s", e.Level, tt.wantLevel)
			}
			fields := e.ContextMap()
			if fields["method"] != "GET" {
				t.Errorf("method = %v, want GET", fields["method"])
			}
			if fields["path"] != tt.path {
				t.Errorf("path = %v, want %s", fields["path"], tt.path)
			}
			if fields["status"] != int64(tt.status) {
				t.Errorf("status = %v, want %d", fields["status"], tt.status)
			}
		})
	}
}

func TestRequestLoggerSkipsHealth(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := RequestLogger(zap.New(core))(inner)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	if logs.Len() > 0 {
		t.Error("expected no log for health path")
	}
}
