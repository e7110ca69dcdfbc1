package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/yhlin/chipmon/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "debug",
		LogFormat: "json",
	}

	log := New(cfg)
	if log == nil {
		t.Fatal("New() returned nil")
	}

	// Chained loggers must not be nil either
	if log.WithField("k", "v") == nil {
		t.Error("WithField() returned nil")
	}
	if log.WithFields(map[string]interface{}{"a": 1, "b": 2}) == nil {
		t.Error("WithFields() returned nil")
	}
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	// Must not panic
	log.Debug("debug")
	log.Info("info")
	log.Warn("warn")
	log.Error("error")
	log.WithField("k", "v").Info("chained")
}
