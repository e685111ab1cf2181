package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q: got %s, want %s", in, got, want)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "coursework.log")
	log, err := New("warn", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info("dropped")
	log.Warn("kept")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"kept"`) || !strings.Contains(out, `"timestamp"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestNewStderr(t *testing.T) {
	for _, path := range []string{"", Stderr} {
		log, err := New("debug", path)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", path, err)
		}
		if !log.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("%q: debug should be enabled", path)
		}
	}
}
