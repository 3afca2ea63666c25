package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesLeveledFileLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chemtrack.log")
	Init(&LogConfig{
		Path:       path,
		LogLevel:   "warn",
		ServiceEnv: ServiceEnv{Platform: "lab", Service: "chemtrack", Env: "test"},
	})

	ctx := context.Background()
	Debugf(ctx, "hidden %d", 1)
	Warnf(ctx, "stock low for %s", "ethanol")
	Errorf(nil, "nil context is tolerated")
	Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(raw)
	if !strings.Contains(out, "stock low for ethanol") || !strings.Contains(out, `"service":"chemtrack"`) {
		t.Fatalf("expected warn line with service field, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "nil context is tolerated") {
		t.Fatalf("expected error line, got %q", out)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	cases := map[string]string{"debug": "debug", "warn": "warn", "error": "error", "": "info", "loud": "info"}
	for in, want := range cases {
		if got := parseLevel(in).String(); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
