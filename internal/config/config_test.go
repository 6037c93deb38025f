package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/YanKe1816/multi-tools-server/internal/config"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != config.Default() {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Addr != ":8000" || cfg.SSE.KeepAliveSeconds != 15 || cfg.Language != "en" {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := write(t, "addr: \":9000\"\nsse:\n  keep_alive_seconds: 30\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9000" || cfg.SSE.KeepAliveSeconds != 30 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Language != "en" {
		t.Fatalf("language = %q", cfg.Language)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty addr", "addr: \"\"\n"},
		{"zero keep alive", "sse:\n  keep_alive_seconds: 0\n"},
		{"unknown language", "language: fr\n"},
		{"not yaml", ": : :\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := config.Load(write(t, tc.content)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
