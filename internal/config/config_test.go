package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
log:
  level: debug
quiz:
  ttl: 5m
  defaultTimeLimit: 0
  allowResubmit: true
attendance:
  timezone: Asia/Jakarta
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Log.Level != "debug" || !cfg.Quiz.AllowResubmit {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.DefaultTimeLimit() != 0 {
		t.Fatalf("expected explicit 0 to leave quizzes untimed, got %d", cfg.DefaultTimeLimit())
	}
	if got := TTLDuration(cfg.Quiz.TTL, time.Minute); got != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %v", got)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Asia/Jakarta" {
		t.Fatalf("expected Asia/Jakarta, got %v (%v)", loc, err)
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config
	if cfg.DefaultTimeLimit() != 10 {
		t.Fatalf("expected 10 minute default, got %d", cfg.DefaultTimeLimit())
	}
	if loc, _ := cfg.Location(); loc != time.Local {
		t.Fatalf("expected local zone, got %v", loc)
	}
	if got := TTLDuration("bogus", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad duration, got %v", got)
	}
}
