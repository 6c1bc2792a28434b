package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"trace", LevelTrace, false},
		{"debug", slog.LevelDebug, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"  debug  ", slog.LevelDebug, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_SMTP_PASSWORD", "hunter2")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
model: claude-sonnet-4-20250514
smtp:
  host: smtp.example.com
  password: ${TEST_SMTP_PASSWORD}
agent:
  truncate_tokens: 6000
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SMTP.Password != "hunter2" {
		t.Errorf("env expansion failed: got %q", cfg.SMTP.Password)
	}
	if cfg.Agent.TruncateTokens != 6000 {
		t.Errorf("truncate_tokens = %d, want 6000", cfg.Agent.TruncateTokens)
	}
	// Unset fields keep defaults.
	if cfg.Agent.StrictTokens != 7000 {
		t.Errorf("strict_tokens default = %d, want 7000", cfg.Agent.StrictTokens)
	}
	if cfg.Agent.TurnRetries != 2 {
		t.Errorf("turn_retries default = %d, want 2", cfg.Agent.TurnRetries)
	}
	if cfg.Agent.ModelTimeout() != 2*time.Minute {
		t.Errorf("model timeout default = %v, want 2m", cfg.Agent.ModelTimeout())
	}
}

func TestFindConfigExplicitMissing(t *testing.T) {
	if _, err := FindConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}
