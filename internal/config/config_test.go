package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: ":8080"
judge:
  url: http://localhost:2358
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Judge.PollInterval.Std() != time.Second {
		t.Errorf("expected default poll interval 1s, got %s", cfg.Judge.PollInterval)
	}
	if cfg.Judge.PollBackoff.Std() != 8*time.Second {
		t.Errorf("expected default backoff cap 8s, got %s", cfg.Judge.PollBackoff)
	}
	if cfg.Judge.MaxWait.Std() != 2*time.Minute {
		t.Errorf("expected default max wait 2m, got %s", cfg.Judge.MaxWait)
	}
	if cfg.Judge.Workers != 8 {
		t.Errorf("expected default 8 workers, got %d", cfg.Judge.Workers)
	}
	if cfg.Finalizer.Interval.Std() != 5*time.Minute {
		t.Errorf("expected default finalizer interval 5m, got %s", cfg.Finalizer.Interval)
	}
}

func TestLoadRequiresJudgeURL(t *testing.T) {
	path := writeConfig(t, `listen: ":8080"`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for missing judge.url")
	}
}

func TestLoadParsesDurations(t *testing.T) {
	path := writeConfig(t, `
judge:
  url: http://localhost:2358
  poll_interval: 250ms
  poll_backoff_cap: 4s
  max_wait: 90s
  workers: 2
finalizer:
  interval: 30s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Judge.PollInterval.Std() != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %s", cfg.Judge.PollInterval)
	}
	if cfg.Judge.MaxWait.Std() != 90*time.Second {
		t.Errorf("expected 90s, got %s", cfg.Judge.MaxWait)
	}
	if cfg.Finalizer.Interval.Std() != 30*time.Second {
		t.Errorf("expected 30s, got %s", cfg.Finalizer.Interval)
	}
}
