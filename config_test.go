package nbest

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nbest.yaml")
	data := []byte(`api_key: file-key
base_url: https://ranked.example.com
api_prefix: /v2
headers:
  X-Team: search
max_retries: 3
min_backoff: 100ms
max_backoff: 2s
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "file-key" || cfg.BaseURL != "https://ranked.example.com" || cfg.APIPrefix != "/v2" {
		t.Fatalf("config %#v", cfg)
	}
	if cfg.Headers["X-Team"] != "search" || cfg.MaxRetries != 3 {
		t.Fatalf("config %#v", cfg)
	}
	if cfg.MinBackoff != 100*time.Millisecond || cfg.MaxBackoff != 2*time.Second {
		t.Fatalf("backoff %v %v", cfg.MinBackoff, cfg.MaxBackoff)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nbest.yaml")
	if err := os.WriteFile(path, []byte("api_key: file-key\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NBEST_API_KEY", "env-key")
	t.Setenv("NBEST_BASE_URL", "https://env.example.com")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "env-key" || cfg.BaseURL != "https://env.example.com" {
		t.Fatalf("config %#v", cfg)
	}
}

func TestLoadConfig_BadBackoff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nbest.yaml")
	if err := os.WriteFile(path, []byte("min_backoff: soon\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
