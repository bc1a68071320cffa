package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	os.Unsetenv("API_BASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080/api/v1" {
		t.Fatalf("BaseURL=%q", cfg.BaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("Timeout=%v", cfg.Timeout)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("PageSize=%d", cfg.PageSize)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://rentals.example.com/api/v1")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("API_PAGE_SIZE", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://rentals.example.com/api/v1" {
		t.Fatalf("BaseURL=%q", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("Timeout=%v", cfg.Timeout)
	}
	if cfg.PageSize != 25 {
		t.Fatalf("PageSize=%d", cfg.PageSize)
	}
}

func TestLoadFileOverlaysProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("base_url: https://profile.example.com/api/v1\npage_size: 50\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.BaseURL != "https://profile.example.com/api/v1" {
		t.Fatalf("BaseURL=%q", cfg.BaseURL)
	}
	if cfg.PageSize != 50 {
		t.Fatalf("PageSize=%d", cfg.PageSize)
	}
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.BaseURL == "" {
		t.Fatal("expected environment config")
	}
}

func TestResolveBaseURLPreviewOverride(t *testing.T) {
	got := ResolveBaseURL("http://localhost:8080/api/v1", "fluffy-space-3001.githubpreview.dev")
	want := "https://fluffy-space-8080.githubpreview.dev/api/v1"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolveBaseURLKeepsConfiguredElsewhere(t *testing.T) {
	hosts := []string{"", "localhost", "myapp-3001.example.com", "myapp.githubpreview.dev"}
	for _, host := range hosts {
		if got := ResolveBaseURL("http://localhost:8080/api/v1", host); got != "http://localhost:8080/api/v1" {
			t.Fatalf("host %q changed base to %q", host, got)
		}
	}
}
