package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todosync/internal/config"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestNewDefaults(t *testing.T) {
	t.Setenv(config.EndpointEnv, "")
	dir := t.TempDir()

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if cfg.Dir != dir {
		t.Errorf("expected dir %q, got %q", dir, cfg.Dir)
	}
	if cfg.Backend != config.BackendREST {
		t.Errorf("expected rest backend, got %q", cfg.Backend)
	}
	if cfg.Endpoint != config.DefaultEndpoint {
		t.Errorf("expected default endpoint, got %q", cfg.Endpoint)
	}
	if cfg.UserID != 1 || cfg.InitialLimit != 5 {
		t.Errorf("unexpected defaults: user=%d limit=%d", cfg.UserID, cfg.InitialLimit)
	}
}

func TestNewReadsFile(t *testing.T) {
	t.Setenv(config.EndpointEnv, "")
	dir := t.TempDir()
	writeConfig(t, dir, "endpoint: http://localhost:3000\nuser_id: 9\ninitial_limit: -1\n")

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if cfg.Endpoint != "http://localhost:3000" || cfg.UserID != 9 || cfg.InitialLimit != -1 {
		t.Errorf("file settings not applied: %+v", cfg)
	}
	if cfg.Backend != config.BackendREST {
		t.Errorf("expected backend default to survive, got %q", cfg.Backend)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "endpoint: http://from-file\n")
	t.Setenv(config.EndpointEnv, "http://from-env")

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Endpoint != "http://from-env" {
		t.Errorf("expected env endpoint, got %q", cfg.Endpoint)
	}
}

func TestNewRejectsBadFile(t *testing.T) {
	t.Setenv(config.EndpointEnv, "")

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "endpoint: [\n", "invalid config.yaml"},
		{"unknown backend", "backend: carrier-pigeon\n", "unknown backend: carrier-pigeon"},
		{"zero limit", "initial_limit: 0\n", "initial_limit must not be 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := config.New(dir)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigDirUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := config.DefaultConfigDir(); got != filepath.Join("/tmp/xdg", "todosync") {
		t.Errorf("unexpected dir %q", got)
	}
}

func TestCredentialPaths(t *testing.T) {
	t.Setenv(config.EndpointEnv, "")
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HasOAuthClient() || cfg.HasToken() {
		t.Error("expected no credentials in empty dir")
	}
	if err := os.WriteFile(cfg.TokenPath(), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if !cfg.HasToken() {
		t.Error("expected token to be found")
	}
}
