package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Identity.URL != "ws://127.0.0.1:8090/ws" {
		t.Errorf("Identity.URL = %q", cfg.Identity.URL)
	}
	if cfg.Shell.SignOutTimeout != 10*time.Second {
		t.Errorf("SignOutTimeout = %v", cfg.Shell.SignOutTimeout)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navshell.yaml")
	data := []byte(`
identity:
  url: ws://auth.local:9000/ws
  token: device-abc
shell:
  sign_out_timeout: 3s
log:
  level: debug
server:
  port: 9000
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Identity.URL != "ws://auth.local:9000/ws" || cfg.Identity.Token != "device-abc" {
		t.Errorf("identity = %+v", cfg.Identity)
	}
	if cfg.Shell.SignOutTimeout != 3*time.Second {
		t.Errorf("SignOutTimeout = %v, want 3s", cfg.Shell.SignOutTimeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	// Untouched keys keep their defaults.
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want default", cfg.Log.Format)
	}
	if got := cfg.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty url", "identity:\n  url: \"\"\n"},
		{"zero timeout", "shell:\n  sign_out_timeout: 0s\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"not yaml", "identity: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

func TestOfflineAllowsEmptyURL(t *testing.T) {
	cfg := Default()
	cfg.Identity.URL = ""
	cfg.Identity.Offline = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestDefaultHasDeviceToken(t *testing.T) {
	a, b := Default(), Default()
	if a.Identity.Token == "" {
		t.Fatal("Default() should carry a device token")
	}
	if a.Identity.Token == b.Identity.Token {
		t.Error("each Default() should get its own token")
	}
}

func TestEnsureDeviceTokenPersists(t *testing.T) {
	dir := t.TempDir()
	path := DeviceTokenPath(filepath.Join(dir, "navshell.yaml"))

	cfg, err := Load(filepath.Join(dir, "navshell.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.EnsureDeviceToken(path); err != nil {
		t.Fatalf("EnsureDeviceToken() error = %v", err)
	}
	if cfg.Identity.Token == "" {
		t.Fatal("token not set")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("token file: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != cfg.Identity.Token {
		t.Errorf("file token = %q, want %q", got, cfg.Identity.Token)
	}

	again, _ := Load(filepath.Join(dir, "navshell.yaml"))
	if err := again.EnsureDeviceToken(path); err != nil {
		t.Fatal(err)
	}
	if again.Identity.Token != cfg.Identity.Token {
		t.Errorf("restart token = %q, want %q", again.Identity.Token, cfg.Identity.Token)
	}
}

func TestEnsureDeviceTokenKeepsConfigured(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		offline bool
		want    string
	}{
		{"configured", "device-abc", false, "device-abc"},
		{"offline", "", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Identity.Token = tt.token
			cfg.Identity.Offline = tt.offline
			path := filepath.Join(t.TempDir(), DeviceTokenFile)
			if err := cfg.EnsureDeviceToken(path); err != nil {
				t.Fatal(err)
			}
			if cfg.Identity.Token != tt.want {
				t.Errorf("Token = %q, want %q", cfg.Identity.Token, tt.want)
			}
			if _, err := os.Stat(path); err == nil {
				t.Error("token file should not be written")
			}
		})
	}
}
