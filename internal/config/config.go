// Package config loads the YAML configuration shared by navshell and
// identityd. Defaults are applied first and the file overlays them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Identity IdentityConfig `yaml:"identity"`
	Shell    ShellConfig    `yaml:"shell"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
}

// IdentityConfig tells the shell where the identity provider lives.
type IdentityConfig struct {
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Offline bool   `yaml:"offline"`
}

type ShellConfig struct {
	SignOutTimeout time.Duration `yaml:"sign_out_timeout"`
	Animate        bool          `yaml:"animate"`
	GlamourStyle   string        `yaml:"glamour_style"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ServerConfig is read by identityd only.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxConnections int           `yaml:"max_connections"`
	SendTimeout    time.Duration `yaml:"send_timeout"`
}

func defaultConfig() *Config {
	return &Config{
		Identity: IdentityConfig{
			URL: "ws://127.0.0.1:8090/ws",
		},
		Shell: ShellConfig{
			SignOutTimeout: 10 * time.Second,
			Animate:        true,
			GlamourStyle:   "dark",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   "navshell.log",
		},
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8090,
			MaxConnections: 256,
			SendTimeout:    5 * time.Second,
		},
	}
}

// DeviceTokenFile is the name of the file, kept next to the config file,
// that holds this device's identity token.
const DeviceTokenFile = ".navshell-device"

// Default returns the built-in configuration with a fresh device token.
func Default() *Config {
	cfg := defaultConfig()
	cfg.Identity.Token = uuid.NewString()
	return cfg
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the binaries cannot run with.
func (c *Config) Validate() error {
	if !c.Identity.Offline && c.Identity.URL == "" {
		return errors.New("config: identity.url is required unless identity.offline is set")
	}
	if c.Shell.SignOutTimeout <= 0 {
		return errors.New("config: shell.sign_out_timeout must be positive")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	return nil
}

// EnsureDeviceToken fills Identity.Token when it is empty and the shell is
// online. The token is read from path, or generated and written there so the
// device keeps its identity across restarts. An empty path generates a token
// without persisting it.
func (c *Config) EnsureDeviceToken(path string) error {
	if c.Identity.Offline || c.Identity.Token != "" {
		return nil
	}
	if path == "" {
		c.Identity.Token = uuid.NewString()
		return nil
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if tok := strings.TrimSpace(string(data)); tok != "" {
			c.Identity.Token = tok
			return nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("read device token: %w", err)
	}

	tok := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create device token dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(tok+"\n"), 0o600); err != nil {
		return fmt.Errorf("write device token: %w", err)
	}
	c.Identity.Token = tok
	return nil
}

// DeviceTokenPath returns where the device token lives for configPath.
func DeviceTokenPath(configPath string) string {
	if configPath == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(configPath), DeviceTokenFile)
}

// Addr returns the identityd listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
