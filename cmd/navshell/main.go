package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/medidas/navshell/internal/app"
	"github.com/medidas/navshell/internal/config"
	"github.com/medidas/navshell/internal/identity"
	"github.com/medidas/navshell/internal/logging"
)

type rootOptions struct {
	configPath string
	url        string
	token      string
	offline    bool
	logFile    string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "navshell",
		Short:         "Session-aware navigation shell",
		Long:          "Terminal client that shows the sign-in flow or the authenticated app depending on the identity provider's session.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "navshell.yaml", "path to config file")
	cmd.Flags().StringVar(&opts.url, "url", "", "websocket URL of the identity provider")
	cmd.Flags().StringVar(&opts.token, "token", "", "device token sent to the identity provider")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "use the in-memory identity provider")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "log file (the terminal is owned by the UI)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	return cmd
}

// loadConfig reads the config file and applies flags that were set.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Identity.URL = opts.url
	}
	if flags.Changed("token") {
		cfg.Identity.Token = opts.token
	}
	if flags.Changed("offline") {
		cfg.Identity.Offline = opts.offline
	}
	if flags.Changed("log-file") {
		cfg.Log.File = opts.logFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.EnsureDeviceToken(config.DeviceTokenPath(opts.configPath)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	logger, closer, err := logging.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()

	var provider identity.Provider
	if cfg.Identity.Offline {
		logger.Info("starting with in-memory identity provider")
		provider = identity.NewMemoryProvider()
	} else {
		httpClient := identity.NewHTTPClient(deriveHTTPBase(cfg.Identity.URL), cfg.Identity.Token)
		provider = identity.NewWSProvider(cfg.Identity.URL, cfg.Identity.Token, httpClient, logger)
		logger.Info("starting", "identity", cfg.Identity.URL)
	}

	m := app.New(provider, app.Options{
		Logger:         logger,
		SignOutTimeout: cfg.Shell.SignOutTimeout,
		Animate:        cfg.Shell.Animate,
		GlamourStyle:   cfg.Shell.GlamourStyle,
		Settings:       settings(cfg),
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// settings lists the effective configuration for the Ajustes screen.
func settings(cfg *config.Config) map[string]string {
	return map[string]string{
		"identity.url":           cfg.Identity.URL,
		"identity.offline":       strconv.FormatBool(cfg.Identity.Offline),
		"shell.sign_out_timeout": cfg.Shell.SignOutTimeout.String(),
		"shell.animate":          strconv.FormatBool(cfg.Shell.Animate),
		"shell.glamour_style":    cfg.Shell.GlamourStyle,
		"log.level":              cfg.Log.Level,
		"log.file":               cfg.Log.File,
	}
}

// deriveHTTPBase converts ws://host:port/ws → http://host:port
func deriveHTTPBase(wsURL string) string {
	u, err := url.Parse(wsURL)
	if err != nil || u.Host == "" {
		return "http://127.0.0.1:8090"
	}
	scheme := "http"
	if strings.HasPrefix(u.Scheme, "wss") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, u.Host)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
