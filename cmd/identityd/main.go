package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/medidas/navshell/internal/config"
	"github.com/medidas/navshell/internal/identityd"
	"github.com/medidas/navshell/internal/logging"
)

type rootOptions struct {
	configPath string
	host       string
	port       int
	logLevel   string
	logFile    string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "identityd",
		Short:         "Development identity provider for navshell",
		Long:          "Serves per-device auth state over a websocket and sign-in/register/sign-out over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			flags := cmd.Flags()
			if flags.Changed("host") {
				cfg.Server.Host = opts.host
			}
			if flags.Changed("port") {
				cfg.Server.Port = opts.port
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = opts.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, opts.logFile)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "navshell.yaml", "path to config file")
	cmd.Flags().StringVar(&opts.host, "host", "", "override listen host")
	cmd.Flags().IntVar(&opts.port, "port", 0, "override listen port")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "log file (default stderr)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logFile string) error {
	logger, closer, err := logging.Init(cfg.Log.Level, cfg.Log.Format, logFile)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()

	store := identityd.NewStore()
	broadcaster := identityd.NewBroadcaster(store, cfg.Server.MaxConnections, cfg.Server.SendTimeout, logger)
	server := identityd.NewServer(store, broadcaster, cfg.Server.AllowedOrigins, logger)

	err = identityd.ListenAndServe(ctx, cfg.Addr(), server.Handler(), logger)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err == nil {
		logger.Info("identityd stopped")
	}
	return err
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
