package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/egorlepa/splitroute/internal/config"
	"github.com/egorlepa/splitroute/internal/dns"
	"github.com/egorlepa/splitroute/internal/platform"
	"github.com/egorlepa/splitroute/internal/routing"
	"github.com/egorlepa/splitroute/internal/split"
	"github.com/egorlepa/splitroute/internal/vpn"
)

// operations is the part of split.Service the root command drives.
type operations interface {
	Add(ctx context.Context, configPath string, domains []string) error
	Remove(ctx context.Context, configPath string, domains []string) error
	List(configPath string) error
}

// buildOperations is swapped out by tests.
var buildOperations = newService

func setup(cmd *cobra.Command, opts *rootOptions) (operations, error) {
	cfg, logger, err := loadSettings(cmd, opts)
	if err != nil {
		return nil, err
	}
	return buildOperations(cfg, cmd.OutOrStdout(), logger)
}

// loadSettings reads the settings file and applies command-line overrides.
func loadSettings(cmd *cobra.Command, opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.settings)
	if err != nil {
		return nil, nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, platform.NewLogger(cfg.LogLevel, cmd.ErrOrStderr()), nil
}

func newResolver(cfg *config.Config, logger *slog.Logger) *dns.Resolver {
	client := &http.Client{Timeout: cfg.Resolver.TimeoutDuration()}
	resolver := dns.NewResolver(cfg.Resolver.URL, client, logger)
	resolver.Attempts = cfg.Resolver.Attempts
	return resolver
}

func newService(cfg *config.Config, out io.Writer, logger *slog.Logger) (operations, error) {
	resolver := newResolver(cfg, logger)

	runner := platform.Exec{Stdout: os.Stdout, Stderr: os.Stderr}
	installer, err := routing.New(cfg.Tunnel.Backend, runner, cfg.Sudo)
	if err != nil {
		return nil, err
	}
	launcher := vpn.NewLauncher(runner, cfg.OpenVPN.Binary, cfg.Sudo, logger)

	opts := split.Options{
		Interface:         cfg.Tunnel.Interface,
		PersistRoutes:     cfg.Tunnel.PersistRoutes,
		UninstallOnRemove: cfg.Tunnel.UninstallOnRemove,
		Restart:           cfg.OpenVPN.Restart,
	}
	return split.New(resolver, installer, launcher, opts, out, logger), nil
}
