package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mcpregistry "github.com/wagiedev/mcp-registry-go"
	"github.com/wagiedev/mcp-registry-go/internal/settings"
	"github.com/wagiedev/mcp-registry-go/internal/tracing"
)

// app carries state shared by all subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	out     io.Writer
	errOut  io.Writer

	cfg settings.Config
	log *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{
		v:      settings.NewViper(),
		out:    out,
		errOut: errOut,
	}

	rootCmd := &cobra.Command{
		Use:   "mcpreg",
		Short: "Connect to MCP tool servers and call their tools",
		Long: `mcpreg launches MCP servers as subprocesses, lists the tools they
advertise and calls them.

Servers are read from the "mcpServers" section of the config file
(default: ./mcpreg.yaml, then ~/.config/mcpreg/mcpreg.yaml). Settings can be
overridden with MCPREG_* environment variables, e.g. MCPREG_LOG_LEVEL=debug.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ./mcpreg.yaml or ~/.config/mcpreg/mcpreg.yaml)")
	rootCmd.PersistentFlags().String("log-level", "",
		"log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("trace", false,
		"emit OpenTelemetry spans for registry operations")
	rootCmd.PersistentFlags().Duration("handshake-timeout", 0,
		"bound on server startup plus MCP initialization")

	// Bind flags to viper
	_ = a.v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("tracing.enabled", rootCmd.PersistentFlags().Lookup("trace"))
	_ = a.v.BindPFlag("handshake_timeout", rootCmd.PersistentFlags().Lookup("handshake-timeout"))

	rootCmd.AddCommand(
		a.newServersCmd(),
		a.newToolsCmd(),
		a.newCallCmd(),
		a.newDiscoverCmd(),
	)

	return rootCmd
}

// load resolves configuration before any subcommand runs.
func (a *app) load(_ *cobra.Command, _ []string) error {
	cfg, err := settings.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{
		Level: mcpregistry.ParseLogLevel(cfg.LogLevel),
	}))

	if cfg.Path != "" {
		a.log.Debug("Loaded config", "path", cfg.Path, "servers", len(cfg.Servers))
	}

	return nil
}

// withRegistry runs fn against a registry configured from the loaded
// settings. Every server fn connects is stopped before it returns.
func (a *app) withRegistry(ctx context.Context, fn func(mcpregistry.Registry) error) error {
	tp, err := tracing.NewProvider(ctx, a.cfg.Tracing, a.errOut)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}

	defer func() {
		if shutdownErr := tp.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			a.log.Warn("failed to flush traces", "error", shutdownErr)
		}
	}()

	return mcpregistry.WithRegistry(ctx, fn,
		mcpregistry.WithLogger(a.log),
		mcpregistry.WithHandshakeTimeout(a.cfg.HandshakeTimeout),
		mcpregistry.WithShutdownTimeout(a.cfg.ShutdownTimeout),
		mcpregistry.WithClientInfo("mcpreg", version),
		mcpregistry.WithTracerProvider(tp.TracerProvider()),
		mcpregistry.WithStderr(func(id, line string) {
			a.log.Debug("server stderr", "connection_id", id, "line", line)
		}),
	)
}

// server returns the configured server called name.
func (a *app) server(name string) (mcpregistry.ServerConfig, error) {
	server, ok := a.cfg.Servers[name]
	if !ok {
		known := slices.Sorted(maps.Keys(a.cfg.Servers))

		return mcpregistry.ServerConfig{}, fmt.Errorf("no server %q in config (known: %v)", name, known)
	}

	if err := server.Validate(); err != nil {
		return mcpregistry.ServerConfig{}, fmt.Errorf("server %q: %w", name, err)
	}

	return server, nil
}

// connect connects the configured server name under its own name.
func (a *app) connect(ctx context.Context, reg mcpregistry.Registry, name string) error {
	server, err := a.server(name)
	if err != nil {
		return err
	}

	return reg.Connect(ctx, name, server.LaunchSpec())
}
