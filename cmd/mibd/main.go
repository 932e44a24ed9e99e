package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pior/wifimib/internal/config"
	"github.com/pior/wifimib/internal/fwsim"
	"github.com/pior/wifimib/internal/observability"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type daemonFlags struct {
	configPath string
	addr       string
	dataDir    string
	readOnly   []string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var flags daemonFlags

	cmd := &cobra.Command{
		Use:   "mibd",
		Short: "Run a simulated Wi-Fi firmware MIB peer",
		Long: `mibd answers GET, SET and NoOp signals like the firmware side of a
MIB link. Entries live in memory, or in a pebble database with --data-dir.

Examples:
  mibd --addr 127.0.0.1:5065
  mibd --config mibd.toml --data-dir /var/lib/mibd
  mibd --read-only 0x0900 --read-only 0x0901`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			logger := observability.InitLogger("mibd", cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logger, nil)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "path to a TOML simulator config")
	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address")
	cmd.Flags().StringVar(&flags.dataDir, "data-dir", "", "persist entries in a pebble database in this directory")
	cmd.Flags().StringSliceVar(&flags.readOnly, "read-only", nil, "PSID refused by SET (repeatable)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

func loadConfig(cmd *cobra.Command, flags daemonFlags) (config.SimConfig, error) {
	cfg := config.DefaultSimConfig()
	if flags.configPath != "" {
		var err error
		cfg, err = config.LoadSimConfig(flags.configPath)
		if err != nil {
			return config.SimConfig{}, err
		}
	}

	if cmd.Flags().Changed("addr") {
		cfg.Addr = flags.addr
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = flags.dataDir
	}
	if cmd.Flags().Changed("read-only") {
		for _, s := range flags.readOnly {
			psid, err := strconv.ParseUint(s, 0, 16)
			if err != nil {
				return config.SimConfig{}, fmt.Errorf("invalid --read-only %q: %w", s, err)
			}
			cfg.ReadOnly = append(cfg.ReadOnly, uint16(psid))
		}
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	return cfg, config.ValidateSimConfig(cfg)
}

func openStore(cfg config.SimConfig) (fwsim.Store, error) {
	if cfg.DataDir == "" {
		return fwsim.NewMemoryStore(), nil
	}
	return fwsim.OpenPebbleStore(cfg.DataDir)
}

// run serves until ctx is done. The bound address is sent on ready when it is
// not nil.
func run(ctx context.Context, cfg config.SimConfig, logger zerolog.Logger, ready chan<- string) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	seed, err := cfg.SeedEntries()
	if err != nil {
		return err
	}
	if len(seed) > 0 {
		if err := store.Set(seed...); err != nil {
			return fmt.Errorf("seed store: %w", err)
		}
	}

	n, err := store.Len()
	if err != nil {
		return err
	}
	logger.Info().Int("entries", n).Str("data_dir", cfg.DataDir).Msg("store ready")

	srv, err := fwsim.Listen(cfg.Addr, fwsim.NewHandler(store, cfg.ReadOnly...), logger)
	if err != nil {
		return err
	}

	if ready != nil {
		ready <- srv.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	select {
	case err := <-errCh:
		srv.Close()
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		if err := srv.Close(); err != nil {
			return err
		}
		return <-errCh
	}
}
