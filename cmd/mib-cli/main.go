package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pior/wifimib"
	"github.com/pior/wifimib/internal/config"
	"github.com/pior/wifimib/internal/observability"
	"github.com/spf13/cobra"
)

// cli holds the state shared by the subcommands of one invocation.
type cli struct {
	configPath string
	servers    []string
	timeout    time.Duration
	logLevel   string

	cfg    config.ClientConfig
	client *wifimib.Client
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "mib-cli",
		Short: "Read and write MIB entries on Wi-Fi firmware",
		Long: `A command-line tool to get and set MIB parameters on firmware peers
speaking the MIB signal protocol, and to decode captured payloads.

Keys are written psid[.index0[.index1]], for example 0x0035 or 0x0064.3.

Examples:
  mib-cli get 0x0035 0x0064.3
  mib-cli set 0x0035 uint 1
  mib-cli --server 10.0.0.2:5065 ping
  mib-cli decode 3500000000000101000000`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.connect,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.client != nil {
				c.client.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a TOML client config")
	rootCmd.PersistentFlags().StringSliceVarP(&c.servers, "server", "s", nil, "firmware peer address (repeatable)")
	rootCmd.PersistentFlags().DurationVarP(&c.timeout, "timeout", "t", 0, "per-command timeout")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newGetCmd(c),
		newSetCmd(c),
		newPingCmd(c),
		newDecodeCmd(),
	)
	return rootCmd
}

// connect loads the configuration, applies flag overrides and creates the client.
func (c *cli) connect(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultClientConfig()
	if c.configPath != "" {
		var err error
		cfg, err = config.LoadClientConfig(c.configPath)
		if err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Servers = c.servers
	}
	if flags.Changed("timeout") {
		cfg.Timeout = c.timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if err := config.ValidateClientConfig(cfg); err != nil {
		return err
	}

	logger := observability.InitLogger("mib-cli", cfg.LogLevel)

	client, err := wifimib.NewClient(wifimib.NewStaticServers(cfg.Servers...), cfg.ClientOptions(&logger))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	c.cfg = cfg
	c.client = client
	return nil
}
