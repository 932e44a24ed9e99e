package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pior/wifimib/mib"
	"github.com/spf13/cobra"
)

func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.cfg.Timeout)
}

func parseKeys(args []string) ([]mib.Key, error) {
	keys := make([]mib.Key, len(args))
	for i, arg := range args {
		k, err := mib.ParseKey(arg)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	return keys, nil
}

func newGetCmd(c *cli) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "get <key>...",
		Short: "Read one or more entries",
		Long: `Read entries in a single round trip per peer. Values are printed in
the order of the keys.

Use --as u64 or --as i64 to read a 64-bit entry stored as 8 octets.

Examples:
  mib-cli get 0x0035 0x0064.3
  mib-cli get --as u64 0x0201`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := parseKeys(args)
			if err != nil {
				return err
			}

			ctx, cancel := c.context(cmd)
			defer cancel()

			out := cmd.OutOrStdout()
			switch as {
			case "":
				values, err := c.client.GetList(ctx, keys...)
				if err != nil {
					return err
				}
				for i, v := range values {
					fmt.Fprintln(out, formatEntry(mib.Entry{Key: keys[i], Value: v}))
				}
			case "u64":
				for _, k := range keys {
					v, err := c.client.GetUint64(ctx, k)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%v = %d (u64)\n", k, v)
				}
			case "i64":
				for _, k := range keys {
					v, err := c.client.GetInt64(ctx, k)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%v = %d (i64)\n", k, v)
				}
			default:
				return fmt.Errorf("--as must be u64 or i64, got %q", as)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "read 64-bit entries (u64 or i64)")
	return cmd
}

func newSetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <type> <value>",
		Short: "Write an entry",
		Long: `Write one entry. Type is one of bool, uint, int, octets, or u64 and
i64 for 64-bit entries stored as 8 octets. Octets are given in hex.

Examples:
  mib-cli set 0x0035 uint 1
  mib-cli set 0x0064.3 octets 0x6d79737369640a
  mib-cli set 0x0201 u64 8589934592`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := mib.ParseKey(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := c.context(cmd)
			defer cancel()

			switch typ := strings.ToLower(args[1]); typ {
			case "u64", "i64":
				err = set64(ctx, c, key, typ, args[2])
			default:
				var t mib.Type
				t, err = mib.ParseType(typ)
				if err != nil {
					return err
				}
				var v mib.Value
				v, err = mib.ParseValue(t, args[2])
				if err != nil {
					return err
				}
				err = c.client.Set(ctx, key, v)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%v set\n", key)
			return nil
		},
	}
}

func newPingCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that every configured peer answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			err := c.client.Ping(ctx)

			out := cmd.OutOrStdout()
			for _, s := range c.client.AllPoolStats() {
				fmt.Fprintf(out, "%s: conns=%d created=%d errors=%d\n",
					s.Addr, s.PoolStats.TotalConns, s.PoolStats.CreatedConns, s.PoolStats.AcquireErrors)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}

func newDecodeCmd() *cobra.Command {
	var keysOnly bool

	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a captured payload",
		Long: `Decode a hex payload as a list of entries (SET requests, GET confirms)
or, with --keys, as a list of key headers (GET requests).

Examples:
  mib-cli decode 3500000000000101000000
  mib-cli decode --keys 640003000000`,
		Args: cobra.ExactArgs(1),
		// No peer needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseHex(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if keysOnly {
				keys, err := mib.DecodeKeys(payload)
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Fprintln(out, k)
				}
				return nil
			}

			entries, err := mib.DecodeAll(payload)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintln(out, formatEntry(e))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&keysOnly, "keys", false, "decode key headers only")
	return cmd
}
