package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pior/wifimib"
	"github.com/pior/wifimib/internal/config"
	"github.com/pior/wifimib/mib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServesSeededEntries(t *testing.T) {
	for _, dataDir := range []string{"", t.TempDir()} {
		name := "memory"
		if dataDir != "" {
			name = "pebble"
		}
		t.Run(name, func(t *testing.T) {
			cfg := config.DefaultSimConfig()
			cfg.Addr = "127.0.0.1:0"
			cfg.DataDir = dataDir
			cfg.Entries = []config.EntryConfig{{Key: "0x0035", Type: "uint", Value: "3"}}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			done := make(chan error, 1)
			ready := make(chan string, 1)
			go func() { done <- run(ctx, cfg, zerolog.Nop(), ready) }()

			var addr string
			select {
			case addr = <-ready:
			case err := <-done:
				t.Fatalf("run exited early: %v", err)
			}

			client, err := wifimib.NewClient(wifimib.NewStaticServers(addr), wifimib.Config{})
			require.NoError(t, err)
			defer client.Close()

			reqCtx, reqCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer reqCancel()

			v, err := client.GetUint(reqCtx, mib.NewKey(0x0035))
			require.NoError(t, err)
			assert.Equal(t, uint32(3), v)

			cancel()
			require.NoError(t, <-done)
		})
	}
}

func TestLoadConfigFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--addr", "127.0.0.1:6000", "--read-only", "0x0900,17"}))

	cfg, err := loadConfig(cmd, daemonFlags{addr: "127.0.0.1:6000", readOnly: []string{"0x0900", "17"}})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6000", cfg.Addr)
	assert.Equal(t, []uint16{0x0900, 17}, cfg.ReadOnly)
}

func TestLoadConfigBadReadOnly(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--read-only", "x"}))

	_, err := loadConfig(cmd, daemonFlags{readOnly: []string{"x"}})
	assert.ErrorContains(t, err, "--read-only")
}

func TestRootCmdErrorNotPrinted(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--read-only", "x"})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "--read-only")
	assert.NotContains(t, out.String(), "Error:")
}
