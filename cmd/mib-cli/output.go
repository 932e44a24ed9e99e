package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/pior/wifimib/mib"
)

func formatEntry(e mib.Entry) string {
	return fmt.Sprintf("%v = %v (%v)", e.Key, e.Value, e.Value.Type())
}

// parseHex accepts an optional 0x prefix and ignores spaces and colons.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	s = strings.NewReplacer(" ", "", ":", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload: %w", err)
	}
	return b, nil
}

func set64(ctx context.Context, c *cli, key mib.Key, typ, s string) error {
	if typ == "u64" {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return err
		}
		return c.client.SetUint64(ctx, key, v)
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return err
	}
	return c.client.SetInt64(ctx, key, v)
}
