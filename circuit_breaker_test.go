package wifimib

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/pior/wifimib/mib"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPeerHealthy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"canceled", context.Canceled, true},
		{"wrapped canceled", fmt.Errorf("a:5065: %w", context.Canceled), true},
		{"refused", &mib.StatusError{Signal: mib.SignalSetConfirm, Status: mib.StatusReadOnly}, true},
		{"not found", mib.ErrNotFound, true},
		{"connection", &mib.ConnectionError{Op: "read", Err: io.EOF}, false},
		{"frame", &mib.FrameError{Message: "short frame header"}, false},
		{"deadline before sending", context.DeadlineExceeded, true},
		{"deadline mid exchange", &mib.ConnectionError{Op: "read", Err: context.DeadlineExceeded}, false},
		{"canceled mid exchange", &mib.ConnectionError{Op: "read", Err: context.Canceled}, true},
		{"unknown", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPeerHealthy(tt.err))
		})
	}
}

func TestCircuitBreakerOpens(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	cb := NewCircuitBreakerConfig(1, time.Minute, time.Minute, &logger)("a:5065")
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	linkDown := &mib.ConnectionError{Op: "dial", Err: io.EOF}
	for range 3 {
		_, err := cb.Execute(func() (*mib.Response, error) { return nil, linkDown })
		require.ErrorIs(t, err, linkDown)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	assert.Contains(t, logs.String(), "circuit breaker state changed")

	_, err := cb.Execute(func() (*mib.Response, error) {
		t.Fatal("request should not run while the breaker is open")
		return nil, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCircuitBreakerIgnoresRefusals(t *testing.T) {
	cb := NewCircuitBreakerConfig(1, time.Minute, time.Minute, nil)("a:5065")

	refused := &mib.StatusError{Signal: mib.SignalSetConfirm, Status: mib.StatusReadOnly}
	for range 5 {
		_, err := cb.Execute(func() (*mib.Response, error) { return nil, refused })
		require.ErrorIs(t, err, refused)
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.Equal(t, uint32(0), cb.Counts().TotalFailures)
}

func TestClientCircuitBreakerStats(t *testing.T) {
	addr := startSimulator(t)
	client := newTestClient(t, Config{
		NewCircuitBreaker: NewCircuitBreakerConfig(1, time.Minute, time.Minute, nil),
	}, addr)

	require.NoError(t, client.Ping(context.Background()))

	stats := client.AllPoolStats()
	require.Len(t, stats, 1)
	assert.Equal(t, addr, stats[0].Addr)
	assert.Equal(t, gobreaker.StateClosed, stats[0].CircuitBreakerState)
	assert.Equal(t, uint32(1), stats[0].CircuitBreakerCounts.TotalSuccesses)
}
