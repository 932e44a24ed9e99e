package wifimib

import (
	"context"
	"errors"
	"time"

	"github.com/pior/wifimib/mib"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards the requests sent to one peer.
// *gobreaker.CircuitBreaker[*mib.Response] satisfies it.
type CircuitBreaker interface {
	Execute(req func() (*mib.Response, error)) (*mib.Response, error)
	State() gobreaker.State
	Counts() gobreaker.Counts
}

var _ CircuitBreaker = (*gobreaker.CircuitBreaker[*mib.Response])(nil)

// NewCircuitBreakerConfig returns a function that creates circuit breakers for peers.
// The breaker opens when at least 3 requests were made in the interval and 60%
// of them failed. State changes are logged on logger when it is not nil.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration, logger *zerolog.Logger) func(string) CircuitBreaker {
	return func(serverAddr string) CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        serverAddr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: isPeerHealthy,
		}
		if logger != nil {
			settings.OnStateChange = func(name string, from, to gobreaker.State) {
				logger.Warn().
					Str("peer", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state changed")
			}
		}
		return gobreaker.NewCircuitBreaker[*mib.Response](settings)
	}
}

// isPeerHealthy counts an outcome against the peer only when the link broke.
// Refusals, decoding errors and caller cancellations say nothing about it.
func isPeerHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	return !mib.ShouldCloseConnection(err)
}
