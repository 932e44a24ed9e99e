package wifimib

import (
	"context"

	"github.com/pior/wifimib/mib"
	"github.com/sony/gobreaker/v2"
)

// NewServerPool creates the pool and circuit breaker for one peer.
// config must have its defaults applied.
func NewServerPool(addr string, config Config) (*ServerPool, error) {
	constructor := config.constructor
	if constructor == nil {
		constructor = dialConnection(config.Dialer, addr)
	}

	pool, err := config.Pool(constructor, PoolConfig{
		MaxSize:         config.MaxSize,
		MaxConnLifetime: config.MaxConnLifetime,
		MaxConnIdleTime: config.MaxConnIdleTime,
	})
	if err != nil {
		return nil, err
	}

	sp := &ServerPool{
		addr: addr,
		pool: pool,
	}
	if config.NewCircuitBreaker != nil {
		sp.circuitBreaker = config.NewCircuitBreaker(addr)
	}
	return sp, nil
}

// ServerPool wraps a pool, a circuit breaker with its server address.
type ServerPool struct {
	addr           string
	pool           Pool
	circuitBreaker CircuitBreaker // nil if not configured
}

func (sp *ServerPool) Address() string {
	return sp.addr
}

// ServerPoolStats contains stats for a single server pool
type ServerPoolStats struct {
	Addr                 string
	PoolStats            PoolStats
	CircuitBreakerState  gobreaker.State
	CircuitBreakerCounts gobreaker.Counts
}

func (sp *ServerPool) Stats() ServerPoolStats {
	stats := ServerPoolStats{
		Addr:      sp.addr,
		PoolStats: sp.pool.Stats(),
	}
	if sp.circuitBreaker != nil {
		stats.CircuitBreakerState = sp.circuitBreaker.State()
		stats.CircuitBreakerCounts = sp.circuitBreaker.Counts()
	}
	return stats
}

// Execute executes a single request-response cycle with proper connection management.
// It handles acquiring a connection, sending the request, reading the response, and
// releasing/destroying the connection based on error conditions.
// The request is wrapped with the server's circuit breaker.
//
// A confirm with a non-success status is returned as a response, not an error.
func (sp *ServerPool) Execute(ctx context.Context, req *mib.Request) (*mib.Response, error) {
	if sp.circuitBreaker == nil {
		return sp.execRequestDirect(ctx, req)
	}

	return sp.circuitBreaker.Execute(func() (*mib.Response, error) {
		return sp.execRequestDirect(ctx, req)
	})
}

// execRequestDirect performs the actual request execution without circuit breaker.
func (sp *ServerPool) execRequestDirect(ctx context.Context, req *mib.Request) (*mib.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resource, err := sp.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	conn := resource.Value()

	resp, err := conn.Send(ctx, req)
	if err != nil {
		if mib.ShouldCloseConnection(err) {
			resource.Destroy()
		} else {
			resource.Release()
		}
		return nil, err
	}

	resource.Release()
	return resp, nil
}

func (sp *ServerPool) Close() {
	sp.pool.Close()
}
