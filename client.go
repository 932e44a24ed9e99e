package wifimib

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pior/wifimib/mib"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrTypeMismatch is returned by the typed getters when the firmware holds a
// value of another type.
var ErrTypeMismatch = errors.New("wifimib: value type mismatch")

// Config holds configuration for the client connection pools.
type Config struct {
	// MaxSize is the maximum number of connections per peer.
	// Default: 4.
	MaxSize int32

	// MaxConnLifetime is the maximum duration a connection can be reused.
	// Expired connections are closed on acquire and by health checks.
	// Zero means no limit.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime is the maximum duration a connection can be idle before being closed.
	// Expired connections are closed on acquire and by health checks.
	// Zero means no limit.
	MaxConnIdleTime time.Duration

	// HealthCheckInterval is how often idle connections are checked with a NoOp request.
	// Zero disables health checks.
	HealthCheckInterval time.Duration

	// Dialer is the net.Dialer used to create new connections.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// Pool is the connection pool factory function.
	// If nil, uses NewChannelPool.
	Pool PoolFactory

	// SelectServer picks which peer owns a key.
	// If nil, uses DefaultSelectServer.
	SelectServer SelectServerFunc

	// NewCircuitBreaker creates a circuit breaker for a peer.
	// Called once per peer address when its pool is created.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(serverAddr string) CircuitBreaker

	// Logger receives connection lifecycle events.
	// If nil, nothing is logged.
	Logger *zerolog.Logger

	// for testing purposes only
	constructor func(ctx context.Context) (*Connection, error)
}

const (
	defaultMaxSize            = 4
	defaultHealthCheckTimeout = 5 * time.Second
)

func (c Config) withDefaults() Config {
	if c.MaxSize <= 0 {
		c.MaxSize = defaultMaxSize
	}
	if c.Dialer == nil {
		c.Dialer = &net.Dialer{}
	}
	if c.Pool == nil {
		c.Pool = NewChannelPool
	}
	if c.SelectServer == nil {
		c.SelectServer = DefaultSelectServer
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	return c
}

// Client reads and writes MIB entries on one or more firmware peers.
// It is safe for concurrent use.
type Client struct {
	servers Servers
	config  Config

	mu    sync.RWMutex
	pools map[string]*ServerPool

	stopHealthCheck chan struct{}
	closeOnce       sync.Once

	stats clientStatsCollector
}

// NewClient creates a new client for the given peers.
// For a single peer, use: NewClient(NewStaticServers("host:port"), config)
func NewClient(servers Servers, config Config) (*Client, error) {
	if len(servers.List()) == 0 {
		return nil, ErrNoServers
	}

	client := &Client{
		servers:         servers,
		config:          config.withDefaults(),
		pools:           make(map[string]*ServerPool),
		stopHealthCheck: make(chan struct{}),
	}

	if client.config.HealthCheckInterval > 0 {
		go client.healthCheckLoop()
	}

	return client, nil
}

// Close stops the health checks and closes all connections in all pools.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.stopHealthCheck)

		c.mu.Lock()
		defer c.mu.Unlock()

		for _, sp := range c.pools {
			sp.Close()
		}
	})
}

// getOrCreatePool gets or creates a pool for the given server address.
func (c *Client) getOrCreatePool(addr string) (*ServerPool, error) {
	// Fast path: read lock
	c.mu.RLock()
	sp, exists := c.pools[addr]
	c.mu.RUnlock()
	if exists {
		return sp, nil
	}

	// Slow path: write lock and create
	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if sp, exists := c.pools[addr]; exists {
		return sp, nil
	}

	sp, err := NewServerPool(addr, c.config)
	if err != nil {
		return nil, err
	}
	c.pools[addr] = sp
	return sp, nil
}

// execute sends req to addr and converts a refusal into a *mib.StatusError.
func (c *Client) execute(ctx context.Context, addr string, req *mib.Request) (*mib.Response, error) {
	sp, err := c.getOrCreatePool(addr)
	if err != nil {
		c.stats.recordError()
		return nil, err
	}

	resp, err := sp.Execute(ctx, req)
	if err != nil {
		c.stats.recordError()
		return nil, fmt.Errorf("%s: %w", addr, err)
	}

	if err := resp.Err(); err != nil {
		c.stats.recordRefused()
		return nil, fmt.Errorf("%s: %w", addr, err)
	}
	return resp, nil
}

// peerBatch is the part of a multi-key operation sent to one peer.
// positions maps each key of the batch back to the caller's slice.
type peerBatch struct {
	keys      []mib.Key
	entries   []mib.Entry
	positions []int
}

func (c *Client) groupKeys(keys []mib.Key) (map[string]*peerBatch, error) {
	servers := c.servers.List()
	batches := make(map[string]*peerBatch)
	for i, k := range keys {
		addr, err := c.config.SelectServer(k, servers)
		if err != nil {
			return nil, err
		}
		b := batches[addr]
		if b == nil {
			b = &peerBatch{}
			batches[addr] = b
		}
		b.keys = append(b.keys, k)
		b.positions = append(b.positions, i)
	}
	return batches, nil
}

// Get reads a single entry.
// A key the firmware does not hold fails with an error matching mib.ErrNotFound.
func (c *Client) Get(ctx context.Context, key mib.Key) (mib.Value, error) {
	values, err := c.GetList(ctx, key)
	if err != nil {
		return mib.Value{}, err
	}
	return values[0], nil
}

// GetList reads several entries and returns their values in the order of keys.
//
// Keys are grouped by peer and each peer receives a single GET request. The
// requests run concurrently; the first failure cancels the others.
func (c *Client) GetList(ctx context.Context, keys ...mib.Key) ([]mib.Value, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	batches, err := c.groupKeys(keys)
	if err != nil {
		c.stats.recordError()
		return nil, err
	}

	values := make([]mib.Value, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for addr, b := range batches {
		g.Go(func() error {
			c.stats.recordGet(len(b.keys))

			resp, err := c.execute(gctx, addr, mib.NewGetRequest(b.keys...))
			if err != nil {
				return err
			}

			got, err := resp.Values(b.keys)
			if err != nil {
				if !errors.Is(err, mib.ErrNotFound) {
					c.stats.recordError()
				}
				return fmt.Errorf("%s: %w", addr, err)
			}

			// Each batch writes disjoint positions
			for i, v := range got {
				values[b.positions[i]] = v
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

// Set writes a single entry.
func (c *Client) Set(ctx context.Context, key mib.Key, value mib.Value) error {
	return c.SetList(ctx, mib.Entry{Key: key, Value: value})
}

// SetList writes several entries, one SET request per peer.
//
// Each peer applies its share atomically, but there is no atomicity across
// peers: when one refuses, the others may already have applied theirs.
// A refusal is reported as a *mib.StatusError listing the rejected keys.
func (c *Client) SetList(ctx context.Context, entries ...mib.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	keys := make([]mib.Key, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	batches, err := c.groupKeys(keys)
	if err != nil {
		c.stats.recordError()
		return err
	}

	// Encode everything before sending anything
	requests := make(map[string]*mib.Request, len(batches))
	for addr, b := range batches {
		for _, pos := range b.positions {
			b.entries = append(b.entries, entries[pos])
		}
		req, err := mib.NewSetRequest(b.entries...)
		if err != nil {
			c.stats.recordError()
			return err
		}
		requests[addr] = req
	}

	g, gctx := errgroup.WithContext(ctx)
	for addr, req := range requests {
		g.Go(func() error {
			c.stats.recordSet(len(batches[addr].entries))
			_, err := c.execute(gctx, addr, req)
			return err
		})
	}
	return g.Wait()
}

func (c *Client) getTyped(ctx context.Context, key mib.Key, typ mib.Type) (mib.Value, error) {
	v, err := c.Get(ctx, key)
	if err != nil {
		return mib.Value{}, err
	}
	if v.Type() != typ {
		return mib.Value{}, fmt.Errorf("%w: %v holds %v, want %v", ErrTypeMismatch, key, v.Type(), typ)
	}
	return v, nil
}

// GetUint reads an unsigned 32-bit entry.
func (c *Client) GetUint(ctx context.Context, key mib.Key) (uint32, error) {
	v, err := c.getTyped(ctx, key, mib.TypeUint)
	return v.Uint(), err
}

// GetInt reads a signed 32-bit entry.
func (c *Client) GetInt(ctx context.Context, key mib.Key) (int32, error) {
	v, err := c.getTyped(ctx, key, mib.TypeInt)
	return v.Int(), err
}

// GetBool reads a boolean entry.
func (c *Client) GetBool(ctx context.Context, key mib.Key) (bool, error) {
	v, err := c.getTyped(ctx, key, mib.TypeBool)
	return v.Bool(), err
}

// GetOctets reads an octet string entry.
func (c *Client) GetOctets(ctx context.Context, key mib.Key) ([]byte, error) {
	v, err := c.getTyped(ctx, key, mib.TypeOctets)
	return v.Octets(), err
}

func (c *Client) get64(ctx context.Context, key mib.Key) ([]byte, error) {
	b, err := c.GetOctets(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(b) != 8 {
		return nil, fmt.Errorf("%w: %v holds %d octets, want 8", ErrTypeMismatch, key, len(b))
	}
	return b, nil
}

// GetUint64 reads a 64-bit counter. These are stored as 8-byte octet strings.
func (c *Client) GetUint64(ctx context.Context, key mib.Key) (uint64, error) {
	b, err := c.get64(ctx, key)
	if err != nil {
		return 0, err
	}
	v, _, err := mib.DecodeUint64(b)
	return v, err
}

// GetInt64 reads a signed 64-bit entry stored as an 8-byte octet string.
func (c *Client) GetInt64(ctx context.Context, key mib.Key) (int64, error) {
	b, err := c.get64(ctx, key)
	if err != nil {
		return 0, err
	}
	v, _, err := mib.DecodeInt64(b)
	return v, err
}

// SetUint64 writes v as an 8-byte octet string.
func (c *Client) SetUint64(ctx context.Context, key mib.Key, v uint64) error {
	return c.Set(ctx, key, mib.OctetsValue(mib.AppendUint64(nil, v)))
}

// SetInt64 writes v as an 8-byte octet string.
func (c *Client) SetInt64(ctx context.Context, key mib.Key, v int64) error {
	return c.Set(ctx, key, mib.OctetsValue(mib.AppendInt64(nil, v)))
}

// Ping sends a NoOp request to every peer and returns the joined failures.
func (c *Client) Ping(ctx context.Context) error {
	var errs []error
	for _, addr := range c.servers.List() {
		c.stats.recordPing()
		if _, err := c.execute(ctx, addr, mib.NewNoOpRequest()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stats returns a snapshot of client statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// AllPoolStats returns stats for all server pools
func (c *Client) AllPoolStats() []ServerPoolStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make([]ServerPoolStats, 0, len(c.pools))
	for _, sp := range c.pools {
		stats = append(stats, sp.Stats())
	}
	return stats
}

// healthCheckLoop periodically checks idle connections for health and lifecycle limits.
func (c *Client) healthCheckLoop() {
	ticker := time.NewTicker(c.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopHealthCheck:
			return
		case <-ticker.C:
			c.checkAllPools()
		}
	}
}

// checkAllPools runs health checks on all existing pools
func (c *Client) checkAllPools() {
	c.mu.RLock()
	pools := make([]*ServerPool, 0, len(c.pools))
	for _, sp := range c.pools {
		pools = append(pools, sp)
	}
	c.mu.RUnlock()

	for _, sp := range pools {
		c.checkPoolConnections(sp)
	}
}

func (c *Client) healthCheckTimeout() time.Duration {
	if c.config.HealthCheckInterval > 0 {
		return c.config.HealthCheckInterval
	}
	return defaultHealthCheckTimeout
}

// checkPoolConnections checks all idle connections in a pool and destroys those that are stale or unhealthy.
func (c *Client) checkPoolConnections(sp *ServerPool) {
	now := time.Now()
	logger := c.config.Logger

	for _, res := range sp.pool.AcquireAllIdle() {
		if c.config.MaxConnLifetime > 0 && now.Sub(res.CreationTime()) > c.config.MaxConnLifetime {
			logger.Debug().Str("peer", sp.addr).Msg("closing connection past max lifetime")
			res.Destroy()
			continue
		}

		if c.config.MaxConnIdleTime > 0 && res.IdleDuration() > c.config.MaxConnIdleTime {
			logger.Debug().Str("peer", sp.addr).Msg("closing idle connection")
			res.Destroy()
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.healthCheckTimeout())
		err := res.Value().Ping(ctx)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Str("peer", sp.addr).Msg("health check failed")
			res.Destroy()
			continue
		}

		res.ReleaseUnused()
	}
}
