package wifimib

import (
	"context"
	"sync"
	"time"

	"github.com/pior/wifimib/internal/coarsetime"
)

// NewChannelPool creates a connection pool built on two channels: a semaphore
// with one slot per open connection, and a queue of idle connections.
// This is the default pool implementation.
func NewChannelPool(constructor func(ctx context.Context) (*Connection, error), config PoolConfig) (Pool, error) {
	return &channelPool{
		constructor: constructor,
		config:      config,
		slots:       make(chan struct{}, config.MaxSize),
		idle:        make(chan *channelConn, config.MaxSize),
		done:        make(chan struct{}),
	}, nil
}

type channelConn struct {
	conn     *Connection
	pool     *channelPool
	created  time.Time
	lastUsed time.Time
}

func (c *channelConn) Value() *Connection { return c.conn }

func (c *channelConn) Release() {
	c.lastUsed = coarsetime.Now()
	c.pool.put(c)
}

// ReleaseUnused returns the connection without counting it as used, so a
// health check does not reset its idle time.
func (c *channelConn) ReleaseUnused() {
	c.pool.put(c)
}

func (c *channelConn) Destroy() {
	c.pool.discard(c)
}

func (c *channelConn) CreationTime() time.Time     { return c.created }
func (c *channelConn) IdleDuration() time.Duration { return coarsetime.Since(c.lastUsed) }

type channelPool struct {
	constructor func(ctx context.Context) (*Connection, error)
	config      PoolConfig

	// slots holds a token for every open connection, idle or acquired.
	// Freeing a token wakes one acquirer waiting for room to dial.
	slots chan struct{}
	idle  chan *channelConn
	done  chan struct{}

	mu     sync.Mutex // serializes put and Close
	closed bool

	stats poolStatsCollector
}

// Acquire prefers an idle connection, then dials when a slot is free, then
// waits for whichever comes first. Idle connections past the configured
// lifetime or idle time are closed on the way.
func (p *channelPool) Acquire(ctx context.Context) (Resource, error) {
	p.stats.recordAcquire()

	for {
		if p.isClosed() {
			p.stats.recordAcquireError()
			return nil, ErrPoolClosed
		}

		select {
		case c := <-p.idle:
			if p.reuse(c) {
				return c, nil
			}
			continue
		default:
		}

		select {
		case p.slots <- struct{}{}:
			return p.dial(ctx)
		default:
		}

		waitStart := time.Now()
		select {
		case c := <-p.idle:
			p.stats.recordAcquireWait(time.Since(waitStart))
			if p.reuse(c) {
				return c, nil
			}
		case p.slots <- struct{}{}:
			p.stats.recordAcquireWait(time.Since(waitStart))
			if p.isClosed() {
				<-p.slots
				continue
			}
			return p.dial(ctx)
		case <-p.done:
		case <-ctx.Done():
			p.stats.recordAcquireError()
			return nil, ctx.Err()
		}
	}
}

func (p *channelPool) isClosed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// reuse takes c out of the idle queue, closing it if it has expired.
func (p *channelPool) reuse(c *channelConn) bool {
	p.stats.recordAcquireFromIdle()
	if p.config.expired(c) {
		p.discard(c)
		return false
	}
	return true
}

// dial opens a connection in the slot the caller holds.
func (p *channelPool) dial(ctx context.Context) (Resource, error) {
	conn, err := p.constructor(ctx)
	if err != nil {
		<-p.slots
		p.stats.recordAcquireError()
		return nil, err
	}
	p.stats.recordCreate()

	now := coarsetime.Now()
	return &channelConn{conn: conn, pool: p, created: now, lastUsed: now}, nil
}

// put queues an acquired connection as idle. The queue has room for every
// slot, so the send never blocks.
func (p *channelPool) put(c *channelConn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.discard(c)
		return
	}
	p.stats.recordRelease()
	p.idle <- c
}

// discard closes an acquired connection and frees its slot.
func (p *channelPool) discard(c *channelConn) {
	_ = c.conn.Close()
	<-p.slots
	p.stats.recordDestroy()
}

func (p *channelPool) AcquireAllIdle() []Resource {
	var taken []Resource
	for {
		select {
		case c := <-p.idle:
			p.stats.recordAcquireFromIdle()
			taken = append(taken, c)
		default:
			return taken
		}
	}
}

// Close closes the idle connections. Acquired ones are closed when released.
func (p *channelPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.done)

	for {
		select {
		case c := <-p.idle:
			_ = c.conn.Close()
			<-p.slots
			p.stats.recordIdleDestroy()
		default:
			return
		}
	}
}

// Stats returns a snapshot of pool statistics.
func (p *channelPool) Stats() PoolStats {
	return p.stats.snapshot()
}
