package wifimib

import (
	"context"
	"errors"
	"time"

	"github.com/pior/wifimib/internal/coarsetime"
)

var ErrPoolClosed = errors.New("wifimib: pool closed")

// Pool hands out exclusive use of firmware connections.
type Pool interface {
	// Acquire returns an idle connection or dials a new one, waiting for a
	// release when the pool is full.
	Acquire(ctx context.Context) (Resource, error)

	// AcquireAllIdle takes every idle connection, for health checks.
	AcquireAllIdle() []Resource

	Close()
	Stats() PoolStats
}

// Resource is a pooled connection. Exactly one of Release, ReleaseUnused or
// Destroy must be called when done.
type Resource interface {
	Value() *Connection
	Release()
	ReleaseUnused()
	Destroy()
	CreationTime() time.Time
	IdleDuration() time.Duration
}

// PoolConfig sizes a pool and bounds how long its connections are reused.
type PoolConfig struct {
	MaxSize int32

	// Idle connections older than MaxConnLifetime, or unused for longer than
	// MaxConnIdleTime, are closed instead of being handed out. Zero means no
	// limit.
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// expired reports whether an idle connection must be closed rather than reused.
func (c PoolConfig) expired(res Resource) bool {
	if c.MaxConnLifetime > 0 && coarsetime.Since(res.CreationTime()) > c.MaxConnLifetime {
		return true
	}
	return c.MaxConnIdleTime > 0 && res.IdleDuration() > c.MaxConnIdleTime
}

// PoolFactory builds a Pool for one peer.
type PoolFactory func(constructor func(ctx context.Context) (*Connection, error), config PoolConfig) (Pool, error)
