package wifimib

import (
	"sync/atomic"
	"time"
)

// PoolStats contains statistics about a connection pool.
//
// Struct is optimized to fit within a single cache line (64 bytes).
// Fields are ordered largest to smallest for optimal memory layout.
type PoolStats struct {
	// Lifetime counters
	AcquireCount      uint64 // Total acquire attempts
	AcquireWaitCount  uint64 // Acquires that had to wait
	CreatedConns      uint64 // Total connections created
	DestroyedConns    uint64 // Total connections destroyed
	AcquireErrors     uint64 // Failed acquire attempts
	AcquireWaitTimeNs uint64 // Total nanoseconds spent waiting

	// Current state gauges
	TotalConns  int32 // Total connections in pool (active + idle)
	IdleConns   int32 // Idle connections available
	ActiveConns int32 // Connections currently in use
	_           int32 // Padding to align to 64 bytes
}

// ClientStats contains statistics about client operations.
//
// Request counters count frames sent, key counters count the keys or entries
// they carried.
type ClientStats struct {
	GetRequests uint64 // GET frames sent
	GetKeys     uint64 // Keys requested across all GET frames
	SetRequests uint64 // SET frames sent
	SetEntries  uint64 // Entries carried across all SET frames
	Pings       uint64 // NoOp frames sent by Ping
	Refused     uint64 // Confirms with a non-success status
	Errors      uint64 // Transport, framing and decoding failures
	_           uint64 // Padding to align to 64 bytes
}

// poolStatsCollector provides internal methods for updating pool stats.
// Not exported - pools update their own stats.
type poolStatsCollector struct {
	stats PoolStats
}

func (c *poolStatsCollector) recordAcquire() {
	atomic.AddUint64(&c.stats.AcquireCount, 1)
}

func (c *poolStatsCollector) recordAcquireWait(duration time.Duration) {
	atomic.AddUint64(&c.stats.AcquireWaitCount, 1)
	atomic.AddUint64(&c.stats.AcquireWaitTimeNs, uint64(duration.Nanoseconds()))
}

func (c *poolStatsCollector) recordAcquireError() {
	atomic.AddUint64(&c.stats.AcquireErrors, 1)
}

// recordCreate counts a new connection, handed straight to the caller.
func (c *poolStatsCollector) recordCreate() {
	atomic.AddUint64(&c.stats.CreatedConns, 1)
	atomic.AddInt32(&c.stats.TotalConns, 1)
	atomic.AddInt32(&c.stats.ActiveConns, 1)
}

// recordDestroy counts the destruction of an acquired connection.
func (c *poolStatsCollector) recordDestroy() {
	atomic.AddUint64(&c.stats.DestroyedConns, 1)
	atomic.AddInt32(&c.stats.TotalConns, -1)
	atomic.AddInt32(&c.stats.ActiveConns, -1)
}

// recordIdleDestroy counts the destruction of an idle connection.
func (c *poolStatsCollector) recordIdleDestroy() {
	atomic.AddUint64(&c.stats.DestroyedConns, 1)
	atomic.AddInt32(&c.stats.TotalConns, -1)
	atomic.AddInt32(&c.stats.IdleConns, -1)
}

func (c *poolStatsCollector) recordAcquireFromIdle() {
	atomic.AddInt32(&c.stats.IdleConns, -1)
	atomic.AddInt32(&c.stats.ActiveConns, 1)
}

func (c *poolStatsCollector) recordRelease() {
	atomic.AddInt32(&c.stats.IdleConns, 1)
	atomic.AddInt32(&c.stats.ActiveConns, -1)
}

func (c *poolStatsCollector) snapshot() PoolStats {
	return PoolStats{
		TotalConns:        atomic.LoadInt32(&c.stats.TotalConns),
		IdleConns:         atomic.LoadInt32(&c.stats.IdleConns),
		ActiveConns:       atomic.LoadInt32(&c.stats.ActiveConns),
		AcquireCount:      atomic.LoadUint64(&c.stats.AcquireCount),
		AcquireWaitCount:  atomic.LoadUint64(&c.stats.AcquireWaitCount),
		CreatedConns:      atomic.LoadUint64(&c.stats.CreatedConns),
		DestroyedConns:    atomic.LoadUint64(&c.stats.DestroyedConns),
		AcquireErrors:     atomic.LoadUint64(&c.stats.AcquireErrors),
		AcquireWaitTimeNs: atomic.LoadUint64(&c.stats.AcquireWaitTimeNs),
	}
}

// clientStatsCollector provides internal methods for updating client stats.
// Not exported - client updates its own stats.
type clientStatsCollector struct {
	stats ClientStats
}

func (c *clientStatsCollector) recordGet(keys int) {
	atomic.AddUint64(&c.stats.GetRequests, 1)
	atomic.AddUint64(&c.stats.GetKeys, uint64(keys))
}

func (c *clientStatsCollector) recordSet(entries int) {
	atomic.AddUint64(&c.stats.SetRequests, 1)
	atomic.AddUint64(&c.stats.SetEntries, uint64(entries))
}

func (c *clientStatsCollector) recordPing() {
	atomic.AddUint64(&c.stats.Pings, 1)
}

func (c *clientStatsCollector) recordRefused() {
	atomic.AddUint64(&c.stats.Refused, 1)
}

func (c *clientStatsCollector) recordError() {
	atomic.AddUint64(&c.stats.Errors, 1)
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		GetRequests: atomic.LoadUint64(&c.stats.GetRequests),
		GetKeys:     atomic.LoadUint64(&c.stats.GetKeys),
		SetRequests: atomic.LoadUint64(&c.stats.SetRequests),
		SetEntries:  atomic.LoadUint64(&c.stats.SetEntries),
		Pings:       atomic.LoadUint64(&c.stats.Pings),
		Refused:     atomic.LoadUint64(&c.stats.Refused),
		Errors:      atomic.LoadUint64(&c.stats.Errors),
	}
}
