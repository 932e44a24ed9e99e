package wifimib

import (
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestStatsFitCacheLine(t *testing.T) {
	assert.Equal(t, uintptr(64), unsafe.Sizeof(PoolStats{}))
	assert.Equal(t, uintptr(64), unsafe.Sizeof(ClientStats{}))
}

func TestPoolStatsCollector(t *testing.T) {
	var c poolStatsCollector

	c.recordAcquire()
	c.recordCreate()
	c.recordRelease()
	c.recordAcquire()
	c.recordAcquireFromIdle()
	c.recordAcquireWait(3 * time.Millisecond)
	c.recordDestroy()
	c.recordAcquireError()

	s := c.snapshot()
	assert.Equal(t, uint64(2), s.AcquireCount)
	assert.Equal(t, uint64(1), s.AcquireWaitCount)
	assert.Equal(t, uint64(3*time.Millisecond), s.AcquireWaitTimeNs)
	assert.Equal(t, uint64(1), s.CreatedConns)
	assert.Equal(t, uint64(1), s.DestroyedConns)
	assert.Equal(t, uint64(1), s.AcquireErrors)
	assert.Equal(t, int32(0), s.TotalConns)
	assert.Equal(t, int32(0), s.IdleConns)
	assert.Equal(t, int32(0), s.ActiveConns)
}

func TestPoolStatsCollectorIdleDestroy(t *testing.T) {
	var c poolStatsCollector

	c.recordCreate()
	c.recordRelease()
	c.recordIdleDestroy()

	s := c.snapshot()
	assert.Equal(t, int32(0), s.TotalConns)
	assert.Equal(t, int32(0), s.IdleConns)
	assert.Equal(t, int32(0), s.ActiveConns)
}

func TestClientStatsCollector(t *testing.T) {
	var c clientStatsCollector

	c.recordGet(3)
	c.recordGet(2)
	c.recordSet(4)
	c.recordPing()
	c.recordRefused()
	c.recordError()

	assert.Equal(t, ClientStats{
		GetRequests: 2,
		GetKeys:     5,
		SetRequests: 1,
		SetEntries:  4,
		Pings:       1,
		Refused:     1,
		Errors:      1,
	}, c.snapshot())
}
