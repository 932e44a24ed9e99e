// Package coarsetime provides a clock that is refreshed every 50ms by a
// background goroutine. Reading it is much cheaper than time.Now, and its
// resolution is enough for pool idle and lifetime accounting.
package coarsetime

import (
	"sync/atomic"
	"time"
)

const tick = 50 * time.Millisecond

var now atomic.Pointer[time.Time]

func init() {
	store(time.Now())

	ticker := time.NewTicker(tick)
	go func() {
		for t := range ticker.C {
			store(t)
		}
	}()
}

func store(t time.Time) {
	now.Store(&t)
}

// Now returns the time of the last tick.
func Now() time.Time {
	return *now.Load()
}

// Since returns the coarse time elapsed since t.
func Since(t time.Time) time.Duration {
	return Now().Sub(t)
}
