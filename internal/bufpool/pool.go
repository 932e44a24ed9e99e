// Package bufpool recycles the byte buffers used to assemble frames.
package bufpool

import (
	"bytes"
	"sync"
)

// Pool is a sync.Pool of *bytes.Buffer that refuses to keep buffers which
// grew past maxCap, so one large frame does not pin memory forever.
type Pool struct {
	pool   sync.Pool
	maxCap int
}

func New(initialSize, maxCap int) *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, initialSize))
			},
		},
		maxCap: maxCap,
	}
}

func (p *Pool) Get() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

func (p *Pool) Put(buf *bytes.Buffer) {
	if buf.Cap() > p.maxCap {
		return
	}
	buf.Reset()
	p.pool.Put(buf)
}
