package testutils

import (
	"bytes"
	"net"
	"sync/atomic"
	"time"

	"github.com/pior/wifimib/mib"
)

// ConnectionMock is a net.Conn that replays prepared confirm frames and
// records the request frames written to it.
type ConnectionMock struct {
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
	closed   atomic.Bool
}

// NewConnectionMock creates a mock connection that will answer with responses,
// in order. Tags must match the ones the client assigns (1, 2, ...).
func NewConnectionMock(responses ...*mib.Response) *ConnectionMock {
	readBuf := &bytes.Buffer{}
	for _, resp := range responses {
		if err := mib.WriteResponse(readBuf, resp); err != nil {
			panic(err)
		}
	}
	return &ConnectionMock{
		readBuf:  readBuf,
		writeBuf: &bytes.Buffer{},
	}
}

// NewRawConnectionMock creates a mock connection that will return raw bytes.
func NewRawConnectionMock(raw []byte) *ConnectionMock {
	return &ConnectionMock{
		readBuf:  bytes.NewBuffer(raw),
		writeBuf: &bytes.Buffer{},
	}
}

func (m *ConnectionMock) Read(b []byte) (n int, err error) {
	return m.readBuf.Read(b)
}

func (m *ConnectionMock) Write(b []byte) (n int, err error) {
	if m.closed.Load() {
		return 0, net.ErrClosed
	}
	return m.writeBuf.Write(b)
}

func (m *ConnectionMock) Close() error {
	m.closed.Store(true)
	return nil
}

func (m *ConnectionMock) IsClosed() bool {
	return m.closed.Load()
}

func (m *ConnectionMock) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
}

func (m *ConnectionMock) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5065}
}

func (m *ConnectionMock) SetDeadline(t time.Time) error      { return nil }
func (m *ConnectionMock) SetReadDeadline(t time.Time) error  { return nil }
func (m *ConnectionMock) SetWriteDeadline(t time.Time) error { return nil }

// WrittenRequests decodes the request frames written so far.
func (m *ConnectionMock) WrittenRequests() ([]*mib.Request, error) {
	r := bytes.NewReader(m.writeBuf.Bytes())
	var reqs []*mib.Request
	for r.Len() > 0 {
		req, err := mib.ReadRequest(r)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
