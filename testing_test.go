package wifimib

import (
	"context"
	"sync"
	"testing"

	"github.com/pior/wifimib/internal/fwsim"
	"github.com/pior/wifimib/internal/testutils"
	"github.com/pior/wifimib/mib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// simulator is an in-process firmware peer listening on a random port.
type simulator struct {
	addr   string
	store  *fwsim.MemoryStore
	server *fwsim.Server
}

func startSimulator(t testing.TB, readOnly ...uint16) string {
	return newSimulator(t, readOnly...).addr
}

func newSimulator(t testing.TB, readOnly ...uint16) *simulator {
	t.Helper()

	store := fwsim.NewMemoryStore()
	server, err := fwsim.Listen("127.0.0.1:0", fwsim.NewHandler(store, readOnly...), zerolog.Nop())
	require.NoError(t, err)

	go server.Serve()
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &simulator{
		addr:   server.Addr().String(),
		store:  store,
		server: server,
	}
}

func (s *simulator) seed(t testing.TB, entries ...mib.Entry) {
	t.Helper()
	require.NoError(t, s.store.Set(entries...))
}

func newTestClient(t testing.TB, config Config, addrs ...string) *Client {
	t.Helper()

	client, err := NewClient(NewStaticServers(addrs...), config)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

// mockConstructor hands out the given mocks, in order, then fails.
func mockConstructor(mocks ...*testutils.ConnectionMock) func(ctx context.Context) (*Connection, error) {
	var mu sync.Mutex
	next := 0
	return func(ctx context.Context) (*Connection, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(mocks) {
			return nil, &mib.ConnectionError{Op: "dial", Err: context.DeadlineExceeded}
		}
		m := mocks[next]
		next++
		return NewConnection(m), nil
	}
}
