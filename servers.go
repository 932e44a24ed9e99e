package wifimib

import (
	"errors"

	"github.com/pior/wifimib/internal/jumphash"
	"github.com/pior/wifimib/mib"
	"github.com/zeebo/xxh3"
)

var ErrNoServers = errors.New("wifimib: no servers available")

// Servers provides the current list of firmware peer addresses.
type Servers interface {
	List() []string
}

// StaticServers is a fixed list of peers.
type StaticServers struct {
	addrs []string
}

func NewStaticServers(addrs ...string) *StaticServers {
	return &StaticServers{addrs: addrs}
}

func (s *StaticServers) List() []string {
	return s.addrs
}

// SelectServerFunc picks the peer that owns key.
type SelectServerFunc func(key mib.Key, servers []string) (string, error)

// DefaultSelectServer hashes the PSID of key with xxh3 and places it with jump
// consistent hashing. Every index of a PSID lands on the same peer, so a table
// is always read from one place.
func DefaultSelectServer(key mib.Key, servers []string) (string, error) {
	switch len(servers) {
	case 0:
		return "", ErrNoServers
	case 1:
		return servers[0], nil
	}

	var buf [2]byte
	hash := xxh3.Hash(mib.AppendUint16(buf[:0], key.PSID))
	return servers[jumphash.Hash(hash, len(servers))], nil
}
