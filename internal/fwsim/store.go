// Package fwsim simulates the firmware side of the MIB link: it stores
// entries and answers GET, SET and NoOp requests over TCP.
package fwsim

import (
	"sync"

	"github.com/google/btree"
	"github.com/pior/wifimib/mib"
)

// Store holds the MIB of a simulated firmware.
// Implementations are safe for concurrent use.
type Store interface {
	Get(key mib.Key) (mib.Value, bool, error)

	// Set stores all entries or none.
	Set(entries ...mib.Entry) error

	// Ascend calls fn for every entry in key order until fn returns false.
	Ascend(fn func(mib.Entry) bool) error

	Len() (int, error)
	Close() error
}

// keyLess orders keys by PSID, then index0, then index1.
func keyLess(a, b mib.Key) bool {
	if a.PSID != b.PSID {
		return a.PSID < b.PSID
	}
	if a.Index[0] != b.Index[0] {
		return a.Index[0] < b.Index[0]
	}
	return a.Index[1] < b.Index[1]
}

const btreeDegree = 16

// MemoryStore keeps entries in a B-tree.
type MemoryStore struct {
	tree *btree.BTreeG[mib.Entry]
	lock sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tree: btree.NewG(btreeDegree, func(a, b mib.Entry) bool {
			return keyLess(a.Key, b.Key)
		}),
	}
}

func (s *MemoryStore) Get(key mib.Key) (mib.Value, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	e, ok := s.tree.Get(mib.Entry{Key: key})
	return e.Value, ok, nil
}

func (s *MemoryStore) Set(entries ...mib.Entry) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, e := range entries {
		s.tree.ReplaceOrInsert(e)
	}
	return nil
}

func (s *MemoryStore) Ascend(fn func(mib.Entry) bool) error {
	s.lock.RLock()
	defer s.lock.RUnlock()

	s.tree.Ascend(func(e mib.Entry) bool {
		return fn(e)
	})
	return nil
}

func (s *MemoryStore) Len() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.tree.Len(), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
