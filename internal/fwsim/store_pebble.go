package fwsim

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/pior/wifimib/mib"
)

// PebbleStore persists entries in a pebble database.
//
// Keys are stored big-endian so that pebble's byte order matches key order.
// Values are stored in their wire encoding.
type PebbleStore struct {
	db *pebble.DB
}

var _ Store = (*PebbleStore)(nil)

func OpenPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}
	return &PebbleStore{db: db}, nil
}

func storeKey(k mib.Key) []byte {
	b := make([]byte, 0, mib.KeyHeaderSize)
	b = binary.BigEndian.AppendUint16(b, k.PSID)
	b = binary.BigEndian.AppendUint16(b, k.Index[0])
	return binary.BigEndian.AppendUint16(b, k.Index[1])
}

func parseStoreKey(b []byte) (mib.Key, error) {
	if len(b) != mib.KeyHeaderSize {
		return mib.Key{}, fmt.Errorf("stored key has %d bytes", len(b))
	}
	return mib.NewKey(
		binary.BigEndian.Uint16(b[0:]),
		binary.BigEndian.Uint16(b[2:]),
		binary.BigEndian.Uint16(b[4:]),
	), nil
}

func (s *PebbleStore) Get(key mib.Key) (mib.Value, bool, error) {
	data, closer, err := s.db.Get(storeKey(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return mib.Value{}, false, nil
	}
	if err != nil {
		return mib.Value{}, false, err
	}
	defer closer.Close()

	// DecodeValue copies octets, data is only valid until closer.Close
	v, _, err := mib.DecodeValue(data)
	if err != nil {
		return mib.Value{}, false, fmt.Errorf("stored value of %v: %w", key, err)
	}
	return v, true, nil
}

func (s *PebbleStore) Set(entries ...mib.Entry) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	for _, e := range entries {
		v, err := mib.EncodeValue(e.Value)
		if err != nil {
			return err
		}
		if err := batch.Set(storeKey(e.Key), v, nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

func (s *PebbleStore) Ascend(fn func(mib.Entry) bool) error {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		k, err := parseStoreKey(iter.Key())
		if err != nil {
			return err
		}
		v, _, err := mib.DecodeValue(iter.Value())
		if err != nil {
			return fmt.Errorf("stored value of %v: %w", k, err)
		}
		if !fn(mib.Entry{Key: k, Value: v}) {
			break
		}
	}
	return iter.Error()
}

func (s *PebbleStore) Len() (int, error) {
	n := 0
	err := s.Ascend(func(mib.Entry) bool {
		n++
		return true
	})
	return n, err
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}
