package fwsim

import (
	"testing"

	"github.com/pior/wifimib/mib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	pebbleStore, err := OpenPebbleStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { pebbleStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"pebble": pebbleStore,
	}
}

func TestStoreGetSet(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(mib.NewKey(1))
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(
				mib.Entry{Key: mib.NewKey(1), Value: mib.UintValue(7)},
				mib.Entry{Key: mib.NewKey(2, 1), Value: mib.OctetsValue([]byte{0xca, 0xfe})},
			))

			v, ok, err := store.Get(mib.NewKey(1))
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, mib.UintValue(7), v)

			v, ok, err = store.Get(mib.NewKey(2, 1))
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte{0xca, 0xfe}, v.Octets())

			// Overwrite
			require.NoError(t, store.Set(mib.Entry{Key: mib.NewKey(1), Value: mib.IntValue(-1)}))
			v, _, err = store.Get(mib.NewKey(1))
			require.NoError(t, err)
			assert.Equal(t, mib.IntValue(-1), v)

			n, err := store.Len()
			require.NoError(t, err)
			assert.Equal(t, 2, n)
		})
	}
}

func TestStoreAscendOrder(t *testing.T) {
	keys := []mib.Key{
		mib.NewKey(0x0100),
		mib.NewKey(0x0002, 2),
		mib.NewKey(0x0002, 1, 9),
		mib.NewKey(0x0002, 1),
		mib.NewKey(0x0001),
	}
	expected := []mib.Key{
		mib.NewKey(0x0001),
		mib.NewKey(0x0002, 1),
		mib.NewKey(0x0002, 1, 9),
		mib.NewKey(0x0002, 2),
		mib.NewKey(0x0100),
	}

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range keys {
				require.NoError(t, store.Set(mib.Entry{Key: k, Value: mib.BoolValue(true)}))
			}

			var got []mib.Key
			require.NoError(t, store.Ascend(func(e mib.Entry) bool {
				got = append(got, e.Key)
				return true
			}))
			assert.Equal(t, expected, got)

			// Early stop
			got = got[:0]
			require.NoError(t, store.Ascend(func(e mib.Entry) bool {
				got = append(got, e.Key)
				return len(got) < 2
			}))
			assert.Len(t, got, 2)
		})
	}
}

func TestPebbleStoreReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenPebbleStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(mib.Entry{Key: mib.NewKey(0x35), Value: mib.UintValue(1)}))
	require.NoError(t, store.Close())

	store, err = OpenPebbleStore(dir)
	require.NoError(t, err)
	defer store.Close()

	v, ok, err := store.Get(mib.NewKey(0x35))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, mib.UintValue(1), v)
}

func TestPebbleStoreRejectsOversizedValue(t *testing.T) {
	store, err := OpenPebbleStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	err = store.Set(
		mib.Entry{Key: mib.NewKey(1), Value: mib.UintValue(1)},
		mib.Entry{Key: mib.NewKey(2), Value: mib.OctetsValue(make([]byte, mib.MaxOctetsLength+1))},
	)
	require.ErrorIs(t, err, mib.ErrMalformed)

	// Nothing from the batch was applied
	_, ok, err := store.Get(mib.NewKey(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreKeyOrder(t *testing.T) {
	a := storeKey(mib.NewKey(0x0001, 0xffff))
	b := storeKey(mib.NewKey(0x0002))
	assert.Less(t, string(a), string(b))

	k, err := parseStoreKey(storeKey(mib.NewKey(0x1234, 5, 6)))
	require.NoError(t, err)
	assert.Equal(t, mib.NewKey(0x1234, 5, 6), k)

	_, err = parseStoreKey([]byte{1, 2})
	assert.Error(t, err)
}
