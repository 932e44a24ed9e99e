package fwsim

import (
	"bytes"
	"testing"

	"github.com/pior/wifimib/mib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readOnlyPSID = 0x0900

func newTestHandler(t *testing.T) (*Handler, Store) {
	t.Helper()
	store := NewMemoryStore()
	require.NoError(t, store.Set(
		mib.Entry{Key: mib.NewKey(0x0035), Value: mib.UintValue(1)},
		mib.Entry{Key: mib.NewKey(0x0064, 3), Value: mib.OctetsValue([]byte("ssid"))},
		mib.Entry{Key: mib.NewKey(readOnlyPSID), Value: mib.BoolValue(true)},
	))
	return NewHandler(store, readOnlyPSID), store
}

func TestHandleGet(t *testing.T) {
	h, _ := newTestHandler(t)

	req := mib.NewGetRequest(mib.NewKey(0x0064, 3), mib.NewKey(0x0035), mib.NewKey(0x7777))
	req.Tag = 9

	resp, err := h.Handle(req)
	require.NoError(t, err)
	assert.Equal(t, mib.SignalGetConfirm, resp.Signal)
	assert.Equal(t, uint16(9), resp.Tag)
	assert.True(t, resp.IsSuccess())

	values, err := resp.Values([]mib.Key{mib.NewKey(0x0035), mib.NewKey(0x0064, 3)})
	require.NoError(t, err)
	assert.Equal(t, mib.UintValue(1), values[0])
	assert.Equal(t, []byte("ssid"), values[1].Octets())

	// Missing keys are omitted from the confirm
	_, err = resp.Values([]mib.Key{mib.NewKey(0x7777)})
	assert.ErrorIs(t, err, mib.ErrNotFound)
}

func TestHandleGetMalformed(t *testing.T) {
	h, _ := newTestHandler(t)

	resp, err := h.Handle(&mib.Request{Signal: mib.SignalGetRequest, Payload: []byte{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, mib.StatusInvalidParameters, resp.Status)
}

func TestHandleGetOversizedConfirm(t *testing.T) {
	h, store := newTestHandler(t)

	blob := make([]byte, mib.MaxOctetsLength)
	keys := make([]mib.Key, 17)
	for i := range keys {
		keys[i] = mib.NewKey(0x0400, uint16(i+1))
		require.NoError(t, store.Set(mib.Entry{Key: keys[i], Value: mib.OctetsValue(blob)}))
	}

	resp, err := h.Handle(mib.NewGetRequest(keys...))
	require.NoError(t, err)
	assert.Equal(t, mib.StatusInvalidParameters, resp.Status)
	assert.Empty(t, resp.Payload)

	// The confirm must still be writable
	var out bytes.Buffer
	require.NoError(t, mib.WriteResponse(&out, resp))

	// Fewer entries fit
	resp, err = h.Handle(mib.NewGetRequest(keys[:15]...))
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
}

func TestHandleSet(t *testing.T) {
	h, store := newTestHandler(t)

	req, err := mib.NewSetRequest(
		mib.Entry{Key: mib.NewKey(0x0035), Value: mib.UintValue(2)},
		mib.Entry{Key: mib.NewKey(0x0036), Value: mib.IntValue(-2)},
	)
	require.NoError(t, err)

	resp, err := h.Handle(req)
	require.NoError(t, err)
	assert.Equal(t, mib.SignalSetConfirm, resp.Signal)
	assert.True(t, resp.IsSuccess())
	assert.Empty(t, resp.Payload)

	v, ok, err := store.Get(mib.NewKey(0x0036))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int32(-2), v.Int())
}

func TestHandleSetReadOnly(t *testing.T) {
	h, store := newTestHandler(t)

	req, err := mib.NewSetRequest(
		mib.Entry{Key: mib.NewKey(0x0035), Value: mib.UintValue(5)},
		mib.Entry{Key: mib.NewKey(readOnlyPSID), Value: mib.BoolValue(false)},
		mib.Entry{Key: mib.NewKey(readOnlyPSID, 2), Value: mib.BoolValue(false)},
	)
	require.NoError(t, err)

	resp, err := h.Handle(req)
	require.NoError(t, err)
	assert.Equal(t, mib.StatusReadOnly, resp.Status)

	var statusErr *mib.StatusError
	require.ErrorAs(t, resp.Err(), &statusErr)
	assert.Equal(t, []mib.Key{mib.NewKey(readOnlyPSID), mib.NewKey(readOnlyPSID, 2)}, statusErr.Keys)

	// The writable entry of the refused request was not applied
	v, _, err := store.Get(mib.NewKey(0x0035))
	require.NoError(t, err)
	assert.Equal(t, mib.UintValue(1), v)
}

func TestHandleSetNone(t *testing.T) {
	h, store := newTestHandler(t)

	req, err := mib.NewSetRequest(
		mib.Entry{Key: mib.NewKey(0x0040), Value: mib.UintValue(5)},
		mib.Entry{Key: mib.NewKey(0x0041), Value: mib.NoneValue()},
	)
	require.NoError(t, err)

	resp, err := h.Handle(req)
	require.NoError(t, err)
	assert.Equal(t, mib.StatusInvalidParameters, resp.Status)

	_, ok, err := store.Get(mib.NewKey(0x0040))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandleNoOpAndUnknown(t *testing.T) {
	h, _ := newTestHandler(t)

	resp, err := h.Handle(mib.NewNoOpRequest())
	require.NoError(t, err)
	assert.Equal(t, mib.SignalNoOpConfirm, resp.Signal)
	assert.True(t, resp.IsSuccess())

	resp, err = h.Handle(&mib.Request{Signal: 0x0011, Tag: 4})
	require.NoError(t, err)
	assert.Equal(t, mib.Signal(0x0012), resp.Signal)
	assert.Equal(t, uint16(4), resp.Tag)
	assert.Equal(t, mib.StatusUnsupported, resp.Status)
}
