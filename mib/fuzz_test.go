package mib

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func FuzzDecodeValue(f *testing.F) {
	for _, v := range sampleValues {
		b, err := EncodeValue(v)
		require.NoError(f, err)
		f.Add(b)
	}
	f.Add([]byte{})
	f.Add([]byte{byte(TypeOctets), 0xff, 0xff})
	f.Add([]byte{0x05})

	f.Fuzz(func(t *testing.T, input []byte) {
		v, n, err := DecodeValue(input)
		if err != nil {
			var e *Error
			require.ErrorAs(t, err, &e)
			return
		}

		require.LessOrEqual(t, n, len(input))

		size, err := valueSize(input)
		require.NoError(t, err)
		require.Equal(t, n, size)

		// Bool accepts any nonzero byte but always encodes as 1
		if v.Type() == TypeBool {
			return
		}
		out, err := EncodeValue(v)
		require.NoError(t, err)
		require.Equal(t, input[:n], out)
	})
}

func FuzzDecodeAll(f *testing.F) {
	f.Add([]byte{0x35, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x01, 0x00, 0x00, 0x00})
	f.Add(EncodeGetList([]Key{NewKey(0x64, 3), NewKey(0x35)}))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, input []byte) {
		entries, err := DecodeAll(input)
		if err != nil {
			var e *Error
			require.ErrorAs(t, err, &e)
			require.GreaterOrEqual(t, e.Offset, 0)
			require.LessOrEqual(t, e.Offset, len(input))
			return
		}

		for _, e := range entries {
			require.True(t, e.Key.Valid())
			raw, ok := Find(input, e.Key)
			require.True(t, ok)
			_, _, err := DecodeValue(raw)
			require.NoError(t, err)
		}
	})
}

func FuzzDecodeGetList(f *testing.F) {
	f.Add([]byte{0x35, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x01, 0x00, 0x00, 0x00}, uint16(0x35))
	f.Add([]byte{}, uint16(1))

	f.Fuzz(func(t *testing.T, input []byte, psid uint16) {
		key := NewKey(psid)
		values, err := DecodeGetList(input, []Key{key})
		if err != nil {
			var e *Error
			require.ErrorAs(t, err, &e)
			return
		}
		require.Len(t, values, 1)

		raw, ok := Find(input, key)
		require.True(t, ok)
		v, _, err := DecodeValue(raw)
		require.NoError(t, err)
		require.True(t, v.Equal(values[0]))
	})
}

func FuzzReadResponse(f *testing.F) {
	var buf bytes.Buffer
	require.NoError(f, WriteResponse(&buf, &Response{Signal: SignalGetConfirm, Tag: 1, Payload: []byte{1, 2, 3}}))
	f.Add(buf.Bytes())
	f.Add([]byte{0x02, 0x00})
	f.Add(appendFrameHeader(nil, SignalSetConfirm, 0, StatusReadOnly, 0xffffffff))

	f.Fuzz(func(t *testing.T, input []byte) {
		resp, err := ReadResponse(bytes.NewReader(input))
		if err == nil {
			require.NotNil(t, resp)
			require.False(t, resp.Signal.IsRequest())
			_ = resp.Err()
			return
		}

		if errors.Is(err, io.EOF) {
			return // Empty input
		}

		var frameErr *FrameError
		require.ErrorAs(t, err, &frameErr, "unexpected error %q", err)
	})
}
