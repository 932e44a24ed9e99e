package mib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleKeys = []Key{
	NewKey(0x0035),
	NewKey(0x0064, 3),
	NewKey(0x0fff, 1, 2),
	NewKey(0xffff, 0xffff, 0xffff),
	NewKey(0),
}

func TestEncodeEntryLiteral(t *testing.T) {
	got, err := EncodeEntry(NewKey(0x0035), UintValue(1))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x35, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x01, 0x00, 0x00, 0x00}, got)
}

func TestEncodeGetLiteral(t *testing.T) {
	got := EncodeGet(NewKey(0x0064, 3))
	assert.Equal(t, []byte{0x64, 0x00, 0x03, 0x00, 0x00, 0x00}, got)

	got = EncodeGet(NewKey(0x1234, 0x0102, 0x0304))
	assert.Equal(t, []byte{0x34, 0x12, 0x02, 0x01, 0x04, 0x03}, got)
}

func TestEntryRoundTrip(t *testing.T) {
	for _, k := range sampleKeys {
		for _, v := range sampleValues {
			enc, err := EncodeEntry(k, v)
			require.NoError(t, err)

			got, n, err := DecodeEntry(enc)
			require.NoError(t, err)
			assert.Equal(t, len(enc), n)
			assert.Equal(t, Entry{Key: k, Value: v}, got)
		}
	}
}

func TestDecodeEntryTruncated(t *testing.T) {
	for _, k := range sampleKeys {
		for _, v := range sampleValues {
			enc, err := EncodeEntry(k, v)
			require.NoError(t, err)

			for cut := 1; cut < len(enc); cut++ {
				_, _, err := DecodeEntry(enc[:len(enc)-cut])
				require.ErrorIs(t, err, ErrTruncated, "%v=%v cut by %d", k, v.Type(), cut)
			}
		}
	}
}

func TestDecodeEntryUnknownType(t *testing.T) {
	enc, err := EncodeEntry(NewKey(0x0035), UintValue(1))
	require.NoError(t, err)

	for tag := 5; tag <= 255; tag++ {
		mutated := append([]byte(nil), enc...)
		mutated[KeyHeaderSize] = byte(tag)

		_, _, err := DecodeEntry(mutated)
		require.ErrorIs(t, err, ErrUnknownType, "tag %d", tag)

		var mibErr *Error
		require.ErrorAs(t, err, &mibErr)
		assert.Equal(t, KeyHeaderSize, mibErr.Offset)
	}
}

func TestDecodeEntryOnGetRecord(t *testing.T) {
	get := EncodeGet(NewKey(0x0064, 3))

	_, _, err := DecodeEntry(get)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeEntryShortHeader(t *testing.T) {
	for n := 0; n < KeyHeaderSize; n++ {
		_, _, err := DecodeEntry(make([]byte, n))
		require.ErrorIs(t, err, ErrTruncated)
	}
}

func TestDecodeEntryInvalidKey(t *testing.T) {
	src := []byte{0x35, 0x00, 0x00, 0x00, 0x01, 0x00, byte(TypeNone)}
	_, _, err := DecodeEntry(src)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestEncodeEntryOversizedOctets(t *testing.T) {
	_, err := EncodeEntry(NewKey(1), OctetsValue(make([]byte, MaxOctetsLength+1)))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "0x0035", NewKey(0x35).String())
	assert.Equal(t, "0x0064.3", NewKey(0x64, 3).String())
	assert.Equal(t, "0x0fff.1.2", NewKey(0xfff, 1, 2).String())
}

func TestParseKey(t *testing.T) {
	for _, k := range sampleKeys {
		got, err := ParseKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKey("53.7")
	require.NoError(t, err)
	assert.Equal(t, NewKey(0x35, 7), got)

	for _, bad := range []string{"", "x", "0x10000", "1.2.3.4", "1.0.2", "1.-1"} {
		_, err := ParseKey(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestKeyValid(t *testing.T) {
	assert.True(t, NewKey(1).Valid())
	assert.True(t, NewKey(1, 2).Valid())
	assert.True(t, NewKey(1, 2, 3).Valid())
	assert.False(t, Key{PSID: 1, Index: [2]uint16{0, 3}}.Valid())
}
