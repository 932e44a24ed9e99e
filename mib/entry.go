package mib

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies a MIB parameter: a PSID and up to two secondary indices.
// An index of 0 means "no index" for that slot; the second slot may only be
// set when the first one is.
type Key struct {
	PSID  uint16
	Index [2]uint16
}

// NewKey builds a Key from a PSID and at most two indices.
// Extra indices are ignored.
func NewKey(psid uint16, index ...uint16) Key {
	k := Key{PSID: psid}
	copy(k.Index[:], index)
	return k
}

// Valid reports whether the index slots respect the slot ordering.
func (k Key) Valid() bool {
	return k.Index[1] == 0 || k.Index[0] != 0
}

// String formats k as psid[.index0[.index1]], psid in hex.
func (k Key) String() string {
	switch {
	case k.Index[1] != 0:
		return fmt.Sprintf("0x%04x.%d.%d", k.PSID, k.Index[0], k.Index[1])
	case k.Index[0] != 0:
		return fmt.Sprintf("0x%04x.%d", k.PSID, k.Index[0])
	default:
		return fmt.Sprintf("0x%04x", k.PSID)
	}
}

// ParseKey reads the format produced by Key.String. The PSID and indices
// accept any base strconv understands (0x35, 53, 0o65).
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Key{}, fmt.Errorf("key %q: at most two indices", s)
	}
	var fields [3]uint16
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 0, 16)
		if err != nil {
			return Key{}, fmt.Errorf("key %q: %w", s, err)
		}
		fields[i] = uint16(v)
	}
	k := Key{PSID: fields[0], Index: [2]uint16{fields[1], fields[2]}}
	if !k.Valid() {
		return Key{}, fmt.Errorf("key %q: second index set without first", s)
	}
	return k, nil
}

// Entry is one (key, value) record.
type Entry struct {
	Key   Key
	Value Value
}

func (e Entry) String() string {
	return e.Key.String() + "=" + e.Value.String()
}

// AppendGet appends the 6-byte key header of k: psid, index0, index1.
func AppendGet(dst []byte, k Key) []byte {
	dst = AppendUint16(dst, k.PSID)
	dst = AppendUint16(dst, k.Index[0])
	return AppendUint16(dst, k.Index[1])
}

// EncodeGet returns the key header of k, the record of a GET request.
func EncodeGet(k Key) []byte {
	return AppendGet(make([]byte, 0, KeyHeaderSize), k)
}

// AppendEntry appends the key header of k followed by the encoding of v.
// On error dst is returned unchanged.
func AppendEntry(dst []byte, k Key, v Value) ([]byte, error) {
	out, err := AppendValue(AppendGet(dst, k), v)
	if err != nil {
		return dst, shift(err, KeyHeaderSize)
	}
	return out, nil
}

// EncodeEntry returns the encoding of one (key, value) record.
func EncodeEntry(k Key, v Value) ([]byte, error) {
	return AppendEntry(make([]byte, 0, KeyHeaderSize+valueCapacity(v)), k, v)
}

// DecodeEntry reads one (key, value) record from src.
// GET buffers carry no value and fail here with KindTruncated or
// KindUnknownType; decode them with DecodeKeys.
func DecodeEntry(src []byte) (Entry, int, error) {
	k, err := decodeKey(src)
	if err != nil {
		return Entry{}, 0, err
	}
	v, n, err := DecodeValue(src[KeyHeaderSize:])
	if err != nil {
		return Entry{}, 0, shift(err, KeyHeaderSize)
	}
	return Entry{Key: k, Value: v}, KeyHeaderSize + n, nil
}

func decodeKey(src []byte) (Key, error) {
	if len(src) < KeyHeaderSize {
		return Key{}, truncated(0, "key header needs %d bytes, have %d", KeyHeaderSize, len(src))
	}
	k := Key{
		PSID:  le.Uint16(src[0:]),
		Index: [2]uint16{le.Uint16(src[2:]), le.Uint16(src[4:])},
	}
	if !k.Valid() {
		return Key{}, malformed(2, "key %v: second index set without first", k)
	}
	return k, nil
}
