package mib

import "encoding/binary"

var le = binary.LittleEndian

// Fixed-width integers, little-endian, two's complement for signed types.
// Every Decode function returns the value, the number of bytes consumed and
// a KindTruncated error when src is too short.

func AppendUint16(dst []byte, v uint16) []byte { return le.AppendUint16(dst, v) }
func AppendUint32(dst []byte, v uint32) []byte { return le.AppendUint32(dst, v) }
func AppendInt32(dst []byte, v int32) []byte   { return le.AppendUint32(dst, uint32(v)) }
func AppendUint64(dst []byte, v uint64) []byte { return le.AppendUint64(dst, v) }
func AppendInt64(dst []byte, v int64) []byte   { return le.AppendUint64(dst, uint64(v)) }

func DecodeUint16(src []byte) (uint16, int, error) {
	if len(src) < 2 {
		return 0, 0, truncated(0, "uint16 needs 2 bytes, have %d", len(src))
	}
	return le.Uint16(src), 2, nil
}

func DecodeUint32(src []byte) (uint32, int, error) {
	if len(src) < 4 {
		return 0, 0, truncated(0, "uint32 needs 4 bytes, have %d", len(src))
	}
	return le.Uint32(src), 4, nil
}

func DecodeInt32(src []byte) (int32, int, error) {
	v, n, err := DecodeUint32(src)
	return int32(v), n, err
}

func DecodeUint64(src []byte) (uint64, int, error) {
	if len(src) < 8 {
		return 0, 0, truncated(0, "uint64 needs 8 bytes, have %d", len(src))
	}
	return le.Uint64(src), 8, nil
}

func DecodeInt64(src []byte) (int64, int, error) {
	v, n, err := DecodeUint64(src)
	return int64(v), n, err
}
