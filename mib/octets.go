package mib

// AppendOctets appends b prefixed with its length as a little-endian u16.
// Blobs longer than MaxOctetsLength cannot be represented and are reported
// as KindMalformed.
func AppendOctets(dst, b []byte) ([]byte, error) {
	if len(b) > MaxOctetsLength {
		return dst, malformed(0, "octet string of %d bytes exceeds %d", len(b), MaxOctetsLength)
	}
	dst = AppendUint16(dst, uint16(len(b)))
	return append(dst, b...), nil
}

// DecodeOctets reads a length-prefixed octet string and returns a copy of it.
// A zero-length string decodes to an empty, non-nil slice.
func DecodeOctets(src []byte) ([]byte, int, error) {
	n, err := octetsSize(src)
	if err != nil {
		return nil, 0, err
	}
	out := make([]byte, n-2)
	copy(out, src[2:n])
	return out, n, nil
}

// octetsSize returns the encoded size of the octet string at src without copying it.
func octetsSize(src []byte) (int, error) {
	length, _, err := DecodeUint16(src)
	if err != nil {
		return 0, truncated(0, "octet string length prefix")
	}
	if int(length) > len(src)-2 {
		return 0, truncated(2, "octet string declares %d bytes, %d remain", length, len(src)-2)
	}
	return 2 + int(length), nil
}
