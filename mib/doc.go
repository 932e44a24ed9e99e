// Package mib implements the binary encoding used to exchange MIB
// parameters with Wi-Fi firmware, and the frames that carry them.
//
// This package is the foundation for host-side clients. It only turns
// values into bytes and bytes into values; it does not manage connections.
//
// # Records
//
// A parameter is addressed by a Key: a 16-bit PSID and up to two 16-bit
// indices. A record is the 6-byte key header optionally followed by a
// tagged Value:
//
//	psid u16 | index0 u16 | index1 u16 | tag u8 | payload
//
// All integers are little-endian. Tags are closed:
//
//   - 0 Bool: 1 byte, 0 or 1 (any nonzero byte decodes as true)
//   - 1 Uint: 4 bytes
//   - 2 Int: 4 bytes, two's complement
//   - 3 Octets: u16 length + raw bytes
//   - 4 None: no payload
//
// Any other tag fails with KindUnknownType. 64-bit quantities are not
// values of their own; they travel as 8-byte octet strings and are read
// with DecodeUint64 and DecodeInt64.
//
// # Lists
//
// A GET request payload is a concatenation of key headers, in the order
// the caller wants answers. A SET request or GET confirm payload is a
// concatenation of full records in any order:
//
//	req := mib.NewGetRequest(mib.NewKey(0x0035), mib.NewKey(0x0064, 3))
//	...
//	values, err := resp.Values(keys) // same order as keys
//
// DecodeGetList fails with KindNotFound for a requested key that the
// payload does not hold. DecodeKeys is the decoder for GET payloads;
// DecodeEntry and DecodeAll expect values and reject them.
//
// # Frames
//
// Requests and confirms travel as frames:
//
//	signal u16 | tag u16 | status u16 | length u32 | payload
//
// WriteRequest and ReadResponse are used by hosts; ReadRequest and
// WriteResponse by firmware (or a simulator).
//
// # Error Handling
//
// Decoders never panic on malformed input. They return *Error with a Kind
// and the offset where decoding stopped:
//
//	if errors.Is(err, mib.ErrTruncated) { ... }
//
// Link errors indicate connection state, as ShouldCloseConnection reports:
//
//   - Error: payload could not be decoded, connection can be REUSED
//   - StatusError: firmware refused the request, connection can be REUSED
//   - FrameError: stream position unknown, CLOSE connection
//   - ConnectionError: I/O failure, connection already broken
//
// # Thread Safety
//
// Functions in this package hold no shared state. Buffer and Reader are
// owned by one caller at a time.
package mib
