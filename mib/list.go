package mib

import "fmt"

// Append concatenates src onto dst. Callers building one request across
// several encode calls use it to join partial buffers.
func Append(dst, src []byte) []byte {
	return append(dst, src...)
}

// EncodeGetList returns the GET request payload for keys: their key headers
// concatenated in the given order.
func EncodeGetList(keys []Key) []byte {
	out := make([]byte, 0, len(keys)*KeyHeaderSize)
	for _, k := range keys {
		out = AppendGet(out, k)
	}
	return out
}

// DecodeAll decodes every entry of a SET or confirm payload.
// A partial entry at the end of src is an error, never dropped.
func DecodeAll(src []byte) ([]Entry, error) {
	r := NewReader(src)
	var entries []Entry
	for r.Len() > 0 {
		e, err := r.Next()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DecodeKeys decodes a GET request payload: key headers without values.
func DecodeKeys(src []byte) ([]Key, error) {
	if rem := len(src) % KeyHeaderSize; rem != 0 {
		return nil, truncated(len(src)-rem, "trailing %d bytes do not form a key header", rem)
	}
	r := NewReader(src)
	keys := make([]Key, 0, len(src)/KeyHeaderSize)
	for r.Len() > 0 {
		k, err := r.NextKey()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// DecodeGetList decodes a GET confirm payload and returns one value per
// requested key, in the order of requested. Entries in src may come in any
// order; entries that were not requested are ignored. If a key appears more
// than once in src the first occurrence is used.
func DecodeGetList(src []byte, requested []Key) ([]Value, error) {
	entries, err := DecodeAll(src)
	if err != nil {
		return nil, err
	}

	byKey := make(map[Key]Value, len(entries))
	for _, e := range entries {
		if _, dup := byKey[e.Key]; !dup {
			byKey[e.Key] = e.Value
		}
	}

	values := make([]Value, len(requested))
	for i, k := range requested {
		v, ok := byKey[k]
		if !ok {
			return nil, &Error{Kind: KindNotFound, Offset: len(src), Detail: fmt.Sprintf("key %v", k)}
		}
		values[i] = v
	}
	return values, nil
}

// Find returns the bytes of src starting at the value tag of the first entry
// matching key. Values are skipped, not decoded. It reports false when no
// entry matches or when src turns out to be malformed before a match.
func Find(src []byte, key Key) ([]byte, bool) {
	off := 0
	for off < len(src) {
		k, err := decodeKey(src[off:])
		if err != nil {
			return nil, false
		}
		valueStart := off + KeyHeaderSize
		if k == key {
			if _, err := valueSize(src[valueStart:]); err != nil {
				return nil, false
			}
			return src[valueStart:], true
		}
		n, err := valueSize(src[valueStart:])
		if err != nil {
			return nil, false
		}
		off = valueStart + n
	}
	return nil, false
}
