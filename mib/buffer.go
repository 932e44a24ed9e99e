package mib

// Buffer accumulates encoded records for one request.
// It is owned by a single caller; concurrent builders need separate Buffers.
//
// The zero value is ready to use.
type Buffer struct {
	b []byte
}

// NewBuffer returns a Buffer with room for size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{b: make([]byte, 0, size)}
}

func (b *Buffer) Bytes() []byte { return b.b }
func (b *Buffer) Len() int      { return len(b.b) }
func (b *Buffer) Reset()        { b.b = b.b[:0] }

// Append adds raw, already encoded bytes.
func (b *Buffer) Append(p []byte) {
	b.b = append(b.b, p...)
}

// AppendGet adds the key header of k.
func (b *Buffer) AppendGet(k Key) {
	b.b = AppendGet(b.b, k)
}

// AppendEntry adds a full record. The buffer is unchanged on error.
func (b *Buffer) AppendEntry(k Key, v Value) error {
	out, err := AppendEntry(b.b, k, v)
	if err != nil {
		return err
	}
	b.b = out
	return nil
}

// Reader walks an encoded payload record by record. It borrows src and never
// modifies it; the cursor is its only state.
type Reader struct {
	src []byte
	off int
}

func NewReader(src []byte) *Reader {
	return &Reader{src: src}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.src) - r.off }

// Offset returns the cursor position.
func (r *Reader) Offset() int { return r.off }

// Next decodes the entry at the cursor and advances past it.
// On error the cursor does not move.
func (r *Reader) Next() (Entry, error) {
	e, n, err := DecodeEntry(r.src[r.off:])
	if err != nil {
		return Entry{}, shift(err, r.off)
	}
	r.off += n
	return e, nil
}

// NextKey decodes a bare key header at the cursor, as found in GET requests.
func (r *Reader) NextKey() (Key, error) {
	k, err := decodeKey(r.src[r.off:])
	if err != nil {
		return Key{}, shift(err, r.off)
	}
	r.off += KeyHeaderSize
	return k, nil
}
