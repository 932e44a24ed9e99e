package mib

// Request is a frame sent by the host to the firmware.
// This is a plain container; use the constructors to build the payload.
type Request struct {
	// Signal is one of the request signals (odd values).
	Signal Signal

	// Tag correlates a request with its confirm. The connection assigns it.
	Tag uint16

	// Payload is a GET list (key headers) or a SET list (entries).
	Payload []byte
}

// NewGetRequest builds a GET request for keys, in the given order.
func NewGetRequest(keys ...Key) *Request {
	return &Request{
		Signal:  SignalGetRequest,
		Payload: EncodeGetList(keys),
	}
}

// NewSetRequest builds a SET request carrying entries.
// It fails only when a value cannot be encoded (oversized octets).
func NewSetRequest(entries ...Entry) (*Request, error) {
	buf := NewBuffer(len(entries) * (KeyHeaderSize + 5))
	for _, e := range entries {
		if err := buf.AppendEntry(e.Key, e.Value); err != nil {
			return nil, err
		}
	}
	return &Request{
		Signal:  SignalSetRequest,
		Payload: buf.Bytes(),
	}, nil
}

// NewNoOpRequest builds a payload-less request used to check a link.
func NewNoOpRequest() *Request {
	return &Request{Signal: SignalNoOpRequest}
}

// Keys decodes the payload of a GET request.
func (r *Request) Keys() ([]Key, error) {
	return DecodeKeys(r.Payload)
}

// Entries decodes the payload of a SET request.
func (r *Request) Entries() ([]Entry, error) {
	return DecodeAll(r.Payload)
}
