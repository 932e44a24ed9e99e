package mib

// Response is a confirm frame sent by the firmware.
type Response struct {
	// Signal is the confirm signal, the request signal plus one.
	Signal Signal

	// Tag echoes the tag of the request.
	Tag uint16

	// Status is StatusSuccess or the reason the request was refused.
	Status Status

	// Payload holds entries for GET confirms and rejected key headers for
	// refused SET requests. Empty otherwise.
	Payload []byte
}

// IsSuccess returns true if the firmware accepted the request.
func (r *Response) IsSuccess() bool {
	return r.Status == StatusSuccess
}

// Err returns nil for successful responses and a *StatusError otherwise.
// Rejected keys are attached when the payload lists them.
func (r *Response) Err() error {
	if r.IsSuccess() {
		return nil
	}
	statusErr := &StatusError{Signal: r.Signal, Status: r.Status}
	if r.Signal == SignalSetConfirm && len(r.Payload) > 0 {
		if keys, err := DecodeKeys(r.Payload); err == nil {
			statusErr.Keys = keys
		}
	}
	return statusErr
}

// Entries decodes every entry of a GET confirm.
func (r *Response) Entries() ([]Entry, error) {
	return DecodeAll(r.Payload)
}

// Values matches a GET confirm against the keys that were requested and
// returns the values in the requested order.
func (r *Response) Values(requested []Key) ([]Value, error) {
	return DecodeGetList(r.Payload, requested)
}

// Find returns the encoded value of key without decoding the whole payload.
func (r *Response) Find(key Key) (Value, bool, error) {
	raw, ok := Find(r.Payload, key)
	if !ok {
		return Value{}, false, nil
	}
	v, _, err := DecodeValue(raw)
	if err != nil {
		return Value{}, false, err
	}
	return v, true, nil
}
