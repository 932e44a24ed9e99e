package mib

import (
	"errors"
	"io"
)

type frameHeader struct {
	signal Signal
	tag    uint16
	status Status
	length uint32
}

// ReadRequest reads one request frame from r.
//
// Returns io.EOF when r is closed cleanly between frames. Any other failure is
// a *FrameError or an I/O error, and the stream should not be read further.
func ReadRequest(r io.Reader) (*Request, error) {
	h, payload, err := readFrame(r)
	if err != nil {
		return nil, err
	}
	if !h.signal.IsRequest() {
		return nil, &FrameError{Message: "expected a request signal, got " + h.signal.String()}
	}
	return &Request{Signal: h.signal, Tag: h.tag, Payload: payload}, nil
}

// ReadResponse reads one confirm frame from r.
//
// A non-success status is not a Go error here; check Response.Err.
func ReadResponse(r io.Reader) (*Response, error) {
	h, payload, err := readFrame(r)
	if err != nil {
		return nil, err
	}
	if h.signal.IsRequest() {
		return nil, &FrameError{Message: "expected a confirm signal, got " + h.signal.String()}
	}
	return &Response{Signal: h.signal, Tag: h.tag, Status: h.status, Payload: payload}, nil
}

func readFrame(r io.Reader) (frameHeader, []byte, error) {
	var hdr [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return frameHeader{}, nil, &FrameError{Message: "short frame header", Err: err}
		}
		return frameHeader{}, nil, err
	}

	h := frameHeader{
		signal: Signal(le.Uint16(hdr[0:])),
		tag:    le.Uint16(hdr[2:]),
		status: Status(le.Uint16(hdr[4:])),
		length: le.Uint32(hdr[6:]),
	}
	if h.length > MaxPayloadSize {
		return frameHeader{}, nil, &FrameError{Message: "payload too large"}
	}

	payload := make([]byte, h.length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return frameHeader{}, nil, &FrameError{Message: "failed to read payload", Err: err}
	}
	return h, payload, nil
}
