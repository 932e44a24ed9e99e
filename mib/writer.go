package mib

import (
	"bufio"
	"io"

	"github.com/pior/wifimib/internal/bufpool"
)

// Buffers for assembling frames on unbuffered writers.
// Typical frame is a header plus a handful of entries.
var frameBuffers = bufpool.New(256, 64<<10)

// WriteRequest serializes req as one frame and writes it to w.
// Frame format: signal u16 | tag u16 | status u16 (0) | length u32 | payload
//
// A *bufio.Writer is flushed before returning.
func WriteRequest(w io.Writer, req *Request) error {
	if !req.Signal.IsRequest() {
		return &FrameError{Message: "not a request signal: " + req.Signal.String()}
	}
	return writeFrame(w, req.Signal, req.Tag, StatusSuccess, req.Payload)
}

// WriteResponse serializes resp as one frame and writes it to w.
func WriteResponse(w io.Writer, resp *Response) error {
	if resp.Signal.IsRequest() {
		return &FrameError{Message: "not a confirm signal: " + resp.Signal.String()}
	}
	return writeFrame(w, resp.Signal, resp.Tag, resp.Status, resp.Payload)
}

func appendFrameHeader(dst []byte, sig Signal, tag uint16, status Status, length int) []byte {
	dst = AppendUint16(dst, uint16(sig))
	dst = AppendUint16(dst, tag)
	dst = AppendUint16(dst, uint16(status))
	return AppendUint32(dst, uint32(length))
}

func writeFrame(w io.Writer, sig Signal, tag uint16, status Status, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return &FrameError{Message: "payload too large"}
	}

	var hdr [FrameHeaderSize]byte
	appendFrameHeader(hdr[:0], sig, tag, status, len(payload))

	// Optimize for bufio.Writer (used by Connection)
	if bw, ok := w.(*bufio.Writer); ok {
		bw.Write(hdr[:])
		bw.Write(payload)
		return bw.Flush()
	}

	// Fallback to a pooled buffer so the frame goes out in a single write
	buf := frameBuffers.Get()
	defer frameBuffers.Put(buf)

	buf.Write(hdr[:])
	buf.Write(payload)
	_, err := w.Write(buf.Bytes())
	return err
}
