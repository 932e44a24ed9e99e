package mib

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies codec failures.
type ErrorKind int

const (
	// KindTruncated: fewer bytes remain than a field declares or requires.
	KindTruncated ErrorKind = iota + 1
	// KindUnknownType: a value tag outside the closed tag space.
	KindUnknownType
	// KindNotFound: a requested key is absent from a decoded list.
	KindNotFound
	// KindMalformed: any other structural violation.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindTruncated:
		return "truncated"
	case KindUnknownType:
		return "unknown type"
	case KindNotFound:
		return "not found"
	case KindMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by every decoder in this package.
// Offset is the position in the input where decoding failed.
type Error struct {
	Kind   ErrorKind
	Offset int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("mib: %v at %d", e.Kind, e.Offset)
	}
	return fmt.Sprintf("mib: %v at %d: %s", e.Kind, e.Offset, e.Detail)
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, ErrTruncated) works regardless of offset and detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// ShouldCloseConnection returns false - codec errors are confined to a payload
// that was already read in full.
func (e *Error) ShouldCloseConnection() bool {
	return false
}

// Sentinels for errors.Is.
var (
	ErrTruncated   = &Error{Kind: KindTruncated}
	ErrUnknownType = &Error{Kind: KindUnknownType}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrMalformed   = &Error{Kind: KindMalformed}
)

func truncated(offset int, format string, args ...any) *Error {
	return &Error{Kind: KindTruncated, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

func malformed(offset int, format string, args ...any) *Error {
	return &Error{Kind: KindMalformed, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

// shift moves the offset of a codec error by base bytes.
// Decoders work on sub-slices and report offsets relative to them.
func shift(err error, base int) error {
	var e *Error
	if base == 0 || !errors.As(err, &e) {
		return err
	}
	shifted := *e
	shifted.Offset += base
	return &shifted
}

// Link-level errors. These describe the state of the connection a frame was
// read from, following the same close-or-reuse contract as codec errors.

// FrameError represents a frame that could not be parsed or did not match the
// request it answers.
//
// Common causes:
//   - Short or garbled frame header
//   - Declared payload larger than MaxPayloadSize
//   - Confirm signal or tag not matching the request
//
// Connection handling: CLOSE connection, the stream cannot be resynchronised
type FrameError struct {
	Message string
	Err     error // Underlying error, if any
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return "frame error: " + e.Message + ": " + e.Err.Error()
	}
	return "frame error: " + e.Message
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - frame errors leave the stream in an unknown position
func (e *FrameError) ShouldCloseConnection() bool {
	return true
}

// ConnectionError wraps underlying I/O errors from connection operations.
//
// Connection handling: Connection is already broken, CLOSE and potentially RECONNECT
type ConnectionError struct {
	Op  string // Operation that failed (read, write, etc.)
	Err error  // Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - connection errors mean connection is broken
func (e *ConnectionError) ShouldCloseConnection() bool {
	return true
}

// StatusError is returned when the firmware answers with a non-success status.
// Keys lists the entries the firmware refused, when it reported them.
//
// Connection handling: Connection can be REUSED
type StatusError struct {
	Signal Signal
	Status Status
	Keys   []Key
}

func (e *StatusError) Error() string {
	if len(e.Keys) == 0 {
		return fmt.Sprintf("%v: %v", e.Signal, e.Status)
	}
	return fmt.Sprintf("%v: %v (keys %v)", e.Signal, e.Status, e.Keys)
}

// ShouldCloseConnection returns false - the frame exchange completed normally
func (e *StatusError) ShouldCloseConnection() bool {
	return false
}

// ErrorWithConnectionState is implemented by all error types of this package.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection is a helper function to determine if an error
// requires closing the connection.
//
// Returns true for FrameError, ConnectionError and unknown errors.
// Returns false for codec errors, StatusError and nil, and for a bare
// context error: the caller gave up before any byte was exchanged. A context
// that ends during I/O surfaces as a ConnectionError.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Unknown error type - be conservative and close connection
	return true
}
