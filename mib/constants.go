package mib

import "fmt"

// Type is the one-byte tag that precedes every encoded value.
type Type byte

// Value type tags. The set is closed: any other byte is rejected.
const (
	TypeBool   Type = 0
	TypeUint   Type = 1
	TypeInt    Type = 2
	TypeOctets Type = 3
	TypeNone   Type = 4
)

// Valid reports whether t is one of the known type tags.
func (t Type) Valid() bool {
	switch t {
	case TypeBool, TypeUint, TypeInt, TypeOctets, TypeNone:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeUint:
		return "uint"
	case TypeInt:
		return "int"
	case TypeOctets:
		return "octets"
	case TypeNone:
		return "none"
	default:
		return fmt.Sprintf("type(%d)", byte(t))
	}
}

// Wire sizes and limits.
const (
	// KeyHeaderSize is the size of an encoded Key: psid, index0, index1.
	KeyHeaderSize = 6

	// MaxOctetsLength is the largest octet string the u16 length prefix can carry.
	MaxOctetsLength = 0xFFFF

	// FrameHeaderSize is the size of a frame header: signal, tag, status, length.
	FrameHeaderSize = 10

	// MaxPayloadSize bounds the payload a reader accepts (1MB).
	MaxPayloadSize = 1 << 20
)

// Signal identifies the kind of frame exchanged with the firmware.
// Requests are odd, their confirms are the next even value.
type Signal uint16

const (
	// SignalGetRequest carries a GET list: key headers only, in caller order.
	SignalGetRequest Signal = 0x0001

	// SignalGetConfirm carries full entries for the requested keys the
	// firmware holds. Missing keys are omitted, order is not significant.
	SignalGetConfirm Signal = 0x0002

	// SignalSetRequest carries full entries to store.
	SignalSetRequest Signal = 0x0003

	// SignalSetConfirm acknowledges a SET. On refusal its payload lists the
	// rejected keys as key headers only.
	SignalSetConfirm Signal = 0x0004

	// SignalNoOpRequest has no payload. Used for health checks.
	SignalNoOpRequest Signal = 0x0005

	// SignalNoOpConfirm answers SignalNoOpRequest.
	SignalNoOpConfirm Signal = 0x0006
)

// IsRequest reports whether s is a request signal.
func (s Signal) IsRequest() bool {
	return s&1 == 1
}

// Confirm returns the confirm signal answering request signal s.
func (s Signal) Confirm() Signal {
	return s + 1
}

func (s Signal) String() string {
	switch s {
	case SignalGetRequest:
		return "GET.request"
	case SignalGetConfirm:
		return "GET.confirm"
	case SignalSetRequest:
		return "SET.request"
	case SignalSetConfirm:
		return "SET.confirm"
	case SignalNoOpRequest:
		return "NOOP.request"
	case SignalNoOpConfirm:
		return "NOOP.confirm"
	default:
		return fmt.Sprintf("signal(0x%04x)", uint16(s))
	}
}

// Status is the result code carried by confirm frames.
type Status uint16

const (
	StatusSuccess           Status = 0
	StatusInvalidParameters Status = 1
	StatusReadOnly          Status = 2
	StatusUnsupported       Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusInvalidParameters:
		return "invalid parameters"
	case StatusReadOnly:
		return "read only"
	case StatusUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("status(%d)", uint16(s))
	}
}
