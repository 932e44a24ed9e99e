package mib

import (
	"bytes"
	"encoding/hex"
	"strconv"
)

// Value is a typed MIB value: one of bool, uint32, int32, octet string or
// none. None carries no payload and is only meaningful in GET requests.
//
// The zero Value is a Bool false. Use the constructors to build values.
type Value struct {
	typ  Type
	num  uint32 // bool (0/1), uint or the two's complement bits of int
	data []byte // octets
}

func BoolValue(b bool) Value {
	if b {
		return Value{typ: TypeBool, num: 1}
	}
	return Value{typ: TypeBool}
}

func UintValue(v uint32) Value { return Value{typ: TypeUint, num: v} }
func IntValue(v int32) Value   { return Value{typ: TypeInt, num: uint32(v)} }
func NoneValue() Value         { return Value{typ: TypeNone} }

// OctetsValue wraps b without copying it. A nil b is stored as an empty
// string so that it compares equal to a decoded zero-length value.
func OctetsValue(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{typ: TypeOctets, data: b}
}

// The accessors return the zero value when v holds another type.

func (v Value) Type() Type { return v.typ }
func (v Value) Bool() bool { return v.typ == TypeBool && v.num != 0 }

func (v Value) Uint() uint32 {
	if v.typ != TypeUint {
		return 0
	}
	return v.num
}

func (v Value) Int() int32 {
	if v.typ != TypeInt {
		return 0
	}
	return int32(v.num)
}

func (v Value) Octets() []byte { return v.data }
func (v Value) IsNone() bool   { return v.typ == TypeNone }

// Equal reports whether v and o have the same type and content.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeBool:
		return (v.num != 0) == (o.num != 0)
	case TypeUint, TypeInt:
		return v.num == o.num
	case TypeOctets:
		return bytes.Equal(v.data, o.data)
	case TypeNone:
		return true
	default:
		return false
	}
}

// String formats v the way ParseValue reads it back.
func (v Value) String() string {
	switch v.typ {
	case TypeBool:
		return strconv.FormatBool(v.Bool())
	case TypeUint:
		return strconv.FormatUint(uint64(v.num), 10)
	case TypeInt:
		return strconv.FormatInt(int64(v.Int()), 10)
	case TypeOctets:
		return "0x" + hex.EncodeToString(v.data)
	case TypeNone:
		return "none"
	default:
		return v.typ.String()
	}
}

// AppendValue appends the tag byte of v followed by its payload.
func AppendValue(dst []byte, v Value) ([]byte, error) {
	switch v.typ {
	case TypeBool:
		dst = append(dst, byte(TypeBool))
		if v.num != 0 {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil
	case TypeUint:
		dst = append(dst, byte(TypeUint))
		return AppendUint32(dst, v.num), nil
	case TypeInt:
		dst = append(dst, byte(TypeInt))
		return AppendInt32(dst, v.Int()), nil
	case TypeOctets:
		out, err := AppendOctets(append(dst, byte(TypeOctets)), v.data)
		if err != nil {
			return dst, shift(err, 1)
		}
		return out, nil
	case TypeNone:
		return append(dst, byte(TypeNone)), nil
	default:
		return dst, &Error{Kind: KindUnknownType, Detail: v.typ.String()}
	}
}

// EncodeValue returns the encoding of v in a new slice.
func EncodeValue(v Value) ([]byte, error) {
	return AppendValue(make([]byte, 0, valueCapacity(v)), v)
}

func valueCapacity(v Value) int {
	if v.typ == TypeOctets {
		return 3 + len(v.data)
	}
	return 5
}

// DecodeValue reads one tagged value from src.
// A tag outside the known set fails with KindUnknownType.
func DecodeValue(src []byte) (Value, int, error) {
	if len(src) == 0 {
		return Value{}, 0, truncated(0, "missing value tag")
	}
	payload := src[1:]
	switch t := Type(src[0]); t {
	case TypeBool:
		if len(payload) < 1 {
			return Value{}, 0, truncated(1, "bool needs 1 byte")
		}
		return BoolValue(payload[0] != 0), 2, nil
	case TypeUint:
		u, n, err := DecodeUint32(payload)
		if err != nil {
			return Value{}, 0, shift(err, 1)
		}
		return UintValue(u), 1 + n, nil
	case TypeInt:
		i, n, err := DecodeInt32(payload)
		if err != nil {
			return Value{}, 0, shift(err, 1)
		}
		return IntValue(i), 1 + n, nil
	case TypeOctets:
		b, n, err := DecodeOctets(payload)
		if err != nil {
			return Value{}, 0, shift(err, 1)
		}
		return OctetsValue(b), 1 + n, nil
	case TypeNone:
		return NoneValue(), 1, nil
	default:
		return Value{}, 0, &Error{Kind: KindUnknownType, Detail: t.String()}
	}
}

// valueSize returns the encoded size of the value at src without decoding it.
func valueSize(src []byte) (int, error) {
	if len(src) == 0 {
		return 0, truncated(0, "missing value tag")
	}
	var size int
	switch t := Type(src[0]); t {
	case TypeBool:
		size = 2
	case TypeUint, TypeInt:
		size = 5
	case TypeOctets:
		n, err := octetsSize(src[1:])
		if err != nil {
			return 0, shift(err, 1)
		}
		size = 1 + n
	case TypeNone:
		size = 1
	default:
		return 0, &Error{Kind: KindUnknownType, Detail: t.String()}
	}
	if size > len(src) {
		return 0, truncated(1, "%v needs %d bytes, have %d", Type(src[0]), size-1, len(src)-1)
	}
	return size, nil
}
