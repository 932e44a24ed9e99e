package mib

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ParseType reads a type name as printed by Type.String.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "bool":
		return TypeBool, nil
	case "uint":
		return TypeUint, nil
	case "int":
		return TypeInt, nil
	case "octets":
		return TypeOctets, nil
	case "none":
		return TypeNone, nil
	default:
		return 0, fmt.Errorf("unknown value type %q", s)
	}
}

// ParseValue reads s as a value of type t. Octets are hex, with or without a
// 0x prefix. Integers accept any base strconv understands.
func ParseValue(t Type, s string) (Value, error) {
	switch t {
	case TypeBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, fmt.Errorf("bool value %q: %w", s, err)
		}
		return BoolValue(b), nil
	case TypeUint:
		u, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return Value{}, fmt.Errorf("uint value %q: %w", s, err)
		}
		return UintValue(uint32(u)), nil
	case TypeInt:
		i, err := strconv.ParseInt(s, 0, 32)
		if err != nil {
			return Value{}, fmt.Errorf("int value %q: %w", s, err)
		}
		return IntValue(int32(i)), nil
	case TypeOctets:
		b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return Value{}, fmt.Errorf("octets value %q: %w", s, err)
		}
		if len(b) > MaxOctetsLength {
			return Value{}, fmt.Errorf("octets value of %d bytes exceeds %d", len(b), MaxOctetsLength)
		}
		return OctetsValue(b), nil
	case TypeNone:
		return NoneValue(), nil
	default:
		return Value{}, fmt.Errorf("unknown value type %v", t)
	}
}
