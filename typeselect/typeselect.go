// Package typeselect implements the core's per-signal return-type choice:
// the narrowest native integer, boolean, or 32-bit float that faithfully
// holds every decoded value of a signal. The choice is deterministic and
// part of the generated accessor's public contract.
package typeselect

// Kind is a chosen native accessor type.
type Kind uint8

const (
	Bool Kind = iota
	Uint8
	Uint16
	Uint32
	Uint64
	Int8
	Int16
	Int32
	Int64
	Float32
)

// GoType returns the Go spelling of the kind, as used by the emitter.
func (k Kind) GoType() string {
	switch k {
	case Bool:
		return "bool"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	default:
		return "uint64"
	}
}

// HolderBits is the bit width of the native type chosen to hold the
// signal's raw value (ignoring Float32, which always decodes through a
// 64-bit intermediate regardless of signal width).
func (k Kind) HolderBits() uint8 {
	switch k {
	case Bool, Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32, Float32:
		return 32
	default:
		return 64
	}
}

// IsSigned reports whether the kind's native representation is signed.
func (k Kind) IsSigned() bool {
	switch k {
	case Int8, Int16, Int32, Int64, Float32:
		return true
	default:
		return false
	}
}

// Select chooses the accessor type for a signal given its width,
// signedness and (scale, offset), applying these rules in order:
//
//  1. width=1, unsigned, unscaled -> bool.
//  2. scaled ((scale, offset) != (1, 0)) -> float32.
//  3. otherwise the smallest native integer of the signal's signedness
//     whose bit count is >= width, from {8, 16, 32, 64}.
func Select(width uint8, signed bool, scale, offset float64) Kind {
	if width == 1 && !signed && scale == 1 && offset == 0 {
		return Bool
	}
	if scale != 1 || offset != 0 {
		return Float32
	}
	if signed {
		switch {
		case width <= 8:
			return Int8
		case width <= 16:
			return Int16
		case width <= 32:
			return Int32
		default:
			return Int64
		}
	}
	switch {
	case width <= 8:
		return Uint8
	case width <= 16:
		return Uint16
	case width <= 32:
		return Uint32
	default:
		return Uint64
	}
}
