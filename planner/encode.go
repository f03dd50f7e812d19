package planner

import (
	"fmt"
	"math"

	"github.com/tegimeki/dbcgen"
)

// maskWidth returns the width-bit all-ones mask.
func maskWidth(width uint8) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// EncodeRaw clears and writes a signal's bits into payload: since every
// Position names exactly one destination bit and Positions has exactly
// Width entries, clearing the field and writing raw's bits collapse into
// one pass.
func (sp SignalPlan) EncodeRaw(payload []byte, raw uint64) {
	for i, pos := range sp.Positions {
		if (raw>>uint(i))&1 != 0 {
			payload[pos.Byte] |= 1 << pos.Bit
		} else {
			payload[pos.Byte] &^= 1 << pos.Bit
		}
	}
}

// Encode reverses this signal's decode plan: reverse-scale with
// half-away-from-zero rounding and range clamping when scaled, mask to
// width bits, then write via EncodeRaw. value must be a Go value of the
// type Type.GoType() names (the type Decode returns for the same signal).
//
// Encode returns ErrUnsupportedEncode for an unaligned big-endian signal:
// plan generation omits the encode operation for that case rather than
// failing the whole message, so BuildPlan already left EncodeOK false;
// Encode refuses to run rather than silently corrupting bits that a
// different signal may share.
func (sp SignalPlan) Encode(payload []byte, value interface{}) error {
	if !sp.EncodeOK {
		return fmt.Errorf("signal %q: %w", sp.Signal.Name, dbcgen.ErrUnsupportedEncode)
	}

	width := sp.Signal.Width
	signed := sp.Signal.Signedness == dbcgen.Signed

	if sp.Signal.IsScaled() {
		phys, err := toFloat64(value)
		if err != nil {
			return fmt.Errorf("signal %q: %w", sp.Signal.Name, err)
		}
		unscaled := (phys - sp.Signal.Offset) / sp.Signal.Scale
		rounded := math.Round(unscaled) // half-away-from-zero

		var lo, hi float64
		if signed {
			lo, hi = -math.Exp2(float64(width)-1), math.Exp2(float64(width)-1)-1
		} else {
			lo, hi = 0, math.Exp2(float64(width))-1
		}
		if rounded < lo {
			rounded = lo
		} else if rounded > hi {
			rounded = hi
		}

		var raw uint64
		if signed {
			raw = uint64(int64(rounded))
		} else {
			raw = uint64(rounded)
		}
		sp.EncodeRaw(payload, raw&maskWidth(width))
		return nil
	}

	// Unscaled signals are not range-clamped, only the reverse-scale path
	// above is: the native-width Go value is masked to width bits, the
	// same two's-complement truncation the emitted code performs with a
	// plain bitwise AND.
	if !signed {
		uv, err := toUint64(value)
		if err != nil {
			return fmt.Errorf("signal %q: %w", sp.Signal.Name, err)
		}
		sp.EncodeRaw(payload, uv&maskWidth(width))
		return nil
	}

	iv, err := toInt64(value)
	if err != nil {
		return fmt.Errorf("signal %q: %w", sp.Signal.Name, err)
	}
	sp.EncodeRaw(payload, uint64(iv)&maskWidth(width))
	return nil
}

func toFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("encode: value of type %T is not numeric", value)
	}
}

func toUint64(value interface{}) (uint64, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case uint8:
		return uint64(v), nil
	case uint16:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case uint64:
		return v, nil
	case int8:
		if v < 0 {
			return 0, nil
		}
		return uint64(v), nil
	case int16:
		if v < 0 {
			return 0, nil
		}
		return uint64(v), nil
	case int32:
		if v < 0 {
			return 0, nil
		}
		return uint64(v), nil
	case int64:
		if v < 0 {
			return 0, nil
		}
		return uint64(v), nil
	default:
		return 0, fmt.Errorf("encode: value of type %T is not an integer", value)
	}
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("encode: value of type %T is not an integer", value)
	}
}
