package planner

import "github.com/tegimeki/dbcgen"

// DecodeRaw assembles a signal's raw bit pattern out of payload: it walks
// Positions value-LSB first, ORing each payload bit into its accumulator
// position. Because Positions always holds exactly Width entries, the
// accumulator never carries bits above position Width-1, so a separate
// masking step is unnecessary.
func (sp SignalPlan) DecodeRaw(payload []byte) uint64 {
	var raw uint64
	for i, pos := range sp.Positions {
		bit := (payload[pos.Byte] >> pos.Bit) & 1
		raw |= uint64(bit) << uint(i)
	}
	return raw
}

// signExtend replicates bit width-1 up through all 64 bits, using the
// xor-subtract trick. raw is not masked here: it must carry no bits above
// width-1, which DecodeRaw guarantees.
func signExtend(raw uint64, width uint8) uint64 {
	if width >= 64 {
		return raw
	}
	signBit := uint64(1) << (width - 1)
	return (raw ^ signBit) - signBit
}

// Decode runs this signal's full decode plan (assemble, sign-extend if
// signed, scale if scaled, coerce to bool if boolean) and returns a value
// of the Go type Type.GoType() names. It is the core's reference
// interpreter, used by generator-time round-trip tests and by livecan's
// debug decoder; the zero-dependency code the emit package generates for
// application use implements the same steps as literal Go source.
func (sp SignalPlan) Decode(payload []byte) interface{} {
	raw := sp.DecodeRaw(payload)
	width := sp.Signal.Width
	signed := sp.Signal.Signedness == dbcgen.Signed

	if sp.Signal.IsScaled() {
		var base float64
		if signed {
			base = float64(int64(signExtend(raw, width)))
		} else {
			base = float64(raw)
		}
		return float32(base*sp.Signal.Scale + sp.Signal.Offset)
	}

	if signed {
		sraw := int64(signExtend(raw, width))
		switch sp.Type.HolderBits() {
		case 8:
			return int8(sraw)
		case 16:
			return int16(sraw)
		case 32:
			return int32(sraw)
		default:
			return sraw
		}
	}

	if sp.Type.GoType() == "bool" {
		return raw != 0
	}
	switch sp.Type.HolderBits() {
	case 8:
		return uint8(raw)
	case 16:
		return uint16(raw)
	case 32:
		return uint32(raw)
	default:
		return raw
	}
}
