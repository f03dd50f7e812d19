package emit

import (
	"fmt"
	"math"
	"strings"

	"github.com/tegimeki/dbcgen"
	"github.com/tegimeki/dbcgen/planner"
	"github.com/tegimeki/dbcgen/typeselect"
)

type renderMessage struct {
	Name      string
	ID        uint32
	Extended  bool
	DLC       uint8
	HasCycle  bool
	CycleTime uint32
	Signals   []renderSignal
}

type renderSignal struct {
	FieldName  string
	GoType     string
	HasEncode  bool
	DecodeBody string
	EncodeBody string
	Labels     []renderLabel
}

type renderLabel struct {
	ConstName string
	Raw       int64
}

func buildMessages(plans []planner.AccessorPlan) []renderMessage {
	out := make([]renderMessage, 0, len(plans))
	for _, p := range plans {
		rm := renderMessage{
			Name: title(p.Name), ID: p.ID, Extended: p.Extended, DLC: p.DLC,
		}
		if p.CycleTime != nil {
			rm.HasCycle = true
			rm.CycleTime = *p.CycleTime
		}
		for _, sp := range p.Signals {
			rm.Signals = append(rm.Signals, buildSignal(rm.Name, sp))
		}
		out = append(out, rm)
	}
	return out
}

func buildSignal(msgName string, sp planner.SignalPlan) renderSignal {
	rs := renderSignal{
		FieldName: title(sp.Signal.Name),
		GoType:    sp.Type.GoType(),
		HasEncode: sp.EncodeOK,
	}
	rs.DecodeBody = decodeBody(sp)
	if sp.EncodeOK {
		rs.EncodeBody = encodeBody(sp)
	}
	for _, vl := range sp.Signal.ValueTable {
		rs.Labels = append(rs.Labels, renderLabel{
			ConstName: msgName + rs.FieldName + title(sanitizeLabel(vl.Label)),
			Raw:       vl.Raw,
		})
	}
	return rs
}

func sanitizeLabel(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// rawLoadStatements returns the Go statements and final expression that
// assemble the signal's raw width-bit unsigned value out of payload. For
// aligned signals of 8, 16, 32 or 64 bits this is a single byte-wise or
// encoding/binary load expression with no statements; for everything else
// it falls back to a per-bit walk, unrolled as one statement per bit, which
// always produces the same result as the optimised shapes.
func rawLoadStatements(sp planner.SignalPlan) (stmts []string, expr string) {
	width := sp.Signal.Width
	if sp.Aligned {
		minByte := sp.Positions[0].Byte
		for _, p := range sp.Positions {
			if p.Byte < minByte {
				minByte = p.Byte
			}
		}
		switch width {
		case 8:
			return nil, fmt.Sprintf("uint64(payload[%d])", minByte)
		case 16:
			fn := "binary.LittleEndian.Uint16"
			if sp.Signal.ByteOrder.String() == "big" {
				fn = "binary.BigEndian.Uint16"
			}
			return nil, fmt.Sprintf("uint64(%s(payload[%d:%d]))", fn, minByte, minByte+2)
		case 32:
			fn := "binary.LittleEndian.Uint32"
			if sp.Signal.ByteOrder.String() == "big" {
				fn = "binary.BigEndian.Uint32"
			}
			return nil, fmt.Sprintf("uint64(%s(payload[%d:%d]))", fn, minByte, minByte+4)
		case 64:
			fn := "binary.LittleEndian.Uint64"
			if sp.Signal.ByteOrder.String() == "big" {
				fn = "binary.BigEndian.Uint64"
			}
			return nil, fmt.Sprintf("%s(payload[%d:%d])", fn, minByte, minByte+8)
		}
	}

	lines := make([]string, 0, width+1)
	lines = append(lines, "var raw uint64")
	for i, pos := range sp.Positions {
		lines = append(lines, fmt.Sprintf("raw |= uint64(payload[%d]>>%d&1) << %d", pos.Byte, pos.Bit, i))
	}
	return lines, "raw"
}

func decodeBody(sp planner.SignalPlan) string {
	width := sp.Signal.Width
	signed := sp.Signal.Signedness == dbcgen.Signed

	stmts, expr := rawLoadStatements(sp)
	var b strings.Builder
	for _, s := range stmts {
		fmt.Fprintln(&b, s)
	}
	if stmts == nil {
		fmt.Fprintf(&b, "raw := %s\n", expr)
		expr = "raw"
	}

	if sp.Signal.IsScaled() {
		if signed {
			fmt.Fprintf(&b, "if %s&%#x != 0 {\n\t%s |= %#x\n}\n", expr, uint64(1)<<(width-1), expr, signExtMask(width))
			fmt.Fprintf(&b, "return float32(float64(int64(%s))*%s + %s)\n", expr, floatLit(sp.Signal.Scale), floatLit(sp.Signal.Offset))
		} else {
			fmt.Fprintf(&b, "return float32(float64(%s)*%s + %s)\n", expr, floatLit(sp.Signal.Scale), floatLit(sp.Signal.Offset))
		}
		return b.String()
	}

	if sp.Type == typeselect.Bool {
		fmt.Fprintf(&b, "return %s != 0\n", expr)
		return b.String()
	}

	if signed {
		fmt.Fprintf(&b, "if %s&%#x != 0 {\n\t%s |= %#x\n}\n", expr, uint64(1)<<(width-1), expr, signExtMask(width))
		fmt.Fprintf(&b, "return %s(int64(%s))\n", sp.Type.GoType(), expr)
		return b.String()
	}
	fmt.Fprintf(&b, "return %s(%s)\n", sp.Type.GoType(), expr)
	return b.String()
}

func signExtMask(width uint8) uint64 {
	if width >= 64 {
		return 0
	}
	return ^uint64(0) << width
}

func floatLit(f float64) string {
	return fmt.Sprintf("%g", f)
}

// storeStatements writes the bits of a uint64 "raw" variable into payload,
// either as an aligned byte-wise/encoding-binary store or as a per-bit
// walk, unrolled.
func storeStatements(sp planner.SignalPlan) []string {
	width := sp.Signal.Width
	if sp.Aligned {
		minByte := sp.Positions[0].Byte
		for _, p := range sp.Positions {
			if p.Byte < minByte {
				minByte = p.Byte
			}
		}
		switch width {
		case 8:
			return []string{fmt.Sprintf("payload[%d] = byte(raw)", minByte)}
		case 16:
			fn := "binary.LittleEndian.PutUint16"
			if sp.Signal.ByteOrder.String() == "big" {
				fn = "binary.BigEndian.PutUint16"
			}
			return []string{fmt.Sprintf("%s(payload[%d:%d], uint16(raw))", fn, minByte, minByte+2)}
		case 32:
			fn := "binary.LittleEndian.PutUint32"
			if sp.Signal.ByteOrder.String() == "big" {
				fn = "binary.BigEndian.PutUint32"
			}
			return []string{fmt.Sprintf("%s(payload[%d:%d], uint32(raw))", fn, minByte, minByte+4)}
		case 64:
			fn := "binary.LittleEndian.PutUint64"
			if sp.Signal.ByteOrder.String() == "big" {
				fn = "binary.BigEndian.PutUint64"
			}
			return []string{fmt.Sprintf("%s(payload[%d:%d], raw)", fn, minByte, minByte+8)}
		}
	}

	lines := make([]string, 0, len(sp.Positions))
	for i, pos := range sp.Positions {
		lines = append(lines, fmt.Sprintf(
			"if raw>>%d&1 != 0 { payload[%d] |= 1<<%d } else { payload[%d] &^= 1<<%d }",
			i, pos.Byte, pos.Bit, pos.Byte, pos.Bit))
	}
	return lines
}

func encodeBody(sp planner.SignalPlan) string {
	width := sp.Signal.Width
	signed := sp.Signal.Signedness == dbcgen.Signed
	mask := maskWidth(width)

	var b strings.Builder
	if sp.Signal.IsScaled() {
		var lo, hi float64
		if signed {
			lo, hi = -math.Exp2(float64(width)-1), math.Exp2(float64(width)-1)-1
		} else {
			lo, hi = 0, math.Exp2(float64(width))-1
		}
		fmt.Fprintf(&b, "unscaled := (float64(v) - %s) / %s\n", floatLit(sp.Signal.Offset), floatLit(sp.Signal.Scale))
		fmt.Fprintln(&b, "rounded := math.Round(unscaled)")
		fmt.Fprintf(&b, "if rounded < %s {\nrounded = %s\n} else if rounded > %s {\nrounded = %s\n}\n", floatLit(lo), floatLit(lo), floatLit(hi), floatLit(hi))
		if signed {
			fmt.Fprintf(&b, "raw := uint64(int64(rounded)) & %#x\n", mask)
		} else {
			fmt.Fprintf(&b, "raw := uint64(rounded) & %#x\n", mask)
		}
	} else if signed {
		fmt.Fprintf(&b, "raw := uint64(int64(v)) & %#x\n", mask)
	} else {
		fmt.Fprintf(&b, "raw := uint64(v) & %#x\n", mask)
	}

	for _, line := range storeStatements(sp) {
		fmt.Fprintln(&b, line)
	}
	return b.String()
}

func maskWidth(width uint8) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}
