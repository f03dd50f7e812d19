// Package planner is the core's DecodePlanner, EncodePlanner, MessageShape
// and FrameContract components combined: it turns a dbcgen.MessageDescription
// into an AccessorPlan, the per-message bundle of constants and per-signal
// decode/encode plans that the emit package renders into target-language
// source.
//
// Generator-time errors are per-signal and never abort the whole bundle: a
// signal whose bit footprint is out of range is dropped with a Warning, and
// an unaligned big-endian signal keeps its decode plan but drops its
// encode plan.
package planner

import (
	"fmt"

	"github.com/tegimeki/dbcgen"
	"github.com/tegimeki/dbcgen/bitlayout"
	"github.com/tegimeki/dbcgen/typeselect"
)

// SignalPlan is one signal's accessor plan: its chosen type and the
// bit-position list (value-LSB first) that both the reference interpreter
// below and the emit package build decode/encode code from.
type SignalPlan struct {
	Signal    dbcgen.SignalDescription
	Type      typeselect.Kind
	Positions []bitlayout.Position
	Aligned   bool
	// EncodeOK is false for unaligned big-endian signals: encoding those
	// is explicitly unsupported in this revision. Decode and constants
	// are unaffected.
	EncodeOK bool
}

// order converts the public dbcgen.ByteOrder into bitlayout's Order.
func order(o dbcgen.ByteOrder) bitlayout.Order {
	if o == dbcgen.BigEndian {
		return bitlayout.Motorola
	}
	return bitlayout.Intel
}

// AccessorPlan is the core's output for one message: message-level
// constants plus every signal that could be laid out within DLC bytes.
type AccessorPlan struct {
	Name      string
	ID        uint32
	Extended  bool
	DLC       uint8
	CycleTime *uint32
	Signals   []SignalPlan
}

// Warning is a generator-time, non-fatal finding produced while building a
// plan: a signal was dropped (ErrLayoutOutOfRange) or had its encode
// accessor omitted (ErrUnsupportedEncode).
type Warning struct {
	Message string
	Signal  string
	Err     error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s.%s: %v", w.Message, w.Signal, w.Err)
}

// BuildPlan builds the AccessorPlan for one message. names, when non-empty,
// is the opt-in set of signal names to materialise: if the caller declares
// a subset of desired signals for a message, only those accessors are
// materialised; an empty set materialises every signal.
//
// BuildPlan never fails for a single bad signal: out-of-range signals are
// skipped and reported as Warnings, so sibling signals and the message
// frame are still produced.
func BuildPlan(msg dbcgen.MessageDescription, names ...string) (AccessorPlan, []Warning) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	plan := AccessorPlan{
		Name:      msg.Name,
		ID:        msg.ID,
		Extended:  msg.Extended,
		DLC:       msg.DLC,
		CycleTime: msg.CycleTime,
		Signals:   make([]SignalPlan, 0, len(msg.Signals)),
	}
	var warnings []Warning

	for _, sig := range msg.Signals {
		if len(wanted) > 0 && !wanted[sig.Name] {
			continue
		}

		ord := order(sig.ByteOrder)
		positions, err := bitlayout.Walk(sig.StartBit, sig.Width, ord, msg.DLC)
		if err != nil {
			warnings = append(warnings, Warning{
				Message: msg.Name, Signal: sig.Name, Err: dbcgen.ErrLayoutOutOfRange,
			})
			continue
		}

		aligned := bitlayout.Aligned(sig.StartBit, sig.Width, ord)
		encodeOK := true
		if sig.ByteOrder == dbcgen.BigEndian && !aligned {
			encodeOK = false
			warnings = append(warnings, Warning{
				Message: msg.Name, Signal: sig.Name, Err: dbcgen.ErrUnsupportedEncode,
			})
		}

		plan.Signals = append(plan.Signals, SignalPlan{
			Signal:    sig,
			Type:      typeselect.Select(sig.Width, sig.Signedness == dbcgen.Signed, sig.Scale, sig.Offset),
			Positions: positions,
			Aligned:   aligned,
			EncodeOK:  encodeOK,
		})
	}

	return plan, warnings
}
