package livecan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tegimeki/dbcgen"
	"github.com/tegimeki/dbcgen/planner"
)

// Decoder matches live frames against a set of planner.AccessorPlan values
// by CAN ID, decoding each signal with the same reference interpreter the
// generator's own tests use (planner.SignalPlan.Decode), so a caller can
// compare a plan's decoded values with what is actually on the bus.
type Decoder struct {
	plansByID map[uint32]planner.AccessorPlan
}

// NewDecoder indexes plans by message ID for constant-time frame lookup.
func NewDecoder(plans []planner.AccessorPlan) *Decoder {
	d := &Decoder{plansByID: make(map[uint32]planner.AccessorPlan, len(plans))}
	for _, p := range plans {
		d.plansByID[p.ID] = p
	}
	return d
}

// Decoded is one frame resolved against a known message, with every
// signal's decoded value keyed by signal name.
type Decoded struct {
	Frame   Frame
	Message string
	Values  map[string]interface{}
}

// Decode resolves f against the indexed plans. It returns
// dbcgen.ErrUnknownMessage if no plan claims f.ID, and dbcgen.ErrBadLength
// if f's length does not match the plan's DLC.
func (d *Decoder) Decode(f Frame) (Decoded, error) {
	plan, ok := d.plansByID[f.ID]
	if !ok {
		return Decoded{}, fmt.Errorf("livecan: id %#x: %w", f.ID, dbcgen.ErrUnknownMessage)
	}
	if f.Length != plan.DLC {
		return Decoded{}, fmt.Errorf("livecan: message %s: %w", plan.Name, dbcgen.ErrBadLength)
	}

	payload := f.Payload()
	values := make(map[string]interface{}, len(plan.Signals))
	for _, sp := range plan.Signals {
		values[sp.Signal.Name] = sp.Decode(payload)
	}
	return Decoded{Frame: f, Message: plan.Name, Values: values}, nil
}

// Run reads frames from conn until ctx is cancelled, invoking onFrame for
// every frame this Decoder recognises. Unrecognised-ID and bad-length
// frames are silently skipped: a live bus carries traffic no single .dbc
// file fully describes.
func (d *Decoder) Run(ctx context.Context, conn *Connection, onFrame func(Decoded)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := conn.SetReadTimeout(200 * time.Millisecond); err != nil {
			return err
		}
		frame, err := conn.ReadFrame()
		if err != nil {
			if errors.Is(err, errReadTimeout) || errors.Is(err, errNonDataFrame) {
				continue
			}
			return err
		}

		decoded, err := d.Decode(frame)
		if err != nil {
			continue
		}
		onFrame(decoded)
	}
}
