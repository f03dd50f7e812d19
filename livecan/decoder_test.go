package livecan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tegimeki/dbcgen"
	"github.com/tegimeki/dbcgen/planner"
)

func TestDecoder_decodesKnownMessage(t *testing.T) {
	msg := dbcgen.MessageDescription{
		Name: "EngineStatus", ID: 0x100, DLC: 2,
		Signals: []dbcgen.SignalDescription{
			{Name: "rpm", StartBit: 0, Width: 16, ByteOrder: dbcgen.LittleEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
		},
	}
	plan, warnings := planner.BuildPlan(msg)
	assert.Empty(t, warnings)

	d := NewDecoder([]planner.AccessorPlan{plan})

	f := Frame{ID: 0x100, Length: 2, Data: [8]byte{0x34, 0x12}}
	decoded, err := d.Decode(f)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	assert.Equal(t, "EngineStatus", decoded.Message)
	assert.Equal(t, uint16(0x1234), decoded.Values["rpm"])
}

func TestDecoder_unknownID(t *testing.T) {
	d := NewDecoder(nil)
	_, err := d.Decode(Frame{ID: 0x999, Length: 1})
	assert.ErrorIs(t, err, dbcgen.ErrUnknownMessage)
}

func TestDecoder_badLength(t *testing.T) {
	msg := dbcgen.MessageDescription{
		Name: "M", ID: 1, DLC: 8,
		Signals: []dbcgen.SignalDescription{
			{Name: "a", StartBit: 0, Width: 8, ByteOrder: dbcgen.LittleEndian, Scale: 1, Offset: 0},
		},
	}
	plan, _ := planner.BuildPlan(msg)
	d := NewDecoder([]planner.AccessorPlan{plan})

	_, err := d.Decode(Frame{ID: 1, Length: 3})
	assert.ErrorIs(t, err, dbcgen.ErrBadLength)
}
