package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tegimeki/dbcgen"
)

func u32(v uint32) *uint32 { return &v }

func TestBuildPlan_scenario1AlignedLittleEndian(t *testing.T) {
	msg := dbcgen.MessageDescription{
		Name: "M1", ID: 0x100, DLC: 8,
		Signals: []dbcgen.SignalDescription{
			{Name: "signed8", StartBit: 0, Width: 8, ByteOrder: dbcgen.LittleEndian, Signedness: dbcgen.Signed, Scale: 1, Offset: 0},
			{Name: "unsigned8", StartBit: 8, Width: 8, ByteOrder: dbcgen.LittleEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
			{Name: "unsigned16", StartBit: 16, Width: 16, ByteOrder: dbcgen.LittleEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
			{Name: "unsigned32", StartBit: 32, Width: 32, ByteOrder: dbcgen.LittleEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
		},
	}
	plan, warnings := BuildPlan(msg)
	assert.Empty(t, warnings)

	payload := []byte{0xFE, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0}
	got := map[string]interface{}{}
	for _, sp := range plan.Signals {
		got[sp.Signal.Name] = sp.Decode(payload)
	}
	assert.Equal(t, int8(-2), got["signed8"])
	assert.Equal(t, uint8(0x34), got["unsigned8"])
	assert.Equal(t, uint16(0x7856), got["unsigned16"])
	assert.Equal(t, uint32(0xF0DEBC9A), got["unsigned32"])
}

func TestBuildPlan_scenario2AlignedBigEndian(t *testing.T) {
	msg := dbcgen.MessageDescription{
		Name: "M2", ID: 0x101, DLC: 8,
		Signals: []dbcgen.SignalDescription{
			{Name: "signed8", StartBit: 7, Width: 8, ByteOrder: dbcgen.BigEndian, Signedness: dbcgen.Signed, Scale: 1, Offset: 0},
			{Name: "unsigned8", StartBit: 15, Width: 8, ByteOrder: dbcgen.BigEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
			{Name: "unsigned16", StartBit: 23, Width: 16, ByteOrder: dbcgen.BigEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
			{Name: "unsigned32", StartBit: 39, Width: 32, ByteOrder: dbcgen.BigEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
		},
	}
	plan, warnings := BuildPlan(msg)
	assert.Empty(t, warnings)

	payload := []byte{0xFE, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0}
	got := map[string]interface{}{}
	for _, sp := range plan.Signals {
		got[sp.Signal.Name] = sp.Decode(payload)
	}
	assert.Equal(t, int8(-2), got["signed8"])
	assert.Equal(t, uint8(0x34), got["unsigned8"])
	assert.Equal(t, uint16(0x5678), got["unsigned16"])
	assert.Equal(t, uint32(0x9ABCDEF0), got["unsigned32"])
}

func TestBuildPlan_scenario3UnalignedLittleEndian(t *testing.T) {
	msg := dbcgen.MessageDescription{
		Name: "M3", ID: 0x102, DLC: 8,
		Signals: []dbcgen.SignalDescription{
			{Name: "f15", StartBit: 43, Width: 15, ByteOrder: dbcgen.LittleEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
			{Name: "f23", StartBit: 18, Width: 23, ByteOrder: dbcgen.LittleEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
			{Name: "f3", StartBit: 11, Width: 3, ByteOrder: dbcgen.LittleEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
		},
	}
	plan, warnings := BuildPlan(msg)
	assert.Empty(t, warnings)

	allOnes := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	zero := make([]byte, 8)
	for _, sp := range plan.Signals {
		max := sp.Decode(allOnes)
		min := sp.Decode(zero)
		switch sp.Signal.Name {
		case "f15":
			assert.Equal(t, uint16(0x7FFF), max)
			assert.Equal(t, uint16(0), min)
		case "f23":
			assert.Equal(t, uint32(0x7FFFFF), max)
			assert.Equal(t, uint32(0), min)
		case "f3":
			assert.Equal(t, uint8(0x7), max)
			assert.Equal(t, uint8(0), min)
		}
	}
}

func TestBuildPlan_scenario4ScaledSignal(t *testing.T) {
	msg := dbcgen.MessageDescription{
		Name: "M4", ID: 0x103, DLC: 8,
		Signals: []dbcgen.SignalDescription{
			{Name: "temp", StartBit: 8, Width: 8, ByteOrder: dbcgen.LittleEndian, Signedness: dbcgen.Unsigned, Scale: 0.5, Offset: 0.25},
		},
	}
	plan, warnings := BuildPlan(msg)
	assert.Empty(t, warnings)
	sp := plan.Signals[0]

	payload := make([]byte, 8)
	payload[1] = 0x04
	got := sp.Decode(payload)
	assert.Equal(t, float32(2.25), got)

	out := make([]byte, 8)
	assert.NoError(t, sp.Encode(out, float32(2.25)))
	assert.Equal(t, byte(0x04), out[1])
}

func TestBuildPlan_scenario5Full64Bit(t *testing.T) {
	msg := dbcgen.MessageDescription{
		Name: "M5", ID: 0x104, DLC: 8,
		Signals: []dbcgen.SignalDescription{
			{Name: "all64", StartBit: 0, Width: 64, ByteOrder: dbcgen.LittleEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
		},
	}
	plan, warnings := BuildPlan(msg)
	assert.Empty(t, warnings)

	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	got := plan.Signals[0].Decode(payload)
	assert.Equal(t, uint64(0x0807060504030201), got)
}

func TestBuildPlan_scenario6CycleTime(t *testing.T) {
	withCycle := dbcgen.MessageDescription{Name: "WithCycle", ID: 1, DLC: 1, CycleTime: u32(100)}
	without := dbcgen.MessageDescription{Name: "Without", ID: 2, DLC: 1}

	planWith, _ := BuildPlan(withCycle)
	planWithout, _ := BuildPlan(without)

	if assert.NotNil(t, planWith.CycleTime) {
		assert.Equal(t, uint32(100), *planWith.CycleTime)
	}
	assert.Nil(t, planWithout.CycleTime)
}

func TestBuildPlan_layoutOutOfRangeIsPerSignal(t *testing.T) {
	msg := dbcgen.MessageDescription{
		Name: "M6", ID: 1, DLC: 1,
		Signals: []dbcgen.SignalDescription{
			{Name: "ok", StartBit: 0, Width: 8, ByteOrder: dbcgen.LittleEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
			{Name: "bad", StartBit: 8, Width: 8, ByteOrder: dbcgen.LittleEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
		},
	}
	plan, warnings := BuildPlan(msg)
	if assert.Len(t, warnings, 1) {
		assert.Equal(t, "bad", warnings[0].Signal)
		assert.ErrorIs(t, warnings[0].Err, dbcgen.ErrLayoutOutOfRange)
	}
	assert.Len(t, plan.Signals, 1)
	assert.Equal(t, "ok", plan.Signals[0].Signal.Name)
}

func TestBuildPlan_unsupportedEncodeKeepsDecode(t *testing.T) {
	msg := dbcgen.MessageDescription{
		Name: "M7", ID: 1, DLC: 8,
		Signals: []dbcgen.SignalDescription{
			{Name: "unaligned_be", StartBit: 10, Width: 7, ByteOrder: dbcgen.BigEndian, Signedness: dbcgen.Unsigned, Scale: 1, Offset: 0},
		},
	}
	plan, warnings := BuildPlan(msg)
	if assert.Len(t, warnings, 1) {
		assert.ErrorIs(t, warnings[0].Err, dbcgen.ErrUnsupportedEncode)
	}
	require := plan.Signals[0]
	assert.False(t, require.EncodeOK)

	payload := make([]byte, 8)
	err := require.Encode(payload, uint8(1))
	assert.ErrorIs(t, err, dbcgen.ErrUnsupportedEncode)
}

func TestBuildPlan_signalFilter(t *testing.T) {
	msg := dbcgen.MessageDescription{
		Name: "M8", ID: 1, DLC: 2,
		Signals: []dbcgen.SignalDescription{
			{Name: "a", StartBit: 0, Width: 8, ByteOrder: dbcgen.LittleEndian, Scale: 1, Offset: 0},
			{Name: "b", StartBit: 8, Width: 8, ByteOrder: dbcgen.LittleEndian, Scale: 1, Offset: 0},
		},
	}
	plan, warnings := BuildPlan(msg, "b")
	assert.Empty(t, warnings)
	if assert.Len(t, plan.Signals, 1) {
		assert.Equal(t, "b", plan.Signals[0].Signal.Name)
	}
}

func TestBuildPlan_zeroPayloadDefaults(t *testing.T) {
	msg := dbcgen.MessageDescription{
		Name: "M9", ID: 1, DLC: 4,
		Signals: []dbcgen.SignalDescription{
			{Name: "flag", StartBit: 0, Width: 1, ByteOrder: dbcgen.LittleEndian, Scale: 1, Offset: 0},
			{Name: "u", StartBit: 1, Width: 7, ByteOrder: dbcgen.LittleEndian, Scale: 1, Offset: 0},
			{Name: "i", StartBit: 8, Width: 8, ByteOrder: dbcgen.LittleEndian, Signedness: dbcgen.Signed, Scale: 1, Offset: 0},
			{Name: "f", StartBit: 16, Width: 8, ByteOrder: dbcgen.LittleEndian, Scale: 0.1, Offset: 5},
		},
	}
	plan, warnings := BuildPlan(msg)
	assert.Empty(t, warnings)

	zero := make([]byte, 4)
	for _, sp := range plan.Signals {
		got := sp.Decode(zero)
		switch sp.Signal.Name {
		case "flag":
			assert.Equal(t, false, got)
		case "u":
			assert.Equal(t, uint8(0), got)
		case "i":
			assert.Equal(t, int8(0), got)
		case "f":
			assert.Equal(t, float32(5), got)
		}
	}
}
