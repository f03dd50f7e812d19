package typeselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	var testCases = []struct {
		name        string
		whenWidth   uint8
		whenSigned  bool
		whenScale   float64
		whenOffset  float64
		expect      Kind
	}{
		{name: "1 bit unsigned unscaled is bool", whenWidth: 1, whenSigned: false, whenScale: 1, whenOffset: 0, expect: Bool},
		{name: "1 bit signed unscaled is int8, not bool", whenWidth: 1, whenSigned: true, whenScale: 1, whenOffset: 0, expect: Int8},
		{name: "1 bit scaled is float32, not bool", whenWidth: 1, whenSigned: false, whenScale: 0.5, whenOffset: 0, expect: Float32},
		{name: "8 bit unsigned unscaled", whenWidth: 8, whenSigned: false, whenScale: 1, whenOffset: 0, expect: Uint8},
		{name: "8 bit signed unscaled", whenWidth: 8, whenSigned: true, whenScale: 1, whenOffset: 0, expect: Int8},
		{name: "13 bit unsigned widens to uint16", whenWidth: 13, whenSigned: false, whenScale: 1, whenOffset: 0, expect: Uint16},
		{name: "17 bit signed widens to int32", whenWidth: 17, whenSigned: true, whenScale: 1, whenOffset: 0, expect: Int32},
		{name: "33 bit unsigned widens to uint64", whenWidth: 33, whenSigned: false, whenScale: 1, whenOffset: 0, expect: Uint64},
		{name: "64 bit signed stays int64", whenWidth: 64, whenSigned: true, whenScale: 1, whenOffset: 0, expect: Int64},
		{name: "any width scaled is float32", whenWidth: 32, whenSigned: true, whenScale: 0.1, whenOffset: 5, expect: Float32},
		{name: "offset alone forces float32", whenWidth: 8, whenSigned: false, whenScale: 1, whenOffset: 1, expect: Float32},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Select(tc.whenWidth, tc.whenSigned, tc.whenScale, tc.whenOffset)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestKind_GoType(t *testing.T) {
	assert.Equal(t, "bool", Bool.GoType())
	assert.Equal(t, "uint8", Uint8.GoType())
	assert.Equal(t, "int64", Int64.GoType())
	assert.Equal(t, "float32", Float32.GoType())
}
