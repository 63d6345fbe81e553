package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual_Scalars(t *testing.T) {
	tests := []struct {
		name string
		a, b IRValue
		want bool
	}{
		{"equal strings", IRString("x"), IRString("x"), true},
		{"different strings", IRString("x"), IRString("y"), false},
		{"equal ints", IRInt(5), IRInt(5), true},
		{"different ints", IRInt(5), IRInt(6), false},
		{"equal floats", IRFloat(1.5), IRFloat(1.5), true},
		{"different floats", IRFloat(1.5), IRFloat(2.5), false},
		{"int never equals float", IRInt(5), IRFloat(5), false},
		{"equal bools", IRBool(true), IRBool(true), true},
		{"bool vs int", IRBool(true), IRInt(1), false},
		{"null equals null", IRNull{}, IRNull{}, true},
		{"null vs string", IRNull{}, IRString(""), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Equal(tc.a, tc.b))
			assert.Equal(t, tc.want, Equal(tc.b, tc.a), "Equal must be symmetric")
		})
	}
}

func TestEqual_Containers(t *testing.T) {
	a := IRObject{
		"pos":  IRArray{IRFloat(1.0), IRFloat(2.0), IRFloat(3.0)},
		"name": IRString("earth"),
	}
	b := IRObject{
		"name": IRString("earth"),
		"pos":  IRArray{IRFloat(1.0), IRFloat(2.0), IRFloat(3.0)},
	}
	assert.True(t, Equal(a, b))

	c := b.Clone()
	c["pos"].(IRArray)[2] = IRFloat(4.0)
	assert.False(t, Equal(a, c))

	assert.False(t, Equal(IRArray{IRInt(1)}, IRArray{IRInt(1), IRInt(2)}))
	assert.False(t, Equal(IRObject{"a": IRInt(1)}, IRObject{"b": IRInt(1)}))
}

func TestClone_Independent(t *testing.T) {
	orig := IRObject{"nested": IRObject{"v": IRInt(1)}}
	cp := orig.Clone()

	cp["nested"].(IRObject)["v"] = IRInt(2)
	assert.True(t, Equal(orig["nested"], IRObject{"v": IRInt(1)}), "mutating the clone must not affect the original")
}

func TestJSONRoundTrip(t *testing.T) {
	obj := IRObject{
		"s":   IRString("hello"),
		"i":   IRInt(42),
		"f":   IRFloat(3.25),
		"b":   IRBool(true),
		"arr": IRArray{IRInt(1), IRFloat(2.5), IRString("three")},
		"obj": IRObject{"inner": IRInt(7)},
	}

	data, err := json.Marshal(obj)
	require.NoError(t, err)

	var back IRObject
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, Equal(obj, back))
}

func TestUnmarshal_IntFloatDistinction(t *testing.T) {
	var obj IRObject
	require.NoError(t, json.Unmarshal([]byte(`{"i": 5, "f": 5.0, "e": 5e0}`), &obj))

	assert.IsType(t, IRInt(0), obj["i"])
	assert.IsType(t, IRFloat(0), obj["f"])
	assert.IsType(t, IRFloat(0), obj["e"])
}

func TestMarshal_WholeFloatKeepsFraction(t *testing.T) {
	data, err := MarshalIRValue(IRFloat(5))
	require.NoError(t, err)
	assert.Equal(t, "5.0", string(data), "whole-valued floats must not collapse to int notation")

	var back IRObject
	require.NoError(t, json.Unmarshal([]byte(`{"f": `+string(data)+`}`), &back))
	assert.IsType(t, IRFloat(0), back["f"], "int/float distinction must survive a round trip")
}

func TestMarshal_NonFiniteFloatRejected(t *testing.T) {
	_, err := MarshalIRValue(IRFloat(math.NaN()))
	assert.Error(t, err)

	_, err = MarshalIRValue(IRFloat(math.Inf(1)))
	assert.Error(t, err)
}

func TestFromGo(t *testing.T) {
	got, err := ObjectFromGo(map[string]any{
		"s": "x",
		"i": 3,
		"f": 1.5,
		"b": false,
		"a": []any{1, "two"},
		"o": map[string]any{"k": int64(9)},
	})
	require.NoError(t, err)

	want := IRObject{
		"s": IRString("x"),
		"i": IRInt(3),
		"f": IRFloat(1.5),
		"b": IRBool(false),
		"a": IRArray{IRInt(1), IRString("two")},
		"o": IRObject{"k": IRInt(9)},
	}
	assert.True(t, Equal(want, got))
}

func TestFromGo_NilRejected(t *testing.T) {
	_, err := FromGo(nil)
	assert.Error(t, err)

	_, err = ObjectFromGo(map[string]any{"v": nil})
	assert.Error(t, err)
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+FF01 (fullwidth !) sorts before U+1D306 in UTF-16 code units because
	// the latter encodes as a surrogate pair starting at 0xD834.
	obj := IRObject{
		"\U0001D306": IRInt(1),
		"\uff01":     IRInt(2),
		"a":          IRInt(3),
	}
	keys := obj.SortedKeys()
	assert.Equal(t, []string{"a", "\uff01", "\U0001D306"}, keys)
}
