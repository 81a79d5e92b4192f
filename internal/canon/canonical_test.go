package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int64", int64(-100), "-100"},
		{"max int64", int64(9223372036854775807), "9223372036854775807"},
		{"bool", true, "true"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"strings", []string{"a", "b"}, `["a","b"]`},
		{"objects", []map[string]any{{"a": 1}}, `[{"a":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshal_SortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": map[string]any{"b": 1, "a": 2},
		"beta":  []any{"x", false},
	}
	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"beta":["x",false],"zebra":1}`, string(result))
}

func TestMarshal_UTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting 0xD800, below U+E000.
	obj := map[string]any{
		"\uE000":     1,
		"\U00010000": 2,
	}
	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshal_Escaping(t *testing.T) {
	result, err := Marshal("a\"b\\c\nd\x01<>&")
	require.NoError(t, err)
	assert.Equal(t, `"a\"b\\c\nd\u0001<>&"`, string(result))
}

func TestMarshal_NFC(t *testing.T) {
	decomposed, err := Marshal("e\u0301")
	require.NoError(t, err)
	composed, err := Marshal("\u00e9")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshal_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"float", 1.5, "floats are forbidden"},
		{"nil", nil, "null is forbidden"},
		{"nested float", map[string]any{"x": []any{float32(1)}}, `object["x"]: array[0]: floats`},
		{"struct", struct{}{}, "unsupported type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Marshal(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
