package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    CanonValue
		expected string
	}{
		{"string", CanonString("hello"), `"hello"`},
		{"empty string", CanonString(""), `""`},
		{"int", CanonInt(42), "42"},
		{"negative int", CanonInt(-100), "-100"},
		{"min int64", CanonInt(-9223372036854775808), "-9223372036854775808"},
		{"bool", CanonBool(true), "true"},
		{"empty array", CanonArray{}, "[]"},
		{"empty object", CanonObject{}, "{}"},
		{"nested", CanonObject{"z": CanonObject{"b": CanonInt(1), "a": CanonInt(2)}, "a": CanonInt(3)}, `{"a":3,"z":{"a":2,"b":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as the surrogate pair D800 DC00, which sorts before
	// U+E000 in UTF-16 even though its UTF-8 bytes sort after.
	obj := CanonObject{
		"\uE000":     CanonInt(1),
		"\U00010000": CanonInt(2),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalCanonicalStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no html escaping", "<a&b>", `"<a&b>"`},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"control characters", "a\nb\x01", `"a\nb\u0001"`},
		{"quote and backslash", `"\`, `"\"\\"`},
		{"nfc", "e\u0301", "\"\u00e9\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(CanonString(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalRejects(t *testing.T) {
	_, err := MarshalCanonical(CanonArray{nil})
	assert.ErrorContains(t, err, "null is forbidden")

	_, err = MarshalCanonical(CanonString("\xff"))
	assert.ErrorContains(t, err, "invalid UTF-8")
}
