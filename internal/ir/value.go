package ir

import (
	"slices"
	"unicode/utf16"
)

// CanonValue is a sealed interface over the value types allowed in a
// canonical graph document. There is no float and no null: float payloads
// are carried as their IEEE-754 bit patterns, and absent optional fields
// are omitted.
type CanonValue interface {
	canonValue()
}

// CanonString is a string value. It is NFC-normalized when serialized.
type CanonString string

func (CanonString) canonValue() {}

// CanonInt is an integer value.
type CanonInt int64

func (CanonInt) canonValue() {}

// CanonBool is a boolean value.
type CanonBool bool

func (CanonBool) canonValue() {}

// CanonArray is an ordered list of values.
type CanonArray []CanonValue

func (CanonArray) canonValue() {}

// CanonObject maps keys to values. Use SortedKeys for deterministic
// iteration.
type CanonObject map[string]CanonValue

func (CanonObject) canonValue() {}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
// Go's native string order compares UTF-8 bytes and differs above U+FFFF.
func (obj CanonObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

func compareKeysRFC8785(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

func canonStrings(ss []string) CanonArray {
	arr := make(CanonArray, len(ss))
	for i, s := range ss {
		arr[i] = CanonString(s)
	}
	return arr
}

func canonInts[T ~int32 | ~int64 | ~uint32](vs []T) CanonArray {
	arr := make(CanonArray, len(vs))
	for i, v := range vs {
		arr[i] = CanonInt(int64(v))
	}
	return arr
}
