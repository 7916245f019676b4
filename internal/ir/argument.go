package ir

import (
	"fmt"
	"slices"
)

// ScalarKind is one of the three scalar slots an Argument may carry.
type ScalarKind uint8

const (
	KindFloat ScalarKind = 1 << iota
	KindInt
	KindString
)

func (k ScalarKind) String() string {
	switch k {
	case KindFloat:
		return "f"
	case KindInt:
		return "i"
	case KindString:
		return "s"
	default:
		return fmt.Sprintf("ScalarKind(%d)", uint8(k))
	}
}

// Argument is a named operator or graph attribute.
//
// The three scalar slots are independent: setting one never clears another,
// so an Argument may carry more than one scalar kind at once. Readers that
// expect a single kind should check the matching Has* method.
//
// Argument is a value type. Use Clone for a copy that shares no storage.
type Argument struct {
	name    string
	f       float32
	i       int64
	s       string
	floats  []float32
	ints    []int64
	strings []string
	has     ScalarKind
}

// NewArgument returns an empty argument with the given name.
func NewArgument(name string) Argument {
	return Argument{name: name}
}

func (a *Argument) Name() string           { return a.name }
func (a *Argument) SetName(name string)    { a.name = name }
func (a *Argument) HasF() bool             { return a.has&KindFloat != 0 }
func (a *Argument) HasI() bool             { return a.has&KindInt != 0 }
func (a *Argument) HasS() bool             { return a.has&KindString != 0 }
func (a *Argument) SetF(v float32)         { a.f = v; a.has |= KindFloat }
func (a *Argument) SetI(v int64)           { a.i = v; a.has |= KindInt }
func (a *Argument) SetS(v string)          { a.s = v; a.has |= KindString }
func (a *Argument) AddFloats(v ...float32) { a.floats = append(a.floats, v...) }
func (a *Argument) AddInts(v ...int64)     { a.ints = append(a.ints, v...) }
func (a *Argument) AddStrings(v ...string) { a.strings = append(a.strings, v...) }

// F returns the float scalar, or a *PresenceError if it was never set.
func (a *Argument) F() (float32, error) {
	if !a.HasF() {
		return 0, a.presenceErr(KindFloat)
	}
	return a.f, nil
}

// I returns the int64 scalar, or a *PresenceError if it was never set.
func (a *Argument) I() (int64, error) {
	if !a.HasI() {
		return 0, a.presenceErr(KindInt)
	}
	return a.i, nil
}

// S returns the string scalar, or a *PresenceError if it was never set.
func (a *Argument) S() (string, error) {
	if !a.HasS() {
		return "", a.presenceErr(KindString)
	}
	return a.s, nil
}

// MustF is like F but panics on a presence violation.
func (a *Argument) MustF() float32 { return must(a.F()) }

// MustI is like I but panics on a presence violation.
func (a *Argument) MustI() int64 { return must(a.I()) }

// MustS is like S but panics on a presence violation.
func (a *Argument) MustS() string { return must(a.S()) }

// Kinds returns the scalar kinds currently present, in f, i, s order.
func (a *Argument) Kinds() []ScalarKind {
	var kinds []ScalarKind
	for _, k := range []ScalarKind{KindFloat, KindInt, KindString} {
		if a.has&k != 0 {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Floats returns a copy of the float list.
func (a *Argument) Floats() []float32 { return slices.Clone(a.floats) }

// Ints returns a copy of the int list.
func (a *Argument) Ints() []int64 { return slices.Clone(a.ints) }

// Strings returns a copy of the string list.
func (a *Argument) Strings() []string { return slices.Clone(a.strings) }

// SetFloats replaces the float list with a copy of v.
func (a *Argument) SetFloats(v []float32) { a.floats = slices.Clone(v) }

// SetInts replaces the int list with a copy of v.
func (a *Argument) SetInts(v []int64) { a.ints = slices.Clone(v) }

// SetStrings replaces the string list with a copy of v.
func (a *Argument) SetStrings(v []string) { a.strings = slices.Clone(v) }

// Clone returns a deep copy, presence flags included.
func (a Argument) Clone() Argument {
	a.floats = slices.Clone(a.floats)
	a.ints = slices.Clone(a.ints)
	a.strings = slices.Clone(a.strings)
	return a
}

// CopyFrom overwrites a with a deep copy of src.
func (a *Argument) CopyFrom(src *Argument) {
	*a = src.Clone()
}

// Equal reports whether a and b carry the same name, presence and values.
func (a *Argument) Equal(b *Argument) bool {
	if a.name != b.name || a.has != b.has {
		return false
	}
	if a.HasF() && a.f != b.f || a.HasI() && a.i != b.i || a.HasS() && a.s != b.s {
		return false
	}
	return slices.Equal(a.floats, b.floats) &&
		slices.Equal(a.ints, b.ints) &&
		slices.Equal(a.strings, b.strings)
}

func (a *Argument) presenceErr(k ScalarKind) error {
	return &PresenceError{Entity: fmt.Sprintf("argument %q", a.name), Field: k.String()}
}

// argValues returns deep copies of an attribute list.
func argValues(args []*Argument) []Argument {
	if args == nil {
		return nil
	}
	out := make([]Argument, len(args))
	for i, a := range args {
		out[i] = a.Clone()
	}
	return out
}

func cloneArgPtrs(args []*Argument) []*Argument {
	if args == nil {
		return nil
	}
	out := make([]*Argument, len(args))
	for i, a := range args {
		c := a.Clone()
		out[i] = &c
	}
	return out
}

// lastArgByName implements last-match-wins lookup over an attribute list.
func lastArgByName(args []*Argument, name string) (Argument, bool) {
	for i := len(args) - 1; i >= 0; i-- {
		if args[i].name == name {
			return args[i].Clone(), true
		}
	}
	return Argument{}, false
}
