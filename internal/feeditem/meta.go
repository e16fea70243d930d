// Package feeditem defines the universal card and supporting value types
// shared by every source adapter, the tier assembler, and the detail
// assembler.
package feeditem

import "fmt"

// MetaValue is an opaque, tagged-variant value carried in a FeedItem's
// Meta map. Adapters populate whichever keys their source supports
// (subreddit, channelName, queryName, eventKind, bridgeExists, ...); the
// filter resolver and detail assembler read them back by key.
type MetaValue struct {
	str  string
	i    int64
	f    float64
	b    bool
	list []MetaValue
	kind metaKind
}

type metaKind int

const (
	metaKindString metaKind = iota
	metaKindInt
	metaKindFloat
	metaKindBool
	metaKindList
)

// String builds a string-valued MetaValue.
func String(v string) MetaValue { return MetaValue{kind: metaKindString, str: v} }

// Int builds an int-valued MetaValue.
func Int(v int64) MetaValue { return MetaValue{kind: metaKindInt, i: v} }

// Float builds a float-valued MetaValue.
func Float(v float64) MetaValue { return MetaValue{kind: metaKindFloat, f: v} }

// Bool builds a bool-valued MetaValue.
func Bool(v bool) MetaValue { return MetaValue{kind: metaKindBool, b: v} }

// List builds a list-valued MetaValue from scalar MetaValues.
func List(vs ...MetaValue) MetaValue { return MetaValue{kind: metaKindList, list: vs} }

// AsString returns the underlying string and whether the value was a string.
func (v MetaValue) AsString() (string, bool) {
	if v.kind != metaKindString {
		return "", false
	}
	return v.str, true
}

// AsInt returns the underlying int and whether the value was an int.
func (v MetaValue) AsInt() (int64, bool) {
	if v.kind != metaKindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the underlying float and whether the value was a float.
func (v MetaValue) AsFloat() (float64, bool) {
	if v.kind != metaKindFloat {
		return 0, false
	}
	return v.f, true
}

// AsBool returns the underlying bool and whether the value was a bool.
func (v MetaValue) AsBool() (bool, bool) {
	if v.kind != metaKindBool {
		return false, false
	}
	return v.b, true
}

// AsList returns the underlying list and whether the value was a list.
func (v MetaValue) AsList() ([]MetaValue, bool) {
	if v.kind != metaKindList {
		return nil, false
	}
	return v.list, true
}

// String implements fmt.Stringer for logging and debugging.
func (v MetaValue) String() string {
	switch v.kind {
	case metaKindString:
		return v.str
	case metaKindInt:
		return fmt.Sprintf("%d", v.i)
	case metaKindFloat:
		return fmt.Sprintf("%g", v.f)
	case metaKindBool:
		return fmt.Sprintf("%t", v.b)
	case metaKindList:
		return fmt.Sprintf("%v", v.list)
	default:
		return ""
	}
}

// Meta is the opaque mapping from string key to MetaValue carried on a
// FeedItem. Callers should treat a nil Meta as an empty map.
type Meta map[string]MetaValue

// StringAt returns the string at key, or ("", false) if absent or of a
// different kind.
func (m Meta) StringAt(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// IntAt returns the int at key, or (0, false) if absent or of a different
// kind.
func (m Meta) IntAt(key string) (int64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

// BoolAt returns the bool at key, or (false, false) if absent or of a
// different kind.
func (m Meta) BoolAt(key string) (bool, bool) {
	if m == nil {
		return false, false
	}
	v, ok := m[key]
	if !ok {
		return false, false
	}
	return v.AsBool()
}

// With returns a copy of m with key set to value. m itself is not mutated,
// matching the "FeedItem must not be mutated after assembly" invariant.
func (m Meta) With(key string, value MetaValue) Meta {
	out := make(Meta, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[key] = value
	return out
}
