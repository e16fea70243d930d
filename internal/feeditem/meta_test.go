package feeditem_test

import (
	"testing"

	"scrollfeed/internal/feeditem"
)

func TestMetaValue_AsXOnlyMatchesItsOwnKind(t *testing.T) {
	t.Parallel()

	v := feeditem.String("hello")
	if s, ok := v.AsString(); !ok || s != "hello" {
		t.Errorf("AsString() = (%q, %v), want (hello, true)", s, ok)
	}
	if _, ok := v.AsInt(); ok {
		t.Error("AsInt() on a string value = true, want false")
	}
	if _, ok := v.AsFloat(); ok {
		t.Error("AsFloat() on a string value = true, want false")
	}
	if _, ok := v.AsBool(); ok {
		t.Error("AsBool() on a string value = true, want false")
	}
	if _, ok := v.AsList(); ok {
		t.Error("AsList() on a string value = true, want false")
	}
}

func TestMetaValue_StringImplementsEachKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		v    feeditem.MetaValue
		want string
	}{
		{feeditem.String("x"), "x"},
		{feeditem.Int(42), "42"},
		{feeditem.Float(3.5), "3.5"},
		{feeditem.Bool(true), "true"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestMetaValue_ListCarriesScalarElements(t *testing.T) {
	t.Parallel()

	v := feeditem.List(feeditem.String("a"), feeditem.Int(1))
	list, ok := v.AsList()
	if !ok || len(list) != 2 {
		t.Fatalf("AsList() = (%v, %v), want 2 elements", list, ok)
	}
	if s, _ := list[0].AsString(); s != "a" {
		t.Errorf("list[0] = %q, want a", s)
	}
}

func TestMeta_StringAtIntAtBoolAtOnNilMap(t *testing.T) {
	t.Parallel()

	var m feeditem.Meta
	if _, ok := m.StringAt("x"); ok {
		t.Error("StringAt on a nil Meta = true, want false")
	}
	if _, ok := m.IntAt("x"); ok {
		t.Error("IntAt on a nil Meta = true, want false")
	}
	if _, ok := m.BoolAt("x"); ok {
		t.Error("BoolAt on a nil Meta = true, want false")
	}
}

func TestMeta_AccessorsReturnFalseForMismatchedKind(t *testing.T) {
	t.Parallel()

	m := feeditem.Meta{"count": feeditem.Int(3)}
	if _, ok := m.StringAt("count"); ok {
		t.Error("StringAt on an int-valued key = true, want false")
	}
	if n, ok := m.IntAt("count"); !ok || n != 3 {
		t.Errorf("IntAt(count) = (%d, %v), want (3, true)", n, ok)
	}
}

func TestMeta_WithDoesNotMutateTheReceiver(t *testing.T) {
	t.Parallel()

	base := feeditem.Meta{"a": feeditem.String("1")}
	extended := base.With("b", feeditem.String("2"))

	if _, ok := base["b"]; ok {
		t.Error("With() mutated the receiver, want base left unchanged")
	}
	if s, ok := extended.StringAt("b"); !ok || s != "2" {
		t.Errorf("extended.StringAt(b) = (%q, %v), want (2, true)", s, ok)
	}
	if s, ok := extended.StringAt("a"); !ok || s != "1" {
		t.Errorf("extended.StringAt(a) = (%q, %v), want the original key to survive", s, ok)
	}
}

func TestMeta_WithOverwritesExistingKey(t *testing.T) {
	t.Parallel()

	base := feeditem.Meta{"a": feeditem.String("1")}
	updated := base.With("a", feeditem.String("2"))

	if s, _ := updated.StringAt("a"); s != "2" {
		t.Errorf("updated.StringAt(a) = %q, want 2", s)
	}
}

func TestMeta_WithOnNilMapProducesAOneEntryMeta(t *testing.T) {
	t.Parallel()

	var base feeditem.Meta
	extended := base.With("a", feeditem.String("1"))

	if s, ok := extended.StringAt("a"); !ok || s != "1" {
		t.Errorf("extended.StringAt(a) = (%q, %v), want (1, true)", s, ok)
	}
}
