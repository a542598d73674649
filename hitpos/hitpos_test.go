package hitpos

import "testing"

func TestPosFieldAndPosition(t *testing.T) {
	h := New(3, 17)
	if h.Field() != 3 {
		t.Errorf("Field() = %d, want 3", h.Field())
	}
	if h.Position() != 17 {
		t.Errorf("Position() = %d, want 17", h.Position())
	}
	if h.IsEnd() {
		t.Error("IsEnd() = true for a freshly constructed position")
	}
}

func TestPosSetEnd(t *testing.T) {
	h := New(1, 5).SetEnd()
	if !h.IsEnd() {
		t.Fatal("SetEnd() did not set the end-of-field bit")
	}
	if h.Field() != 1 || h.Position() != 5 {
		t.Errorf("SetEnd() altered field/position: field=%d pos=%d", h.Field(), h.Position())
	}
}

func TestPosWithFieldIgnoresEndBit(t *testing.T) {
	a := New(2, 9)
	b := a.SetEnd()
	if a.WithField() != b.WithField() {
		t.Error("WithField() should be identical regardless of the end bit")
	}
}

func TestPosAddPreservesFieldAndEnd(t *testing.T) {
	h := New(4, 10).SetEnd()
	moved := h.Add(3)
	if moved.Field() != 4 {
		t.Errorf("Add() changed field: got %d", moved.Field())
	}
	if moved.Position() != 13 {
		t.Errorf("Add(3) position = %d, want 13", moved.Position())
	}
	if !moved.IsEnd() {
		t.Error("Add() should preserve the end-of-field bit")
	}
}

func TestPosLessOrdersByFieldThenPosition(t *testing.T) {
	cases := []struct {
		a, b Pos
		want bool
	}{
		{New(0, 1), New(0, 2), true},
		{New(0, 2), New(0, 1), false},
		{New(0, 5), New(1, 0), true},
		{New(1, 0), New(0, 5), false},
	}
	for _, c := range cases {
		if got := c.a.Less(c.b); got != c.want {
			t.Errorf("%v.Less(%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestFieldMaskBasics(t *testing.T) {
	m := NewFieldMask()
	if m.Any() {
		t.Fatal("new mask should be empty")
	}
	m = m.Set(2).Set(5)
	if !m.Test(2) || !m.Test(5) {
		t.Fatal("Set() did not take effect")
	}
	if m.Test(3) {
		t.Fatal("unset bit reported as set")
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}
	m = m.Unset(2)
	if m.Test(2) {
		t.Fatal("Unset() did not take effect")
	}
}

func TestFieldMaskNegate(t *testing.T) {
	m := NewFieldMask().Set(0)
	neg := m.Negate()
	if neg.Test(0) {
		t.Fatal("Negate() left bit 0 set")
	}
	if !neg.Test(1) {
		t.Fatal("Negate() should set every other bit")
	}
}

func TestFieldMaskDeleteBitShiftsHigherBits(t *testing.T) {
	m := NewFieldMask().Set(1).Set(3).Set(5)
	m = m.DeleteBit(2)
	if m.Test(5) {
		t.Error("bit originally at 5 should no longer be at 5 after shifting")
	}
	if !m.Test(1) {
		t.Error("bits below the deleted index should be untouched")
	}
	if m.Test(3) {
		t.Error("bit originally at 3 should have shifted to 2")
	}
	if !m.Test(2) {
		t.Error("bit originally at 3 should now be at 2")
	}
	if !m.Test(4) {
		t.Error("bit originally at 5 should now be at 4")
	}
}

func TestFieldMaskOrAnd(t *testing.T) {
	a := NewFieldMask().Set(0).Set(1)
	b := NewFieldMask().Set(1).Set(2)
	or := a.Or(b)
	for _, f := range []int{0, 1, 2} {
		if !or.Test(f) {
			t.Errorf("Or() missing bit %d", f)
		}
	}
	and := a.And(b)
	if !and.Test(1) || and.Test(0) || and.Test(2) {
		t.Error("And() should only keep bit 1")
	}
}
