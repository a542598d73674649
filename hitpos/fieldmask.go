package hitpos

import "github.com/bits-and-blooms/bitset"

// FieldMask is a fixed-size bitset sized to MaxFields, used both for "which
// fields a hit may land in" (a LimitSpec restriction) and "which fields
// matched so far in this document" (ranker state), per spec.md §3.
type FieldMask struct {
	bits *bitset.BitSet
}

// NewFieldMask returns an empty mask.
func NewFieldMask() FieldMask {
	return FieldMask{bits: bitset.New(MaxFields)}
}

// AllFieldMask returns a mask with every field set.
func AllFieldMask() FieldMask {
	m := NewFieldMask()
	for f := 0; f < MaxFields; f++ {
		m.Set(f)
	}
	return m
}

// Set turns field on.
func (m FieldMask) Set(field int) FieldMask {
	m.bits.Set(uint(field))
	return m
}

// Unset turns field off.
func (m FieldMask) Unset(field int) FieldMask {
	m.bits.Clear(uint(field))
	return m
}

// Test reports whether field is set.
func (m FieldMask) Test(field int) bool {
	return m.bits.Test(uint(field))
}

// TestAll reports whether every one of the MaxFields bits is set.
func (m FieldMask) TestAll() bool {
	return m.bits.Count() == uint(MaxFields)
}

// Any reports whether at least one bit is set.
func (m FieldMask) Any() bool {
	return m.bits.Any()
}

// Negate returns the complement of m over MaxFields bits.
func (m FieldMask) Negate() FieldMask {
	out := NewFieldMask()
	for f := 0; f < MaxFields; f++ {
		if !m.Test(f) {
			out.Set(f)
		}
	}
	return out
}

// Or returns the bitwise union of m and other.
func (m FieldMask) Or(other FieldMask) FieldMask {
	out := NewFieldMask()
	out.bits = m.bits.Union(other.bits)
	return out
}

// And returns the bitwise intersection of m and other.
func (m FieldMask) And(other FieldMask) FieldMask {
	out := NewFieldMask()
	out.bits = m.bits.Intersection(other.bits)
	return out
}

// Count returns the number of set bits (popcount), used to turn a
// word_count bitmask into the distinct-query-position count spec.md §4.5
// requires at finalize.
func (m FieldMask) Count() int {
	return int(m.bits.Count())
}

// DeleteBit removes bit index from the mask, shifting every bit above index
// down by one. Used when a field is dropped from a schema and field
// indices above it need to be renumbered in place.
func (m FieldMask) DeleteBit(index int) FieldMask {
	out := NewFieldMask()
	for f := 0; f < MaxFields; f++ {
		switch {
		case f < index:
			if m.Test(f) {
				out.Set(f)
			}
		case f == index:
			// dropped
		default:
			if m.Test(f) {
				out.Set(f - 1)
			}
		}
	}
	return out
}

// Clone returns an independent copy of m.
func (m FieldMask) Clone() FieldMask {
	out := NewFieldMask()
	out.bits = m.bits.Clone()
	return out
}
