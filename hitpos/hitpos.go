// Package hitpos implements the packed hit-position representation and the
// fixed-size field mask used throughout the query execution core.
//
// A hitpos packs three things into a single uint32: which field a term
// occurrence landed in, whether that occurrence is the last token of the
// field, and the in-field token position. Packing keeps posting lists to one
// machine word per hit instead of three, and lets every iterator compare
// hits with a single integer comparison instead of a struct comparison.
package hitpos

// FieldBits is the number of high bits reserved for the field index. It
// bounds the maximum number of distinct fields a schema can declare to
// 1<<FieldBits and is the knob spec.md calls FIELD_BITS.
const FieldBits = 8

const (
	fieldShift = 32 - FieldBits
	endBit     = 1 << (fieldShift - 1)
	posMask    = endBit - 1
	fieldMask  = (uint32(1)<<FieldBits - 1) << fieldShift
)

// MaxFields is the number of field indexes representable by FieldBits
// (0 through MaxFields-1).
const MaxFields = 1 << FieldBits

// MaxPos is the largest in-field position representable below the end bit.
const MaxPos = posMask

// Pos is a packed hit position: field (bits 31..24), end-of-field marker
// (bit 23), in-field position (bits 22..0), per spec.md §3 and §6.
type Pos uint32

// New builds a packed position from a field index and an in-field offset.
// The end-of-field bit is not set; callers mark the last hit in a field with
// SetEnd.
func New(field, pos int) Pos {
	return Pos(uint32(field)<<fieldShift | (uint32(pos) & posMask))
}

// Field returns the field index encoded in h.
func (h Pos) Field() int {
	return int((uint32(h) & fieldMask) >> fieldShift)
}

// Position returns the in-field position, excluding the end-of-field bit.
func (h Pos) Position() int {
	return int(uint32(h) & posMask)
}

// IsEnd reports whether h marks the final occurrence within its field.
func (h Pos) IsEnd() bool {
	return uint32(h)&endBit != 0
}

// SetEnd returns h with the end-of-field bit set.
func (h Pos) SetEnd() Pos {
	return Pos(uint32(h) | endBit)
}

// WithField returns h's field and position but clears the end-of-field bit,
// i.e. spec.md's pos_with_field(h). Hits within one document are compared
// for ordering using this projection.
func (h Pos) WithField() Pos {
	return Pos(uint32(h) &^ endBit)
}

// Add returns h advanced by delta positions, preserving its field and
// end-of-field bit. delta may be negative as long as the result stays
// non-negative; callers walking backwards are responsible for that
// invariant (iterators never need to, since posting lists only grow
// forward).
func (h Pos) Add(delta int) Pos {
	end := uint32(h) & endBit
	newPos := (uint32(h.Position()) + uint32(int32(delta))) & posMask
	return Pos(uint32(h.Field())<<fieldShift | end | newPos)
}

// Less reports whether h sorts before other using the pos_with_field
// ordering hits must satisfy within a document (spec.md invariant 2).
func (h Pos) Less(other Pos) bool {
	return h.WithField() < other.WithField()
}
