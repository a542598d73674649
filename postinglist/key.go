// Package postinglist implements the leaf data model of the query execution
// core: documents, hits, and the per-keyword posting-list cursor (Qword)
// that walks them. It is the C1 "Hit/Doc stream" of the ranker pipeline.
package postinglist

import (
	"math"

	"github.com/manticore-go/ftscore/hitpos"
)

// InvalidRowID terminates a chunk of Docs, per spec.md §3.
const InvalidRowID = math.MaxInt64

// DocHit is the ordering key used by a single term's position skip list:
// document id first, then pos_with_field within the document. BOFKey and
// EOFKey bracket the range the way the teacher's skip list uses ±Inf
// sentinels, generalized here to int64 so the same key also orders the
// packed hitpos.
type DocHit struct {
	RowID int64
	Pos   hitpos.Pos
}

// BOFKey and EOFKey bound every posting list: BOFKey sorts before any real
// key, EOFKey after. They let iterators start "before the beginning" and
// recognize exhaustion without special-casing the first/last call.
var (
	BOFKey = DocHit{RowID: math.MinInt64}
	EOFKey = DocHit{RowID: math.MaxInt64, Pos: hitpos.Pos(math.MaxUint32)}
)

// IsBOF reports whether k is the beginning-of-stream sentinel.
func (k DocHit) IsBOF() bool { return k.RowID == math.MinInt64 }

// IsEOF reports whether k is the end-of-stream sentinel.
func (k DocHit) IsEOF() bool { return k.RowID == math.MaxInt64 }

// Less orders first by row id, then by pos_with_field, matching the
// ordering posting lists and hit streams are required to maintain
// (spec.md invariants 1 and 2).
func (k DocHit) Less(other DocHit) bool {
	if k.RowID != other.RowID {
		return k.RowID < other.RowID
	}
	return k.Pos.WithField() < other.Pos.WithField()
}

// Equal reports whether k and other name the same (row, pos_with_field)
// pair, ignoring the end-of-field bit.
func (k DocHit) Equal(other DocHit) bool {
	return k.RowID == other.RowID && k.Pos.WithField() == other.Pos.WithField()
}
