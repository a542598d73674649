package postinglist

import (
	"github.com/RoaringBitmap/roaring"
	"github.com/manticore-go/ftscore/hitpos"
)

// Qword is the state of a single keyword's posting-list stream: the set of
// documents it appears in, the exact positions within each, and the
// keyword's position in the parsed query (AtomPos). It is the leaf an
// And/Or/Phrase/Proximity iterator composes over. spec.md §3 "Posting word
// (Qword)".
type Qword struct {
	Term     string
	AtomPos  int
	DocCount int
	HitCount int

	docs      *roaring.Bitmap // fast document-level membership/AND/OR/NOT
	hits      *HitSkipList    // exact positions, for phrase/proximity work
	docFields map[int64]hitpos.FieldMask

	cursor DocHit // hitlist cursor; BOFKey before the first NextHit call
}

// NewQword returns an empty posting-list cursor for term, whose position in
// the parsed query is atomPos.
func NewQword(term string, atomPos int) *Qword {
	return &Qword{
		Term:      term,
		AtomPos:   atomPos,
		docs:      roaring.NewBitmap(),
		hits:      NewHitSkipList(),
		docFields: make(map[int64]hitpos.FieldMask),
		cursor:    BOFKey,
	}
}

// Add records one occurrence of the term at rowID/pos. Called by the index
// layer while building a Qword from on-disk postings; not part of the
// ranker-facing contract.
func (q *Qword) Add(rowID int64, pos hitpos.Pos) {
	if !q.docs.Contains(uint32(rowID)) {
		q.docs.Add(uint32(rowID))
		q.DocCount++
	}
	q.hits.Insert(DocHit{RowID: rowID, Pos: pos})
	q.HitCount++
	mask, ok := q.docFields[rowID]
	if !ok {
		mask = hitpos.NewFieldMask()
	}
	q.docFields[rowID] = mask.Set(pos.Field())
}

// NextDoc returns the smallest row id strictly greater than after, or
// InvalidRowID if none remains.
func (q *Qword) NextDoc(after int64) int64 {
	it := q.docs.Iterator()
	it.AdvanceIfNeeded(uint32(after + 1))
	if !it.HasNext() {
		return InvalidRowID
	}
	return int64(it.Next())
}

// AdvanceTo returns the first doc id >= target, or InvalidRowID. It is the
// doc-bitmap jump every compound iterator uses to skip forward
// instead of calling NextDoc repeatedly (spec.md §4.1 advance_to contract).
func (q *Qword) AdvanceTo(target int64) int64 {
	it := q.docs.Iterator()
	it.AdvanceIfNeeded(uint32(target))
	if !it.HasNext() {
		return InvalidRowID
	}
	return int64(it.Next())
}

// NextHit advances the hitlist cursor and returns the next hit strictly
// after the current one, or EOFKey when the term has no more occurrences.
func (q *Qword) NextHit() DocHit {
	next := q.hits.FindGreaterThan(q.cursor)
	q.cursor = next
	return next
}

// SeekHitlist repositions the hitlist cursor to just before offset, so the
// next NextHit call returns the first occurrence at or after offset. Used
// when a compound iterator (e.g. Phrase) needs to jump the cursor forward
// to align with a document the doc-level scan already selected.
func (q *Qword) SeekHitlist(offset DocHit) {
	q.cursor = q.hits.FindLessThan(DocHit{RowID: offset.RowID, Pos: offset.Pos})
}

// ResetCursor rewinds the hitlist cursor to the beginning of the stream.
func (q *Qword) ResetCursor() {
	q.cursor = BOFKey
}

// CollectHitMask returns the field mask of every field rowID had at least
// one hit in, per spec.md's "doc-fields bitmask observed".
func (q *Qword) CollectHitMask(rowID int64) hitpos.FieldMask {
	if mask, ok := q.docFields[rowID]; ok {
		return mask
	}
	return hitpos.NewFieldMask()
}

// Bitmap exposes the term's document-level roaring bitmap for boolean
// composition (AND/OR/ANDNOT) without walking the position skip list.
func (q *Qword) Bitmap() *roaring.Bitmap {
	return q.docs
}
