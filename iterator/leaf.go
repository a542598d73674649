package iterator

import (
	"github.com/manticore-go/ftscore/hitpos"
	"github.com/manticore-go/ftscore/postinglist"
)

// Keyword is the leaf iterator over a single Qword, restricted to a field
// mask and an optional maximum field position (spec.md's LimitSpec). It is
// what the index layer builds from (word_id, field_restriction), per
// spec.md §6.
type Keyword struct {
	qword    *postinglist.Qword
	limit    hitpos.FieldMask
	maxPos   int // 0 means unlimited
	lastDoc  int64
	queryPos int
}

// NewKeyword wraps qword as a leaf Stream, restricted to fields (an empty
// mask means "no restriction", i.e. hitpos.AllFieldMask()). Hits are
// tagged with qword.AtomPos as their query position by default; callers
// whose Qword is a long-lived, shared posting list rather than a
// node-exclusive one (e.g. an index layer's Source.Lookup) should call
// WithQueryPos to tag hits with the query node's own position instead.
func NewKeyword(qword *postinglist.Qword, fields hitpos.FieldMask, maxPos int) *Keyword {
	return &Keyword{qword: qword, limit: fields, maxPos: maxPos, lastDoc: -1, queryPos: qword.AtomPos}
}

// WithQueryPos overrides the query position hits are tagged with,
// decoupling it from qword.AtomPos. Returns k for chaining.
func (k *Keyword) WithQueryPos(pos int) *Keyword {
	k.queryPos = pos
	return k
}

func (k *Keyword) fieldAllowed(h hitpos.Pos) bool {
	if k.maxPos > 0 && h.Position() > k.maxPos {
		return false
	}
	if !k.limit.Any() {
		return true
	}
	if !k.limit.Test(h.Field()) {
		return false
	}
	return true
}

// GetDocs returns up to postinglist.Block document ids, in increasing row
// order, that have at least one hit passing the field/position
// restriction.
func (k *Keyword) GetDocs() []postinglist.Doc {
	docs := make([]postinglist.Doc, 0, postinglist.Block)
	rowID := k.qword.NextDoc(k.lastDoc)
	for rowID != postinglist.InvalidRowID && len(docs) < postinglist.Block {
		fields := k.qword.CollectHitMask(rowID)
		keep := k.restrictedFields(fields).Any()
		if keep && k.maxPos > 0 {
			keep = false
			k.qword.SeekHitlist(postinglist.DocHit{RowID: rowID})
			for h := k.qword.NextHit(); !h.IsEOF() && h.RowID == rowID; h = k.qword.NextHit() {
				if k.fieldAllowed(h.Pos) {
					keep = true
					break
				}
			}
		}
		if keep {
			docs = append(docs, postinglist.Doc{RowID: rowID, Fields: k.restrictedFields(fields)})
		}
		k.lastDoc = rowID
		rowID = k.qword.NextDoc(k.lastDoc)
	}
	if len(docs) > 0 {
		k.lastDoc = docs[len(docs)-1].RowID
	}
	return endOfChunk(docs)
}

func (k *Keyword) restrictedFields(fields hitpos.FieldMask) hitpos.FieldMask {
	if !k.limit.Any() {
		return fields
	}
	return fields.And(k.limit)
}

// GetHits returns every hit belonging to the docs just returned by
// GetDocs, in pos_with_field order.
func (k *Keyword) GetHits(docs []postinglist.Doc) []postinglist.Hit {
	docs = trimSentinel(docs)
	if len(docs) == 0 {
		return nil
	}
	var hits []postinglist.Hit
	k.qword.SeekHitlist(postinglist.DocHit{RowID: docs[0].RowID})
	lastRow := docs[len(docs)-1].RowID
	wanted := make(map[int64]bool, len(docs))
	for _, d := range docs {
		wanted[d.RowID] = true
	}
	cur := k.qword.NextHit()
	for !cur.IsEOF() && cur.RowID <= lastRow {
		if wanted[cur.RowID] && k.fieldAllowed(cur.Pos) {
			hits = append(hits, postinglist.Hit{
				RowID:    cur.RowID,
				Hitpos:   cur.Pos,
				QueryPos: k.queryPos,
				Weight:   1,
				SpanLen:  1,
				MatchLen: 1,
			})
		}
		cur = k.qword.NextHit()
	}
	return hits
}

// AdvanceTo moves the doc cursor to the first doc at or after target that
// has a hit in an allowed field and returns it. The hitlist cursor is not
// moved, and the maximum field position is not checked here (GetDocs and
// GetHits apply it).
func (k *Keyword) AdvanceTo(rowID int64) postinglist.Doc {
	next := k.qword.AdvanceTo(rowID)
	for next != postinglist.InvalidRowID && !k.restrictedFields(k.qword.CollectHitMask(next)).Any() {
		next = k.qword.NextDoc(next)
	}
	if next == postinglist.InvalidRowID {
		k.lastDoc = postinglist.InvalidRowID
		return postinglist.Doc{RowID: postinglist.InvalidRowID}
	}
	k.lastDoc = next - 1
	return postinglist.Doc{RowID: next, Fields: k.restrictedFields(k.qword.CollectHitMask(next))}
}

// Reset rewinds the iterator to the start of the stream.
func (k *Keyword) Reset() {
	k.lastDoc = -1
	k.qword.ResetCursor()
}
