package iterator

import "github.com/manticore-go/ftscore/postinglist"

// RowFilter narrows a Stream to only the rows pred accepts, for late
// restrictions applied "before hits leave a node" per spec.md §4.1 — field
// masks are handled inline by Keyword, zone restrictions are applied this
// way by the ast package once a doc has already been selected by its
// operator.
type RowFilter struct {
	inner *childCursor
	pred  func(rowID int64) bool
	next  int64
}

// NewRowFilter wraps inner, keeping only rows pred accepts.
func NewRowFilter(inner Stream, pred func(rowID int64) bool) *RowFilter {
	return &RowFilter{inner: newChildCursor(inner), pred: pred}
}

func (f *RowFilter) GetDocs() []postinglist.Doc {
	docs := make([]postinglist.Doc, 0, postinglist.Block)
	row := f.next
	for len(docs) < postinglist.Block {
		d := f.inner.at(row)
		if d.RowID == postinglist.InvalidRowID {
			row = postinglist.InvalidRowID
			break
		}
		row = d.RowID
		if f.pred(row) {
			docs = append(docs, d)
		}
		row++
	}
	f.next = row
	return endOfChunk(docs)
}

func (f *RowFilter) GetHits(docs []postinglist.Doc) []postinglist.Hit {
	docs = trimSentinel(docs)
	var groups [][]postinglist.Hit
	for _, d := range docs {
		groups = append(groups, hitsForRow(f.inner.stream, d.RowID))
	}
	return mergeHits(groups...)
}

func (f *RowFilter) AdvanceTo(rowID int64) postinglist.Doc {
	row := rowID
	for {
		d := f.inner.at(row)
		if d.RowID == postinglist.InvalidRowID {
			f.next = postinglist.InvalidRowID
			return postinglist.Doc{RowID: postinglist.InvalidRowID}
		}
		row = d.RowID
		if f.pred(row) {
			f.next = row + 1
			return d
		}
		row++
	}
}

func (f *RowFilter) Reset() {
	f.next = 0
	f.inner.reset()
}
