// Package iterator implements the paged stream-iterator contract of
// spec.md §4.1 (C1) and the operator nodes that compose it: And, Or,
// AndNot, MaybeAnd, Phrase, Proximity, Quorum, Near, NotNear, Before,
// Sentence and Paragraph all walk one or more child iterators and expose
// the same two-method contract, so a ranker frame never needs to know
// which operator produced the docs and hits it is pulling.
package iterator

import "github.com/manticore-go/ftscore/postinglist"

// Stream is the iterator every operator node and leaf keyword exposes.
// GetDocs returns the next chunk of docs (bounded to postinglist.Block,
// terminated by postinglist.InvalidRowID) and is re-callable until
// exhausted. GetHits returns the hits covering exactly the docs the most
// recent GetDocs call returned, ordered first by row id then by
// pos_with_field. AdvanceTo skips forward to the first doc with
// row id >= target. Reset reopens the iterator against a fresh set of
// underlying posting readers (e.g. a new index segment).
type Stream interface {
	GetDocs() []postinglist.Doc
	GetHits(docs []postinglist.Doc) []postinglist.Hit
	AdvanceTo(rowID int64) postinglist.Doc
	Reset()
}

// endOfChunk appends the InvalidRowID sentinel Doc, per spec.md §4.1.
func endOfChunk(docs []postinglist.Doc) []postinglist.Doc {
	return append(docs, postinglist.Doc{RowID: postinglist.InvalidRowID})
}

// trimSentinel drops a trailing sentinel Doc if present, so operator nodes
// can iterate a chunk's real docs without special-casing the terminator.
func trimSentinel(docs []postinglist.Doc) []postinglist.Doc {
	if n := len(docs); n > 0 && docs[n-1].RowID == postinglist.InvalidRowID {
		return docs[:n-1]
	}
	return docs
}
