package postinglist

import "github.com/manticore-go/ftscore/hitpos"

// Doc is one row emitted by a stream iterator's GetDocs call: a row id, the
// set of fields it had at least one hit in, and a BM25 TF-IDF prefactor the
// ranker seeds its score from. spec.md §3.
type Doc struct {
	RowID      int64
	Fields     hitpos.FieldMask
	TFIDFPrefactor float64
}

// Hit is one term occurrence flowing out of an iterator's GetHits call.
// QueryPos is the keyword's position in the parsed query (used by the LCS
// family of rankers); NodePos is its position inside a compound operator
// (proximity/quorum); SpanLen covers multi-word tokens that occupy more
// than one position; QposMask records any other query positions
// co-located at this Hitpos (duplicate keywords, blended tokens).
// spec.md §3 "Hit (extended)".
type Hit struct {
	RowID    int64
	Hitpos   hitpos.Pos
	QueryPos int
	NodePos  int
	SpanLen  int
	Weight   float64
	QposMask uint64
	MatchLen int
}

// Block is the paged chunk size iterators return per GetDocs/GetHits call,
// per spec.md §4.1 ("bounded to a power-of-two block size, conventionally
// 1024").
const Block = 1024
