package iterator

import (
	"github.com/RoaringBitmap/roaring"
	"github.com/manticore-go/ftscore/hitpos"
	"github.com/manticore-go/ftscore/postinglist"
)

// FullScan emits every row id in universe with an all-fields mask and no
// hits: the execution form of a match_all / NULL node (spec.md §4.6
// "match_all produces a NULL operator (fullscan-equivalent)").
type FullScan struct {
	universe *roaring.Bitmap
	it       roaring.IntPeekable
}

// NewFullScan builds a FullScan over universe.
func NewFullScan(universe *roaring.Bitmap) *FullScan {
	return &FullScan{universe: universe, it: universe.Iterator()}
}

func (f *FullScan) GetDocs() []postinglist.Doc {
	docs := make([]postinglist.Doc, 0, postinglist.Block)
	for len(docs) < postinglist.Block && f.it.HasNext() {
		docs = append(docs, postinglist.Doc{RowID: int64(f.it.Next()), Fields: hitpos.AllFieldMask()})
	}
	return endOfChunk(docs)
}

func (f *FullScan) GetHits(docs []postinglist.Doc) []postinglist.Hit {
	return nil
}

func (f *FullScan) AdvanceTo(rowID int64) postinglist.Doc {
	f.it.AdvanceIfNeeded(uint32(rowID))
	if !f.it.HasNext() {
		return postinglist.Doc{RowID: postinglist.InvalidRowID}
	}
	return postinglist.Doc{RowID: int64(f.it.Next()), Fields: hitpos.AllFieldMask()}
}

func (f *FullScan) Reset() {
	f.it = f.universe.Iterator()
}
