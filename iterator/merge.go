package iterator

import (
	"sort"

	"github.com/manticore-go/ftscore/hitpos"
	"github.com/manticore-go/ftscore/postinglist"
)

// childCursor remembers one child's current position so a compound node
// can advance it monotonically across repeated GetDocs calls instead of
// restarting the merge from the beginning every chunk.
type childCursor struct {
	stream Stream
	cur    postinglist.Doc
	primed bool
}

func newChildCursor(s Stream) *childCursor {
	return &childCursor{stream: s}
}

func (c *childCursor) at(rowID int64) postinglist.Doc {
	if !c.primed || c.cur.RowID < rowID {
		c.cur = c.stream.AdvanceTo(rowID)
		c.primed = true
	}
	return c.cur
}

func (c *childCursor) reset() {
	c.stream.Reset()
	c.primed = false
}

// andIntersect advances every child to the next row id present in ALL of
// them, the leapfrog join classic boolean AND reduces to. Returns
// postinglist.InvalidRowID once any child is exhausted.
func andIntersect(children []*childCursor, from int64) int64 {
	candidate := from
	for {
		advancedAny := false
		for _, c := range children {
			d := c.at(candidate)
			if d.RowID == postinglist.InvalidRowID {
				return postinglist.InvalidRowID
			}
			if d.RowID > candidate {
				candidate = d.RowID
				advancedAny = true
			}
		}
		if !advancedAny {
			return candidate
		}
	}
}

// unionNext returns the smallest row id at or after from among children
// that haven't been exhausted, or InvalidRowID if all are.
func unionNext(children []*childCursor, from int64) int64 {
	best := postinglist.InvalidRowID
	for _, c := range children {
		d := c.at(from)
		if d.RowID != postinglist.InvalidRowID && d.RowID < best {
			best = d.RowID
		}
	}
	return best
}

func mergeFieldMasks(children []*childCursor, rowID int64) hitpos.FieldMask {
	out := hitpos.NewFieldMask()
	for _, c := range children {
		if c.cur.RowID == rowID {
			out = out.Or(c.cur.Fields)
		}
	}
	return out
}

// hitsForRow fetches every hit s has for rowID by advancing it to rowID and
// requesting hits for that single-doc chunk. Safe to call repeatedly with
// monotonically increasing rowID values, matching how every compound
// iterator visits candidate rows in increasing order.
func hitsForRow(s Stream, rowID int64) []postinglist.Hit {
	doc := s.AdvanceTo(rowID)
	if doc.RowID != rowID {
		return nil
	}
	return s.GetHits([]postinglist.Doc{doc, {RowID: postinglist.InvalidRowID}})
}

// mergeHits merges already-sorted-by-row hit slices into one stream ordered
// by row id then pos_with_field, the ordering every GetHits call must
// produce (spec.md §4.1).
func mergeHits(groups ...[]postinglist.Hit) []postinglist.Hit {
	var all []postinglist.Hit
	for _, g := range groups {
		all = append(all, g...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].RowID != all[j].RowID {
			return all[i].RowID < all[j].RowID
		}
		return all[i].Hitpos.WithField() < all[j].Hitpos.WithField()
	})
	return all
}
