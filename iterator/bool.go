package iterator

import "github.com/manticore-go/ftscore/postinglist"

// And intersects its children: a doc is emitted only if every child has a
// hit in it. spec.md §4.1 "AND intersects".
type And struct {
	children []*childCursor
	next     int64
}

// NewAnd builds an AND node over children.
func NewAnd(children ...Stream) *And {
	cs := make([]*childCursor, len(children))
	for i, c := range children {
		cs[i] = newChildCursor(c)
	}
	return &And{children: cs}
}

func (n *And) GetDocs() []postinglist.Doc {
	docs := make([]postinglist.Doc, 0, postinglist.Block)
	row := n.next
	for len(docs) < postinglist.Block {
		row = andIntersect(n.children, row)
		if row == postinglist.InvalidRowID {
			break
		}
		docs = append(docs, postinglist.Doc{RowID: row, Fields: mergeFieldMasks(n.children, row)})
		row++
	}
	n.next = row
	return endOfChunk(docs)
}

func (n *And) GetHits(docs []postinglist.Doc) []postinglist.Hit {
	docs = trimSentinel(docs)
	var groups [][]postinglist.Hit
	for _, c := range n.children {
		for _, d := range docs {
			groups = append(groups, hitsForRow(c.stream, d.RowID))
		}
	}
	return mergeHits(groups...)
}

func (n *And) AdvanceTo(rowID int64) postinglist.Doc {
	row := andIntersect(n.children, rowID)
	n.next = row + 1
	if row == postinglist.InvalidRowID {
		return postinglist.Doc{RowID: postinglist.InvalidRowID}
	}
	return postinglist.Doc{RowID: row, Fields: mergeFieldMasks(n.children, row)}
}

func (n *And) Reset() {
	n.next = 0
	for _, c := range n.children {
		c.reset()
	}
}

// Or unions its children: a doc is emitted if any child has a hit in it.
// spec.md §4.1 "OR merges".
type Or struct {
	children []*childCursor
	next     int64
}

// NewOr builds an OR node over children.
func NewOr(children ...Stream) *Or {
	cs := make([]*childCursor, len(children))
	for i, c := range children {
		cs[i] = newChildCursor(c)
	}
	return &Or{children: cs}
}

func (n *Or) GetDocs() []postinglist.Doc {
	docs := make([]postinglist.Doc, 0, postinglist.Block)
	row := n.next
	for len(docs) < postinglist.Block {
		next := unionNext(n.children, row)
		if next == postinglist.InvalidRowID {
			row = postinglist.InvalidRowID
			break
		}
		docs = append(docs, postinglist.Doc{RowID: next, Fields: mergeFieldMasks(n.children, next)})
		row = next + 1
	}
	n.next = row
	return endOfChunk(docs)
}

func (n *Or) GetHits(docs []postinglist.Doc) []postinglist.Hit {
	docs = trimSentinel(docs)
	var groups [][]postinglist.Hit
	for _, c := range n.children {
		for _, d := range docs {
			groups = append(groups, hitsForRow(c.stream, d.RowID))
		}
	}
	return mergeHits(groups...)
}

func (n *Or) AdvanceTo(rowID int64) postinglist.Doc {
	next := unionNext(n.children, rowID)
	if next == postinglist.InvalidRowID {
		n.next = postinglist.InvalidRowID
		return postinglist.Doc{RowID: postinglist.InvalidRowID}
	}
	n.next = next + 1
	return postinglist.Doc{RowID: next, Fields: mergeFieldMasks(n.children, next)}
}

func (n *Or) Reset() {
	n.next = 0
	for _, c := range n.children {
		c.reset()
	}
}

// MaybeAnd behaves like Or at the document level: a doc matches if either
// side has it. It exists as a distinct node (rather than reusing Or
// verbatim) so the JSON compiler's bool.should combination (spec.md §4.6)
// keeps its own node kind; no ranker state treats it differently from Or.
// Document and hit semantics are identical to Or.
type MaybeAnd struct {
	*Or
}

// NewMaybeAnd builds a MAYBE node over children.
func NewMaybeAnd(children ...Stream) *MaybeAnd {
	return &MaybeAnd{Or: NewOr(children...)}
}

// AndNot emits docs from primary that are absent from every child in
// excluded. spec.md §4.1 "AND-NOT subtracts".
type AndNot struct {
	primary  *childCursor
	excluded []*childCursor
	next     int64
}

// NewAndNot builds an AND-NOT node: primary minus the union of excluded.
func NewAndNot(primary Stream, excluded ...Stream) *AndNot {
	cs := make([]*childCursor, len(excluded))
	for i, c := range excluded {
		cs[i] = newChildCursor(c)
	}
	return &AndNot{primary: newChildCursor(primary), excluded: cs}
}

func (n *AndNot) excludedAt(rowID int64) bool {
	for _, c := range n.excluded {
		if c.at(rowID).RowID == rowID {
			return true
		}
	}
	return false
}

func (n *AndNot) GetDocs() []postinglist.Doc {
	docs := make([]postinglist.Doc, 0, postinglist.Block)
	row := n.next
	for len(docs) < postinglist.Block {
		d := n.primary.at(row)
		if d.RowID == postinglist.InvalidRowID {
			row = postinglist.InvalidRowID
			break
		}
		row = d.RowID
		if !n.excludedAt(row) {
			docs = append(docs, postinglist.Doc{RowID: row, Fields: d.Fields})
		}
		row++
	}
	n.next = row
	return endOfChunk(docs)
}

func (n *AndNot) GetHits(docs []postinglist.Doc) []postinglist.Hit {
	docs = trimSentinel(docs)
	var groups [][]postinglist.Hit
	for _, d := range docs {
		groups = append(groups, hitsForRow(n.primary.stream, d.RowID))
	}
	return mergeHits(groups...)
}

func (n *AndNot) AdvanceTo(rowID int64) postinglist.Doc {
	row := rowID
	for {
		d := n.primary.at(row)
		if d.RowID == postinglist.InvalidRowID {
			n.next = postinglist.InvalidRowID
			return postinglist.Doc{RowID: postinglist.InvalidRowID}
		}
		row = d.RowID
		if !n.excludedAt(row) {
			n.next = row + 1
			return postinglist.Doc{RowID: row, Fields: d.Fields}
		}
		row++
	}
}

func (n *AndNot) Reset() {
	n.next = 0
	n.primary.reset()
	for _, c := range n.excluded {
		c.reset()
	}
}
