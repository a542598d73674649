package iterator

import (
	"math"
	"sort"

	"github.com/manticore-go/ftscore/hitpos"
	"github.com/manticore-go/ftscore/postinglist"
)

// matchFunc decides whether a row whose children all have at least one hit
// qualifies under a positional predicate (phrase order, proximity window,
// ...), and if so returns the hits that justify the match.
type matchFunc func(hitsPerChild [][]postinglist.Hit) ([]postinglist.Hit, bool)

// positional is the shared driver for every operator whose doc membership
// is "all children present AND a position predicate holds": Phrase,
// Proximity, Near, NotNear, Before, Sentence, Paragraph. Quorum is built
// separately since its doc membership is "at least k of n", not "all n".
type positional struct {
	children []*childCursor
	match    matchFunc
	next     int64
	cache    map[int64][]postinglist.Hit
}

func newPositional(match matchFunc, children ...Stream) *positional {
	cs := make([]*childCursor, len(children))
	for i, c := range children {
		cs[i] = newChildCursor(c)
	}
	return &positional{children: cs, match: match, cache: make(map[int64][]postinglist.Hit)}
}

func (n *positional) GetDocs() []postinglist.Doc {
	docs := make([]postinglist.Doc, 0, postinglist.Block)
	row := n.next
	for len(docs) < postinglist.Block {
		row = andIntersect(n.children, row)
		if row == postinglist.InvalidRowID {
			break
		}
		hitsPerChild := make([][]postinglist.Hit, len(n.children))
		for i, c := range n.children {
			hitsPerChild[i] = hitsForRow(c.stream, row)
		}
		if hits, ok := n.match(hitsPerChild); ok {
			n.cache[row] = hits
			docs = append(docs, postinglist.Doc{RowID: row, Fields: mergeFieldMasks(n.children, row)})
		}
		row++
	}
	n.next = row
	return endOfChunk(docs)
}

func (n *positional) GetHits(docs []postinglist.Doc) []postinglist.Hit {
	docs = trimSentinel(docs)
	var groups [][]postinglist.Hit
	for _, d := range docs {
		groups = append(groups, n.cache[d.RowID])
	}
	return mergeHits(groups...)
}

func (n *positional) AdvanceTo(rowID int64) postinglist.Doc {
	row := rowID
	for {
		row = andIntersect(n.children, row)
		if row == postinglist.InvalidRowID {
			n.next = postinglist.InvalidRowID
			return postinglist.Doc{RowID: postinglist.InvalidRowID}
		}
		hitsPerChild := make([][]postinglist.Hit, len(n.children))
		for i, c := range n.children {
			hitsPerChild[i] = hitsForRow(c.stream, row)
		}
		if hits, ok := n.match(hitsPerChild); ok {
			n.cache[row] = hits
			n.next = row + 1
			return postinglist.Doc{RowID: row, Fields: mergeFieldMasks(n.children, row)}
		}
		row++
	}
}

func (n *positional) Reset() {
	n.next = 0
	n.cache = make(map[int64][]postinglist.Hit)
	for _, c := range n.children {
		c.reset()
	}
}

// Phrase requires every child's term at a consecutive position in the same
// field, in query order: child i must land at field f, position p0+i for
// some shared p0. spec.md §3 "Phrase".
type Phrase struct{ *positional }

// NewPhrase builds a PHRASE node over terms in query order.
func NewPhrase(terms ...Stream) *Phrase {
	return &Phrase{positional: newPositional(phraseMatch, terms...)}
}

func phraseMatch(hitsPerChild [][]postinglist.Hit) ([]postinglist.Hit, bool) {
	if len(hitsPerChild) == 0 {
		return nil, false
	}
	sets := make([]map[[2]int]postinglist.Hit, len(hitsPerChild))
	for i, hits := range hitsPerChild {
		s := make(map[[2]int]postinglist.Hit, len(hits))
		for _, h := range hits {
			s[[2]int{h.Hitpos.Field(), h.Hitpos.Position()}] = h
		}
		sets[i] = s
	}
	for _, h0 := range hitsPerChild[0] {
		f, p := h0.Hitpos.Field(), h0.Hitpos.Position()
		out := make([]postinglist.Hit, 0, len(hitsPerChild))
		out = append(out, h0)
		ok := true
		for i := 1; i < len(hitsPerChild); i++ {
			hit, found := sets[i][[2]int{f, p + i}]
			if !found {
				ok = false
				break
			}
			out = append(out, hit)
		}
		if ok {
			for i := range out {
				out[i].MatchLen = len(hitsPerChild)
			}
			return out, true
		}
	}
	return nil, false
}

// windowItem is one child's hit positioned for the smallest-covering-window
// scan shared by Proximity/Near/Sentence/Paragraph.
type windowItem struct {
	pos   int
	child int
	hit   postinglist.Hit
}

// smallestCover finds the narrowest same-field window containing at least
// one hit from every child, the generalization of the teacher's NextCover
// algorithm to N query terms via the classic "smallest range covering
// elements from k sorted lists" sliding window.
func smallestCover(hitsPerChild [][]postinglist.Hit) ([]postinglist.Hit, int, bool) {
	fields := map[int]bool{}
	for _, h := range hitsPerChild[0] {
		fields[h.Hitpos.Field()] = true
	}
	bestWidth := math.MaxInt
	var bestSlice []windowItem
	for f := range fields {
		var items []windowItem
		complete := true
		for ci, hits := range hitsPerChild {
			found := false
			for _, h := range hits {
				if h.Hitpos.Field() == f {
					items = append(items, windowItem{pos: h.Hitpos.Position(), child: ci, hit: h})
					found = true
				}
			}
			if !found {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		sort.Slice(items, func(i, j int) bool { return items[i].pos < items[j].pos })
		need := len(hitsPerChild)
		count := make([]int, need)
		have, left := 0, 0
		for right := 0; right < len(items); right++ {
			if count[items[right].child] == 0 {
				have++
			}
			count[items[right].child]++
			for have == need {
				width := items[right].pos - items[left].pos
				if width < bestWidth {
					bestWidth = width
					bestSlice = append(bestSlice[:0:0], items[left:right+1]...)
				}
				count[items[left].child]--
				if count[items[left].child] == 0 {
					have--
				}
				left++
			}
		}
	}
	if bestSlice == nil {
		return nil, 0, false
	}
	out := make([]postinglist.Hit, len(bestSlice))
	for i, it := range bestSlice {
		out[i] = it.hit
	}
	return out, bestWidth, true
}

func coverWithinMatch(maxDist int) matchFunc {
	return func(hitsPerChild [][]postinglist.Hit) ([]postinglist.Hit, bool) {
		hits, width, ok := smallestCover(hitsPerChild)
		if !ok || width > maxDist {
			return nil, false
		}
		return hits, true
	}
}

// Proximity requires all terms within dist positions of each other in the
// same field, regardless of order. spec.md §3 "Proximity(dist)".
type Proximity struct{ *positional }

// NewProximity builds a PROXIMITY(dist) node.
func NewProximity(dist int, terms ...Stream) *Proximity {
	return &Proximity{positional: newPositional(coverWithinMatch(dist), terms...)}
}

// Near is Manticore's NEAR/N: like Proximity, a same-field window bounded
// by dist, but conventionally applied pairwise between adjacent query
// terms rather than across an entire multi-term AST subtree. Since the
// underlying window predicate is identical, Near reuses Proximity's
// implementation; the two remain distinct AST node types so the compiler
// can keep their different precedence and argument parsing.
type Near struct{ *positional }

// NewNear builds a NEAR/dist node.
func NewNear(dist int, terms ...Stream) *Near {
	return &Near{positional: newPositional(coverWithinMatch(dist), terms...)}
}

// NotNear requires that no same-field window of width <= dist covers every
// term: the negation of Proximity(dist). spec.md §3 "NotNear".
type NotNear struct{ *positional }

// NewNotNear builds a NOTNEAR/dist node.
func NewNotNear(dist int, terms ...Stream) *NotNear {
	match := func(hitsPerChild [][]postinglist.Hit) ([]postinglist.Hit, bool) {
		_, width, ok := smallestCover(hitsPerChild)
		if ok && width <= dist {
			return nil, false
		}
		var out []postinglist.Hit
		for _, hits := range hitsPerChild {
			out = append(out, hits...)
		}
		return out, true
	}
	return &NotNear{positional: newPositional(match, terms...)}
}

// Before requires a hit of its first child to precede a hit of its second
// child in the same field, at any distance. spec.md §3 "Before".
type Before struct{ *positional }

// NewBefore builds a BEFORE(a, b) node: a must occur before b.
func NewBefore(a, b Stream) *Before {
	match := func(hitsPerChild [][]postinglist.Hit) ([]postinglist.Hit, bool) {
		if len(hitsPerChild) != 2 {
			return nil, false
		}
		for _, ha := range hitsPerChild[0] {
			for _, hb := range hitsPerChild[1] {
				if ha.Hitpos.Field() == hb.Hitpos.Field() && ha.Hitpos.Position() < hb.Hitpos.Position() {
					return []postinglist.Hit{ha, hb}, true
				}
			}
		}
		return nil, false
	}
	return &Before{positional: newPositional(match, a, b)}
}

// Default window sizes used by Sentence/Paragraph below. True sentence and
// paragraph boundaries are produced by the tokenizer from punctuation and
// markup, which spec.md §1 places out of scope as an external collaborator;
// lacking that signal, the core approximates a sentence/paragraph span as a
// same-field proximity window, per the Open Question recorded in
// DESIGN.md.
const (
	DefaultSentenceWindow  = 32
	DefaultParagraphWindow = 256
)

// Sentence requires all terms within one sentence span (approximated as
// DefaultSentenceWindow positions in the same field). spec.md §3
// "Sentence".
type Sentence struct{ *positional }

// NewSentence builds a SENTENCE node using window as the sentence span.
func NewSentence(window int, terms ...Stream) *Sentence {
	return &Sentence{positional: newPositional(coverWithinMatch(window), terms...)}
}

// Paragraph requires all terms within one paragraph span. spec.md §3
// "Paragraph".
type Paragraph struct{ *positional }

// NewParagraph builds a PARAGRAPH node using window as the paragraph span.
func NewParagraph(window int, terms ...Stream) *Paragraph {
	return &Paragraph{positional: newPositional(coverWithinMatch(window), terms...)}
}

// Quorum emits a doc when at least k of its children have a hit in it,
// unlike the other positional nodes which require all of them. spec.md §3
// "Quorum(k)".
type Quorum struct {
	children []*childCursor
	k        int
	next     int64
	cache    map[int64][]postinglist.Hit
}

// NewQuorum builds a QUORUM(k) node over terms.
func NewQuorum(k int, terms ...Stream) *Quorum {
	cs := make([]*childCursor, len(terms))
	for i, t := range terms {
		cs[i] = newChildCursor(t)
	}
	return &Quorum{children: cs, k: k, cache: make(map[int64][]postinglist.Hit)}
}

func (q *Quorum) matchedHits(rowID int64) ([]postinglist.Hit, hitpos.FieldMask, bool) {
	var hits []postinglist.Hit
	fields := hitpos.NewFieldMask()
	matched := 0
	for _, c := range q.children {
		if c.cur.RowID != rowID {
			continue
		}
		h := hitsForRow(c.stream, rowID)
		if len(h) > 0 {
			matched++
			hits = append(hits, h...)
			fields = fields.Or(c.cur.Fields)
		}
	}
	return hits, fields, matched >= q.k
}

func (q *Quorum) GetDocs() []postinglist.Doc {
	docs := make([]postinglist.Doc, 0, postinglist.Block)
	row := q.next
	for len(docs) < postinglist.Block {
		next := unionNext(q.children, row)
		if next == postinglist.InvalidRowID {
			row = postinglist.InvalidRowID
			break
		}
		if hits, fields, ok := q.matchedHits(next); ok {
			q.cache[next] = hits
			docs = append(docs, postinglist.Doc{RowID: next, Fields: fields})
		}
		row = next + 1
	}
	q.next = row
	return endOfChunk(docs)
}

func (q *Quorum) GetHits(docs []postinglist.Doc) []postinglist.Hit {
	docs = trimSentinel(docs)
	var groups [][]postinglist.Hit
	for _, d := range docs {
		groups = append(groups, q.cache[d.RowID])
	}
	return mergeHits(groups...)
}

func (q *Quorum) AdvanceTo(rowID int64) postinglist.Doc {
	row := rowID
	for {
		next := unionNext(q.children, row)
		if next == postinglist.InvalidRowID {
			q.next = postinglist.InvalidRowID
			return postinglist.Doc{RowID: postinglist.InvalidRowID}
		}
		if hits, fields, ok := q.matchedHits(next); ok {
			q.cache[next] = hits
			q.next = next + 1
			return postinglist.Doc{RowID: next, Fields: fields}
		}
		row = next + 1
	}
}

func (q *Quorum) Reset() {
	q.next = 0
	q.cache = make(map[int64][]postinglist.Hit)
	for _, c := range q.children {
		c.reset()
	}
}
