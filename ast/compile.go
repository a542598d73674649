package ast

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/manticore-go/ftscore/iterator"
	"github.com/manticore-go/ftscore/postinglist"
)

// ErrNoPostingList is returned when a keyword node's term has no posting
// list in the Source a tree is compiled against.
var ErrNoPostingList = errors.New("ast: no posting list for term")

// ErrZoneUnsupported is returned when a node restricts to zones but
// Compile is called without a ZoneChecker.
var ErrZoneUnsupported = errors.New("ast: zone restriction requires a ZoneChecker")

// Source resolves keyword terms to posting lists and supplies the
// all-documents universe match_all/NULL compiles against. The index layer
// implements this; ast never reads postings directly. spec.md §4.1
// "Leaf iterators are created by the index layer from
// (word_id, field_restriction)".
type Source interface {
	Lookup(term string) (*postinglist.Qword, bool)
	Universe() *roaring.Bitmap
}

// ZoneChecker answers whether rowID falls within the named zone, the
// predicate a LimitSpec's Zones list compiles against. Implemented by
// zone.Cache.
type ZoneChecker interface {
	InZone(rowID int64, zone string) bool
}

// Compile turns n into an executable iterator.Stream. zones may be nil if
// no node in the tree uses LimitSpec.Zones.
func Compile(n *Node, src Source, zones ZoneChecker) (iterator.Stream, error) {
	s, err := compileNode(n, src, zones)
	if err != nil {
		return nil, err
	}
	return applyZoneLimit(s, n.Limit, zones)
}

func compileNode(n *Node, src Source, zones ZoneChecker) (iterator.Stream, error) {
	switch n.Op {
	case OpKeyword:
		q, ok := src.Lookup(n.Term)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoPostingList, n.Term)
		}
		return iterator.NewKeyword(q, n.Limit.Fields, n.Limit.MaxFieldPos).WithQueryPos(n.QueryPos), nil
	case OpNull:
		return fullScan(src.Universe()), nil
	case OpAnd:
		children, err := compileChildren(n, src, zones)
		if err != nil {
			return nil, err
		}
		return iterator.NewAnd(children...), nil
	case OpOr:
		children, err := compileChildren(n, src, zones)
		if err != nil {
			return nil, err
		}
		return iterator.NewOr(children...), nil
	case OpMaybeAnd:
		children, err := compileChildren(n, src, zones)
		if err != nil {
			return nil, err
		}
		return iterator.NewMaybeAnd(children...), nil
	case OpAndNot:
		children, err := compileChildren(n, src, zones)
		if err != nil {
			return nil, err
		}
		if len(children) < 2 {
			return nil, fmt.Errorf("ast: ANDNOT requires at least 2 children, got %d", len(children))
		}
		return iterator.NewAndNot(children[0], children[1:]...), nil
	case OpPhrase:
		children, err := compileChildren(n, src, zones)
		if err != nil {
			return nil, err
		}
		return iterator.NewPhrase(children...), nil
	case OpProximity:
		children, err := compileChildren(n, src, zones)
		if err != nil {
			return nil, err
		}
		return iterator.NewProximity(n.Arg, children...), nil
	case OpQuorum:
		children, err := compileChildren(n, src, zones)
		if err != nil {
			return nil, err
		}
		return iterator.NewQuorum(n.Arg, children...), nil
	case OpNear:
		children, err := compileChildren(n, src, zones)
		if err != nil {
			return nil, err
		}
		return iterator.NewNear(n.Arg, children...), nil
	case OpNotNear:
		children, err := compileChildren(n, src, zones)
		if err != nil {
			return nil, err
		}
		if len(children) != 2 {
			return nil, fmt.Errorf("ast: NOTNEAR requires exactly 2 children, got %d", len(children))
		}
		return iterator.NewNotNear(n.Arg, children[0], children[1]), nil
	case OpBefore:
		children, err := compileChildren(n, src, zones)
		if err != nil {
			return nil, err
		}
		if len(children) != 2 {
			return nil, fmt.Errorf("ast: BEFORE requires exactly 2 children, got %d", len(children))
		}
		return iterator.NewBefore(children[0], children[1]), nil
	case OpSentence:
		children, err := compileChildren(n, src, zones)
		if err != nil {
			return nil, err
		}
		return iterator.NewSentence(iterator.DefaultSentenceWindow, children...), nil
	case OpParagraph:
		children, err := compileChildren(n, src, zones)
		if err != nil {
			return nil, err
		}
		return iterator.NewParagraph(iterator.DefaultParagraphWindow, children...), nil
	default:
		return nil, fmt.Errorf("ast: unknown op %v", n.Op)
	}
}

func compileChildren(n *Node, src Source, zones ZoneChecker) ([]iterator.Stream, error) {
	out := make([]iterator.Stream, 0, len(n.Children))
	for _, c := range n.Children {
		s, err := Compile(c, src, zones)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// applyZoneLimit wraps s with a zone-membership filter when limit restricts
// to one or more zones. A doc passes if it lies in any named zone (OR
// across the list), matching spec.md §3's "zone list" restriction.
func applyZoneLimit(s iterator.Stream, limit LimitSpec, zones ZoneChecker) (iterator.Stream, error) {
	if len(limit.Zones) == 0 {
		return s, nil
	}
	if zones == nil {
		return nil, ErrZoneUnsupported
	}
	names := limit.Zones
	return iterator.NewRowFilter(s, func(rowID int64) bool {
		for _, z := range names {
			if zones.InZone(rowID, z) {
				return true
			}
		}
		return false
	}), nil
}

// fullScan turns Universe into a Stream that emits every row id it
// contains with an all-fields mask and no hits, the execution form of an
// OpNull node (match_all).
func fullScan(universe *roaring.Bitmap) iterator.Stream {
	return iterator.NewFullScan(universe)
}
