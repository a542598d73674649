// Package ast defines the query AST node spec.md §3 calls "Query node":
// the tree the JSON compiler (jsonquery) and any other front end builds,
// and that this package turns into an executable iterator.Stream tree.
// The core never owns this tree past compile time — it only builds an
// execution tree from it, per spec.md §4.1.
package ast

import "github.com/manticore-go/ftscore/hitpos"

// Op identifies which operator a non-leaf Node represents.
type Op int

const (
	// OpKeyword marks a leaf node; Term carries the word payload.
	OpKeyword Op = iota
	OpAnd
	OpOr
	OpAndNot
	OpMaybeAnd
	OpPhrase
	OpProximity
	OpQuorum
	OpNear
	OpNotNear
	OpBefore
	OpSentence
	OpParagraph
	// OpNull matches every document, the execution node match_all compiles
	// to (spec.md §4.6 "match_all produces a NULL operator").
	OpNull
)

func (o Op) String() string {
	switch o {
	case OpKeyword:
		return "KEYWORD"
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpAndNot:
		return "ANDNOT"
	case OpMaybeAnd:
		return "MAYBE"
	case OpPhrase:
		return "PHRASE"
	case OpProximity:
		return "PROXIMITY"
	case OpQuorum:
		return "QUORUM"
	case OpNear:
		return "NEAR"
	case OpNotNear:
		return "NOTNEAR"
	case OpBefore:
		return "BEFORE"
	case OpSentence:
		return "SENTENCE"
	case OpParagraph:
		return "PARAGRAPH"
	case OpNull:
		return "NULL"
	default:
		return "UNKNOWN"
	}
}

// KeywordFlags are the per-term flags spec.md §3 lists alongside a
// keyword's word text, query position and boost.
type KeywordFlags struct {
	Excluded  bool // term came from a NOT clause
	Expanded  bool // term was added by wildcard/morphology expansion
	FieldStart bool // term must be the first token of its field
	FieldEnd   bool // term must be the last token of its field
	Morphed    bool // term is a stemmed/lemmatized form, not the raw token
}

// LimitSpec restricts which fields and zones a node's hits may land in.
// spec.md §3 "LimitSpec: field mask, max field position, zone list,
// zone-span flag".
type LimitSpec struct {
	Fields      hitpos.FieldMask
	MaxFieldPos int      // 0 means unlimited
	Zones       []string // zone names this node is restricted to
	ZoneSpan    bool      // true: whole-zone span; false: zone-start anchored
}

// Unrestricted is the zero-value LimitSpec: no field/position/zone
// restriction.
func Unrestricted() LimitSpec {
	return LimitSpec{}
}

// Node is one variant of the AST spec.md §3 describes: a Keyword leaf or a
// compound operator over Children, carrying a LimitSpec and, for operators
// that take a numeric argument, Arg (distance for Proximity/Near/NotNear,
// k for Quorum). Sentence and Paragraph take no Arg; Compile gives them
// fixed default windows.
type Node struct {
	Op       Op
	Children []*Node
	Limit    LimitSpec
	Arg      int

	// Keyword payload, valid only when Op == OpKeyword.
	Term     string
	QueryPos int
	Boost    float64
	Flags    KeywordFlags
}

// NewKeyword builds a leaf node for term at queryPos.
func NewKeyword(term string, queryPos int) *Node {
	return &Node{Op: OpKeyword, Term: term, QueryPos: queryPos, Boost: 1.0}
}

// WithLimit returns n with its LimitSpec replaced by limit, for chaining
// at construction time.
func (n *Node) WithLimit(limit LimitSpec) *Node {
	n.Limit = limit
	return n
}

// WithBoost returns n with Boost replaced, valid on keyword nodes.
func (n *Node) WithBoost(boost float64) *Node {
	n.Boost = boost
	return n
}

func compound(op Op, arg int, children ...*Node) *Node {
	return &Node{Op: op, Children: children, Arg: arg}
}

// NewAnd, NewOr, ... build compound nodes over children, mirroring the
// variant spec.md §3 names.
func NewAnd(children ...*Node) *Node      { return compound(OpAnd, 0, children...) }
func NewOr(children ...*Node) *Node       { return compound(OpOr, 0, children...) }
func NewAndNot(a, b *Node) *Node          { return compound(OpAndNot, 0, a, b) }
func NewMaybeAnd(children ...*Node) *Node { return compound(OpMaybeAnd, 0, children...) }
func NewPhrase(children ...*Node) *Node   { return compound(OpPhrase, 0, children...) }
func NewProximity(dist int, children ...*Node) *Node {
	return compound(OpProximity, dist, children...)
}
func NewQuorum(k int, children ...*Node) *Node { return compound(OpQuorum, k, children...) }
func NewNear(dist int, children ...*Node) *Node {
	return compound(OpNear, dist, children...)
}
func NewNotNear(dist int, a, b *Node) *Node { return compound(OpNotNear, dist, a, b) }
func NewBefore(a, b *Node) *Node            { return compound(OpBefore, 0, a, b) }
func NewSentence(children ...*Node) *Node   { return compound(OpSentence, 0, children...) }
func NewParagraph(children ...*Node) *Node  { return compound(OpParagraph, 0, children...) }
func NewNull() *Node                        { return &Node{Op: OpNull} }
