package rank

import (
	"sync/atomic"

	"github.com/manticore-go/ftscore/iterator"
	"github.com/manticore-go/ftscore/postinglist"
)

// Filter is the opaque early-reject collaborator spec.md §6 describes:
// "early_reject(ctx, match) -> bool. The ranker treats it as opaque; a
// true return drops the doc before hit fetching."
type Filter interface {
	EarlyReject(rowID int64) bool
}

// Budget tracks a nanosecond time allowance, debited per document
// inspected and per document returned (spec.md §4.3 cancellation). A nil
// *Budget never triggers exhaustion.
type Budget struct {
	remaining int64
}

// NewBudget returns a budget of nanos nanoseconds.
func NewBudget(nanos int64) *Budget { return &Budget{remaining: nanos} }

func (b *Budget) debit(nanos int64) bool {
	if b == nil {
		return false
	}
	b.remaining -= nanos
	return b.remaining <= 0
}

// costPerDocInspected and costPerDocReturned are placeholder per-document
// time costs charged against Budget; a real deployment would thread in
// measured costs from the caller instead of these constants.
const (
	costPerDocInspected int64 = 100
	costPerDocReturned  int64 = 50
)

// Frame is the ranker frame state machine of spec.md §4.3: INIT ->
// PULL-DOCS -> PULL-HITS -> DRIVE-STATE -> FLUSH -> END.
type Frame struct {
	root   iterator.Stream
	state  State
	filter Filter
	budget *Budget
	stop   *atomic.Bool
	done   bool
}

// NewFrame binds root, state and optional filter/budget/stop, the INIT
// step of spec.md §4.3. filter, budget and stop may all be nil.
func NewFrame(root iterator.Stream, state State, filter Filter, budget *Budget, stop *atomic.Bool) *Frame {
	return &Frame{root: root, state: state, filter: filter, budget: budget, stop: stop}
}

// Done reports whether the frame has entered END (cancellation, budget
// exhaustion, or the root iterator running dry).
func (fr *Frame) Done() bool { return fr.done }

func (fr *Frame) needsStop() bool {
	return fr.stop != nil && fr.stop.Load()
}

func trimDocs(docs []postinglist.Doc) ([]postinglist.Doc, bool) {
	exhausted := false
	if n := len(docs); n > 0 && docs[n-1].RowID == postinglist.InvalidRowID {
		docs = docs[:n-1]
		exhausted = len(docs) < postinglist.Block
	}
	return docs, exhausted
}

// pullDocs implements PULL-DOCS: pull chunks from root, running each doc
// through the filter, until at least one survivor is collected or the
// root is exhausted.
func (fr *Frame) pullDocs() ([]postinglist.Doc, bool) {
	var survivors []postinglist.Doc
	for {
		if fr.needsStop() {
			fr.done = true
			return nil, true
		}
		chunk := fr.root.GetDocs()
		docs, exhausted := trimDocs(chunk)
		for _, d := range docs {
			if fr.budget.debit(costPerDocInspected) {
				fr.done = true
				return survivors, true
			}
			if fr.filter == nil || !fr.filter.EarlyReject(d.RowID) {
				survivors = append(survivors, d)
			}
		}
		if len(survivors) > 0 || exhausted {
			return survivors, exhausted
		}
	}
}

// GetMatches runs one PULL-DOCS/PULL-HITS/DRIVE-STATE/FLUSH cycle and
// returns the matches it produced. An empty, non-nil-done result with
// fr.Done() == false means the caller should call GetMatches again; a
// true fr.Done() means the stream (or budget, or cancellation) is
// exhausted and this call's result is final.
func (fr *Frame) GetMatches() []Match {
	if fr.done {
		return nil
	}
	docs, exhausted := fr.pullDocs()
	if fr.done {
		return nil
	}
	if len(docs) == 0 {
		fr.done = true
		return nil
	}
	if exhausted {
		fr.done = true
	}

	withSentinel := append(append([]postinglist.Doc{}, docs...), postinglist.Doc{RowID: postinglist.InvalidRowID})
	hits := fr.root.GetHits(withSentinel)

	matches := fr.driveState(docs, hits)
	for range matches {
		if fr.budget.debit(costPerDocReturned) {
			fr.done = true
			break
		}
	}
	return matches
}

// driveState implements DRIVE-STATE: walk docs in order, feeding the
// state every hit belonging to the current doc, finalizing and emitting
// a Match each time the hit cursor advances to a new doc.
func (fr *Frame) driveState(docs []postinglist.Doc, hits []postinglist.Hit) []Match {
	matches := make([]Match, 0, len(docs))
	hi := 0
	for _, d := range docs {
		if fr.needsStop() {
			fr.done = true
			break
		}
		for hi < len(hits) && hits[hi].RowID == d.RowID {
			fr.state.Update(hits[hi])
			hi++
		}
		m := Match{RowID: d.RowID, Fields: d.Fields, Prefactor: d.TFIDFPrefactor}
		fr.state.Finalize(&m)
		fr.state.Reset()
		matches = append(matches, m)
	}
	return matches
}
