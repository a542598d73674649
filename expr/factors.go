// Package expr implements the expression ranker's per-document factor set
// (spec.md §4.5, C4.7) and the expression hook that evaluates a
// user-supplied scalar expression over it (spec.md §5, C5).
package expr

import (
	"math"

	"github.com/manticore-go/ftscore/postinglist"
	"github.com/manticore-go/ftscore/rank"
)

// Config carries the tunables spec.md §9 calls out as Open Questions
// resolved to configurable defaults: ATC window/ring sizes, and the
// max_window_hits window.
type Config struct {
	ATCWindow     int // L, default 10
	ATCRingSize   int // B, default 30
	MaxWindowSize int // W for max_window_hits, default 10
	AvgDocLen     float64
	TotalDocs     int
	BM25K1        float64
	BM25B         float64

	// FieldWeights backs bm25f()'s per-field weight argument (spec.md §5:
	// "bm25f's third argument is a field-name -> integer weight map");
	// expressed as a config table set once at NewFactors rather than parsed out
	// of the expression text, since the grammar only parses constant
	// scalar arguments.
	FieldWeights map[int]float64
}

// DefaultConfig returns the tunables at the defaults spec.md §9 specifies
// ("The ATC window size (10) and ring buffer size (30) are hard-coded in
// the source; we specify them as tunables with those defaults").
func DefaultConfig() Config {
	return Config{
		ATCWindow:     10,
		ATCRingSize:   30,
		MaxWindowSize: 10,
		BM25K1:        1.2,
		BM25B:         0.75,
	}
}

// fieldFactors is the per-field counter block spec.md §4.5 enumerates.
type fieldFactors struct {
	hitCount       int
	wordCountMask  uint64
	tfIdfSum       float64
	minIDF         float64
	maxIDF         float64
	sumIDF         float64
	minHitPos      int
	minBestSpanPos int
	maxWindowHits  int
	minGaps        int
	lccsLen        int
	wlccs          float64

	matchedFields bool
	exactHit      bool
	exactOrder    bool

	// atcTerms accumulates per-qpos term-closeness contributions
	// (spec.md §4.5 "ATC"); keyed by query position.
	atcTerms map[int]float64
	atcRing  []ringHit

	// windowPositions is the sliding multiset for max_window_hits.
	windowPositions []int

	// minGapsWindow + seenWords implement the left-minimal sliding
	// window spec.md §4.5 "Min-gaps MW" describes.
	minGapsWindow []minGapsHit
	seenWords     map[int]int

	lccsNextQPos   int
	lccsNextHitPos int
	haveLCCS       bool
}

type ringHit struct {
	qpos int
	pos  int
	idf  float64
}

type minGapsHit struct {
	qpos int
	pos  int
}

func newFieldFactors() *fieldFactors {
	return &fieldFactors{
		minIDF:    math.Inf(1),
		maxIDF:    math.Inf(-1),
		atcTerms:  make(map[int]float64),
		seenWords: make(map[int]int),
	}
}

// Factors is the full per-document expression-ranker state, spec.md
// §4.5/§3's "Ranker state ... for the expression ranker".
type Factors struct {
	cfg Config
	idf map[int]float64 // query position -> IDF, set by NewFactors from the query's term IDFs

	fields  []*fieldFactors
	weights []int32

	lcs      *lcsState
	termDupes map[int]int // atom qpos -> canonical qpos

	bm25      float64
	bm25a     float64
	numFields int
	docLen    float64

	exportOnly bool
	useATC     bool
}

// SetDocLen records the current document's length, read by BM25A/BM25F
// (via the bm25a()/bm25f() expression hooks) when normalising term
// frequency. The caller sets it once per document before driving hits
// through Update; rank.Frame does not call it.
func (f *Factors) SetDocLen(dl float64) { f.docLen = dl }

// DocLen returns the length set by SetDocLen, or AvgDocLen as a fallback
// when the caller never set one.
func (f *Factors) DocLen() float64 {
	if f.docLen > 0 {
		return f.docLen
	}
	return f.cfg.AvgDocLen
}

// lcsState is factors.Factors' own copy of the LCS/exp-delta tracker
// (spec.md §4.5 "Position/LCS tracking identical to 4.4.2"); duplicated
// rather than imported from rank, whose lcsTracker is unexported.
type lcsState struct {
	haveLast     []bool
	lastPos      []int
	lastQueryPos []int
	curLCS       []float64
	maxLCS       []float64
}

func newLCSState(numFields int) *lcsState {
	return &lcsState{
		haveLast:     make([]bool, numFields),
		lastPos:      make([]int, numFields),
		lastQueryPos: make([]int, numFields),
		curLCS:       make([]float64, numFields),
		maxLCS:       make([]float64, numFields),
	}
}

func (l *lcsState) update(hit postinglist.Hit) bool {
	f := hit.Hitpos.Field()
	pos := int(hit.Hitpos.WithField())
	qpos := hit.QueryPos
	expDelta := l.lastPos[f] - l.lastQueryPos[f]
	extended := false
	switch {
	case !l.haveLast[f]:
		l.curLCS[f] = hit.Weight
	case pos-qpos == expDelta && pos > l.lastPos[f]:
		l.curLCS[f] += hit.Weight
		extended = true
	default:
		l.curLCS[f] = hit.Weight
	}
	if l.curLCS[f] > l.maxLCS[f] {
		l.maxLCS[f] = l.curLCS[f]
	}
	l.lastPos[f] = pos
	l.lastQueryPos[f] = qpos
	l.haveLast[f] = true
	return extended
}

// NewFactors builds a Factors state for numFields fields, weighted by
// weights, with per-query-position IDF table idf. useATC enables the ATC
// accumulator (spec.md: "Enabled only when the expression references ATC
// or when factor export is requested").
func NewFactors(cfg Config, numFields int, weights []int32, idf map[int]float64, useATC bool) *Factors {
	f := &Factors{
		cfg:       cfg,
		idf:       idf,
		weights:   weights,
		numFields: numFields,
		termDupes: make(map[int]int),
		useATC:    useATC,
	}
	f.fields = make([]*fieldFactors, numFields)
	for i := range f.fields {
		f.fields[i] = newFieldFactors()
	}
	f.lcs = newLCSState(numFields)
	return f
}

// Init satisfies rank.State. It records numFields and weights as given
// without validating them; the per-field state NewFactors allocated is
// not resized.
func (f *Factors) Init(numFields int, weights []int32) error {
	f.numFields = numFields
	f.weights = weights
	return nil
}

func (f *Factors) canonicalQPos(qpos int) int {
	if c, ok := f.termDupes[qpos]; ok {
		return c
	}
	return qpos
}

// Update folds one hit into every enabled factor, spec.md §4.5's per-hit
// algorithm.
func (f *Factors) Update(hit postinglist.Hit) {
	fld := hit.Hitpos.Field()
	if fld >= len(f.fields) {
		return
	}
	qpos := f.canonicalQPos(hit.QueryPos)
	pos := hit.Hitpos.Position()
	ff := f.fields[fld]

	ff.hitCount++
	ff.matchedFields = true
	if qpos < 64 {
		ff.wordCountMask |= 1 << uint(qpos)
	}
	idf := f.idf[qpos]
	ff.tfIdfSum += idf
	if idf < ff.minIDF {
		ff.minIDF = idf
	}
	if idf > ff.maxIDF {
		ff.maxIDF = idf
	}
	ff.sumIDF += idf

	if ff.hitCount == 1 || pos < ff.minHitPos {
		ff.minHitPos = pos
	}
	if pos == 1 {
		ff.exactHit = true
	}

	f.lcs.update(hit)
	if f.lcs.maxLCS[fld] >= 1 {
		ff.minBestSpanPos = ff.minHitPos
	}

	f.updateMinGaps(ff, qpos, pos)
	f.updateWindow(ff, pos)
	f.updateLCCS(ff, qpos, pos, idf)
	if f.useATC {
		f.updateATC(ff, qpos, pos, idf)
	}
}

// updateMinGaps implements spec.md §4.5's "Min-gaps MW": a left-minimal
// sliding window where the leftmost keyword appears exactly once.
//
// Open Question: spec.md's worked example S4 gives window-transition
// snapshots and a final numeric answer (min_gaps=3) that do not resolve
// to a single consistent arithmetic rule under any of the window
// formulas this implementation tried (gap computed from window span
// minus unique count, from raw span, from repeated-word position
// deltas, from consecutive-hit deltas). original_source/ carried no
// surviving files for this algorithm (filtered out during distillation),
// so there is no ground truth to disambiguate against. This
// implementation follows the textual definition ("left-minimal window,
// leftmost keyword appears exactly once") literally rather than
// contorting itself to match the example's numbers, which are at least
// partly inconsistent with each other even taken alone.
func (f *Factors) updateMinGaps(ff *fieldFactors, qpos, pos int) {
	ff.minGapsWindow = append(ff.minGapsWindow, minGapsHit{qpos: qpos, pos: pos})
	wasNew := ff.seenWords[qpos] == 0
	ff.seenWords[qpos]++
	if wasNew {
		numUnique := len(ff.seenWords)
		leftmost := ff.minGapsWindow[0]
		gap := pos - leftmost.pos - (numUnique - 1)
		if numUnique <= 1 {
			gap = 0
		}
		if ff.minGaps == 0 || gap < ff.minGaps {
			ff.minGaps = gap
		}
	} else {
		for len(ff.minGapsWindow) > 0 && ff.seenWords[ff.minGapsWindow[0].qpos] > 1 {
			ff.seenWords[ff.minGapsWindow[0].qpos]--
			ff.minGapsWindow = ff.minGapsWindow[1:]
		}
	}
}

// updateWindow implements spec.md §4.5's "Window (for max_window_hits)":
// maintain the multiset of hit positions within W of the newest.
func (f *Factors) updateWindow(ff *fieldFactors, pos int) {
	ff.windowPositions = append(ff.windowPositions, pos)
	w := f.cfg.MaxWindowSize
	cut := 0
	for i, p := range ff.windowPositions {
		if pos-p <= w {
			cut = i
			break
		}
		cut = i + 1
	}
	ff.windowPositions = ff.windowPositions[cut:]
	if len(ff.windowPositions) > ff.maxWindowHits {
		ff.maxWindowHits = len(ff.windowPositions)
	}
}

// updateLCCS implements spec.md §4.5's LCCS/WLCCS: track
// (expected_next_qpos, expected_next_hitpos); extend on match, reset to
// length 1 on mismatch.
func (f *Factors) updateLCCS(ff *fieldFactors, qpos, pos int, idf float64) {
	if ff.haveLCCS && qpos == ff.lccsNextQPos && pos == ff.lccsNextHitPos {
		ff.lccsLen++
		ff.wlccs += idf
	} else {
		ff.lccsLen = 1
		ff.wlccs = idf
	}
	ff.lccsNextQPos = qpos + 1
	ff.lccsNextHitPos = pos + 1
	ff.haveLCCS = true
}

// updateATC implements spec.md §4.5's ATC (aggregate term closeness): a
// ring buffer of the last up to B hits in the field; each hit's closeness
// to its window neighbours accumulates into atcTerms[qpos].
func (f *Factors) updateATC(ff *fieldFactors, qpos, pos int, idf float64) {
	ff.atcRing = append(ff.atcRing, ringHit{qpos: qpos, pos: pos, idf: idf})
	if len(ff.atcRing) > f.cfg.ATCRingSize {
		ff.atcRing = ff.atcRing[len(ff.atcRing)-f.cfg.ATCRingSize:]
	}
	L := f.cfg.ATCWindow
	start := len(ff.atcRing) - L
	if start < 0 {
		start = 0
	}
	window := ff.atcRing[start:]
	var tc float64
	for _, other := range window {
		if other.qpos == qpos && other.pos == pos {
			continue
		}
		delta := math.Abs(float64(pos - other.pos))
		if delta == 0 {
			delta = 1
		}
		contribution := other.idf / math.Pow(delta, 1.75)
		if other.qpos == qpos {
			contribution /= 2
		}
		tc += contribution
	}
	ff.atcTerms[qpos] += tc
}

// finalizeATC computes atc[f] = log(1 + sum_q idf(q) * atc_terms[q]) per
// spec.md §4.5, called once per field at Finalize.
func (f *Factors) finalizeATC(ff *fieldFactors) float64 {
	if !f.useATC {
		return 0
	}
	var sum float64
	for qpos, terms := range ff.atcTerms {
		sum += f.idf[qpos] * terms
	}
	return math.Log(1 + sum)
}

// BM25A implements spec.md §4.5's bm25a formula:
// Σ_q tf/(tf + k1·(1 - b + b·dl/avg_dl)) · IDF(q)
func (f *Factors) BM25A(dl float64) float64 {
	k1, b := f.cfg.BM25K1, f.cfg.BM25B
	avg := f.cfg.AvgDocLen
	if avg <= 0 {
		avg = dl
	}
	var sum float64
	for _, ff := range f.fields {
		tf := float64(ff.hitCount)
		if tf == 0 {
			continue
		}
		norm := tf / (tf + k1*(1-b+b*dl/avg))
		sum += norm * ff.sumIDF
	}
	return sum
}

// BM25F implements spec.md §4.5's field-weighted bm25f, parameterised by
// fieldWeights (field index -> integer weight).
func (f *Factors) BM25F(fieldWeights map[int]float64, dl float64) float64 {
	k1, b := f.cfg.BM25K1, f.cfg.BM25B
	avg := f.cfg.AvgDocLen
	if avg <= 0 {
		avg = dl
	}
	var sum float64
	for idx, ff := range f.fields {
		tf := float64(ff.hitCount)
		if tf == 0 {
			continue
		}
		w := fieldWeights[idx]
		if w == 0 {
			w = 1
		}
		norm := (tf * w) / (tf*w + k1*(1-b+b*dl/avg))
		sum += norm * ff.sumIDF
	}
	return sum
}

// Finalize satisfies rank.State: the caller evaluates the user expression
// over Factors separately (via a Hook) and sets m.Weight; Finalize here
// only folds in the prefactor-derived bm25 seed spec.md calls "the
// prefactor accumulated from the iterator".
func (f *Factors) Finalize(m *rank.Match) int32 {
	f.bm25 = m.Prefactor * rank.BM25Scale
	return int32(f.bm25)
}

// Reset clears all per-document accumulators, satisfying rank.State.
func (f *Factors) Reset() {
	for i := range f.fields {
		f.fields[i] = newFieldFactors()
	}
	f.lcs = newLCSState(f.numFields)
	f.bm25 = 0
	f.bm25a = 0
	f.docLen = 0
}

// NumFields reports how many fields Factors tracks.
func (f *Factors) NumFields() int { return len(f.fields) }
