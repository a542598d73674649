// Package rank implements the ranker frame state machine (C3, spec.md
// §4.3) and the pluggable ranker states (C4, spec.md §4.4) that drive it.
package rank

import (
	"github.com/manticore-go/ftscore/hitpos"
	"github.com/manticore-go/ftscore/postinglist"
)

// Match is the per-document accumulator the frame drives through a
// State's Update/Finalize calls and ultimately emits as a
// (row_id, weight, optional zonespan_tag) record, per spec.md §4.3/§4.4.
type Match struct {
	RowID       int64
	Fields      hitpos.FieldMask
	Prefactor   float64 // BM25-derived seed weight carried from the doc stream
	Weight      int32
	ZoneSpanTag int32
}

// State is the three-operation contract every ranker mode implements,
// spec.md §4.4: "init(num_fields, weights, ranker_ctx) -> Result,
// update(&hit), finalize(&match) -> i32".
type State interface {
	Init(numFields int, weights []int32) error
	Update(hit postinglist.Hit)
	Finalize(m *Match) int32
	// Reset clears the per-document accumulator Update/Finalize built up,
	// called by the frame between documents (spec.md §4.3 DRIVE-STATE
	// visits one document's hits at a time; state is not expected to
	// retain anything across the finalize/emit boundary).
	Reset()
}

// BM25Scale converts the BM25 prefactor accumulated in the doc stream into
// the same integer weight scale matches are returned in. spec.md's S6
// worked example fixes it at 1000 ("final weight = 2 + bm25 where bm25 is
// the seed times the BM25 scale (1000)").
const BM25Scale = 1000

// WeightSum implements spec.md §4.4.1: update is a no-op; finalize sums
// user field weights over the doc's matched fields, optionally folding in
// a BM25-scaled prefactor.
type WeightSum struct {
	weights []int32
	useBM25 bool
}

// NewWeightSum builds a weight-sum state. When useBM25 is set, finalize
// adds Match.Prefactor*BM25Scale to the field-weight sum.
func NewWeightSum(useBM25 bool) *WeightSum {
	return &WeightSum{useBM25: useBM25}
}

func (s *WeightSum) Init(numFields int, weights []int32) error {
	s.weights = normalizeWeights(numFields, weights)
	return nil
}

func (s *WeightSum) Update(hit postinglist.Hit) {}

func (s *WeightSum) Reset() {}

func (s *WeightSum) Finalize(m *Match) int32 {
	var sum int32
	for f := 0; f < len(s.weights); f++ {
		if m.Fields.Test(f) {
			sum += s.weights[f]
		}
	}
	if s.useBM25 {
		sum += int32(m.Prefactor * BM25Scale)
	}
	m.Weight = sum
	return sum
}

func normalizeWeights(numFields int, weights []int32) []int32 {
	out := make([]int32, numFields)
	for f := 0; f < numFields; f++ {
		if f < len(weights) {
			out[f] = weights[f]
		} else {
			out[f] = 1
		}
	}
	return out
}

// lcsTracker is the position/LCS tracking shared by Proximity+LCS,
// SPH04 and Match-any (spec.md §4.4.2, reused per §4.4.3/§4.4.4 "Same LCS
// as 4.4.2"). HandleDupes extends the LCS run across duplicate query
// positions via a qpos-mask shifted tail check.
type lcsTracker struct {
	handleDupes bool

	haveLast     []bool
	lastPos      []int
	lastQueryPos []int
	curLCS       []float64
	maxLCS       []float64
	tailMask     []uint64
}

func newLCSTracker(numFields int, handleDupes bool) *lcsTracker {
	return &lcsTracker{
		handleDupes:  handleDupes,
		haveLast:     make([]bool, numFields),
		lastPos:      make([]int, numFields),
		lastQueryPos: make([]int, numFields),
		curLCS:       make([]float64, numFields),
		maxLCS:       make([]float64, numFields),
		tailMask:     make([]uint64, numFields),
	}
}

// update implements spec.md §4.4.2's per-hit algorithm.
func (t *lcsTracker) update(hit postinglist.Hit) {
	f := hit.Hitpos.Field()
	pos := int(hit.Hitpos.WithField())
	qpos := hit.QueryPos
	expDelta := t.lastPos[f] - t.lastQueryPos[f]

	switch {
	case !t.haveLast[f]:
		t.curLCS[f] = hit.Weight
	case pos-qpos == expDelta && pos > t.lastPos[f]:
		t.curLCS[f] += hit.Weight
	case t.handleDupes && qpos-t.lastQueryPos[f] >= 0 && qpos-t.lastQueryPos[f] < 32 &&
		(t.tailMask[f]<<uint(qpos-t.lastQueryPos[f]))&hit.QposMask != 0:
		t.curLCS[f] += hit.Weight
	default:
		t.curLCS[f] = hit.Weight
	}

	if t.curLCS[f] > t.maxLCS[f] {
		t.maxLCS[f] = t.curLCS[f]
	}
	t.lastPos[f] = pos
	t.lastQueryPos[f] = qpos
	t.tailMask[f] = hit.QposMask
	t.haveLast[f] = true
}

// ProximityLCS implements spec.md §4.4.2: finalize sums
// max_lcs[f] * weight[f].
type ProximityLCS struct {
	weights     []int32
	handleDupes bool
	lcs         *lcsTracker
}

// NewProximityLCS builds a proximity+LCS state. handleDupes enables the
// duplicate-query-position extension described in spec.md §4.4.2.
func NewProximityLCS(handleDupes bool) *ProximityLCS {
	return &ProximityLCS{handleDupes: handleDupes}
}

func (s *ProximityLCS) Init(numFields int, weights []int32) error {
	s.weights = normalizeWeights(numFields, weights)
	s.lcs = newLCSTracker(numFields, s.handleDupes)
	return nil
}

func (s *ProximityLCS) Update(hit postinglist.Hit) { s.lcs.update(hit) }

func (s *ProximityLCS) Reset() { s.lcs = newLCSTracker(len(s.weights), s.handleDupes) }

func (s *ProximityLCS) Finalize(m *Match) int32 {
	var sum float64
	for f := range s.weights {
		sum += s.lcs.maxLCS[f] * float64(s.weights[f])
	}
	m.Weight = int32(sum)
	return m.Weight
}

// SPH04 implements spec.md §4.4.3: proximity+LCS plus per-field
// head_hit/exact_hit boosts.
//
// Rank = Σ (4·LCS + 2·head + exact) × weight
type SPH04 struct {
	weights  []int32
	lcs      *lcsTracker
	maxQpos  int
	head     []bool
	exactHit []bool
}

// NewSPH04 builds an SPH04 state. maxQueryPos is the query's highest
// QueryPos value, used by the exact-hit test ("querypos == max_qpos").
func NewSPH04(maxQueryPos int) *SPH04 {
	return &SPH04{maxQpos: maxQueryPos}
}

func (s *SPH04) Init(numFields int, weights []int32) error {
	s.weights = normalizeWeights(numFields, weights)
	s.lcs = newLCSTracker(numFields, false)
	s.head = make([]bool, numFields)
	s.exactHit = make([]bool, numFields)
	return nil
}

func (s *SPH04) Update(hit postinglist.Hit) {
	s.lcs.update(hit)
	f := hit.Hitpos.Field()
	pos := hit.Hitpos.Position()
	if pos == 1 {
		s.head[f] = true
		if hit.Hitpos.IsEnd() && hit.QueryPos == s.maxQpos {
			s.exactHit[f] = true
		}
	}
}

func (s *SPH04) Reset() {
	s.lcs = newLCSTracker(len(s.weights), false)
	s.head = make([]bool, len(s.weights))
	s.exactHit = make([]bool, len(s.weights))
}

func (s *SPH04) Finalize(m *Match) int32 {
	var sum float64
	for f := range s.weights {
		score := 4*s.lcs.maxLCS[f]
		if s.head[f] {
			score += 2
		}
		if s.exactHit[f] {
			score++
		}
		sum += score * float64(s.weights[f])
	}
	m.Weight = int32(sum)
	return m.Weight
}

// MatchAny implements spec.md §4.4.4: the LCS tracker plus a per-field
// query-position coverage bitset.
//
// Rank = Σ (popcount(cov) + (LCS-1)·K) × weight, K = Σ weight × num_words
type MatchAny struct {
	weights  []int32
	lcs      *lcsTracker
	coverage []uint64
	numWords int
}

// NewMatchAny builds a match-any state. numWords is the query's distinct
// keyword count, used for the K coefficient.
func NewMatchAny(numWords int) *MatchAny {
	return &MatchAny{numWords: numWords}
}

func (s *MatchAny) Init(numFields int, weights []int32) error {
	s.weights = normalizeWeights(numFields, weights)
	s.lcs = newLCSTracker(numFields, false)
	s.coverage = make([]uint64, numFields)
	return nil
}

func (s *MatchAny) Update(hit postinglist.Hit) {
	s.lcs.update(hit)
	f := hit.Hitpos.Field()
	if hit.QueryPos < 64 {
		s.coverage[f] |= 1 << uint(hit.QueryPos)
	}
}

func (s *MatchAny) Reset() {
	s.lcs = newLCSTracker(len(s.weights), false)
	s.coverage = make([]uint64, len(s.weights))
}

func (s *MatchAny) Finalize(m *Match) int32 {
	var k float64
	for _, w := range s.weights {
		k += float64(w) * float64(s.numWords)
	}
	var sum float64
	for f := range s.weights {
		cov := popcount64(s.coverage[f])
		score := float64(cov) + (s.lcs.maxLCS[f]-1)*k
		sum += score * float64(s.weights[f])
	}
	m.Weight = int32(sum)
	return m.Weight
}

func popcount64(x uint64) int {
	n := 0
	for x != 0 {
		x &= x - 1
		n++
	}
	return n
}

// WordCount implements spec.md §4.4.5: update adds the hit's field
// weight; finalize returns the accumulated integer.
type WordCount struct {
	weights []int32
	total   float64
}

// NewWordCount builds a wordcount state.
func NewWordCount() *WordCount { return &WordCount{} }

func (s *WordCount) Init(numFields int, weights []int32) error {
	s.weights = normalizeWeights(numFields, weights)
	return nil
}

func (s *WordCount) Update(hit postinglist.Hit) {
	f := hit.Hitpos.Field()
	s.total += hit.Weight * float64(s.weights[f])
}

func (s *WordCount) Finalize(m *Match) int32 {
	m.Weight = int32(s.total)
	return m.Weight
}

func (s *WordCount) Reset() { s.total = 0 }

// FieldMaskState implements spec.md §4.4.6: OR of 1<<field(hitpos) over
// hits.
type FieldMaskState struct {
	mask uint64
}

// NewFieldMaskState builds a fieldmask state.
func NewFieldMaskState() *FieldMaskState { return &FieldMaskState{} }

func (s *FieldMaskState) Init(numFields int, weights []int32) error { return nil }

func (s *FieldMaskState) Update(hit postinglist.Hit) {
	if f := hit.Hitpos.Field(); f < 64 {
		s.mask |= 1 << uint(f)
	}
}

func (s *FieldMaskState) Finalize(m *Match) int32 {
	m.Weight = int32(s.mask)
	return m.Weight
}

func (s *FieldMaskState) Reset() { s.mask = 0 }

// PluginHooks are the externally registered init/update/finalize/deinit
// functions spec.md §4.4.8 dispatches to.
type PluginHooks struct {
	OnInit     func(numFields int, weights []int32) error
	OnUpdate   func(hit postinglist.Hit)
	OnFinalize func(m *Match) int32
	OnReset    func()
	OnDeinit   func()
}

// Plugin implements spec.md §4.4.8: pass-through dispatch to externally
// registered hooks. Deinit is not part of State, and Frame never calls it;
// the Plugin's owner calls it explicitly.
type Plugin struct {
	hooks PluginHooks
}

// NewPlugin wraps hooks as a State.
func NewPlugin(hooks PluginHooks) *Plugin {
	return &Plugin{hooks: hooks}
}

func (s *Plugin) Init(numFields int, weights []int32) error {
	if s.hooks.OnInit == nil {
		return nil
	}
	return s.hooks.OnInit(numFields, weights)
}

func (s *Plugin) Update(hit postinglist.Hit) {
	if s.hooks.OnUpdate != nil {
		s.hooks.OnUpdate(hit)
	}
}

func (s *Plugin) Finalize(m *Match) int32 {
	if s.hooks.OnFinalize == nil {
		return 0
	}
	w := s.hooks.OnFinalize(m)
	m.Weight = w
	return w
}

func (s *Plugin) Reset() {
	if s.hooks.OnReset != nil {
		s.hooks.OnReset()
	}
}

// Deinit releases the plugin's external resources, spec.md §4.4.8's
// deinit hook.
func (s *Plugin) Deinit() {
	if s.hooks.OnDeinit != nil {
		s.hooks.OnDeinit()
	}
}
