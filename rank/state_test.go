package rank

import (
	"testing"

	"github.com/manticore-go/ftscore/hitpos"
	"github.com/manticore-go/ftscore/postinglist"
	"github.com/stretchr/testify/require"
)

func hit(field, pos, queryPos int, weight float64) postinglist.Hit {
	return postinglist.Hit{Hitpos: hitpos.New(field, pos), QueryPos: queryPos, Weight: weight}
}

func TestWeightSumIgnoresHitsSumsFieldWeights(t *testing.T) {
	s := NewWeightSum(false)
	require.NoError(t, s.Init(2, []int32{3, 5}))
	fields := hitpos.NewFieldMask().Set(1)
	m := &Match{Fields: fields}
	require.Equal(t, int32(5), s.Finalize(m))
}

func TestProximityLCSExtendsOnConsecutivePositions(t *testing.T) {
	s := NewProximityLCS(false)
	require.NoError(t, s.Init(1, []int32{1}))
	s.Update(hit(0, 10, 0, 1))
	s.Update(hit(0, 11, 1, 1))
	m := &Match{Fields: hitpos.NewFieldMask().Set(0)}
	require.Equal(t, int32(2), s.Finalize(m))
}

func TestProximityLCSResetsOnGap(t *testing.T) {
	s := NewProximityLCS(false)
	require.NoError(t, s.Init(1, []int32{1}))
	s.Update(hit(0, 10, 0, 1))
	s.Update(hit(0, 50, 1, 1))
	m := &Match{Fields: hitpos.NewFieldMask().Set(0)}
	require.Equal(t, int32(1), s.Finalize(m))
}

func TestWordCountAccumulatesWeightedHits(t *testing.T) {
	s := NewWordCount()
	require.NoError(t, s.Init(1, []int32{2}))
	s.Update(hit(0, 0, 0, 3))
	s.Update(hit(0, 1, 1, 1))
	m := &Match{}
	require.Equal(t, int32(8), s.Finalize(m))
}

func TestFieldMaskStateOrsFieldsSeen(t *testing.T) {
	s := NewFieldMaskState()
	require.NoError(t, s.Init(4, nil))
	s.Update(hit(0, 0, 0, 1))
	s.Update(hit(2, 0, 1, 1))
	m := &Match{}
	require.Equal(t, int32(0b101), s.Finalize(m))
}

func TestStateResetClearsAccumulator(t *testing.T) {
	s := NewProximityLCS(false)
	require.NoError(t, s.Init(1, []int32{1}))
	s.Update(hit(0, 10, 0, 1))
	s.Update(hit(0, 11, 1, 1))
	s.Reset()
	s.Update(hit(0, 0, 0, 1))
	m := &Match{Fields: hitpos.NewFieldMask().Set(0)}
	require.Equal(t, int32(1), s.Finalize(m))
}
