package rank

import (
	"testing"

	"github.com/manticore-go/ftscore/hitpos"
	"github.com/manticore-go/ftscore/iterator"
	"github.com/manticore-go/ftscore/postinglist"
	"github.com/stretchr/testify/require"
)

func termStream(term string, atomPos int, hits map[int64][]int) iterator.Stream {
	q := postinglist.NewQword(term, atomPos)
	for row, positions := range hits {
		for _, p := range positions {
			q.Add(row, hitpos.New(0, p))
		}
	}
	return iterator.NewKeyword(q, hitpos.NewFieldMask(), 0)
}

func TestFrameEmitsMatchesInRowOrder(t *testing.T) {
	root := iterator.NewAnd(
		termStream("quick", 0, map[int64][]int{1: {0}, 3: {0}, 2: {0}}),
		termStream("fox", 1, map[int64][]int{1: {1}, 2: {1}, 3: {1}}),
	)
	state := NewWordCount()
	require.NoError(t, state.Init(1, []int32{1}))
	fr := NewFrame(root, state, nil, nil, nil)

	var rows []int64
	for !fr.Done() {
		matches := fr.GetMatches()
		for _, m := range matches {
			rows = append(rows, m.RowID)
		}
		if len(matches) == 0 && fr.Done() {
			break
		}
	}
	require.Equal(t, []int64{1, 2, 3}, rows)
}

type rejectAll struct{}

func (rejectAll) EarlyReject(rowID int64) bool { return true }

func TestFrameEarlyRejectDropsAllDocs(t *testing.T) {
	root := termStream("quick", 0, map[int64][]int{1: {0}})
	state := NewWordCount()
	require.NoError(t, state.Init(1, []int32{1}))
	fr := NewFrame(root, state, rejectAll{}, nil, nil)
	matches := fr.GetMatches()
	require.Empty(t, matches)
	require.True(t, fr.Done())
}

func TestFrameEmptyQueryEmitsNoMatches(t *testing.T) {
	root := iterator.NewAnd(
		termStream("quick", 0, map[int64][]int{}),
	)
	state := NewWordCount()
	require.NoError(t, state.Init(1, []int32{1}))
	fr := NewFrame(root, state, nil, nil, nil)
	matches := fr.GetMatches()
	require.Empty(t, matches)
	require.True(t, fr.Done())
}

func TestFrameBudgetExhaustionEndsEarly(t *testing.T) {
	root := termStream("quick", 0, map[int64][]int{1: {0}, 2: {0}, 3: {0}})
	state := NewWordCount()
	require.NoError(t, state.Init(1, []int32{1}))
	fr := NewFrame(root, state, nil, NewBudget(1), nil)
	fr.GetMatches()
	require.True(t, fr.Done())
}
