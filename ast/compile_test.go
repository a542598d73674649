package ast

import (
	"testing"

	"github.com/RoaringBitmap/roaring"
	"github.com/manticore-go/ftscore/hitpos"
	"github.com/manticore-go/ftscore/postinglist"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	terms    map[string]*postinglist.Qword
	universe *roaring.Bitmap
}

func (s *fakeSource) Lookup(term string) (*postinglist.Qword, bool) {
	q, ok := s.terms[term]
	return q, ok
}

func (s *fakeSource) Universe() *roaring.Bitmap {
	return s.universe
}

func newFakeSource() *fakeSource {
	return &fakeSource{terms: make(map[string]*postinglist.Qword), universe: roaring.NewBitmap()}
}

func (s *fakeSource) add(term string, atomPos int, hits map[int64][]int) {
	q := postinglist.NewQword(term, atomPos)
	for row, positions := range hits {
		s.universe.Add(uint32(row))
		for _, p := range positions {
			q.Add(row, hitpos.New(0, p))
		}
	}
	s.terms[term] = q
}

func drain(t *testing.T, s interface {
	GetDocs() []postinglist.Doc
}) []int64 {
	t.Helper()
	var out []int64
	for {
		chunk := s.GetDocs()
		for _, d := range chunk {
			if d.RowID == postinglist.InvalidRowID {
				return out
			}
			out = append(out, d.RowID)
		}
		if len(chunk) == 0 {
			return out
		}
	}
}

func TestCompileKeywordMissingTerm(t *testing.T) {
	src := newFakeSource()
	_, err := Compile(NewKeyword("ghost", 0), src, nil)
	require.ErrorIs(t, err, ErrNoPostingList)
}

func TestCompileAndIntersectsChildren(t *testing.T) {
	src := newFakeSource()
	src.add("quick", 0, map[int64][]int{1: {0}, 2: {0}})
	src.add("fox", 1, map[int64][]int{1: {1}})
	n := NewAnd(NewKeyword("quick", 0), NewKeyword("fox", 1))
	s, err := Compile(n, src, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{1}, drain(t, s))
}

func TestCompileNullIsFullScan(t *testing.T) {
	src := newFakeSource()
	src.add("x", 0, map[int64][]int{3: {0}, 7: {0}})
	s, err := Compile(NewNull(), src, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{3, 7}, drain(t, s))
}

type fakeZones struct{ zone map[int64]string }

func (z *fakeZones) InZone(rowID int64, zone string) bool { return z.zone[rowID] == zone }

func TestCompileZoneRestrictionFiltersDocs(t *testing.T) {
	src := newFakeSource()
	src.add("title", 0, map[int64][]int{1: {0}, 2: {0}})
	n := NewKeyword("title", 0).WithLimit(LimitSpec{Zones: []string{"h1"}})
	zones := &fakeZones{zone: map[int64]string{1: "h1", 2: "body"}}
	s, err := Compile(n, src, zones)
	require.NoError(t, err)
	require.Equal(t, []int64{1}, drain(t, s))
}

func TestCompileZoneWithoutCheckerErrors(t *testing.T) {
	src := newFakeSource()
	src.add("title", 0, map[int64][]int{1: {0}})
	n := NewKeyword("title", 0).WithLimit(LimitSpec{Zones: []string{"h1"}})
	_, err := Compile(n, src, nil)
	require.ErrorIs(t, err, ErrZoneUnsupported)
}
