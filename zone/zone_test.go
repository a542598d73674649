package zone

import (
	"testing"

	"github.com/manticore-go/ftscore/hitpos"
	"github.com/manticore-go/ftscore/iterator"
	"github.com/manticore-go/ftscore/postinglist"
	"github.com/stretchr/testify/require"
)

func markerStream(rowID int64, positions ...int) iterator.Stream {
	q := postinglist.NewQword("marker", 0)
	for _, p := range positions {
		q.Add(rowID, hitpos.New(0, p))
	}
	return iterator.NewKeyword(q, hitpos.NewFieldMask(), 0)
}

func TestIsInZoneCollapsesNestedOpenings(t *testing.T) {
	c := NewCache()
	c.AddZone("h1", markerStream(1, 1, 3, 5), markerStream(1, 2, 7))

	r, err := c.IsInZone("h1", 1, hitpos.New(0, 4))
	require.NoError(t, err)
	require.Equal(t, Found, r.Status)
	require.Equal(t, 1, r.SpanIdx)

	r, err = c.IsInZone("h1", 1, hitpos.New(0, 8))
	require.NoError(t, err)
	require.Equal(t, NoSpan, r.Status)
}

func TestIsInZoneNoDocument(t *testing.T) {
	c := NewCache()
	c.AddZone("h1", markerStream(1, 1), markerStream(1, 2))

	r, err := c.IsInZone("h1", 99, hitpos.New(0, 0))
	require.NoError(t, err)
	require.Equal(t, NoDocument, r.Status)
}

func TestIsInZoneUnknownZone(t *testing.T) {
	c := NewCache()
	_, err := c.IsInZone("missing", 1, hitpos.New(0, 0))
	require.ErrorIs(t, err, ErrUnknownZone)
}

func TestInZoneDocLevelCheck(t *testing.T) {
	c := NewCache()
	c.AddZone("h1", markerStream(1, 0), markerStream(1, 5))
	require.True(t, c.InZone(1, "h1"))
	require.False(t, c.InZone(2, "h1"))
	require.False(t, c.InZone(1, "body"))
}

func TestForgetDropsOldEntries(t *testing.T) {
	c := NewCache()
	c.AddZone("h1", markerStream(1, 0), markerStream(1, 5))
	c.InZone(1, "h1")
	c.Forget(2)
	e := c.zones["h1"]
	if _, ok := e.docs[1]; ok {
		t.Fatalf("expected row 1 to be forgotten")
	}
}
