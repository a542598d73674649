package qcache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertThenGetReturnsPayload(t *testing.T) {
	c, err := New(16, 1<<20)
	require.NoError(t, err)
	key := Key{IndexID: "idx1", QueryShapeFingerprint: 1, SchemaFingerprint: 2}
	c.Insert(key, []byte("hello"))

	e, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), e.Payload)
	e.Release()
}

func TestGetMissReturnsFalse(t *testing.T) {
	c, err := New(16, 1<<20)
	require.NoError(t, err)
	_, ok := c.Get(Key{IndexID: "missing"})
	require.False(t, ok)
}

func TestInvalidateMakesExistingEntriesMiss(t *testing.T) {
	c, err := New(16, 1<<20)
	require.NoError(t, err)
	key := Key{IndexID: "idx1"}
	c.Insert(key, []byte("payload"))
	c.Invalidate()

	_, ok := c.Get(key)
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestByteBudgetEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(100, 10)
	require.NoError(t, err)
	c.Insert(Key{IndexID: "a"}, make([]byte, 6))
	c.Insert(Key{IndexID: "b"}, make([]byte, 6))

	_, aStillThere := c.Get(Key{IndexID: "a"})
	require.False(t, aStillThere)
	_, bStillThere := c.Get(Key{IndexID: "b"})
	require.True(t, bStillThere)
}

func TestDifferentKeysAreIndependent(t *testing.T) {
	c, err := New(16, 1<<20)
	require.NoError(t, err)
	k1 := Key{IndexID: "idx1", QueryShapeFingerprint: 1}
	k2 := Key{IndexID: "idx1", QueryShapeFingerprint: 2}
	c.Insert(k1, []byte("one"))
	c.Insert(k2, []byte("two"))

	e1, _ := c.Get(k1)
	e2, _ := c.Get(k2)
	require.Equal(t, []byte("one"), e1.Payload)
	require.Equal(t, []byte("two"), e2.Payload)
}
