package memindex

import (
	"testing"

	"github.com/manticore-go/ftscore/ast"
	"github.com/manticore-go/ftscore/dictionary"
	"github.com/stretchr/testify/require"
)

func newTestIndex() *Index {
	dict := dictionary.New(dictionary.Config{MinTokenLength: 1, EnableStemming: false, EnableStopwords: false}, nil)
	idx := New(dict, []string{"title", "body"})
	idx.AddDocument(Document{RowID: 1, Fields: map[string]string{
		"title": "red shoes",
		"body":  "comfortable red running shoes for everyday wear",
	}})
	idx.AddDocument(Document{RowID: 2, Fields: map[string]string{
		"title": "blue jacket",
		"body":  "warm jacket for winter",
	}})
	return idx
}

func TestAddDocumentPopulatesUniverse(t *testing.T) {
	idx := newTestIndex()
	require.Equal(t, 2, idx.NumDocs())
	require.True(t, idx.Universe().Contains(1))
	require.True(t, idx.Universe().Contains(2))
}

func TestLookupFindsIndexedTerm(t *testing.T) {
	idx := newTestIndex()
	q, ok := idx.Lookup("shoes")
	require.True(t, ok)
	require.Equal(t, 1, q.DocCount)
}

func TestLookupMissingTermReturnsFalse(t *testing.T) {
	idx := newTestIndex()
	_, ok := idx.Lookup("nonexistent")
	require.False(t, ok)
}

func TestFieldIndexResolvesSchemaFields(t *testing.T) {
	idx := newTestIndex()
	i, ok := idx.FieldIndex("body")
	require.True(t, ok)
	require.Equal(t, 1, i)
}

func TestIDFIsHigherForRarerTerms(t *testing.T) {
	idx := newTestIndex()
	require.Greater(t, idx.IDF("blue"), idx.IDF("for"))
}

func TestCompileAndRunMatchQuery(t *testing.T) {
	idx := newTestIndex()
	n := ast.NewKeyword("shoes", 0)
	stream, err := ast.Compile(n, idx, nil)
	require.NoError(t, err)
	docs := stream.GetDocs()
	require.NotEmpty(t, docs)
	require.Equal(t, int64(1), docs[0].RowID)
}

func TestDocLenAndAvgDocLen(t *testing.T) {
	idx := newTestIndex()
	require.Greater(t, idx.DocLen(1), 0.0)
	require.Greater(t, idx.AvgDocLen(), 0.0)
}

func TestTermsReturnsSortedDistinctTerms(t *testing.T) {
	idx := newTestIndex()
	terms := idx.Terms()
	for i := 1; i < len(terms); i++ {
		require.Less(t, terms[i-1], terms[i])
	}
}
