package main

import (
	"encoding/json"
	"testing"

	"github.com/manticore-go/ftscore/dictionary"
	"github.com/manticore-go/ftscore/memindex"
	"github.com/manticore-go/ftscore/qcache"
	"github.com/manticore-go/ftscore/rank"
	"github.com/stretchr/testify/require"
)

func newDemoCorpus() *corpus {
	return &corpus{
		Index:  "demo",
		Fields: []string{"title", "body"},
		Documents: []corpusDoc{
			{ID: 1, Fields: map[string]string{
				"title": "red shoes",
				"body":  "comfortable red running shoes",
			}},
			{ID: 2, Fields: map[string]string{
				"title": "blue jacket",
				"body":  "warm winter jacket",
			}},
		},
	}
}

func buildDemoIndex(c *corpus) (*memindex.Index, *dictionary.Dictionary) {
	dict := dictionary.New(dictionary.DefaultConfig(), c.Wordforms)
	idx := memindex.New(dict, c.Fields)
	for _, doc := range c.Documents {
		idx.AddDocument(memindex.Document{RowID: doc.ID, Fields: doc.Fields})
	}
	return idx, dict
}

func TestRunQueryMatchesExpectedDocument(t *testing.T) {
	c := newDemoCorpus()
	idx, dict := buildDemoIndex(c)
	cache, err := qcache.New(128, 1<<20)
	require.NoError(t, err)

	body := []byte(`{"index":"demo","query":{"match":{"title":"shoes"}}}`)
	payload, hit, err := runQuery(c, idx, dict, cache, body, 0)
	require.NoError(t, err)
	require.False(t, hit)

	var result searchResult
	require.NoError(t, json.Unmarshal(payload, &result))
	require.Len(t, result.Matches, 1)
	require.Equal(t, int64(1), result.Matches[0].RowID)
}

func TestRunQueryServesSecondCallFromCache(t *testing.T) {
	c := newDemoCorpus()
	idx, dict := buildDemoIndex(c)
	cache, err := qcache.New(128, 1<<20)
	require.NoError(t, err)

	body := []byte(`{"index":"demo","query":{"match":{"title":"jacket"}}}`)
	first, hit, err := runQuery(c, idx, dict, cache, body, 0)
	require.NoError(t, err)
	require.False(t, hit)

	second, hit, err := runQuery(c, idx, dict, cache, body, 0)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, first, second)
}

func TestRunQueryRejectsWrongIndex(t *testing.T) {
	c := newDemoCorpus()
	idx, dict := buildDemoIndex(c)
	cache, err := qcache.New(128, 1<<20)
	require.NoError(t, err)

	body := []byte(`{"index":"other","query":{"match_all":{}}}`)
	_, _, err = runQuery(c, idx, dict, cache, body, 0)
	require.Error(t, err)
}

func TestFilteredSourceNilSpecKeepsAllFields(t *testing.T) {
	fields := map[string]string{"title": "red shoes", "body": "comfortable red running shoes"}
	out := filteredSource(fields, nil)
	require.Equal(t, fields, out)
}

func TestPaginateAppliesOffsetAndLimit(t *testing.T) {
	matches := []rank.Match{{RowID: 1}, {RowID: 2}, {RowID: 3}, {RowID: 4}, {RowID: 5}}
	got := paginate(matches, 1, 2)
	require.Len(t, got, 2)
	require.Equal(t, int64(2), got[0].RowID)
	require.Equal(t, int64(3), got[1].RowID)
}

func TestPaginateOffsetBeyondLengthReturnsEmpty(t *testing.T) {
	matches := []rank.Match{{RowID: 1}}
	require.Empty(t, paginate(matches, 5, 10))
}
