package jsonquery

import (
	"testing"

	"github.com/manticore-go/ftscore/ast"
	"github.com/manticore-go/ftscore/dictionary"
	"github.com/stretchr/testify/require"
)

type testSchema struct {
	fields map[string]int
}

func (s *testSchema) FieldIndex(name string) (int, bool) {
	idx, ok := s.fields[name]
	return idx, ok
}

func (s *testSchema) NumFields() int { return len(s.fields) }

func newTestSchema() *testSchema {
	return &testSchema{fields: map[string]int{"title": 0, "body": 1}}
}

func newTestTokenizer() *dictionary.Dictionary {
	return dictionary.New(dictionary.Config{MinTokenLength: 1, EnableStemming: false, EnableStopwords: false}, nil)
}

func TestCompileMatchAllProducesNullNode(t *testing.T) {
	req, err := Compile([]byte(`{"index":"products","query":{"match_all":{}}}`), newTestSchema(), newTestTokenizer())
	require.NoError(t, err)
	require.Equal(t, ast.OpNull, req.Query.Op)
}

func TestCompileMatchProducesOrOverTerms(t *testing.T) {
	req, err := Compile([]byte(`{"index":"products","query":{"match":{"title":"red shoes"}}}`), newTestSchema(), newTestTokenizer())
	require.NoError(t, err)
	require.Equal(t, ast.OpOr, req.Query.Op)
	require.Len(t, req.Query.Children, 2)
}

func TestCompileMatchPhraseProducesPhraseNode(t *testing.T) {
	req, err := Compile([]byte(`{"index":"products","query":{"match_phrase":{"title":"red shoes"}}}`), newTestSchema(), newTestTokenizer())
	require.NoError(t, err)
	require.Equal(t, ast.OpPhrase, req.Query.Op)
}

func TestCompileMatchWithExplicitAndOperator(t *testing.T) {
	req, err := Compile([]byte(`{"index":"products","query":{"match":{"title":{"query":"red shoes","operator":"and"}}}}`), newTestSchema(), newTestTokenizer())
	require.NoError(t, err)
	require.Equal(t, ast.OpAnd, req.Query.Op)
}

func TestCompileBoolCombinesMustAndShouldViaMaybe(t *testing.T) {
	body := `{"index":"products","query":{"bool":{
		"must":[{"match":{"title":"shoe"}}],
		"should":[{"match":{"body":"leather"}}],
		"must_not":[{"match":{"body":"damaged"}}]
	}}}`
	req, err := Compile([]byte(body), newTestSchema(), newTestTokenizer())
	require.NoError(t, err)
	require.Equal(t, ast.OpMaybeAnd, req.Query.Op)
	require.Equal(t, ast.OpAndNot, req.Query.Children[0].Op)
}

func TestCompileBoolMustOnlyElidesMaybe(t *testing.T) {
	body := `{"index":"products","query":{"bool":{"must":[{"match":{"title":"shoe"}}]}}}`
	req, err := Compile([]byte(body), newTestSchema(), newTestTokenizer())
	require.NoError(t, err)
	require.Equal(t, ast.OpKeyword, req.Query.Op)
}

func TestCompileRejectsMissingIndex(t *testing.T) {
	_, err := Compile([]byte(`{"query":{"match_all":{}}}`), newTestSchema(), newTestTokenizer())
	require.Error(t, err)
	require.Equal(t, KindParse, err.(*Error).Kind)
}

func TestCompileRejectsEmptyQuery(t *testing.T) {
	_, err := Compile([]byte(`{"index":"products","query":{}}`), newTestSchema(), newTestTokenizer())
	require.Error(t, err)
}

func TestCompileRejectsUnknownField(t *testing.T) {
	_, err := Compile([]byte(`{"index":"products","query":{"match":{"nosuchfield":"x"}}}`), newTestSchema(), newTestTokenizer())
	require.Error(t, err)
	require.Equal(t, KindLookup, err.(*Error).Kind)
}

func TestCompileRejectsUnknownBoolClause(t *testing.T) {
	body := `{"index":"products","query":{"bool":{"filter":[{"match_all":{}}]}}}`
	_, err := Compile([]byte(body), newTestSchema(), newTestTokenizer())
	require.Error(t, err)
}

func TestCompileRejectsUnsupportedOption(t *testing.T) {
	body := `{"index":"products","query":{"match_all":{}},"_script":{}}`
	_, err := Compile([]byte(body), newTestSchema(), newTestTokenizer())
	require.Error(t, err)
}

func TestCompileIndexNormalization(t *testing.T) {
	req, err := Compile([]byte(`{"index":"_all","query":{"match_all":{}}}`), newTestSchema(), newTestTokenizer())
	require.NoError(t, err)
	require.Equal(t, "*", req.Index)
}

func TestCompileDefaultLimits(t *testing.T) {
	req, err := Compile([]byte(`{"index":"products","query":{"match_all":{}}}`), newTestSchema(), newTestTokenizer())
	require.NoError(t, err)
	require.Equal(t, DefaultLimit, req.Limit)
	require.Equal(t, DefaultOffset, req.Offset)
	require.Equal(t, DefaultMaxMatches, req.MaxMatches)
}

func TestCompileSortScoreEnablesTrackScores(t *testing.T) {
	body := `{"index":"products","query":{"match_all":{}},"sort":["_score",{"price":"desc"}]}`
	req, err := Compile([]byte(body), newTestSchema(), newTestTokenizer())
	require.NoError(t, err)
	require.True(t, req.TrackScores)
	require.Len(t, req.Sort, 2)
	require.Equal(t, "desc", req.Sort[1].Order)
}

func TestCompileSortMVAModeSynthesizesExpression(t *testing.T) {
	body := `{"index":"products","query":{"match_all":{}},"sort":[{"tags":{"order":"asc","mode":"min"}}]}`
	req, err := Compile([]byte(body), newTestSchema(), newTestTokenizer())
	require.NoError(t, err)
	require.Equal(t, "min", req.Sort[0].Mode)
	require.Equal(t, "least(tags)", req.Expressions["@order@tags"])
}

func TestCompileSourceIncludeExclude(t *testing.T) {
	body := `{"index":"products","query":{"match_all":{}},"_source":{"includes":["*"],"excludes":["internal_*"]}}`
	req, err := Compile([]byte(body), newTestSchema(), newTestTokenizer())
	require.NoError(t, err)
	require.True(t, req.Source.Matches("title"))
	require.False(t, req.Source.Matches("internal_notes"))
}

func TestCompileHighlightDefaults(t *testing.T) {
	body := `{"index":"products","query":{"match_all":{}},"highlight":{"fields":{"title":{}}}}`
	req, err := Compile([]byte(body), newTestSchema(), newTestTokenizer())
	require.NoError(t, err)
	require.Contains(t, req.Highlight.Fields, "title")
	require.Equal(t, 256, req.Highlight.FragmentSize)
}

func TestCompileAggs(t *testing.T) {
	body := `{"index":"products","query":{"match_all":{}},"aggs":{"by_brand":{"terms_like":{"field":"brand","size":5}}}}`
	req, err := Compile([]byte(body), newTestSchema(), newTestTokenizer())
	require.NoError(t, err)
	require.Equal(t, AggSpec{Field: "brand", Size: 5}, req.Aggs["by_brand"])
}

func TestCompileQueryStringExcludesTerm(t *testing.T) {
	body := `{"index":"products","query":{"query_string":"shoes -damaged \"real leather\""}}`
	req, err := Compile([]byte(body), nil, nil)
	require.NoError(t, err)
	require.Equal(t, ast.OpAndNot, req.Query.Op)
}
