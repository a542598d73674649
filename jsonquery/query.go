package jsonquery

import (
	"encoding/json"
	"strings"

	"github.com/manticore-go/ftscore/ast"
	"github.com/manticore-go/ftscore/hitpos"
)

// compileQuery dispatches on the query subtree's one recognised key, per
// spec.md §4.6: match, match_phrase, match_all, bool, query_string.
func compileQuery(raw json.RawMessage, schema Schema, tok Tokenizer) (*ast.Node, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, parseErr("query", "query must be a JSON object")
	}
	if len(obj) == 0 {
		return nil, parseErr("query", "query subtree is empty")
	}

	if v, ok := obj["match_all"]; ok {
		_ = v
		return ast.NewNull(), nil
	}
	if v, ok := obj["match"]; ok {
		return compileMatch(v, schema, tok, ast.OpOr)
	}
	if v, ok := obj["match_phrase"]; ok {
		return compileMatch(v, schema, tok, ast.OpPhrase)
	}
	if v, ok := obj["bool"]; ok {
		return compileBool(v, schema, tok)
	}
	if v, ok := obj["query_string"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, parseErr("query.query_string", "query_string must be a string")
		}
		return compileQueryString(s, schema, tok)
	}

	for k := range obj {
		return nil, parseErr("query", "unrecognised query clause \""+k+"\"")
	}
	return nil, parseErr("query", "query subtree is empty")
}

// matchFieldValue is either a bare string or {query, operator}, the
// union spec.md §4.6 describes for each field_name entry under match.
type matchFieldValue struct {
	Query    string `json:"query"`
	Operator string `json:"operator"`
}

// compileMatch builds a node per field_name entry and combines them,
// per spec.md §4.6: "produces a PHRASE/OR/AND operator node over the
// tokenised query string restricted to the named field." defaultOp is
// overridden to OpPhrase by the match_phrase caller and may itself be
// overridden per-field by an explicit "operator": "and"|"or".
func compileMatch(raw json.RawMessage, schema Schema, tok Tokenizer, defaultOp ast.Op) (*ast.Node, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, parseErr("query.match", "match must be an object of field_name to query")
	}
	if len(fields) == 0 {
		return nil, parseErr("query.match", "match object has no fields")
	}

	nodes := make([]*ast.Node, 0, len(fields))
	for fieldName, v := range fields {
		limit, err := fieldLimit(fieldName, schema)
		if err != nil {
			return nil, err
		}
		mv, op, err := decodeMatchValue(v, defaultOp)
		if err != nil {
			return nil, err
		}
		n, err := tokenizeToNode(mv, tok, op, limit)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return ast.NewAnd(nodes...), nil
}

func decodeMatchValue(raw json.RawMessage, defaultOp ast.Op) (string, ast.Op, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, defaultOp, nil
	}
	var obj matchFieldValue
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", 0, parseErr("query.match", "field value must be a string or {query, operator}")
	}
	op := defaultOp
	switch strings.ToLower(obj.Operator) {
	case "and":
		op = ast.OpAnd
	case "or":
		op = ast.OpOr
	case "":
	default:
		return "", 0, parseErr("query.match.operator", "unknown operator \""+obj.Operator+"\"")
	}
	return obj.Query, op, nil
}

func fieldLimit(fieldName string, schema Schema) (ast.LimitSpec, error) {
	if schema == nil {
		return ast.Unrestricted(), nil
	}
	idx, ok := schema.FieldIndex(fieldName)
	if !ok {
		return ast.LimitSpec{}, lookupErr("query.match", "unknown field \""+fieldName+"\"")
	}
	return ast.LimitSpec{Fields: hitpos.NewFieldMask().Set(idx)}, nil
}

// tokenizeToNode tokenizes text and combines the resulting keyword
// nodes with op (OpPhrase/OpAnd/OpOr), applying limit to every node.
func tokenizeToNode(text string, tok Tokenizer, op ast.Op, limit ast.LimitSpec) (*ast.Node, error) {
	var terms []string
	if tok != nil {
		terms = tok.Tokenize(text)
	} else {
		terms = strings.Fields(text)
	}
	if len(terms) == 0 {
		return nil, parseErr("query.match", "no terms after tokenization")
	}
	nodes := make([]*ast.Node, len(terms))
	for i, t := range terms {
		nodes[i] = ast.NewKeyword(t, i).WithLimit(limit)
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	switch op {
	case ast.OpPhrase:
		return ast.NewPhrase(nodes...).WithLimit(limit), nil
	case ast.OpAnd:
		return ast.NewAnd(nodes...).WithLimit(limit), nil
	default:
		return ast.NewOr(nodes...).WithLimit(limit), nil
	}
}

// boolClauses mirrors the bool query's recognised sub-keys, each an
// array of query subtrees (a single object is also accepted).
type boolClauses struct {
	Must    []json.RawMessage `json:"must"`
	Should  []json.RawMessage `json:"should"`
	MustNot []json.RawMessage `json:"must_not"`
}

// compileBool implements spec.md §4.6's bool combination rule: "elides
// single-child AND/OR nodes, combines must+must_not with AND, combines
// the result with should via MAYBE."
func compileBool(raw json.RawMessage, schema Schema, tok Tokenizer) (*ast.Node, error) {
	clauses, err := decodeBoolClauses(raw)
	if err != nil {
		return nil, err
	}
	if len(clauses.Must) == 0 && len(clauses.Should) == 0 && len(clauses.MustNot) == 0 {
		return nil, parseErr("query.bool", "bool query has no must/should/must_not clauses")
	}

	must, err := compileClauseList(clauses.Must, schema, tok)
	if err != nil {
		return nil, err
	}
	mustNot, err := compileClauseList(clauses.MustNot, schema, tok)
	if err != nil {
		return nil, err
	}
	should, err := compileClauseList(clauses.Should, schema, tok)
	if err != nil {
		return nil, err
	}

	var positive *ast.Node
	switch {
	case len(must) == 0:
		positive = nil
	case len(must) == 1:
		positive = must[0]
	default:
		positive = ast.NewAnd(must...)
	}

	var withNot *ast.Node
	switch {
	case len(mustNot) == 0:
		withNot = positive
	case positive == nil:
		return nil, parseErr("query.bool.must_not", "must_not requires at least one must/should clause")
	default:
		withNot = ast.NewAndNot(positive, combineOr(mustNot))
	}

	if len(should) == 0 {
		if withNot == nil {
			return nil, parseErr("query.bool", "bool query compiled to an empty tree")
		}
		return withNot, nil
	}
	shouldNode := combineOr(should)
	if withNot == nil {
		return shouldNode, nil
	}
	return ast.NewMaybeAnd(withNot, shouldNode), nil
}

func combineOr(nodes []*ast.Node) *ast.Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return ast.NewOr(nodes...)
}

func decodeBoolClauses(raw json.RawMessage) (boolClauses, error) {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return boolClauses{}, parseErr("query.bool", "bool must be an object")
	}
	for k := range generic {
		switch k {
		case "must", "should", "must_not":
		default:
			return boolClauses{}, parseErr("query.bool", "unknown bool clause \""+k+"\"")
		}
	}

	var flexible struct {
		Must    json.RawMessage `json:"must"`
		Should  json.RawMessage `json:"should"`
		MustNot json.RawMessage `json:"must_not"`
	}
	if err := json.Unmarshal(raw, &flexible); err != nil {
		return boolClauses{}, parseErr("query.bool", "bool must be an object")
	}
	var out boolClauses
	var err error
	if out.Must, err = decodeClauseOrArray(flexible.Must); err != nil {
		return boolClauses{}, parseErr("query.bool.must", err.Error())
	}
	if out.Should, err = decodeClauseOrArray(flexible.Should); err != nil {
		return boolClauses{}, parseErr("query.bool.should", err.Error())
	}
	if out.MustNot, err = decodeClauseOrArray(flexible.MustNot); err != nil {
		return boolClauses{}, parseErr("query.bool.must_not", err.Error())
	}
	return out, nil
}

func decodeClauseOrArray(raw json.RawMessage) ([]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}
	return []json.RawMessage{raw}, nil
}

func compileClauseList(clauses []json.RawMessage, schema Schema, tok Tokenizer) ([]*ast.Node, error) {
	out := make([]*ast.Node, 0, len(clauses))
	for _, c := range clauses {
		n, err := compileQuery(c, schema, tok)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// compileQueryString is a minimal extended-query parser: double-quoted
// runs become phrase nodes, a leading "-" excludes a term, everything
// else is ANDed. spec.md §4.6 defers the full grammar to "the legacy
// extended-query parser", out of scope for this core; this is a
// deliberately small subset covering the common case.
func compileQueryString(q string, schema Schema, tok Tokenizer) (*ast.Node, error) {
	limit := ast.Unrestricted()
	terms, phrases, excluded := splitQueryString(q)

	var positive []*ast.Node
	qpos := 0
	for _, t := range terms {
		positive = append(positive, ast.NewKeyword(t, qpos).WithLimit(limit))
		qpos++
	}
	for _, p := range phrases {
		words := strings.Fields(p)
		if len(words) == 0 {
			continue
		}
		nodes := make([]*ast.Node, len(words))
		for i, w := range words {
			nodes[i] = ast.NewKeyword(w, qpos).WithLimit(limit)
			qpos++
		}
		if len(nodes) == 1 {
			positive = append(positive, nodes[0])
		} else {
			positive = append(positive, ast.NewPhrase(nodes...).WithLimit(limit))
		}
	}
	if len(positive) == 0 && len(excluded) == 0 {
		return nil, parseErr("query.query_string", "empty query string")
	}
	if len(positive) == 0 {
		return nil, parseErr("query.query_string", "query_string has only excluded terms")
	}

	var node *ast.Node
	if len(positive) == 1 {
		node = positive[0]
	} else {
		node = ast.NewAnd(positive...)
	}
	if len(excluded) == 0 {
		return node, nil
	}
	excludedNodes := make([]*ast.Node, len(excluded))
	for i, t := range excluded {
		excludedNodes[i] = ast.NewKeyword(t, qpos).WithLimit(limit)
		qpos++
	}
	return ast.NewAndNot(node, combineOr(excludedNodes)), nil
}

// splitQueryString performs a single left-to-right scan, collecting
// bare terms, "quoted phrases", and -excluded terms.
func splitQueryString(q string) (terms, phrases []string, excluded []string) {
	i := 0
	for i < len(q) {
		for i < len(q) && q[i] == ' ' {
			i++
		}
		if i >= len(q) {
			break
		}
		if q[i] == '"' {
			j := strings.IndexByte(q[i+1:], '"')
			if j < 0 {
				phrases = append(phrases, q[i+1:])
				i = len(q)
				continue
			}
			phrases = append(phrases, q[i+1:i+1+j])
			i = i + 1 + j + 1
			continue
		}
		j := i
		for j < len(q) && q[j] != ' ' {
			j++
		}
		word := q[i:j]
		i = j
		if strings.HasPrefix(word, "-") && len(word) > 1 {
			excluded = append(excluded, strings.ToLower(word[1:]))
		} else if word != "" {
			terms = append(terms, strings.ToLower(word))
		}
	}
	return terms, phrases, excluded
}
