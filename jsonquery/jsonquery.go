// Package jsonquery implements the JSON query compiler spec.md §4.6 (C6)
// describes: it turns a declarative JSON search request into the
// ast.Node query tree plus the surrounding select/sort/highlight/agg
// metadata the ranker frame needs.
package jsonquery

import (
	"encoding/json"
	"fmt"

	"github.com/manticore-go/ftscore/ast"
)

// ErrorKind distinguishes the error taxonomy spec.md §7 describes for
// request compilation.
type ErrorKind int

const (
	// KindParse is a malformed-JSON or malformed-subtree error: "the
	// whole request fails", reported with a narrow context string.
	KindParse ErrorKind = iota
	// KindLookup is an unknown field, zone, or expression function.
	KindLookup
	// KindType is a wrong-argument-type or non-constant-where-constant-
	// required error.
	KindType
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindLookup:
		return "LookupError"
	case KindType:
		return "TypeError"
	default:
		return "UnknownError"
	}
}

// Error is the structured failure spec.md §7 requires: "a structured
// JSON error document containing type and reason". Context names the
// narrowest subtree the failure occurred in (e.g. "sort[1]", "highlight.
// pre_tags").
type Error struct {
	Kind    ErrorKind
	Context string
	Reason  string
}

func (e *Error) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Context, e.Reason)
}

func parseErr(context, reason string) *Error { return &Error{KindParse, context, reason} }
func lookupErr(context, reason string) *Error { return &Error{KindLookup, context, reason} }
func typeErr(context, reason string) *Error   { return &Error{KindType, context, reason} }

// Defaults for integer limits spec.md §6 names: "Integer limits default
// to 20 (limit), 0 (offset), 1000 (max_matches)."
const (
	DefaultLimit      = 20
	DefaultOffset     = 0
	DefaultMaxMatches = 1000
)

// Schema resolves a field name to its index-internal position, the
// collaborator jsonquery consults to turn "title"/"body" into the
// hitpos.FieldMask bits a LimitSpec restricts to.
type Schema interface {
	FieldIndex(name string) (int, bool)
	NumFields() int
}

// Tokenizer splits a match/query_string value into search terms. The
// dictionary package's Dictionary.Tokenize satisfies this.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Request is the compiled form of a JSON search request: the query
// tree plus every piece of surrounding metadata §4.6 lists as compiler
// output.
type Request struct {
	Index       string
	Limit       int
	Offset      int
	MaxMatches  int
	Profile     bool
	Query       *ast.Node
	Expressions map[string]string
	Highlight   *HighlightSpec
	Sort        []SortKey
	TrackScores bool
	Source      *SourceSpec
	Aggs        map[string]AggSpec
}

// rawRequest mirrors the wire JSON object's top-level keys before any
// field-name resolution or AST construction happens.
type rawRequest struct {
	Index       string          `json:"index"`
	Limit       *int            `json:"limit"`
	Size        *int            `json:"size"`
	Offset      *int            `json:"offset"`
	From        *int            `json:"from"`
	MaxMatches  *int            `json:"max_matches"`
	Profile     bool            `json:"profile"`
	Query       json.RawMessage `json:"query"`
	Expressions map[string]string `json:"expressions"`
	ScriptFields map[string]string `json:"script_fields"`
	Highlight   json.RawMessage `json:"highlight"`
	Sort        json.RawMessage `json:"sort"`
	TrackScores bool            `json:"track_scores"`
	Source      json.RawMessage `json:"_source"`
	Aggs        map[string]json.RawMessage `json:"aggs"`
}

// unsupportedTopLevelKeys are request options spec.md §4.6 names as
// explicitly unsupported: "_script, unmapped_type, missing, nested_path,
// nested_filter, script lang/params/stored/file".
var unsupportedTopLevelKeys = []string{
	"_script", "unmapped_type", "missing", "nested_path", "nested_filter",
	"lang", "params", "stored", "file",
}

// Compile parses body (the wire JSON request) against schema and tok,
// producing a Request or an *Error. schema and tok may be nil only if
// the request has no query/sort/source/highlight subtree referencing
// field names (match_all with nothing else).
func Compile(body []byte, schema Schema, tok Tokenizer) (*Request, error) {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(body, &generic); err != nil {
		return nil, parseErr("", err.Error())
	}
	for _, key := range unsupportedTopLevelKeys {
		if _, present := generic[key]; present {
			return nil, parseErr(key, "unsupported option \""+key+"\"")
		}
	}

	var raw rawRequest
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, parseErr("", err.Error())
	}
	if raw.Index == "" {
		return nil, parseErr("index", "missing required key \"index\"")
	}

	req := &Request{
		Index:       normalizeIndex(raw.Index),
		Limit:       firstInt(raw.Limit, raw.Size, DefaultLimit),
		Offset:      firstInt(raw.Offset, raw.From, DefaultOffset),
		MaxMatches:  firstInt(raw.MaxMatches, nil, DefaultMaxMatches),
		Profile:     raw.Profile,
		TrackScores: raw.TrackScores,
	}

	req.Expressions = mergeExpressions(raw.Expressions, raw.ScriptFields)

	if len(raw.Query) == 0 {
		return nil, parseErr("query", "query subtree is empty")
	}
	qNode, err := compileQuery(raw.Query, schema, tok)
	if err != nil {
		return nil, err
	}
	req.Query = qNode

	if len(raw.Sort) > 0 {
		sortKeys, err := parseSort(raw.Sort)
		if err != nil {
			return nil, err
		}
		req.Sort = sortKeys
		for _, sk := range sortKeys {
			if sk.Name == "_score" {
				req.TrackScores = true
			}
			if sk.Alias != "" {
				if req.Expressions == nil {
					req.Expressions = map[string]string{}
				}
				req.Expressions[sk.Alias] = sk.Expr
			}
		}
	}

	if len(raw.Source) > 0 {
		src, err := parseSource(raw.Source)
		if err != nil {
			return nil, err
		}
		req.Source = src
	}

	if len(raw.Highlight) > 0 {
		hl, err := parseHighlight(raw.Highlight)
		if err != nil {
			return nil, err
		}
		req.Highlight = hl
		alias := "@highlight"
		if req.Expressions == nil {
			req.Expressions = map[string]string{}
		}
		req.Expressions[alias] = highlightExprText(hl)
	}

	if len(raw.Aggs) > 0 {
		aggs, err := parseAggs(raw.Aggs)
		if err != nil {
			return nil, err
		}
		req.Aggs = aggs
	}

	return req, nil
}

// normalizeIndex lower-cases the index name and maps the "_all"
// sentinel to "*", per spec.md §4.6.
func normalizeIndex(name string) string {
	lower := toLower(name)
	if lower == "_all" {
		return "*"
	}
	return lower
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func firstInt(a, b *int, def int) int {
	if a != nil {
		return *a
	}
	if b != nil {
		return *b
	}
	return def
}

func mergeExpressions(a, b map[string]string) map[string]string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// highlightExprText is a placeholder select-item body for the
// synthesised HIGHLIGHT(opts, fields, query) item spec.md §4.6
// describes; the real opts/fields/query payload is carried on
// Request.Highlight rather than re-encoded into expression text.
func highlightExprText(hl *HighlightSpec) string {
	return "highlight()"
}
