package jsonquery

import (
	"encoding/json"

	"github.com/manticore-go/ftscore/wildcard"
)

// SourceSpec is the compiled `_source` selection, per spec.md §4.6:
// "string / array -> include list; object with includes/excludes
// arrays. Wildcard * is significant."
type SourceSpec struct {
	Includes []string
	Excludes []string
}

// Matches reports whether fieldName passes the include/exclude lists,
// wildcard-aware via the wildcard package (spec.md §4.6's "Wildcard * is
// significant" note, and §8's dual-matcher invariant this module
// implements).
func (s *SourceSpec) Matches(fieldName string) bool {
	if s == nil {
		return true
	}
	included := len(s.Includes) == 0
	for _, pat := range s.Includes {
		if patternMatches(pat, fieldName) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pat := range s.Excludes {
		if patternMatches(pat, fieldName) {
			return false
		}
	}
	return true
}

func patternMatches(pattern, name string) bool {
	if pattern == name {
		return true
	}
	return wildcard.Match(name, pattern)
}

func parseSource(raw json.RawMessage) (*SourceSpec, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return &SourceSpec{Includes: []string{single}}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return &SourceSpec{Includes: list}, nil
	}
	var obj struct {
		Includes []string `json:"includes"`
		Excludes []string `json:"excludes"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, parseErr("_source", "_source must be a string, array, or {includes, excludes} object")
	}
	return &SourceSpec{Includes: obj.Includes, Excludes: obj.Excludes}, nil
}
