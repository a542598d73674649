package jsonquery

import "encoding/json"

// HighlightSpec is the compiled `highlight` request, per spec.md §4.6:
// "field list + per-field and top-level limits", both the Elastic-
// compatible keys and the native ones.
type HighlightSpec struct {
	Fields []string

	// Elastic-compatible keys.
	FragmentSize      int
	NumberOfFragments int
	PreTags           []string
	PostTags          []string
	NoMatchSize       int
	Order             string
	Encoder           string

	// Native keys.
	Limit          int
	LimitPassages  int
	LimitWords     int
	Around         int
	UseBoundaries  bool
	WeightOrder    bool
	ForceAllWords  bool
	HTMLStripMode  string
	AllowEmpty     bool
	EmitZones      bool
	ForcePassages  bool
	PackFields     bool
	LimitsPerField bool
	PassageBoundary string
}

// defaultHighlight mirrors the common defaults of the source ranker this
// spec is based on: a handful of medium-sized fragments, plain-text
// tags off.
func defaultHighlight() HighlightSpec {
	return HighlightSpec{
		FragmentSize:      256,
		NumberOfFragments: 5,
		Limit:             4000,
		LimitWords:        0,
		Around:            5,
		UseBoundaries:     true,
	}
}

type rawHighlight struct {
	Fields            map[string]json.RawMessage `json:"fields"`
	FragmentSize      *int                       `json:"fragment_size"`
	NumberOfFragments *int                        `json:"number_of_fragments"`
	PreTags           []string                    `json:"pre_tags"`
	PostTags          []string                    `json:"post_tags"`
	NoMatchSize       *int                        `json:"no_match_size"`
	Order             string                      `json:"order"`
	Encoder           string                      `json:"encoder"`

	Limit           *int   `json:"limit"`
	LimitPassages   *int   `json:"limit_passages"`
	LimitWords      *int   `json:"limit_words"`
	Around          *int   `json:"around"`
	UseBoundaries   *bool  `json:"use_boundaries"`
	WeightOrder     *bool  `json:"weight_order"`
	ForceAllWords   *bool  `json:"force_all_words"`
	HTMLStripMode   string `json:"html_strip_mode"`
	AllowEmpty      *bool  `json:"allow_empty"`
	EmitZones       *bool  `json:"emit_zones"`
	ForcePassages   *bool  `json:"force_passages"`
	PackFields      *bool  `json:"pack_fields"`
	LimitsPerField  *bool  `json:"limits_per_field"`
	PassageBoundary string `json:"passage_boundary"`
}

func parseHighlight(raw json.RawMessage) (*HighlightSpec, error) {
	var rh rawHighlight
	if err := json.Unmarshal(raw, &rh); err != nil {
		return nil, parseErr("highlight", "highlight must be an object")
	}
	if rh.Encoder != "" && rh.Encoder != "html" && rh.Encoder != "default" {
		return nil, parseErr("highlight.encoder", "unsupported encoder \""+rh.Encoder+"\"")
	}

	hl := defaultHighlight()
	for f := range rh.Fields {
		hl.Fields = append(hl.Fields, f)
	}
	setInt(&hl.FragmentSize, rh.FragmentSize)
	setInt(&hl.NumberOfFragments, rh.NumberOfFragments)
	if rh.PreTags != nil {
		hl.PreTags = rh.PreTags
	}
	if rh.PostTags != nil {
		hl.PostTags = rh.PostTags
	}
	setInt(&hl.NoMatchSize, rh.NoMatchSize)
	hl.Order = rh.Order
	hl.Encoder = rh.Encoder

	setInt(&hl.Limit, rh.Limit)
	setInt(&hl.LimitPassages, rh.LimitPassages)
	setInt(&hl.LimitWords, rh.LimitWords)
	setInt(&hl.Around, rh.Around)
	setBool(&hl.UseBoundaries, rh.UseBoundaries)
	setBool(&hl.WeightOrder, rh.WeightOrder)
	setBool(&hl.ForceAllWords, rh.ForceAllWords)
	hl.HTMLStripMode = rh.HTMLStripMode
	setBool(&hl.AllowEmpty, rh.AllowEmpty)
	setBool(&hl.EmitZones, rh.EmitZones)
	setBool(&hl.ForcePassages, rh.ForcePassages)
	setBool(&hl.PackFields, rh.PackFields)
	setBool(&hl.LimitsPerField, rh.LimitsPerField)
	hl.PassageBoundary = rh.PassageBoundary

	return &hl, nil
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
