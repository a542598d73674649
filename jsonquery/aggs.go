package jsonquery

import "encoding/json"

// AggSpec is one compiled aggregation bucket, per spec.md §4.6: "object
// of { bucket_name: { terms_like: { field, size } } }; yields a
// secondary query per bucket that groups by the named field."
type AggSpec struct {
	Field string
	Size  int
}

type rawAgg struct {
	TermsLike *struct {
		Field string `json:"field"`
		Size  int    `json:"size"`
	} `json:"terms_like"`
}

func parseAggs(raw map[string]json.RawMessage) (map[string]AggSpec, error) {
	out := make(map[string]AggSpec, len(raw))
	for name, v := range raw {
		var ra rawAgg
		if err := json.Unmarshal(v, &ra); err != nil {
			return nil, parseErr("aggs."+name, "bucket must be an object")
		}
		if ra.TermsLike == nil {
			return nil, parseErr("aggs."+name, "bucket must specify terms_like")
		}
		if ra.TermsLike.Field == "" {
			return nil, parseErr("aggs."+name+".terms_like", "missing required key \"field\"")
		}
		size := ra.TermsLike.Size
		if size == 0 {
			size = 20
		}
		out[name] = AggSpec{Field: ra.TermsLike.Field, Size: size}
	}
	return out, nil
}
