package jsonquery

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SortKey is one compiled sort entry, per spec.md §4.6: "an array of
// string | { name: asc|desc | { order, mode: min|max } | geo_distance_spec
// }. Each entry becomes a sort key; _score maps to the internal weight
// pseudo-column and implies score tracking; MVA modes wrap the column in
// least(col) / greatest(col)."
type SortKey struct {
	Name string
	Order string // "asc" or "desc"
	Mode  string // "min", "max", or "" when not an MVA sort
	// Expr is the synthesised least(col)/greatest(col) wrapper for an MVA
	// mode sort, or a geo-distance expression; empty for a plain column.
	Expr string
	// Alias is the internal name (e.g. "@order@name") the synthesised
	// Expr is registered under in Request.Expressions.
	Alias string
	// Geo carries geo_distance_spec's raw numeric parameters verbatim;
	// nil for non-geo sorts. The core treats geo sorting as an opaque
	// per-row distance column — no geo math is implemented here, only
	// request parsing, since distance computation is outside the
	// full-text ranking scope this module covers.
	Geo map[string]float64
}

func parseSort(raw json.RawMessage) ([]SortKey, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, parseErr("sort", "sort must be an array")
	}
	out := make([]SortKey, 0, len(entries))
	for i, e := range entries {
		sk, err := parseSortEntry(e)
		if err != nil {
			if pe, ok := err.(*Error); ok {
				pe.Context = fmt.Sprintf("sort[%d]%s", i, trimContext(pe.Context))
				return nil, pe
			}
			return nil, err
		}
		out = append(out, sk)
	}
	return out, nil
}

func trimContext(c string) string {
	if c == "" {
		return ""
	}
	return "." + c
}

func parseSortEntry(raw json.RawMessage) (SortKey, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return SortKey{Name: name, Order: "asc"}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return SortKey{}, parseErr("", "sort entry must be a string or an object")
	}
	if len(obj) != 1 {
		return SortKey{}, parseErr("", "sort object entry must have exactly one field name key")
	}
	var name0 string
	var val json.RawMessage
	for k, v := range obj {
		name0, val = k, v
	}

	var order string
	if err := json.Unmarshal(val, &order); err == nil {
		switch strings.ToLower(order) {
		case "asc", "desc":
			return SortKey{Name: name0, Order: strings.ToLower(order)}, nil
		default:
			return SortKey{}, parseErr(name0, "order must be \"asc\" or \"desc\"")
		}
	}

	var modeSpec struct {
		Order string `json:"order"`
		Mode  string `json:"mode"`
	}
	if err := json.Unmarshal(val, &modeSpec); err == nil && (modeSpec.Order != "" || modeSpec.Mode != "") {
		ord := strings.ToLower(modeSpec.Order)
		if ord == "" {
			ord = "asc"
		}
		if ord != "asc" && ord != "desc" {
			return SortKey{}, parseErr(name0, "order must be \"asc\" or \"desc\"")
		}
		sk := SortKey{Name: name0, Order: ord}
		switch strings.ToLower(modeSpec.Mode) {
		case "":
		case "min":
			sk.Mode = "min"
			sk.Expr = fmt.Sprintf("least(%s)", name0)
			sk.Alias = "@order@" + name0
		case "max":
			sk.Mode = "max"
			sk.Expr = fmt.Sprintf("greatest(%s)", name0)
			sk.Alias = "@order@" + name0
		default:
			return SortKey{}, parseErr(name0+".mode", "mode must be \"min\" or \"max\"")
		}
		return sk, nil
	}

	// Anything else is treated as a geo_distance_spec: an object of
	// numeric parameters (lat/lon/anchor point etc.) with no
	// order/mode keys recognised above.
	var rawNums map[string]json.RawMessage
	if err := json.Unmarshal(val, &rawNums); err != nil {
		return SortKey{}, parseErr(name0, "unrecognised sort value")
	}
	geo := make(map[string]float64, len(rawNums))
	for k, v := range rawNums {
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			if s, serr := strconv.Unquote(string(v)); serr == nil {
				if parsed, perr := strconv.ParseFloat(s, 64); perr == nil {
					geo[k] = parsed
					continue
				}
			}
			return SortKey{}, parseErr(name0, "geo_distance_spec fields must be numeric")
		}
		geo[k] = f
	}
	return SortKey{
		Name:  name0,
		Order: "asc",
		Expr:  fmt.Sprintf("geodist(%s)", name0),
		Alias: "@order@" + name0,
		Geo:   geo,
	}, nil
}
