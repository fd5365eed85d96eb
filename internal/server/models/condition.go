package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

const criteriaElementKey = "criteria_element"

// RemapCriteriaElements rewrites every criteria_element in a JSON condition
// tree through ids. IDs missing from ids are kept. Conditions that are not
// JSON, or that need no change, are returned as is.
func RemapCriteriaElements(conditions string, ids map[int64]int64) string {
	if conditions == "" || len(ids) == 0 {
		return conditions
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(conditions)))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return conditions
	}

	if !remapNode(tree, ids) {
		return conditions
	}
	out, err := json.Marshal(tree)
	if err != nil {
		return conditions
	}
	return string(out)
}

func remapNode(n any, ids map[int64]int64) bool {
	changed := false
	switch v := n.(type) {
	case map[string]any:
		for k, child := range v {
			if k == criteriaElementKey {
				if repl, ok := remapID(child, ids); ok {
					v[k] = repl
					changed = true
				}
				continue
			}
			if remapNode(child, ids) {
				changed = true
			}
		}
	case []any:
		for _, child := range v {
			if remapNode(child, ids) {
				changed = true
			}
		}
	}
	return changed
}

// remapID keeps the JSON type of the reference: numbers stay numbers and
// numeric strings stay strings.
func remapID(v any, ids map[int64]int64) (any, bool) {
	switch id := v.(type) {
	case json.Number:
		old, err := id.Int64()
		if err != nil {
			return nil, false
		}
		if repl, ok := ids[old]; ok {
			return json.Number(strconv.FormatInt(repl, 10)), true
		}
	case string:
		old, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, false
		}
		if repl, ok := ids[old]; ok {
			return strconv.FormatInt(repl, 10), true
		}
	}
	return nil, false
}
