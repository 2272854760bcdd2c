// Package devutil projects view rows down to a chosen set of fields for
// quick inspection from the command line.
package devutil

import (
	"encoding/json"
	"fmt"
)

// Pick passes v through JSON and keeps only keys. Unknown keys are
// skipped; anything that is not a JSON object yields an empty map.
func Pick(v any, keys ...string) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return pick(m, keys)
}

// PickAll applies Pick to every element of a slice of rows.
func PickAll(rows any, keys ...string) ([]map[string]any, error) {
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("devutil: marshal rows: %w", err)
	}
	var items []map[string]any
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("devutil: rows are not a list of objects: %w", err)
	}
	out := make([]map[string]any, len(items))
	for i, m := range items {
		out[i] = pick(m, keys)
	}
	return out, nil
}

func pick(m map[string]any, keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if val, ok := m[k]; ok {
			out[k] = val
		}
	}
	return out
}
