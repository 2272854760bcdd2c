package records

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Raw is one loosely-typed record as decoded from the API (numbers arrive as
// json.Number). It is never kept past normalization.
type Raw = map[string]any

// jsonNumber avoids importing encoding/json here.
type jsonNumber interface {
	Float64() (float64, error)
	String() string
}

func getString(m Raw, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			switch t := v.(type) {
			case string:
				if s := strings.TrimSpace(t); s != "" {
					return s
				}
			case jsonNumber:
				return t.String()
			case float64:
				return strconv.FormatFloat(t, 'f', -1, 64)
			case bool, int, int64:
				return fmt.Sprintf("%v", t)
			}
		}
	}
	return ""
}

// getFloat returns ok=false when no key holds a finite number. Text like
// "8.5" is parsed; "abc", NaN and ±Inf are not numbers.
func getFloat(m Raw, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if f, ok := toFloat(v); ok {
			return f, true
		}
		return 0, false
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case jsonNumber:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// "8,5" from spreadsheet-fed backends
			n, err = strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
			if err != nil {
				return 0, false
			}
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func getBool(m Raw, keys ...string) bool {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(t))
			return err == nil && b
		default:
			f, ok := toFloat(t)
			return ok && f != 0
		}
	}
	return false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// getTime accepts the layouts above or unix seconds; unparseable or missing
// values yield the zero time. Results are always UTC.
func getTime(m Raw, keys ...string) time.Time {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			for _, layout := range timeLayouts {
				if t, err := time.Parse(layout, s); err == nil {
					return t.UTC()
				}
			}
			// unix seconds sent as text
			if f, ok := toFloat(s); ok {
				return time.Unix(int64(f), 0).UTC()
			}
			continue
		}
		if f, ok := toFloat(v); ok {
			return time.Unix(int64(f), 0).UTC()
		}
	}
	return time.Time{}
}

// getStrings never returns nil: missing or malformed arrays become empty.
func getStrings(m Raw, keys ...string) []string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case []any:
			out := make([]string, 0, len(t))
			for _, item := range t {
				if s := getString(Raw{"v": item}, "v"); s != "" {
					out = append(out, s)
				}
			}
			return out
		case []string:
			out := make([]string, 0, len(t))
			for _, s := range t {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			return out
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return []string{s}
			}
		}
	}
	return []string{}
}

// getMap returns an empty map when the nested object is missing or not an
// object, so callers never branch on nil.
func getMap(m Raw, keys ...string) Raw {
	for _, k := range keys {
		if v, ok := m[k].(map[string]any); ok {
			return v
		}
	}
	return Raw{}
}

func firstNonEmpty(v ...string) string {
	for _, s := range v {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
