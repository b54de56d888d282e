package evidence

import (
	"math"
	"strconv"
	"strings"
)

// Pass outputs are loosely typed JSON; these helpers read them without
// trusting their shape.

func obj(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// strList reads a list of strings. A single string becomes a one-item list
// and objects contribute their "text", "name" or "keyword" field.
func strList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range t {
			s := str(item)
			if s == "" {
				m := obj(item)
				s = firstNonEmpty(str(m["text"]), str(m["name"]), str(m["keyword"]))
			}
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func num(v any) int {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return int(math.Round(t))
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(math.Round(f))
		}
	}
	return 0
}

func list(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func head(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
