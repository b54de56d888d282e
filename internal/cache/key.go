package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Kind identifies the upstream operation a cached value came from.
type Kind string

const (
	KindKeywordData     Kind = "keywordData"
	KindSerp            Kind = "serpData"
	KindRelatedKeywords Kind = "relatedKeywords"
)

// Params are the request parameters of a cached operation. String slices are
// treated as unordered sets.
type Params map[string]any

var fold = cases.Fold()

// Key builds the canonical cache key for kind and params. Parameter names are
// sorted and any []string value is case-folded, trimmed and sorted, so
// {"keywords": ["b","a"]} and {"keywords": ["a","b"]} share one entry.
func Key(kind Kind, params Params) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([][2]any, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, [2]any{name, canonicalValue(params[name])})
	}

	// [][2]any of strings, ints and sorted []string always marshals.
	buf, _ := json.Marshal(pairs)
	sum := sha256.Sum256(buf)
	return fmt.Sprintf("%s:%x", kind, sum)
}

func canonicalValue(v any) any {
	switch t := v.(type) {
	case []string:
		out := make([]string, len(t))
		for i, s := range t {
			out[i] = fold.String(strings.TrimSpace(s))
		}
		sort.Strings(out)
		return out
	case string:
		return strings.TrimSpace(t)
	default:
		return t
	}
}
