// Package lenientjson extracts a JSON object from free-form model output. It
// tolerates markdown fences, surrounding prose, trailing commas, unquoted
// keys and output that was cut off mid-object.
package lenientjson

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrNoObject means the text contains no '{'.
	ErrNoObject = eris.New("lenientjson: no JSON object found")

	// ErrUnparseable means no repair produced a valid object.
	ErrUnparseable = eris.New("lenientjson: unparseable object")
)

// maxCutBacks bounds how many earlier comma positions are tried when
// recovering a truncated object.
const maxCutBacks = 32

// Parse returns the first JSON object found in text.
func Parse(text string) (map[string]any, error) {
	body := StripFences(text)

	start := strings.IndexByte(body, '{')
	if start < 0 {
		return nil, ErrNoObject
	}

	// The full tail keeps data a truncated reply would lose if cut at the
	// last '}', so it is repaired first.
	segments := []string{body[start:]}
	if end := strings.LastIndexByte(body, '}'); end > start {
		if m, err := decode(body[start : end+1]); err == nil {
			return m, nil
		}
		segments = append(segments, body[start:end+1])
	}

	for _, seg := range segments {
		for _, cand := range candidates(seg) {
			if m, err := decode(cand); err == nil {
				return m, nil
			}
		}
	}
	return nil, ErrUnparseable
}

// StripFences returns the contents of the first markdown code fence, or text
// unchanged when there is none. An unclosed fence keeps everything after it.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	idx := strings.Index(text, "```")
	if idx < 0 {
		return text
	}
	rest := text[idx+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
		rest = rest[nl+1:]
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

func decode(s string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNoObject
	}
	return m, nil
}

// candidates lists repaired variants of seg, most complete first.
func candidates(seg string) []string {
	r := normalize(seg)

	tail := r.text
	if r.inString {
		tail += `"`
	}
	out := []string{closeDangling(tail) + closers(r.stack)}

	for i := len(r.cuts) - 1; i >= 0 && len(r.cuts)-i <= maxCutBacks; i-- {
		c := r.cuts[i]
		out = append(out, r.text[:c.pos]+closers(c.stack))
	}
	return out
}

// cut is a comma position outside any string, with the open containers at
// that point.
type cut struct {
	pos   int
	stack string
}

type normalized struct {
	text     string
	stack    string
	cuts     []cut
	inString bool
}

// normalize drops trailing commas and quotes bare object keys, tracking open
// containers so truncated input can be closed.
func normalize(s string) normalized {
	var (
		b        strings.Builder
		stack    []byte
		cuts     []cut
		inString bool
		escape   bool
		prevSig  byte
	)
	b.Grow(len(s) + 16)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == '"':
				inString = false
				prevSig = '"'
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == '{' || c == '[':
			stack = append(stack, c)
			b.WriteByte(c)
			prevSig = c
		case c == '}' || c == ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			b.WriteByte(c)
			prevSig = c
		case c == ',':
			j := skipSpace(s, i+1)
			if j >= len(s) || s[j] == '}' || s[j] == ']' {
				continue
			}
			cuts = append(cuts, cut{pos: b.Len(), stack: string(stack)})
			b.WriteByte(c)
			prevSig = c
		case isIdentStart(c) && (prevSig == '{' || prevSig == ','):
			j := i
			for j < len(s) && isIdent(s[j]) {
				j++
			}
			word := s[i:j]
			if k := skipSpace(s, j); k < len(s) && s[k] == ':' {
				b.WriteString(`"` + word + `"`)
			} else {
				b.WriteString(word)
			}
			prevSig = 'a'
			i = j - 1
		default:
			b.WriteByte(c)
			if !isSpace(c) {
				prevSig = c
			}
		}
	}

	return normalized{text: b.String(), stack: string(stack), cuts: cuts, inString: inString}
}

// closeDangling completes a value position left open by truncation.
func closeDangling(s string) string {
	s = strings.TrimRightFunc(s, func(r rune) bool { return r < 0x80 && isSpace(byte(r)) })
	switch {
	case strings.HasSuffix(s, ":"):
		return s + "null"
	case strings.HasSuffix(s, ","):
		return s[:len(s)-1]
	default:
		return s
	}
}

func closers(stack string) string {
	out := make([]byte, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			out = append(out, '}')
		} else {
			out = append(out, ']')
		}
	}
	return string(out)
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-'
}
