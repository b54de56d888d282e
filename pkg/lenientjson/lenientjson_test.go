package lenientjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{
			name: "plain",
			in:   `{"seo_potential":"high","score":3}`,
			want: map[string]any{"seo_potential": "high", "score": float64(3)},
		},
		{
			name: "json fence",
			in:   "Here is the analysis:\n```json\n{\"a\": [1, 2]}\n```\nLet me know!",
			want: map[string]any{"a": []any{float64(1), float64(2)}},
		},
		{
			name: "bare fence",
			in:   "```\n{\"a\": true}\n```",
			want: map[string]any{"a": true},
		},
		{
			name: "surrounding prose",
			in:   `Sure! {"a": "b"} Hope this helps.`,
			want: map[string]any{"a": "b"},
		},
		{
			name: "trailing commas",
			in:   `{"a": [1, 2, ], "b": {"c": 1,},}`,
			want: map[string]any{"a": []any{float64(1), float64(2)}, "b": map[string]any{"c": float64(1)}},
		},
		{
			name: "unquoted keys",
			in:   `{primary_keywords: ["x"], nested: {level: "high", ok: true}}`,
			want: map[string]any{"primary_keywords": []any{"x"}, "nested": map[string]any{"level": "high", "ok": true}},
		},
		{
			name: "literals in arrays stay bare",
			in:   `{"a": [true, false, null],}`,
			want: map[string]any{"a": []any{true, false, nil}},
		},
		{
			name: "commas and braces inside strings untouched",
			in:   `{"a": "x, }", "b": "say \"hi\", {ok}"}`,
			want: map[string]any{"a": "x, }", "b": `say "hi", {ok}`},
		},
		{
			name: "truncated inside string value",
			in:   `{"a": 1, "b": "half a sent`,
			want: map[string]any{"a": float64(1), "b": "half a sent"},
		},
		{
			name: "truncated inside key",
			in:   `{"a": 1, "bee`,
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "truncated after colon",
			in:   `{"a": {"x": 1, "y":`,
			want: map[string]any{"a": map[string]any{"x": float64(1), "y": nil}},
		},
		{
			name: "truncated nested arrays",
			in:   "```json\n{\"primary\": [{\"keyword\": \"shoes\"}, {\"keyword\": \"trail",
			want: map[string]any{"primary": []any{
				map[string]any{"keyword": "shoes"},
				map[string]any{"keyword": "trail"},
			}},
		},
		{
			name: "truncated after comma",
			in:   `{"a": [1, 2,`,
			want: map[string]any{"a": []any{float64(1), float64(2)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("I cannot help with that.")
	assert.ErrorIs(t, err, ErrNoObject)

	_, err = Parse(`{"a": tr`)
	assert.ErrorIs(t, err, ErrUnparseable)

	_, err = Parse("")
	assert.ErrorIs(t, err, ErrNoObject)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1`, StripFences("```json\n{\"a\":1"))
	assert.Equal(t, "no fences", StripFences("  no fences "))
}
