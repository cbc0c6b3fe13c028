// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package delta_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/folio/internal/core/delta"
)

func text(s string) []byte {
	raw, _ := json.Marshal(map[string]any{"ops": []any{map[string]any{"insert": s}}})
	return raw
}

/*
TestWordCount covers the counting rules for each script and separator.
*/
func TestWordCount(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want int
	}{
		{"single_word", text("alpha"), 1},
		{"sentence", text("The quick brown fox.\n"), 4},
		{"apostrophe", text("don't stop"), 2},
		{"curly_apostrophe", text("it’s fine"), 2},
		{"double_apostrophe", text("rock'n'roll"), 2},
		{"trailing_apostrophe", text("dogs' bones"), 2},
		{"digits", text("room 101 on floor 3"), 5},
		{"letters_then_digits", text("abc123"), 2},
		{"cjk", text("你好世界"), 4},
		{"mixed", text("第1章 Hello世界"), 6},
		{"fullwidth", text("ＡＢＣ　１２３"), 2},
		{"zero_width_joins", text("hel\u200Blo wor\uFEFFld"), 2},
		{"latin_accents", text("café naïve"), 2},
		{"punctuation_only", text("... --- !!!"), 0},
		{"empty_ops", []byte(`{"ops":[]}`), 0},
		{"embed_ignored", []byte(`{"ops":[{"insert":{"image":"https://cdn/a.png"}},{"insert":"one two"}]}`), 2},
		{"runs_concatenate", []byte(`{"ops":[{"insert":"sp"},{"insert":"lit","attributes":{"bold":true}}]}`), 1},
		{"malformed_json", []byte(`{"ops":`), 0},
		{"not_an_object", []byte(`"alpha"`), 0},
		{"nil", nil, 0},
		{"bad_op_skipped", []byte(`{"ops":[42,{"insert":"ok"}]}`), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, delta.CountRaw(tt.raw))
		})
	}
}

/*
TestExcerpt verifies line folding and rune-based truncation.
*/
func TestExcerpt(t *testing.T) {
	d := delta.Parse([]byte(`{"ops":[{"insert":"Line one\n\nLine two\n"},{"insert":{"image":"x"}},{"insert":"末尾"}]}`))

	assert.Equal(t, "Line one Line two 末尾", delta.Excerpt(d, 200))
	assert.Equal(t, "Line", delta.Excerpt(d, 5))
	assert.Equal(t, "", delta.Excerpt(d, 0))
	assert.Equal(t, "", delta.Excerpt(delta.Delta{}, 10))
}

/*
TestValid distinguishes documents from arbitrary JSON.
*/
func TestValid(t *testing.T) {
	assert.True(t, delta.Valid(delta.Empty))
	assert.True(t, delta.Valid([]byte(`{"ops":[{"insert":"x"}]}`)))
	assert.False(t, delta.Valid([]byte(`{"content":"x"}`)))
	assert.False(t, delta.Valid([]byte(`[]`)))
}

/*
TestRewriteURLs only touches embeds and links carrying the source prefix.
*/
func TestRewriteURLs(t *testing.T) {
	raw := json.RawMessage(`{"ops":[{"insert":{"image":"http://old.cdn/a.png"}},{"insert":"see","attributes":{"link":"http://old.cdn/b"}},{"insert":"http://old.cdn/plain"}]}`)

	got := delta.RewriteURLs(raw, "http://old.cdn/", "https://img.example/")

	assert.JSONEq(t,
		`{"ops":[{"insert":{"image":"https://img.example/a.png"}},{"insert":"see","attributes":{"link":"https://img.example/b"}},{"insert":"http://old.cdn/plain"}]}`,
		string(got))

	untouched := json.RawMessage(`{"ops":[{"insert":"x"}]}`)
	assert.Equal(t, string(untouched), string(delta.RewriteURLs(untouched, "http://old.cdn/", "https://img.example/")))
	assert.Equal(t, string(raw), string(delta.RewriteURLs(raw, "", "https://img.example/")))

	t.Run("markup_is_not_escaped", func(t *testing.T) {
		raw := json.RawMessage(`{"ops":[{"insert":"Tom & Jerry <3 "},{"insert":{"image":"http://old.cdn/c.png?a=1&b=2"}}]}`)

		got := string(delta.RewriteURLs(raw, "http://old.cdn/", "https://img.example/"))

		assert.Equal(t, `{"ops":[{"insert":"Tom & Jerry <3 "},{"insert":{"image":"https://img.example/c.png?a=1&b=2"}}]}`, got)
	})
}
