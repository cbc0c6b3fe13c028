// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package delta reads the rich-text documents stored in page content.

A document is a Quill-style delta: an ordered list of insert operations, each
either a text run (string insert) or an embed (object insert such as
{"image": "https://..."}).

	{"ops":[{"insert":"Chapter one\n","attributes":{"header":1}},{"insert":{"image":"https://cdn/a.png"}}]}

Page content travels through the stores as raw JSON so that what a client
wrote is exactly what a reader gets back. This package only decodes it for
counting, excerpts and URL rewriting, and it never fails: malformed input is
an empty document.
*/
package delta

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Empty is the content of a freshly created page.
var Empty = json.RawMessage(`{"ops":[]}`)

// Op is a single delta operation.
type Op struct {
	Insert     any            `json:"insert,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Text returns the op's text run, or false for embeds and non-insert ops.
func (op Op) Text() (string, bool) {
	text, ok := op.Insert.(string)
	return text, ok
}

// Delta is a decoded rich-text document.
type Delta struct {
	Ops []Op `json:"ops"`
}

// Parse decodes raw content. Anything that is not an object with an "ops"
// array yields an empty Delta; individual malformed ops are skipped.
func Parse(raw []byte) Delta {
	var document struct {
		Ops []json.RawMessage `json:"ops"`
	}
	if len(bytes.TrimSpace(raw)) == 0 || json.Unmarshal(raw, &document) != nil {
		return Delta{}
	}

	ops := make([]Op, 0, len(document.Ops))
	for _, rawOp := range document.Ops {
		var op Op
		if json.Unmarshal(rawOp, &op) != nil {
			continue
		}
		ops = append(ops, op)
	}
	return Delta{Ops: ops}
}

// Valid reports whether raw is an object carrying an "ops" array.
func Valid(raw []byte) bool {
	var document struct {
		Ops *[]json.RawMessage `json:"ops"`
	}
	return json.Unmarshal(raw, &document) == nil && document.Ops != nil
}

// PlainText concatenates every text run in order. Embeds contribute nothing.
func PlainText(d Delta) string {
	var builder strings.Builder
	for _, op := range d.Ops {
		if text, ok := op.Text(); ok {
			builder.WriteString(text)
		}
	}
	return builder.String()
}

// Excerpt returns at most n runes of the document's text, with line breaks
// folded into single spaces and surrounding whitespace trimmed.
func Excerpt(d Delta, n int) string {
	text := strings.Join(strings.FieldsFunc(PlainText(d), func(r rune) bool {
		return r == '\n' || r == '\r'
	}), " ")
	text = strings.TrimSpace(text)

	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}

	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n]))
}
