// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/taibuivan/folio/pkg/slice"
	"github.com/taibuivan/folio/pkg/slug"
)

// # Canonical Keys

/*
Key returns the canonical lookup key of a tag.

Description: The text is NFKC-normalized, width-folded and case-folded,
then trimmed. Leading '#' marks are dropped and every run of whitespace,
'_', '-' or '·' becomes a single '-'. So "＃Slow  Burn", "slow_burn" and
"SLOW-BURN" share the key "slow-burn".

Returns:
  - string: The key, empty when nothing but punctuation and spaces remain
*/
func Key(raw string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKC, width.Fold, cases.Fold()), raw)
	if err != nil {
		folded = strings.ToLower(raw)
	}

	folded = strings.TrimLeft(strings.TrimSpace(folded), "#＃")

	var builder strings.Builder
	builder.Grow(len(folded))

	pending := false
	for _, r := range folded {
		if isSeparator(r) {
			pending = true
			continue
		}
		if pending && builder.Len() > 0 {
			builder.WriteByte('-')
		}
		pending = false
		builder.WriteRune(r)
	}

	return strings.Trim(builder.String(), "-")
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '_' || r == '-' || r == '·'
}

// # Legacy Variants

/*
Variants lists every stored form a tag may have been written under.

Description: Older rows kept the label as typed, lower-cased, with a hash
prefix, or as an ASCII slug. The canonical key always comes first and the
list carries no duplicates. Only filtering uses this; tagging stores [Key].
*/
func Variants(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	key := Key(trimmed)
	lower := strings.ToLower(trimmed)

	candidates := slice.Filter([]string{
		key,
		trimmed,
		lower,
		"#" + trimmed,
		"#" + lower,
		prefixed(key),
		slug.From(trimmed),
	}, func(candidate string) bool { return candidate != "" })

	return slice.UniqueBy(candidates, func(candidate string) string { return candidate })
}

func prefixed(key string) string {
	if key == "" {
		return ""
	}
	return "#" + key
}
