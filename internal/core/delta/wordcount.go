// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package delta

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// WordCount returns the number of words in a document.
//
// Counting rules, applied to the concatenated text runs:
//   - each Han ideograph is one word;
//   - a maximal run of Latin letters is one word, and may contain a single
//     internal apostrophe (' or ’) followed by more letters ("don't");
//   - a maximal run of ASCII digits is one word;
//   - everything else separates words. Zero-width characters are removed
//     first, so they never split a word.
//
// The text is NFKC-folded beforehand, so full-width "ＡＢＣ１２３" counts
// like "ABC123".
func WordCount(d Delta) int {
	text := norm.NFKC.String(stripZeroWidth(PlainText(d)))
	runes := []rune(text)

	count := 0
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.Is(unicode.Han, r):
			count++
			i++

		case isLatinLetter(r):
			i = skipLetters(runes, i)
			if i+1 < len(runes) && isApostrophe(runes[i]) && isLatinLetter(runes[i+1]) {
				i = skipLetters(runes, i+1)
			}
			count++

		case isDigit(r):
			for i < len(runes) && isDigit(runes[i]) {
				i++
			}
			count++

		default:
			i++
		}
	}
	return count
}

// CountRaw is WordCount over undecoded page content.
func CountRaw(raw []byte) int {
	return WordCount(Parse(raw))
}

func skipLetters(runes []rune, i int) int {
	for i < len(runes) && isLatinLetter(runes[i]) {
		i++
	}
	return i
}

func isLatinLetter(r rune) bool {
	return unicode.IsLetter(r) && unicode.Is(unicode.Latin, r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '\u2019'
}

func stripZeroWidth(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u200B', '\u200C', '\u200D', '\u2060', '\uFEFF':
			return -1
		}
		return r
	}, s)
}
