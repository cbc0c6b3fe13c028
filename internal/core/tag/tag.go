// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package tag attaches free-text tags to works and filters works by them.

Tags are stored under a canonical key produced by [Key], next to the label
the author typed. Rows written before canonicalization existed may carry
other spellings of the same tag, so filtering matches every form returned by
[Variants] rather than the key alone.
*/
package tag

const (
	// MaxTags is the number of distinct tags a work may carry.
	MaxTags = 32

	// MaxLabelLength bounds a label as typed, in runes.
	MaxLabelLength = 64
)

// Tag is one tag attached to a work.
type Tag struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}
