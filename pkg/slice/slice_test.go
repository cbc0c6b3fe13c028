// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/folio/pkg/slice"
)

func TestMap(t *testing.T) {
	assert.Nil(t, slice.Map[int, string](nil, strconv.Itoa))
	assert.Equal(t, []string{"1", "2"}, slice.Map([]int{1, 2}, strconv.Itoa))
}

func TestFilter(t *testing.T) {
	even := func(n int) bool { return n%2 == 0 }
	assert.Nil(t, slice.Filter(nil, even))
	assert.Equal(t, []int{2, 4}, slice.Filter([]int{1, 2, 3, 4}, even))
	assert.Empty(t, slice.Filter([]int{1, 3}, even))
}

func TestUniqueBy(t *testing.T) {
	type label struct{ key, text string }
	input := []label{{"noir", "Noir"}, {"slow-burn", "Slow Burn"}, {"noir", "NOIR"}}

	assert.Equal(t, []label{{"noir", "Noir"}, {"slow-burn", "Slow Burn"}},
		slice.UniqueBy(input, func(l label) string { return l.key }))
	assert.Nil(t, slice.UniqueBy[label, string](nil, func(l label) string { return l.key }))
}
