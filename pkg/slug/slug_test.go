// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/folio/pkg/slug"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Café Noir", "cafe-noir"},
		{"  Slow -- Burn  ", "slow-burn"},
		{"#Mystery!", "mystery"},
		{"Ñandú & Co.", "nandu-co"},
		{"Noir – 第一章", "noir"},
		{"第一章", ""},
		{"Season 2", "season-2"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, slug.From(tt.input), tt.input)
	}
}
