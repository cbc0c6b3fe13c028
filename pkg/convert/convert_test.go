// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/folio/pkg/convert"
)

func TestToBool(t *testing.T) {
	for _, raw := range []string{"true", "1", "TRUE", "t"} {
		assert.True(t, convert.ToBool(raw), raw)
	}
	for _, raw := range []string{"", "0", "false", "yes", "weak"} {
		assert.False(t, convert.ToBool(raw), raw)
	}
}
