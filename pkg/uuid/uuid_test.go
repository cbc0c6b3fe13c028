// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/folio/pkg/uuid"
)

func TestNew(t *testing.T) {
	first, second := uuid.New(), uuid.New()

	assert.True(t, uuid.Valid(first))
	assert.NotEqual(t, first, second)
	assert.Equal(t, byte('7'), first[14], "version nibble")
}

func TestValid(t *testing.T) {
	assert.True(t, uuid.Valid("0190a5b2-7c3e-7d4f-8a1b-2c3d4e5f6a7b"))
	assert.False(t, uuid.Valid(""))
	assert.False(t, uuid.Valid("not-a-uuid"))
	assert.False(t, uuid.Valid("urn:uuid:0190a5b2-7c3e-7d4f-8a1b-2c3d4e5f6a7b"))
}

func TestFromLegacy(t *testing.T) {
	objectID := "65f1c2a9b3e4d5f6a7b8c9d0"

	mapped := uuid.FromLegacy(objectID)
	assert.True(t, uuid.Valid(mapped))
	assert.Equal(t, mapped, uuid.FromLegacy(objectID))
	assert.NotEqual(t, mapped, uuid.FromLegacy("65f1c2a9b3e4d5f6a7b8c9d1"))

	existing := uuid.New()
	assert.Equal(t, existing, uuid.FromLegacy(existing))
}
