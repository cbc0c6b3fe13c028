// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered identifiers for works and requests.

Version 7 values sort by creation time, which keeps the primary-key index of
core.work append-mostly and lets the layout migrator page through works in
keyset order that roughly follows their age.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// FromLegacy maps an identifier from the legacy document database to a
// stable UUID. Canonical UUIDs pass through unchanged; anything else (such as
// a 24-character object id) becomes a name-based version 5 UUID, so repeated
// imports of the same record always produce the same work id.
func FromLegacy(id string) string {
	if Valid(id) {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

// # Validation

// Valid reports whether s is a canonical hyphenated UUID of any version.
func Valid(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
