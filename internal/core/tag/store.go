// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import "context"

// Store defines the data access contract for work tags.
type Store interface {

	/*
		Replace swaps a work's full tag set in one transaction.
	*/
	Replace(context context.Context, workID string, tags []Tag) error

	/*
		ListForWork returns a work's tags ordered by key.
	*/
	ListForWork(context context.Context, workID string) ([]Tag, error)

	/*
		ListWorkIDs returns works carrying any of the given stored keys,
		newest first.

		Returns:
		  - []string: Work ids of the requested page
		  - int: Total matching works
	*/
	ListWorkIDs(context context.Context, keys []string, limit, offset int) ([]string, int, error)
}
