// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package layout moves works from the inline layout to externalized pages and
keeps externalized works consistent afterwards.

Everything here is operator-triggered through folioctl and never runs on a
request path. Jobs walk works in keyset batches ordered by id, process a
bounded number of works in parallel, and record a per-work outcome instead of
aborting on the first failure. Every step is idempotent, so an interrupted
job is resumed by running it again.

  - [Migrator]: inline → externalized, plus repair of half-migrated works.
  - [Reconciler]: compacts page indices and rewrites stale aggregates.
  - [Importer]: loads NDJSON exports of the legacy document database as inline works.
*/
package layout

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/folio/internal/core/work"
)

const (
	DefaultConcurrency = 4
	DefaultBatchSize   = 100
)

// Action is the outcome recorded for one work.
type Action string

const (
	ActionMigrated        Action = "migrated"
	ActionRepaired        Action = "repaired"
	ActionRenumbered      Action = "renumbered"
	ActionAggregatesFixed Action = "aggregates_fixed"
	ActionUnchanged       Action = "ok"
	ActionSkipped         Action = "skipped"
	ActionFailed          Action = "failed"
)

// WorkResult is the outcome for one work.
type WorkResult struct {
	WorkID     string `json:"work_id" yaml:"work_id"`
	Action     Action `json:"action" yaml:"action"`
	Pages      int    `json:"pages" yaml:"pages"`
	WordCount  int    `json:"word_count" yaml:"word_count"`
	Written    int    `json:"written" yaml:"written"`
	Renumbered int    `json:"renumbered,omitempty" yaml:"renumbered,omitempty"`
	Reason     string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report summarises a job. It is safe to record into from several goroutines.
type Report struct {
	DryRun       bool         `json:"dry_run" yaml:"dry_run"`
	Scanned      int          `json:"scanned" yaml:"scanned"`
	Migrated     int          `json:"migrated" yaml:"migrated"`
	Repaired     int          `json:"repaired" yaml:"repaired"`
	Reconciled   int          `json:"reconciled" yaml:"reconciled"`
	Skipped      int          `json:"skipped" yaml:"skipped"`
	Failed       int          `json:"failed" yaml:"failed"`
	PagesWritten int          `json:"pages_written" yaml:"pages_written"`
	Works        []WorkResult `json:"works" yaml:"works"`

	mu sync.Mutex
}

func (report *Report) record(result WorkResult) {
	report.mu.Lock()
	defer report.mu.Unlock()

	report.Scanned++
	report.PagesWritten += result.Written

	switch result.Action {
	case ActionMigrated:
		report.Migrated++
	case ActionRepaired:
		report.Repaired++
	case ActionRenumbered, ActionAggregatesFixed:
		report.Reconciled++
	case ActionSkipped:
		report.Skipped++
	case ActionFailed:
		report.Failed++
	}

	report.Works = append(report.Works, result)
}

// scan is the keyset batch walk shared by every job. handle is called for
// each candidate id with at most concurrency calls in flight; it reports
// failures through its result, never by aborting the walk.
func scan(context context.Context, works work.WorkRepository, filter work.CandidateFilter, concurrency int, handle func(context.Context, string)) error {
	if filter.Limit <= 0 {
		filter.Limit = DefaultBatchSize
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	for {
		ids, err := works.ListCandidates(context, filter)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		group, groupContext := errgroup.WithContext(context)
		group.SetLimit(concurrency)
		for _, id := range ids {
			group.Go(func() error {
				handle(groupContext, id)
				return nil
			})
		}
		_ = group.Wait()

		if err := context.Err(); err != nil {
			return err
		}
		if len(ids) < filter.Limit {
			return nil
		}
		filter.AfterID = ids[len(ids)-1]
	}
}
