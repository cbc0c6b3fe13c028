// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package layout

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/taibuivan/folio/internal/core/work"
	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/pkg/uuid"
)

const maxLegacyLine = 64 << 20

// LegacyDocument is one work as exported (one JSON document per line) from
// the legacy document database. Identifiers and dates may use the extended
// JSON forms {"$oid": ...} and {"$date": ...}.
type LegacyDocument struct {
	ID        extendedString  `json:"_id"`
	Author    extendedString  `json:"author"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	Pages     json.RawMessage `json:"pages"`
	CreatedAt extendedTime    `json:"createdAt"`
	UpdatedAt extendedTime    `json:"updatedAt"`
}

// ImportReport summarises an import.
type ImportReport struct {
	Read     int           `json:"read" yaml:"read"`
	Imported int           `json:"imported" yaml:"imported"`
	Skipped  int           `json:"skipped" yaml:"skipped"`
	Failed   int           `json:"failed" yaml:"failed"`
	Errors   []ImportError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// ImportError locates a rejected line.
type ImportError struct {
	Line  int    `json:"line" yaml:"line"`
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Error string `json:"error" yaml:"error"`
}

// Importer loads legacy documents as inline works.
type Importer struct {
	works   work.WorkRepository
	maxLine int
	now     func() time.Time
	logger  *slog.Logger
}

// NewImporter constructs an [Importer].
func NewImporter(works work.WorkRepository, logger *slog.Logger) *Importer {
	return &Importer{
		works:   works,
		maxLine: maxLegacyLine,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
}

/*
Import reads newline-delimited legacy documents from input.

Description: Each document becomes an inline work whose id is derived from
the legacy id, so importing the same export twice skips every record the
second time. Aggregates are computed from the inline source at import time.
Malformed or oversized lines are reported and skipped.

Returns:
  - *ImportReport: Counters and per-line errors
  - error: Read failures or cancellation
*/
func (importer *Importer) Import(context context.Context, input io.Reader) (*ImportReport, error) {
	report := &ImportReport{}

	reader := bufio.NewReaderSize(input, 1<<20)

	line := 0
	for {
		raw, oversized, err := readLine(reader, importer.maxLine)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("layout: failed to read legacy export: %w", err)
		}

		line++
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 && !oversized {
			continue
		}
		if err := context.Err(); err != nil {
			return report, err
		}

		report.Read++
		if oversized {
			report.Failed++
			report.Errors = append(report.Errors, ImportError{Line: line, Error: fmt.Sprintf("Line exceeds %d bytes", importer.maxLine)})
			continue
		}

		id, err := importer.importLine(context, raw)
		switch {
		case err == nil:
			report.Imported++
		case apperr.HasCode(err, apperr.CodeConflict):
			report.Skipped++
		default:
			report.Failed++
			report.Errors = append(report.Errors, ImportError{Line: line, ID: id, Error: err.Error()})
		}
	}

	importer.logger.Info("layout_legacy_import_finished",
		slog.Int("read", report.Read),
		slog.Int("imported", report.Imported),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
	)

	return report, nil
}

// importLine stores one document. An existing work yields a CONFLICT error.
func (importer *Importer) importLine(context context.Context, raw []byte) (string, error) {
	var document LegacyDocument
	if err := json.Unmarshal(raw, &document); err != nil {
		return "", apperr.ValidationError("Malformed legacy document").WithCause(err)
	}
	if document.ID == "" || document.Author == "" {
		return string(document.ID), apperr.ValidationError("Legacy document lacks _id or author")
	}

	workID := uuid.FromLegacy(string(document.ID))
	if _, err := importer.works.FindByID(context, workID); err == nil {
		return string(document.ID), apperr.Conflict("Work already imported")
	} else if !apperr.HasCode(err, apperr.CodeNotFound) {
		return string(document.ID), err
	}

	inline := work.DecodeInline(document.Content)
	legacy := work.DecodeInline(document.Pages)
	source := work.InlineSource(inline, legacy)

	imported := &work.Work{
		ID:         workID,
		OwnerID:    string(document.Author),
		Title:      truncate(document.Title, work.MaxTitleLength),
		LayoutMode: work.LayoutInline,
		PageCount:  len(source),
		CreatedAt:  document.CreatedAt.or(importer.now()),
	}
	imported.UpdatedAt = document.UpdatedAt.or(imported.CreatedAt)
	for _, page := range source {
		imported.TotalWordCount += page.WordCount()
	}

	if err := importer.works.CreateInline(context, imported, inline, legacy); err != nil {
		return string(document.ID), err
	}

	importer.logger.Debug("layout_legacy_work_imported",
		slog.String("legacy_id", string(document.ID)),
		slog.String("work_id", workID),
		slog.Int("page_count", imported.PageCount),
	)
	return string(document.ID), nil
}

// readLine returns the next line, terminator included. A line longer than
// limit is consumed whole and returned empty with oversized set.
func readLine(reader *bufio.Reader, limit int) (line []byte, oversized bool, err error) {
	for {
		fragment, readErr := reader.ReadSlice('\n')
		if !oversized {
			if len(line)+len(fragment) > limit {
				oversized, line = true, nil
			} else {
				line = append(line, fragment...)
			}
		}

		switch {
		case errors.Is(readErr, bufio.ErrBufferFull):
			continue
		case errors.Is(readErr, io.EOF):
			if len(line) == 0 && !oversized {
				return nil, false, io.EOF
			}
			return line, oversized, nil
		case readErr != nil:
			return nil, false, readErr
		default:
			return line, oversized, nil
		}
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// # Extended JSON

// extendedString accepts "abc" or {"$oid": "abc"}.
type extendedString string

func (s *extendedString) UnmarshalJSON(raw []byte) error {
	var plain string
	if json.Unmarshal(raw, &plain) == nil {
		*s = extendedString(plain)
		return nil
	}

	var wrapped struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return fmt.Errorf("layout: unsupported identifier %s", raw)
	}
	*s = extendedString(wrapped.OID)
	return nil
}

// extendedTime is a legacy date (see [work.ParseTimestamp]). Unparseable
// values leave it unset.
type extendedTime struct {
	time *time.Time
}

func (t *extendedTime) UnmarshalJSON(raw []byte) error {
	t.time = work.ParseTimestamp(raw)
	return nil
}

func (t extendedTime) or(fallback time.Time) time.Time {
	if t.time == nil {
		return fallback
	}
	return *t.time
}
