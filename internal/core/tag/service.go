// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/folio/internal/core/work"
	"github.com/taibuivan/folio/internal/platform/apperr"
	"github.com/taibuivan/folio/internal/platform/validate"
	"github.com/taibuivan/folio/pkg/slice"
	"github.com/taibuivan/folio/pkg/uuid"
)

const (
	FieldTags = "tags"
	FieldTag  = "tag"
)

// Service manages work tags and tag filtering.
type Service struct {
	tags   Store
	works  work.WorkRepository
	logger *slog.Logger
}

// NewService constructs a new tag [Service].
func NewService(tags Store, works work.WorkRepository, logger *slog.Logger) *Service {
	return &Service{
		tags:   tags,
		works:  works,
		logger: logger,
	}
}

/*
SetTags replaces the tags of a work owned by the caller.

Description: Labels are stored under their canonical [Key]. Labels sharing a
key collapse to the first one given.

Parameters:
  - callerID: string (caller identity)
  - workID: string (UUID)
  - labels: []string (as typed by the author)

Returns:
  - []Tag: The stored tag set
  - error: VALIDATION_ERROR for an empty key, FORBIDDEN for a non-owner
*/
func (service *Service) SetTags(context context.Context, callerID, workID string, labels []string) ([]Tag, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldTags, len(labels) > MaxTags, fmt.Sprintf("At most %d tags are allowed", MaxTags))

	tags := make([]Tag, 0, len(labels))
	for index, label := range labels {
		field := fmt.Sprintf("%s[%d]", FieldTags, index)
		label = strings.TrimSpace(label)
		key := Key(label)

		validator.Custom(field, key == "", "Must contain a letter or digit")
		validator.Custom(field, utf8.RuneCountInString(label) > MaxLabelLength, fmt.Sprintf("Must be at most %d characters", MaxLabelLength))
		tags = append(tags, Tag{Key: key, Label: label})
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// The first label written for a key wins
	tags = slice.UniqueBy(tags, func(tag Tag) string { return tag.Key })

	target, err := service.find(context, workID)
	if err != nil {
		return nil, err
	}
	if callerID == "" || callerID != target.OwnerID {
		return nil, work.ErrNotOwner
	}

	if err := service.tags.Replace(context, workID, tags); err != nil {
		return nil, err
	}

	service.logger.Info("work_tags_set",
		slog.String("work_id", workID),
		slog.Int("tag_count", len(tags)),
	)

	return service.tags.ListForWork(context, workID)
}

// ListTags returns the tags of a work.
func (service *Service) ListTags(context context.Context, workID string) ([]Tag, error) {
	if _, err := service.find(context, workID); err != nil {
		return nil, err
	}
	return service.tags.ListForWork(context, workID)
}

/*
ListWorks returns works carrying any of the given tags, newest first.

Description: Each tag is expanded through [Variants] so rows stored under
an older spelling still match.

Returns:
  - []*work.Work: The requested page
  - int: Total matching works
*/
func (service *Service) ListWorks(context context.Context, filter []string, limit, offset int) ([]*work.Work, int, error) {
	var keys []string
	for _, raw := range filter {
		if Key(raw) != "" {
			keys = append(keys, Variants(raw)...)
		}
	}
	if len(keys) == 0 {
		return nil, 0, validate.FieldError(FieldTag, "Must name at least one tag")
	}

	ids, total, err := service.tags.ListWorkIDs(context, keys, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	works := make([]*work.Work, 0, len(ids))
	for _, id := range ids {
		found, err := service.works.FindByID(context, id)
		if apperr.HasCode(err, apperr.CodeNotFound) {
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		works = append(works, found)
	}
	return works, total, nil
}

func (service *Service) find(context context.Context, workID string) (*work.Work, error) {
	if !uuid.Valid(workID) {
		return nil, apperr.NotFound("Work")
	}
	return service.works.FindByID(context, workID)
}
