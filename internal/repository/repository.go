package repository

import (
	"context"

	"voicebank/internal/model"
)

// Package repository contains the metadata log access layer. All reads and
// writes of the log go through SampleRepository so the flat-file
// implementation (csvlog) could be swapped for an embedded store without
// touching callers.

// SampleRepository defines data access for the append-only sample metadata
// log. No business logic here — strictly persistence operations.
type SampleRepository interface {
	// Append commits exactly one row for the sample. The append is atomic
	// relative to concurrent Appends: rows never interleave. The sample's
	// CreatedAt is assigned at write time and is monotonically non-decreasing
	// across appended rows.
	Append(ctx context.Context, s *model.Sample) error

	// Stats returns aggregate counts over the whole log. A missing, empty, or
	// unreadable log yields zero counts, not an error.
	Stats(ctx context.Context) (*DatasetStats, error)

	// List returns a page of samples in log (append) order and the total row
	// count. A missing log yields an empty result.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Sample], error)
}

// DatasetStats holds aggregate counts computed from the metadata log.
type DatasetStats struct {
	Total         int
	ByLanguage    map[model.Language]int
	ByEnvironment map[model.Environment]int
}

// NewDatasetStats returns a zero-valued stats object with initialized maps.
func NewDatasetStats() *DatasetStats {
	return &DatasetStats{
		ByLanguage:    make(map[model.Language]int),
		ByEnvironment: make(map[model.Environment]int),
	}
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
