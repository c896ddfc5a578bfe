// Package store defines the persistence interfaces the benchmark engine
// consumes, plus an in-memory implementation used by tests and the dev
// server. The engine never talks to a database directly; services receive
// these interfaces.
package store

import (
	"context"

	"surveybench/pkg/contracts/domain"
)

// SurveyStore serves uploaded survey datasets.
type SurveyStore interface {
	// ListSurveys returns every uploaded survey's metadata.
	ListSurveys(ctx context.Context) ([]domain.Survey, error)
	// GetSurveyData returns one page of a survey's raw rows.
	GetSurveyData(ctx context.Context, surveyID string, page domain.Pagination) (domain.SurveyDataPage, error)
}

// MappingStore persists specialty mappings and learned overrides.
type MappingStore interface {
	GetAllMappings(ctx context.Context) ([]domain.SpecialtyMapping, error)
	// SaveMapping inserts or replaces a mapping by ID.
	SaveMapping(ctx context.Context, m domain.SpecialtyMapping) error
	DeleteMapping(ctx context.Context, id string) error
	// SaveLearnedMapping records a corrected original-name -> standardized-name
	// pair consulted before fuzzy matching.
	SaveLearnedMapping(ctx context.Context, originalName, standardizedName string) error
	GetLearnedMappings(ctx context.Context) (domain.LearnedMappings, error)
}

// ColumnMappingStore persists per-survey column mappings.
type ColumnMappingStore interface {
	GetColumnMapping(ctx context.Context, surveyID string) (domain.ColumnMapping, error)
	SaveColumnMapping(ctx context.Context, m domain.ColumnMapping) error
}

// Store aggregates the three persistence surfaces.
type Store interface {
	SurveyStore
	MappingStore
	ColumnMappingStore
}
