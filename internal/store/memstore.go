package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"surveybench/pkg/contracts/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// MemStore is an in-memory Store used by tests and the dev server.
// Mappings preserve insertion order: match tie-breaking depends on it.
type MemStore struct {
	mu         sync.RWMutex
	surveys    map[string]domain.Survey
	surveyRows map[string][]domain.RawSurveyRow
	order      []string // mapping IDs, insertion order
	mappings   map[string]domain.SpecialtyMapping
	learned    domain.LearnedMappings
	columns    map[string]domain.ColumnMapping
	now        func() time.Time
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		surveys:    make(map[string]domain.Survey),
		surveyRows: make(map[string][]domain.RawSurveyRow),
		mappings:   make(map[string]domain.SpecialtyMapping),
		learned:    make(domain.LearnedMappings),
		columns:    make(map[string]domain.ColumnMapping),
		now:        time.Now,
	}
}

// AddSurvey seeds a survey and its raw rows.
func (s *MemStore) AddSurvey(survey domain.Survey, rows []domain.RawSurveyRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	survey.RowCount = len(rows)
	s.surveys[survey.ID] = survey
	s.surveyRows[survey.ID] = append([]domain.RawSurveyRow(nil), rows...)
}

// RemoveSurvey drops a survey and its rows. Unknown IDs are a no-op.
func (s *MemStore) RemoveSurvey(surveyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.surveys, surveyID)
	delete(s.surveyRows, surveyID)
}

// ListSurveys returns the surveys ordered by upload time, then ID for stable
// output when timestamps collide.
func (s *MemStore) ListSurveys(_ context.Context) ([]domain.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Survey, 0, len(s.surveys))
	for _, sv := range s.surveys {
		out = append(out, sv)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.Before(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetSurveyData returns one page of raw rows.
func (s *MemStore) GetSurveyData(_ context.Context, surveyID string, page domain.Pagination) (domain.SurveyDataPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.surveyRows[surveyID]
	if !ok {
		return domain.SurveyDataPage{}, fmt.Errorf("survey %s: %w", surveyID, ErrNotFound)
	}
	total := len(rows)
	start := page.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if page.Limit > 0 && start+page.Limit < total {
		end = start + page.Limit
	}
	out := make([]domain.RawSurveyRow, end-start)
	copy(out, rows[start:end])
	return domain.SurveyDataPage{Rows: out, Total: total}, nil
}

// GetAllMappings returns every specialty mapping in insertion order.
func (s *MemStore) GetAllMappings(_ context.Context) ([]domain.SpecialtyMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SpecialtyMapping, 0, len(s.order))
	for _, id := range s.order {
		m := s.mappings[id]
		m.SourceSpecialties = append([]domain.SourceSpecialty(nil), m.SourceSpecialties...)
		out = append(out, m)
	}
	return out, nil
}

// SaveMapping inserts or replaces a mapping by ID. Replacing keeps the
// mapping's original position in insertion order.
func (s *MemStore) SaveMapping(_ context.Context, m domain.SpecialtyMapping) error {
	if m.ID == "" {
		return errors.New("mapping id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.mappings[m.ID]
	if ok {
		m.CreatedAt = existing.CreatedAt
	} else {
		s.order = append(s.order, m.ID)
		if m.CreatedAt.IsZero() {
			m.CreatedAt = s.now()
		}
	}
	m.UpdatedAt = s.now()
	m.SourceSpecialties = append([]domain.SourceSpecialty(nil), m.SourceSpecialties...)
	s.mappings[m.ID] = m
	return nil
}

// DeleteMapping removes a mapping by ID.
func (s *MemStore) DeleteMapping(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mappings[id]; !ok {
		return fmt.Errorf("mapping %s: %w", id, ErrNotFound)
	}
	delete(s.mappings, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SaveLearnedMapping records a corrected pair. Keys are stored lower-cased
// and trimmed so lookups are spelling-insensitive.
func (s *MemStore) SaveLearnedMapping(_ context.Context, originalName, standardizedName string) error {
	key := strings.ToLower(strings.TrimSpace(originalName))
	if key == "" {
		return errors.New("original name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learned[key] = standardizedName
	return nil
}

// GetLearnedMappings returns a copy of the learned override table.
func (s *MemStore) GetLearnedMappings(_ context.Context) (domain.LearnedMappings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(domain.LearnedMappings, len(s.learned))
	for k, v := range s.learned {
		out[k] = v
	}
	return out, nil
}

// GetColumnMapping returns the stored column mapping for a survey.
func (s *MemStore) GetColumnMapping(_ context.Context, surveyID string) (domain.ColumnMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.columns[surveyID]
	if !ok {
		return domain.ColumnMapping{}, fmt.Errorf("column mapping for survey %s: %w", surveyID, ErrNotFound)
	}
	cols := make(map[string]string, len(m.Columns))
	for k, v := range m.Columns {
		cols[k] = v
	}
	m.Columns = cols
	return m, nil
}

// SaveColumnMapping inserts or replaces a survey's column mapping.
func (s *MemStore) SaveColumnMapping(_ context.Context, m domain.ColumnMapping) error {
	if m.SurveyID == "" {
		return errors.New("survey id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cols := make(map[string]string, len(m.Columns))
	for k, v := range m.Columns {
		cols[k] = v
	}
	m.Columns = cols
	s.columns[m.SurveyID] = m
	return nil
}
