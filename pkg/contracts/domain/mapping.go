package domain

import (
	"strings"
	"time"
)

// SourceSpecialty is one survey-specific specialty label folded into a mapping.
type SourceSpecialty struct {
	Specialty    string `json:"specialty" validate:"required"`
	SurveySource string `json:"survey_source" validate:"required"`
	OriginalName string `json:"original_name,omitempty"`
}

// SpecialtyMapping groups differently-spelled specialty labels from independent
// survey publishers under one standardized name. StandardizedName is unique
// across mappings, and no (survey_source, specialty) pair repeats within a
// mapping.
type SpecialtyMapping struct {
	ID                string            `json:"id" validate:"required"`
	StandardizedName  string            `json:"standardized_name" validate:"required"`
	SourceSpecialties []SourceSpecialty `json:"source_specialties"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// HasSource reports whether the mapping already carries the given
// (surveySource, specialty) pair. Comparison is case-insensitive.
func (m *SpecialtyMapping) HasSource(surveySource, specialty string) bool {
	for _, s := range m.SourceSpecialties {
		if strings.EqualFold(s.SurveySource, surveySource) && strings.EqualFold(s.Specialty, specialty) {
			return true
		}
	}
	return false
}

// AddSource appends the pair unless it is already present. Returns true when
// the mapping was modified.
func (m *SpecialtyMapping) AddSource(s SourceSpecialty) bool {
	if m.HasSource(s.SurveySource, s.Specialty) {
		return false
	}
	m.SourceSpecialties = append(m.SourceSpecialties, s)
	return true
}

// SourceSpecialtyNames returns every source-specialty string in the mapping,
// standardized name included. Used to expand a specialty filter so
// un-normalized rows still match.
func (m *SpecialtyMapping) SourceSpecialtyNames() []string {
	names := make([]string, 0, len(m.SourceSpecialties)+1)
	names = append(names, m.StandardizedName)
	for _, s := range m.SourceSpecialties {
		names = append(names, s.Specialty)
	}
	return names
}

// LearnedMappings is the key-value override store consulted before fuzzy
// matching: lower-cased original specialty -> corrected standardized name.
// Lookups are survey-source independent.
type LearnedMappings map[string]string

// Lookup returns the corrected standardized name for a raw specialty string.
func (lm LearnedMappings) Lookup(rawName string) (string, bool) {
	v, ok := lm[strings.ToLower(strings.TrimSpace(rawName))]
	return v, ok
}

// MatchMethod names the matching stage that produced a result.
type MatchMethod string

const (
	MatchExact   MatchMethod = "exact"
	MatchLearned MatchMethod = "learned"
	MatchSynonym MatchMethod = "synonym"
	MatchFuzzy   MatchMethod = "fuzzy"
)

// MappingResult reports one auto-map outcome. Failed persistence is recorded
// in Err; failures never abort sibling items.
type MappingResult struct {
	OriginalName     string      `json:"original_name"`
	SurveySource     string      `json:"survey_source"`
	StandardizedName string      `json:"standardized_name,omitempty"`
	Confidence       float64     `json:"confidence"`
	Method           MatchMethod `json:"method,omitempty"`
	Matched          bool        `json:"matched"`
	Err              string      `json:"error,omitempty"`
}
