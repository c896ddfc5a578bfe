package testutil

import (
	"fmt"
	"time"

	"surveybench/pkg/contracts/domain"
)

// FixtureTime is the reference upload timestamp used by survey fixtures so
// ordering assertions are deterministic.
var FixtureTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// NewSurvey creates a survey fixture with sensible defaults.
func NewSurvey(id, source, year string) domain.Survey {
	return domain.Survey{
		ID:         id,
		Name:       fmt.Sprintf("%s Provider Compensation %s", source, year),
		Source:     source,
		Year:       year,
		UploadedAt: FixtureTime,
	}
}

// NewCanonicalRow creates a canonical row with a populated TCC group.
// The remaining metric groups are left zero so callers can fill only what
// the test exercises.
func NewCanonicalRow(specialty, source, year string, tccP50 float64) domain.CanonicalRow {
	return domain.CanonicalRow{
		Specialty:         specialty,
		OriginalSpecialty: specialty,
		ProviderType:      "Physician",
		GeographicRegion:  "National",
		SurveySource:      source,
		Year:              year,
		TCC: domain.MetricGroup{
			P25:         tccP50 * 0.85,
			P50:         tccP50,
			P75:         tccP50 * 1.15,
			P90:         tccP50 * 1.30,
			NOrgs:       20,
			NIncumbents: 100,
		},
	}
}

// NewMapping creates a specialty mapping fixture folding the given source
// specialty pairs under one standardized name. Pairs alternate
// (specialty, surveySource).
func NewMapping(id, standardizedName string, pairs ...string) domain.SpecialtyMapping {
	m := domain.SpecialtyMapping{
		ID:               id,
		StandardizedName: standardizedName,
		CreatedAt:        FixtureTime,
		UpdatedAt:        FixtureTime,
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		m.SourceSpecialties = append(m.SourceSpecialties, domain.SourceSpecialty{
			Specialty:    pairs[i],
			SurveySource: pairs[i+1],
		})
	}
	return m
}
