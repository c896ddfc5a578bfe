package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveybench/pkg/contracts/domain"
)

func filterRows() []domain.CanonicalRow {
	return []domain.CanonicalRow{
		{Specialty: "Cardiology", ProviderType: "Physician", GeographicRegion: "National", SurveySource: "MGMA", Year: "2024"},
		{Specialty: "Cardiology", ProviderType: "Physician", GeographicRegion: "South", SurveySource: "SullivanCotter", Year: "2024"},
		{Specialty: "Cardiovascular Disease", ProviderType: "Physician", GeographicRegion: "National", SurveySource: "Gallagher", Year: "2023"},
		{Specialty: "Dermatology", ProviderType: "Physician", GeographicRegion: "National", SurveySource: "MGMA", Year: "2024"},
		{Specialty: "Dermatology", ProviderType: "APP", GeographicRegion: "West", SurveySource: "MGMA", Year: "2023"},
	}
}

func cardiologyMapping() []domain.SpecialtyMapping {
	return []domain.SpecialtyMapping{
		{
			ID:               "m1",
			StandardizedName: "Cardiology",
			SourceSpecialties: []domain.SourceSpecialty{
				{Specialty: "Cardiovascular Disease", SurveySource: "Gallagher"},
			},
		},
	}
}

func TestApplyFilters(t *testing.T) {
	rows := filterRows()

	t.Run("sentinel filters match everything", func(t *testing.T) {
		for _, f := range []domain.Filters{
			{},
			{Specialty: "All", ProviderType: "All Provider Types", Region: "all", Year: "All Years"},
		} {
			assert.Len(t, ApplyFilters(rows, f, nil), len(rows))
		}
	})

	t.Run("specialty filter expands through mappings", func(t *testing.T) {
		got := ApplyFilters(rows, domain.Filters{Specialty: "Cardiology"}, cardiologyMapping())
		require.Len(t, got, 3)
		assert.Equal(t, "Cardiovascular Disease", got[2].Specialty)
	})

	t.Run("unmapped specialty matches itself literally", func(t *testing.T) {
		got := ApplyFilters(rows, domain.Filters{Specialty: "Dermatology"}, cardiologyMapping())
		assert.Len(t, got, 2)
	})

	t.Run("string dimensions compare case-insensitively", func(t *testing.T) {
		got := ApplyFilters(rows, domain.Filters{Region: "  NATIONAL "}, nil)
		assert.Len(t, got, 3)
	})

	t.Run("year compares trimmed string equality", func(t *testing.T) {
		got := ApplyFilters(rows, domain.Filters{Year: " 2023 "}, nil)
		assert.Len(t, got, 2)
	})

	t.Run("filters intersect", func(t *testing.T) {
		got := ApplyFilters(rows, domain.Filters{
			Specialty:    "Cardiology",
			SurveySource: "MGMA",
			Year:         "2024",
		}, cardiologyMapping())
		require.Len(t, got, 1)
		assert.Equal(t, "National", got[0].GeographicRegion)
	})

	t.Run("no match is an empty set, not nil panic", func(t *testing.T) {
		got := ApplyFilters(rows, domain.Filters{Specialty: "Neurosurgery"}, nil)
		assert.Empty(t, got)
	})
}

func TestDeriveOptions(t *testing.T) {
	rows := filterRows()
	mappings := cardiologyMapping()

	t.Run("own dimension is not self-filtered", func(t *testing.T) {
		got := DeriveOptions(rows, domain.Filters{Specialty: "Cardiology"}, domain.DimensionSpecialty, mappings)
		assert.Equal(t, []string{"Cardiology", "Cardiovascular Disease", "Dermatology"}, got)
	})

	t.Run("other selections narrow a dimension", func(t *testing.T) {
		got := DeriveOptions(rows, domain.Filters{SurveySource: "MGMA"}, domain.DimensionRegion, mappings)
		assert.Equal(t, []string{"National", "West"}, got)
	})

	t.Run("survey source never cascades", func(t *testing.T) {
		full := DeriveOptions(rows, domain.Filters{}, domain.DimensionSurveySource, mappings)
		narrowed := DeriveOptions(rows, domain.Filters{
			Specialty:    "Dermatology",
			ProviderType: "APP",
			Region:       "West",
			Year:         "2023",
		}, domain.DimensionSurveySource, mappings)
		assert.Equal(t, full, narrowed)
		assert.Equal(t, []string{"Gallagher", "MGMA", "SullivanCotter"}, full)
	})

	t.Run("adding filters never grows an option set", func(t *testing.T) {
		base := domain.Filters{}
		narrower := []domain.Filters{
			{ProviderType: "Physician"},
			{ProviderType: "Physician", Year: "2024"},
			{ProviderType: "Physician", Year: "2024", SurveySource: "MGMA"},
		}
		prev := len(DeriveOptions(rows, base, domain.DimensionSpecialty, mappings))
		for _, f := range narrower {
			n := len(DeriveOptions(rows, f, domain.DimensionSpecialty, mappings))
			assert.LessOrEqual(t, n, prev)
			prev = n
		}
	})

	t.Run("values dedupe case-insensitively keeping first seen", func(t *testing.T) {
		dup := []domain.CanonicalRow{
			{GeographicRegion: "National"},
			{GeographicRegion: "NATIONAL"},
			{GeographicRegion: " national "},
		}
		got := DeriveOptions(dup, domain.Filters{}, domain.DimensionRegion, nil)
		assert.Equal(t, []string{"National"}, got)
	})

	t.Run("blank values are dropped", func(t *testing.T) {
		withBlank := append(filterRows(), domain.CanonicalRow{Specialty: ""})
		got := DeriveOptions(withBlank, domain.Filters{}, domain.DimensionSpecialty, nil)
		assert.NotContains(t, got, "")
	})
}

func TestDeriveFilterOptions(t *testing.T) {
	rows := filterRows()
	opts := DeriveFilterOptions(rows, domain.Filters{Year: "2024"}, cardiologyMapping())

	assert.Equal(t, []string{"Cardiology", "Dermatology"}, opts.Specialties)
	assert.Equal(t, []string{"Physician"}, opts.ProviderTypes)
	assert.Equal(t, []string{"National", "South"}, opts.Regions)
	// Full set regardless of the year selection.
	assert.Equal(t, []string{"Gallagher", "MGMA", "SullivanCotter"}, opts.SurveySources)
	assert.Equal(t, []string{"2023", "2024"}, opts.Years)
}
