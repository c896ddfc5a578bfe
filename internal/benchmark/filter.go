package benchmark

import (
	"sort"
	"strings"

	"surveybench/internal/specialty"
	"surveybench/pkg/contracts/domain"
)

// ApplyFilters returns the rows matching every non-sentinel filter. String
// dimensions compare case-insensitively with trimmed, collapsed whitespace;
// the year filter compares string-cast equality. The specialty filter expands
// the selected standardized name to its full source-specialty set so rows
// that were never normalized still match.
func ApplyFilters(rows []domain.CanonicalRow, filters domain.Filters, mappings []domain.SpecialtyMapping) []domain.CanonicalRow {
	specialtySet := expandSpecialty(filters.Specialty, mappings)
	out := make([]domain.CanonicalRow, 0, len(rows))
	for i := range rows {
		if rowMatches(&rows[i], filters, specialtySet) {
			out = append(out, rows[i])
		}
	}
	return out
}

func rowMatches(r *domain.CanonicalRow, f domain.Filters, specialtySet map[string]struct{}) bool {
	if specialtySet != nil {
		if _, ok := specialtySet[specialty.NormalizeName(r.Specialty)]; !ok {
			return false
		}
	}
	if !domain.IsAllSentinel(f.ProviderType) && specialty.NormalizeName(f.ProviderType) != specialty.NormalizeName(r.ProviderType) {
		return false
	}
	if !domain.IsAllSentinel(f.Region) && specialty.NormalizeName(f.Region) != specialty.NormalizeName(r.GeographicRegion) {
		return false
	}
	if !domain.IsAllSentinel(f.SurveySource) && specialty.NormalizeName(f.SurveySource) != specialty.NormalizeName(r.SurveySource) {
		return false
	}
	if !domain.IsAllSentinel(f.Year) && strings.TrimSpace(f.Year) != strings.TrimSpace(r.Year) {
		return false
	}
	return true
}

// expandSpecialty builds the normalized set of names the specialty filter
// accepts: the mapping's standardized name plus every source specialty. A
// sentinel filter returns nil (match everything); an unmapped selection
// matches itself literally.
func expandSpecialty(selected string, mappings []domain.SpecialtyMapping) map[string]struct{} {
	if domain.IsAllSentinel(selected) {
		return nil
	}
	norm := specialty.NormalizeName(selected)
	set := map[string]struct{}{norm: {}}
	for i := range mappings {
		if specialty.NormalizeName(mappings[i].StandardizedName) != norm {
			continue
		}
		for _, name := range mappings[i].SourceSpecialtyNames() {
			set[specialty.NormalizeName(name)] = struct{}{}
		}
	}
	return set
}

// DeriveOptions recomputes the available values for one dimension by
// re-filtering the full row set with every other selected filter. The
// surveySource dimension never cascades: it always lists every source in the
// full dataset.
func DeriveOptions(rows []domain.CanonicalRow, filters domain.Filters, dim domain.Dimension, mappings []domain.SpecialtyMapping) []string {
	scoped := filters
	switch dim {
	case domain.DimensionSpecialty:
		scoped.Specialty = ""
	case domain.DimensionProviderType:
		scoped.ProviderType = ""
	case domain.DimensionRegion:
		scoped.Region = ""
	case domain.DimensionSurveySource:
		scoped = domain.Filters{}
	case domain.DimensionYear:
		scoped.Year = ""
	}
	filtered := ApplyFilters(rows, scoped, mappings)

	seen := make(map[string]string, len(filtered))
	for i := range filtered {
		v := dimensionValue(&filtered[i], dim)
		if v == "" {
			continue
		}
		key := specialty.NormalizeName(v)
		if _, ok := seen[key]; !ok {
			seen[key] = strings.TrimSpace(v)
		}
	}
	out := make([]string, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

func dimensionValue(r *domain.CanonicalRow, dim domain.Dimension) string {
	switch dim {
	case domain.DimensionSpecialty:
		return r.Specialty
	case domain.DimensionProviderType:
		return r.ProviderType
	case domain.DimensionRegion:
		return r.GeographicRegion
	case domain.DimensionSurveySource:
		return r.SurveySource
	case domain.DimensionYear:
		return r.Year
	}
	return ""
}

// DeriveFilterOptions derives every dimension's available values under the
// current filter state.
func DeriveFilterOptions(rows []domain.CanonicalRow, filters domain.Filters, mappings []domain.SpecialtyMapping) domain.FilterOptions {
	return domain.FilterOptions{
		Specialties:   DeriveOptions(rows, filters, domain.DimensionSpecialty, mappings),
		ProviderTypes: DeriveOptions(rows, filters, domain.DimensionProviderType, mappings),
		Regions:       DeriveOptions(rows, filters, domain.DimensionRegion, mappings),
		SurveySources: DeriveOptions(rows, filters, domain.DimensionSurveySource, mappings),
		Years:         DeriveOptions(rows, filters, domain.DimensionYear, mappings),
	}
}
