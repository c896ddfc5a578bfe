package dataprocessing

import (
	"log/slog"
	"strconv"
	"strings"

	"surveybench/pkg/contracts/domain"
)

// Canonical field names the normalizer resolves. Survey-specific column
// mappings are consulted first, then the conventional variants below.
const (
	FieldSpecialty    = "specialty"
	FieldProviderType = "providerType"
	FieldRegion       = "geographicRegion"
	FieldYear         = "year"
	FieldVariable     = "variable"
	FieldNOrgs        = "n_orgs"
	FieldNIncumbents  = "n_incumbents"
)

// fieldVariants lists the conventional column spellings seen across survey
// publishers, tried in order after the survey's own column mapping.
var fieldVariants = map[string][]string{
	FieldSpecialty:    {"specialty", "Specialty", "specialty_name", "Specialty Name", "medical_specialty", "SPECIALTY"},
	FieldProviderType: {"providerType", "provider_type", "Provider Type", "provider type", "PROVIDER_TYPE", "provider"},
	FieldRegion:       {"geographicRegion", "geographic_region", "Geographic Region", "region", "Region", "REGION", "geo_region"},
	FieldYear:         {"year", "Year", "survey_year", "surveyYear", "data_year", "YEAR"},
	FieldVariable:     {"variable", "Variable", "metric", "Metric", "measure"},
	FieldNOrgs:        {"n_orgs", "nOrgs", "orgs", "n_organizations", "org_count", "N Orgs"},
	FieldNIncumbents:  {"n_incumbents", "nIncumbents", "incumbents", "incumbent_count", "N Incumbents", "n"},
}

// percentileKeys are the four percentile suffixes in canonical order.
var percentileKeys = []string{"p25", "p50", "p75", "p90"}

// metricPrefixes maps each metric group to its column-name prefixes.
var metricPrefixes = map[domain.Metric][]string{
	domain.MetricTCC:     {"tcc", "total_cash", "totalCash"},
	domain.MetricWRVU:    {"wrvu", "work_rvu", "workRVU"},
	domain.MetricCF:      {"cf", "conversion_factor", "conversionFactor"},
	domain.MetricCallPay: {"call_pay", "callPay", "call"},
}

// Normalizer converts raw survey rows into the canonical row schema.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize produces a CanonicalRow from one raw row. Missing string fields
// default to "", missing numerics to 0. Every output row carries the survey's
// source and a year string.
func (n *Normalizer) Normalize(row domain.RawSurveyRow, survey domain.Survey, colMap *domain.ColumnMapping) domain.CanonicalRow {
	out := domain.CanonicalRow{
		Specialty:        resolveString(row, colMap, FieldSpecialty),
		ProviderType:     resolveString(row, colMap, FieldProviderType),
		GeographicRegion: resolveString(row, colMap, FieldRegion),
		SurveySource:     survey.Source,
		Year:             resolveString(row, colMap, FieldYear),
	}
	out.OriginalSpecialty = out.Specialty
	if out.Year == "" {
		out.Year = survey.Year
	}

	if variable := resolveString(row, colMap, FieldVariable); variable != "" {
		if metric, ok := ClassifyVariable(variable); ok {
			out.SetMetric(metric, n.genericPercentiles(row, colMap))
			return out
		}
		n.logger.Debug("unclassifiable variable name", "variable", variable, "survey", survey.Source)
	}

	sharedOrgs := resolveFloat(row, colMap, FieldNOrgs)
	sharedIncumbents := resolveFloat(row, colMap, FieldNIncumbents)
	for _, metric := range domain.AllMetrics() {
		out.SetMetric(metric, n.metricPercentiles(row, colMap, metric, sharedOrgs, sharedIncumbents))
	}
	return out
}

// NormalizeAll normalizes a page of rows.
func (n *Normalizer) NormalizeAll(rows []domain.RawSurveyRow, survey domain.Survey, colMap *domain.ColumnMapping) []domain.CanonicalRow {
	out := make([]domain.CanonicalRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, n.Normalize(row, survey, colMap))
	}
	return out
}

// genericPercentiles reads the bare p25..p90 columns used by variable-keyed
// rows, where one row carries one metric.
func (n *Normalizer) genericPercentiles(row domain.RawSurveyRow, colMap *domain.ColumnMapping) domain.MetricGroup {
	return domain.MetricGroup{
		P25:         resolveFloatVariants(row, colMap, "p25", []string{"p25", "P25", "p_25", "25th Percentile", "pct25"}),
		P50:         resolveFloatVariants(row, colMap, "p50", []string{"p50", "P50", "p_50", "50th Percentile", "median", "pct50"}),
		P75:         resolveFloatVariants(row, colMap, "p75", []string{"p75", "P75", "p_75", "75th Percentile", "pct75"}),
		P90:         resolveFloatVariants(row, colMap, "p90", []string{"p90", "P90", "p_90", "90th Percentile", "pct90"}),
		NOrgs:       resolveFloat(row, colMap, FieldNOrgs),
		NIncumbents: resolveFloat(row, colMap, FieldNIncumbents),
	}
}

// metricPercentiles reads the prefixed percentile columns for one metric
// group, e.g. tcc_p25..tcc_p90.
func (n *Normalizer) metricPercentiles(row domain.RawSurveyRow, colMap *domain.ColumnMapping, metric domain.Metric, sharedOrgs, sharedIncumbents float64) domain.MetricGroup {
	var g domain.MetricGroup
	values := [4]*float64{&g.P25, &g.P50, &g.P75, &g.P90}
	for i, pk := range percentileKeys {
		field := string(metric) + "_" + pk
		var variants []string
		for _, prefix := range metricPrefixes[metric] {
			variants = append(variants,
				prefix+"_"+pk,
				prefix+" "+pk,
				strings.ToUpper(prefix+"_"+pk),
				prefix+strings.TrimPrefix(pk, "p"),
			)
		}
		*values[i] = resolveFloatVariants(row, colMap, field, variants)
	}
	g.NOrgs = sharedOrgs
	g.NIncumbents = sharedIncumbents
	return g
}

// ClassifyVariable maps a variable-keyed row's metric name onto a canonical
// metric group by substring. Conversion-factor signals are checked before the
// generic "rvu" substring because CF rows are labeled per-wRVU.
func ClassifyVariable(variable string) (domain.Metric, bool) {
	v := strings.ToLower(strings.TrimSpace(variable))
	switch {
	case strings.Contains(v, "tcc"), strings.Contains(v, "total cash"), strings.Contains(v, "total comp"):
		return domain.MetricTCC, true
	case strings.Contains(v, "conversion"), strings.Contains(v, "per wrvu"), strings.Contains(v, "/wrvu"),
		v == "cf", strings.HasPrefix(v, "cf "), strings.HasPrefix(v, "cf("):
		return domain.MetricCF, true
	case strings.Contains(v, "wrvu"), strings.Contains(v, "work rvu"), strings.Contains(v, "rvu"):
		return domain.MetricWRVU, true
	case strings.Contains(v, "call"):
		return domain.MetricCallPay, true
	}
	return "", false
}

// resolveString looks a field up through the survey's column mapping, then
// the conventional variants. Missing fields resolve to "".
func resolveString(row domain.RawSurveyRow, colMap *domain.ColumnMapping, field string) string {
	if col, ok := mappedColumn(colMap, field); ok {
		if v, present := row[col]; present {
			return strings.TrimSpace(toString(v))
		}
	}
	for _, variant := range fieldVariants[field] {
		if v, present := row[variant]; present {
			return strings.TrimSpace(toString(v))
		}
	}
	return ""
}

// resolveFloat is resolveString for numeric fields; missing or non-numeric
// values coerce to 0.
func resolveFloat(row domain.RawSurveyRow, colMap *domain.ColumnMapping, field string) float64 {
	return resolveFloatVariants(row, colMap, field, fieldVariants[field])
}

func resolveFloatVariants(row domain.RawSurveyRow, colMap *domain.ColumnMapping, field string, variants []string) float64 {
	if col, ok := mappedColumn(colMap, field); ok {
		if v, present := row[col]; present {
			return ToFloat(v)
		}
	}
	for _, variant := range variants {
		if v, present := row[variant]; present {
			return ToFloat(v)
		}
	}
	return 0
}

func mappedColumn(colMap *domain.ColumnMapping, field string) (string, bool) {
	if colMap == nil {
		return "", false
	}
	col, ok := colMap.Columns[field]
	return col, ok && col != ""
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	}
	return ""
}

// ToFloat coerces survey cell values to float64. Currency symbols, commas,
// and surrounding whitespace are tolerated; anything unparseable is 0.
func ToFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		cleaned := strings.TrimSpace(n)
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		cleaned = strings.TrimPrefix(cleaned, "$")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
