package exporter

import (
	"fmt"
	"log/slog"
	"time"

	"surveybench/pkg/contracts/domain"
)

// Report bundles everything one benchmark export carries: the filter state
// it was produced under, the aggregated market, and the canonical rows the
// aggregate was computed from.
type Report struct {
	Filters     domain.Filters
	Market      domain.MarketData
	Rows        []domain.CanonicalRow
	GeneratedAt time.Time
}

// Exporter writes benchmark reports. Safe for concurrent use.
type Exporter struct {
	logger *slog.Logger
}

// New creates an exporter. Logger nil falls back to slog.Default().
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// ReportFilename returns the download filename for a report generated at the
// given time, e.g. "market_data_2024-06-01.xlsx".
func ReportFilename(format string, at time.Time) string {
	return fmt.Sprintf("market_data_%s.%s", at.Format("2006-01-02"), format)
}

// metricLabel returns the human-readable name for a metric group.
func metricLabel(m domain.Metric) string {
	switch m {
	case domain.MetricTCC:
		return "Total Cash Compensation"
	case domain.MetricWRVU:
		return "Work RVUs"
	case domain.MetricCF:
		return "Conversion Factor"
	case domain.MetricCallPay:
		return "Call Coverage Pay"
	}
	return string(m)
}

// filterLine is one label/value pair in the report's filter context block.
type filterLine struct {
	Label string
	Value string
}

// filterLines renders the filter state for the report header. Sentinel
// selections render as "All".
func filterLines(f domain.Filters) []filterLine {
	display := func(v string) string {
		if domain.IsAllSentinel(v) {
			return "All"
		}
		return v
	}
	method := f.AggregationMethod
	if method == "" {
		method = domain.AggregationSimple
	}
	fte := f.FTE
	if fte == 0 {
		fte = 1.0
	}
	return []filterLine{
		{"Specialty", display(f.Specialty)},
		{"Provider Type", display(f.ProviderType)},
		{"Region", display(f.Region)},
		{"Survey Source", display(f.SurveySource)},
		{"Year", display(f.Year)},
		{"FTE", formatFloat(fte)},
		{"Aggregation", string(method)},
	}
}

// rowHeaders returns the detail-sheet column headers: the identifying
// dimensions followed by one block of six columns per metric group.
func rowHeaders() []string {
	headers := []string{
		"Specialty", "Original Specialty", "Provider Type",
		"Region", "Survey Source", "Year",
	}
	for _, m := range domain.AllMetrics() {
		label := metricLabel(m)
		headers = append(headers,
			label+" P25", label+" P50", label+" P75", label+" P90",
			label+" N Orgs", label+" N Incumbents")
	}
	return headers
}

// rowValues converts a canonical row into detail-sheet cell values, in the
// same order as rowHeaders.
func rowValues(row domain.CanonicalRow) []interface{} {
	values := []interface{}{
		row.Specialty, row.OriginalSpecialty, row.ProviderType,
		row.GeographicRegion, row.SurveySource, row.Year,
	}
	for _, m := range domain.AllMetrics() {
		g := row.Metric(m)
		values = append(values, g.P25, g.P50, g.P75, g.P90,
			int64(g.NOrgs), int64(g.NIncumbents))
	}
	return values
}

// rowStrings converts a canonical row into CSV fields, in the same order as
// rowHeaders.
func rowStrings(row domain.CanonicalRow) []string {
	fields := []string{
		row.Specialty, row.OriginalSpecialty, row.ProviderType,
		row.GeographicRegion, row.SurveySource, row.Year,
	}
	for _, m := range domain.AllMetrics() {
		g := row.Metric(m)
		fields = append(fields,
			formatFloat(g.P25), formatFloat(g.P50),
			formatFloat(g.P75), formatFloat(g.P90),
			formatCount(g.NOrgs), formatCount(g.NIncumbents))
	}
	return fields
}
