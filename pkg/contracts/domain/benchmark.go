package domain

import "strings"

// Metric identifies one benchmark metric group.
type Metric string

const (
	MetricTCC     Metric = "tcc"      // total cash compensation
	MetricWRVU    Metric = "wrvu"     // work relative value units
	MetricCF      Metric = "cf"       // conversion factor (TCC per wRVU)
	MetricCallPay Metric = "call_pay" // call coverage pay
)

// AllMetrics returns the metric groups in canonical order.
func AllMetrics() []Metric {
	return []Metric{MetricTCC, MetricWRVU, MetricCF, MetricCallPay}
}

// MetricGroup carries the four survey-reported percentiles for one metric,
// with the org/incumbent counts behind them. Zero means unmapped/missing.
type MetricGroup struct {
	P25         float64 `json:"p25"`
	P50         float64 `json:"p50"`
	P75         float64 `json:"p75"`
	P90         float64 `json:"p90"`
	NOrgs       float64 `json:"n_orgs"`
	NIncumbents float64 `json:"n_incumbents"`
}

// IsZero reports whether all four percentile fields are zero. Fully-zero
// groups are excluded from aggregation.
func (g MetricGroup) IsZero() bool {
	return g.P25 == 0 && g.P50 == 0 && g.P75 == 0 && g.P90 == 0
}

// CanonicalRow is the fixed schema every raw survey row normalizes into.
// Untyped maps never propagate past the row normalizer.
type CanonicalRow struct {
	Specialty         string      `json:"specialty"`
	OriginalSpecialty string      `json:"original_specialty"`
	ProviderType      string      `json:"provider_type"`
	GeographicRegion  string      `json:"geographic_region"`
	SurveySource      string      `json:"survey_source"`
	Year              string      `json:"year"`
	TCC               MetricGroup `json:"tcc"`
	WRVU              MetricGroup `json:"wrvu"`
	CF                MetricGroup `json:"cf"`
	CallPay           MetricGroup `json:"call_pay"`
}

// Metric returns the named metric group.
func (r *CanonicalRow) Metric(m Metric) MetricGroup {
	switch m {
	case MetricTCC:
		return r.TCC
	case MetricWRVU:
		return r.WRVU
	case MetricCF:
		return r.CF
	case MetricCallPay:
		return r.CallPay
	}
	return MetricGroup{}
}

// SetMetric stores the named metric group.
func (r *CanonicalRow) SetMetric(m Metric, g MetricGroup) {
	switch m {
	case MetricTCC:
		r.TCC = g
	case MetricWRVU:
		r.WRVU = g
	case MetricCF:
		r.CF = g
	case MetricCallPay:
		r.CallPay = g
	}
}

// AggregationMethod selects simple percentile pooling or incumbent-weighted
// averaging.
type AggregationMethod string

const (
	AggregationSimple   AggregationMethod = "simple"
	AggregationWeighted AggregationMethod = "weighted"
)

// IsAllSentinel reports whether a filter value means "no filtering on this
// dimension". Empty strings and "All ..." labels from the consuming UI both
// count.
func IsAllSentinel(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "" || v == "all" || strings.HasPrefix(v, "all ")
}

// Filters carries the user's current benchmark filter state.
type Filters struct {
	Specialty         string            `json:"specialty"`
	ProviderType      string            `json:"provider_type"`
	Region            string            `json:"region"`
	SurveySource      string            `json:"survey_source"`
	Year              string            `json:"year"`
	FTE               float64           `json:"fte" validate:"min=0,max=1"`
	AggregationMethod AggregationMethod `json:"aggregation_method" validate:"omitempty,oneof=simple weighted"`
}

// MetricPercentiles holds aggregated market percentiles for one metric.
// P0 and P100 are optional explicit bounds; when absent, percentile-rank
// interpolation synthesizes them.
type MetricPercentiles struct {
	P25  float64  `json:"p25"`
	P50  float64  `json:"p50"`
	P75  float64  `json:"p75"`
	P90  float64  `json:"p90"`
	P0   *float64 `json:"p0,omitempty"`
	P100 *float64 `json:"p100,omitempty"`
}

// IsZero reports whether all four core percentiles are zero.
func (p MetricPercentiles) IsZero() bool {
	return p.P25 == 0 && p.P50 == 0 && p.P75 == 0 && p.P90 == 0
}

// MarketData is the aggregated percentile benchmark across filtered rows.
// A zero-valued MarketData is the "no market data" state, not an error.
type MarketData struct {
	TCC      MetricPercentiles `json:"tcc"`
	WRVU     MetricPercentiles `json:"wrvu"`
	CF       MetricPercentiles `json:"cf"`
	CallPay  MetricPercentiles `json:"call_pay"`
	RowCount int               `json:"row_count"`
}

// Metric returns the named percentile set.
func (md *MarketData) Metric(m Metric) MetricPercentiles {
	switch m {
	case MetricTCC:
		return md.TCC
	case MetricWRVU:
		return md.WRVU
	case MetricCF:
		return md.CF
	case MetricCallPay:
		return md.CallPay
	}
	return MetricPercentiles{}
}

// SetMetric stores the named percentile set.
func (md *MarketData) SetMetric(m Metric, p MetricPercentiles) {
	switch m {
	case MetricTCC:
		md.TCC = p
	case MetricWRVU:
		md.WRVU = p
	case MetricCF:
		md.CF = p
	case MetricCallPay:
		md.CallPay = p
	}
}

// Dimension enumerates the cascading filter dimensions.
type Dimension string

const (
	DimensionSpecialty    Dimension = "specialty"
	DimensionProviderType Dimension = "provider_type"
	DimensionRegion       Dimension = "region"
	DimensionSurveySource Dimension = "survey_source"
	DimensionYear         Dimension = "year"
)

// FilterOptions is the available-value set per dimension, derived by
// cascading every other selected filter.
type FilterOptions struct {
	Specialties   []string `json:"specialties"`
	ProviderTypes []string `json:"provider_types"`
	Regions       []string `json:"regions"`
	SurveySources []string `json:"survey_sources"`
	Years         []string `json:"years"`
}
