package benchmark

import (
	"math"
	"sort"

	"surveybench/pkg/contracts/domain"
)

// Percentile returns the nearest-rank percentile of values: the element at
// index floor((p/100)*n) of the ascending sort. The input slice is not
// modified; ordering does not affect the result. Empty input returns 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(math.Floor(p / 100 * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

// WeightedAverage returns sum(value*weight)/sum(weight). A zero weight sum
// returns 0, never NaN.
func WeightedAverage(values, weights []float64) float64 {
	var num, den float64
	for i := range values {
		num += values[i] * weights[i]
		den += weights[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// percentileColumn selects one of the four percentile fields of a group.
type percentileColumn struct {
	p   float64
	get func(domain.MetricGroup) float64
	set func(*domain.MetricPercentiles, float64)
}

var percentileColumns = []percentileColumn{
	{25, func(g domain.MetricGroup) float64 { return g.P25 }, func(m *domain.MetricPercentiles, v float64) { m.P25 = v }},
	{50, func(g domain.MetricGroup) float64 { return g.P50 }, func(m *domain.MetricPercentiles, v float64) { m.P50 = v }},
	{75, func(g domain.MetricGroup) float64 { return g.P75 }, func(m *domain.MetricPercentiles, v float64) { m.P75 = v }},
	{90, func(g domain.MetricGroup) float64 { return g.P90 }, func(m *domain.MetricPercentiles, v float64) { m.P90 = v }},
}

// ComputeMarketData aggregates each metric's percentile columns independently
// across rows. Zero values are excluded from the pools, so rows whose metric
// groups are entirely unmapped contribute nothing.
//
// The simple method takes the nearest-rank percentile of the pooled column at
// the column's own level (the output p50 is the 50th percentile of all rows'
// p50 values). The weighted method averages the pool with n_incumbents
// weights. Both aggregate survey-level percentiles, not incumbents; this
// aggregation-of-aggregates is an accepted limitation of survey data.
func ComputeMarketData(rows []domain.CanonicalRow, method domain.AggregationMethod) domain.MarketData {
	md := domain.MarketData{RowCount: len(rows)}
	for _, metric := range domain.AllMetrics() {
		var out domain.MetricPercentiles
		for _, col := range percentileColumns {
			values := make([]float64, 0, len(rows))
			weights := make([]float64, 0, len(rows))
			for i := range rows {
				g := rows[i].Metric(metric)
				v := col.get(g)
				if v == 0 {
					continue
				}
				values = append(values, v)
				weights = append(weights, g.NIncumbents)
			}
			switch method {
			case domain.AggregationWeighted:
				col.set(&out, WeightedAverage(values, weights))
			default:
				col.set(&out, Percentile(values, col.p))
			}
		}
		md.SetMetric(metric, out)
	}
	return md
}
