package benchmark

import (
	"math"

	"surveybench/pkg/contracts/domain"
)

// PercentileRank locates value within the market distribution by
// piecewise-linear interpolation across the synthesized control points
// p0 (explicit or 0), p25, p50, p75, p90, p100 (explicit or p90+(p90-p75)).
//
// Below p25 the p0-p25 segment extrapolates; above p90 the p90-p100 segment
// extrapolates. The result is not clamped to [0,100] in the extrapolated
// regions. Equal-valued brackets return the lower percentile. The second
// return is false when the market is empty or the value is not a number.
func PercentileRank(market domain.MetricPercentiles, value float64) (float64, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	if market.IsZero() {
		return 0, false
	}

	p0 := 0.0
	if market.P0 != nil {
		p0 = *market.P0
	}
	p100 := market.P90 + (market.P90 - market.P75)
	if market.P100 != nil {
		p100 = *market.P100
	}

	points := []struct{ pct, val float64 }{
		{0, p0}, {25, market.P25}, {50, market.P50}, {75, market.P75}, {90, market.P90}, {100, p100},
	}

	// Extrapolated regions reuse the end segments.
	if value < points[1].val {
		return interpolate(points[0].pct, points[0].val, points[1].pct, points[1].val, value), true
	}
	if value > points[4].val {
		return interpolate(points[4].pct, points[4].val, points[5].pct, points[5].val, value), true
	}
	for i := 1; i < 4; i++ {
		if value >= points[i].val && value <= points[i+1].val {
			return interpolate(points[i].pct, points[i].val, points[i+1].pct, points[i+1].val, value), true
		}
	}
	// Non-monotonic market data; treat as the 90th-percentile boundary.
	return points[4].pct, true
}

// interpolate maps value from the [v0,v1] segment onto [pct0,pct1].
// A degenerate segment returns the lower percentile, avoiding a zero divide.
func interpolate(pct0, v0, pct1, v1, value float64) float64 {
	if v1 == v0 {
		return pct0
	}
	return pct0 + (value-v0)/(v1-v0)*(pct1-pct0)
}

// AdjustForFTE normalizes a user's compensation or productivity value to
// 1.0 FTE before rank lookup. Conversion factor is a per-unit-of-work rate
// and is never adjusted. FTE values outside (0,1] are treated as full time.
func AdjustForFTE(value, fte float64, metric domain.Metric) float64 {
	if metric == domain.MetricCF {
		return value
	}
	if fte <= 0 || fte > 1 || math.IsNaN(fte) {
		fte = 1
	}
	return value / fte
}

// CallPayMode selects which side of a rank lookup a call-pay adjustment
// applies to. The modes are mutually exclusive; an adjustment never touches
// both the user value and the market percentiles.
type CallPayMode string

const (
	// CallPayAdjustNone leaves both sides untouched.
	CallPayAdjustNone CallPayMode = ""
	// CallPayAdjustValue scales the raw user value before rank lookup.
	CallPayAdjustValue CallPayMode = "value"
	// CallPayAdjustMarket scales the market percentiles instead.
	CallPayAdjustMarket CallPayMode = "market"
)

// CallPayAdjustment is an optional premium/multiplier for call-pay rank
// lookups.
type CallPayAdjustment struct {
	Mode       CallPayMode `json:"mode" validate:"omitempty,oneof=value market"`
	Multiplier float64     `json:"multiplier"`
	Premium    float64     `json:"premium"`
}

// Apply returns the adjusted (value, market) pair. Exactly one side changes,
// per Mode. A non-positive multiplier means no scaling.
func (a CallPayAdjustment) Apply(value float64, market domain.MetricPercentiles) (float64, domain.MetricPercentiles) {
	mult := a.Multiplier
	if mult <= 0 {
		mult = 1
	}
	switch a.Mode {
	case CallPayAdjustValue:
		return value*mult + a.Premium, market
	case CallPayAdjustMarket:
		adjusted := domain.MetricPercentiles{
			P25: market.P25*mult + a.Premium,
			P50: market.P50*mult + a.Premium,
			P75: market.P75*mult + a.Premium,
			P90: market.P90*mult + a.Premium,
		}
		if market.P0 != nil {
			v := *market.P0*mult + a.Premium
			adjusted.P0 = &v
		}
		if market.P100 != nil {
			v := *market.P100*mult + a.Premium
			adjusted.P100 = &v
		}
		return value, adjusted
	}
	return value, market
}

// BlendComponent pairs one specialty's market data with its blend weight.
type BlendComponent struct {
	Specialty string            `json:"specialty"`
	Market    domain.MarketData `json:"market"`
	Weight    float64           `json:"weight" validate:"min=0"`
}

// BlendMarketData combines multiple specialties' market data into one
// synthesized MarketData using the supplied weights. A zero total weight
// returns the zero MarketData.
func BlendMarketData(components []BlendComponent) domain.MarketData {
	var total float64
	for _, c := range components {
		total += c.Weight
	}
	var blended domain.MarketData
	if total == 0 {
		return blended
	}
	for _, metric := range domain.AllMetrics() {
		var out domain.MetricPercentiles
		for _, c := range components {
			m := c.Market.Metric(metric)
			w := c.Weight / total
			out.P25 += m.P25 * w
			out.P50 += m.P50 * w
			out.P75 += m.P75 * w
			out.P90 += m.P90 * w
		}
		blended.SetMetric(metric, out)
	}
	for _, c := range components {
		blended.RowCount += c.Market.RowCount
	}
	return blended
}
