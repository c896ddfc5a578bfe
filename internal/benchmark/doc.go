// Package benchmark computes percentile benchmarks over canonical survey
// rows: cascading filters, pooled percentile statistics (simple or
// incumbent-weighted), percentile-rank interpolation, FTE and call-pay
// adjustments, and specialty blending.
//
// The package is pure computation over in-memory collections. It performs no
// I/O, holds no state, and returns zero values rather than errors when data
// is missing; "no market data" is a state the caller renders, not a failure.
package benchmark
