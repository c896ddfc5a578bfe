// Package dataprocessing is the normalization boundary between raw,
// heterogeneous survey uploads and the canonical row schema the benchmark
// engine computes over. Raw key-value rows with arbitrary column names enter;
// typed CanonicalRow values leave. Untyped maps never propagate further.
package dataprocessing
