// Package services implements the business logic layer of the benchmark
// server. It sits between the HTTP handlers and the survey store, keeping
// business rules centralized and testable.
//
// # Services
//
//   - BenchmarkService: loads and caches the normalized dataset, derives
//     filter options, and computes market data, percentile ranks, and blends.
//   - MappingService: owns specialty mapping mutations and the auto-map
//     batch; every successful mutation clears the benchmark cache and
//     notifies the refresh hub.
//   - HealthService: liveness, readiness, and version reporting.
//
// # Conventions
//
// Services receive their dependencies through constructors: the store
// interfaces, the dataset cache, and a *slog.Logger. Optional dependencies
// (metrics recorder, refresh notifier, retry policy) arrive as functional
// options. Context flows through every operation that touches the store.
//
// Computation stays in internal/benchmark and internal/specialty; services
// orchestrate I/O, caching, and retries around it. Zero matching rows is a
// state, not an error: only store failures surface as errors.
package services
