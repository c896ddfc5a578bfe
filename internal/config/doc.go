// Package config provides centralized configuration management for the
// benchmark service. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration values
// throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SURVEYBENCH_* for namespacing:
//
//	SURVEYBENCH_SERVER_PORT=8080
//	SURVEYBENCH_LOGGING_LEVEL=info
//	SURVEYBENCH_BENCHMARK_CACHE_TTL=24h
//	SURVEYBENCH_BENCHMARK_CONFIDENCE_THRESHOLD=0.8
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
