// Package app provides application initialization and lifecycle management
// for the benchmark server. It wires configuration, logging, observability,
// the survey store, services, and HTTP transport together at startup and
// handles graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and OpenTelemetry
//	3. Create the dataset cache and websocket refresh hub
//	4. Initialize services with their dependencies
//	5. Set up HTTP handlers and middleware
//	6. Configure and start the HTTP server
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication(st)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The package handles SIGINT and SIGTERM signals to ensure active requests
// complete, websocket connections close cleanly, and final telemetry is
// flushed. Initialization errors are returned to the caller; the package
// never calls os.Exit() directly.
package app
