// Package http implements HTTP request handlers for the benchmark server.
// It provides a thin layer between HTTP transport and business logic: handlers
// parse and validate requests, delegate to the service layer, and render
// responses.
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Store
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "validation_error",
//	    "title": "Invalid request data",
//	    "status": 400,
//	    "detail": "fte must be between 0 and 1",
//	    "instance": "/api/benchmark/market-data"
//	}
//
// # WebSocket Support
//
// The websocket handler upgrades the connection with Gorilla WebSocket and
// registers the client with the refresh hub, which broadcasts dataset and
// mapping change events so consuming UIs re-fetch.
//
// # Testing
//
// Handlers are tested with httptest against real services backed by the
// in-memory store.
package http
