// Package transport defines the handler interfaces and HTTP middleware
// for the warren gateway transport layer.
//
// The transport layer bridges external clients and the gateway facade.
// It deserializes incoming requests into the types defined in pkg/api,
// dispatches them to the Service implementation, and serializes results
// and structured errors back to the client as JSON.
//
// # Handler Interfaces
//
// Two interfaces define the contract between the transport layer and the
// gateway facade:
//
//   - ProviderService covers provider registration, retrieval, update,
//     deletion, and the catalog lookup.
//   - CompletionService covers completion dispatch, token counting, and
//     the model listings.
//
// Service combines both plus the health check. The gateway facade in
// pkg/gateway implements it.
//
// # Middleware
//
// Middleware wraps http.Handler with cross-cutting concerns. Built-in
// middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog. HTTP serving uses
// net/http with Go 1.22+ ServeMux routing patterns.
package transport
