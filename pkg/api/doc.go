// Package api defines the core data model for the warren provider gateway.
//
// This package provides the types shared across the gateway: provider
// records and their public (credential-redacted) views, merge-patch
// updates, completion requests, and the structured error taxonomy.
//
// The package has zero external dependencies (Go standard library only)
// and performs no I/O. All types produce JSON compatible with the
// gateway's HTTP wire format.
//
// Core types:
//   - [Provider]: A registered backend LLM service with credential and dialect metadata
//   - [ProviderPublic]: Caller-facing provider view with the credential omitted
//   - [ProviderPatch]: Merge-patch update where only supplied fields overwrite
//   - [CompletionRequest]: Uniform chat-completion request with a provider reference
//   - [APIError]: Structured error with type, param, and message
package api
