// Package storage defines the provider store contract shared across
// storage adapter implementations, plus the sentinel errors they return.
//
// Three adapters implement ProviderStore: memory (tests, lightweight
// deployments), sqlite (the default single-node backing store), and
// postgres (shared deployments). Adapters serialize mutations per record
// so concurrent updates never lose writes; reads proceed concurrently.
package storage
