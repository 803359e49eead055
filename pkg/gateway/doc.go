// Package gateway is the service facade composing the provider store,
// the known-provider catalog, the credential keyring, and the dispatch
// backend. Transport handlers call into it and translate its structured
// errors to HTTP; the facade itself is transport-agnostic.
package gateway
