// Package auth provides pluggable authentication for the warren gateway
// API surface.
//
// Authentication uses a chain-of-responsibility pattern with
// three-outcome voting: each authenticator returns Yes (identity found),
// No (credentials invalid), or Abstain (can't handle). A configurable
// default voter decides when all authenticators abstain.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from the
// gateway facade. Note that this protects warren's own API; provider
// credentials for backend dispatch live in pkg/keyring and are
// unrelated.
package auth
