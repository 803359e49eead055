// Package dispatch rewrites uniform completion requests into the
// provider-specific wire shape and sends them to the external completion
// backend.
//
// Translate is a pure function: it prefixes the model with the provider
// dialect, appends the optional endpoint suffix verbatim, and carries
// the base-URL override only when one is set. The Client then performs
// the HTTP call, resolving the provider credential from the keyring and
// normalizing every failure into a structured APIError. Raw backend
// errors never cross this boundary.
package dispatch
