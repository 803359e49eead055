// Package keyring keeps provider credentials available to the dispatch
// layer under derived keys of the form UPPER(provider_name) + "_API_KEY".
//
// The keyring is an owned, lock-protected map passed by reference into
// the dispatcher. Credentials are never written to the process
// environment, so nothing leaks across requests through ambient global
// state.
package keyring

import (
	"strings"
	"sync"

	"github.com/rabbithole-ai/warren/pkg/api"
)

// Suffix appended to the upper-cased provider name to form the derived
// credential key.
const Suffix = "_API_KEY"

// DeriveKey returns the credential key for a provider name.
func DeriveKey(providerName string) string {
	return strings.ToUpper(providerName) + Suffix
}

// Keyring is a lock-protected map from derived key to credential.
// Sync replaces the whole map atomically, so a concurrent Lookup sees
// either the pre-sync or the post-sync value for a key, never a
// partially written set.
type Keyring struct {
	mu   sync.RWMutex
	keys map[string]string
}

// New creates an empty keyring.
func New() *Keyring {
	return &Keyring{keys: map[string]string{}}
}

// Sync rebuilds the keyring from the full provider table. It is
// idempotent: running it twice with the same input leaves the same
// contents. An empty provider list yields an empty keyring, not an
// error. Providers without a credential contribute no entry.
func (k *Keyring) Sync(providers []api.Provider) {
	next := make(map[string]string, len(providers))
	for _, p := range providers {
		if p.APIKey == "" {
			continue
		}
		next[DeriveKey(p.ProviderName)] = p.APIKey
	}

	k.mu.Lock()
	k.keys = next
	k.mu.Unlock()
}

// Lookup returns the credential stored under the derived key.
func (k *Keyring) Lookup(key string) (string, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.keys[key]
	return v, ok
}

// Len returns the number of stored credentials.
func (k *Keyring) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys)
}

// Snapshot returns a copy of the current contents. Intended for tests
// and diagnostics; the returned map is detached from the keyring.
func (k *Keyring) Snapshot() map[string]string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make(map[string]string, len(k.keys))
	for key, v := range k.keys {
		out[key] = v
	}
	return out
}
