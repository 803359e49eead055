package keyring

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/rabbithole-ai/warren/pkg/api"
)

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"openai", "OPENAI_API_KEY"},
		{"OpenRouter", "OPENROUTER_API_KEY"},
		{"my-custom-llm", "MY-CUSTOM-LLM_API_KEY"},
	}
	for _, tt := range tests {
		if got := DeriveKey(tt.name); got != tt.want {
			t.Errorf("DeriveKey(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSyncAndLookup(t *testing.T) {
	k := New()
	k.Sync([]api.Provider{
		{ProviderName: "openai", APIKey: "k1"},
		{ProviderName: "anthropic", APIKey: "k2"},
	})

	if got, ok := k.Lookup("OPENAI_API_KEY"); !ok || got != "k1" {
		t.Errorf("Lookup(OPENAI_API_KEY) = %q, %v", got, ok)
	}
	if got, ok := k.Lookup("ANTHROPIC_API_KEY"); !ok || got != "k2" {
		t.Errorf("Lookup(ANTHROPIC_API_KEY) = %q, %v", got, ok)
	}
	if _, ok := k.Lookup("MISSING_API_KEY"); ok {
		t.Error("Lookup of unknown key should miss")
	}
}

func TestSyncIdempotent(t *testing.T) {
	providers := []api.Provider{
		{ProviderName: "openai", APIKey: "k1"},
		{ProviderName: "mistral", APIKey: "k3"},
	}

	k := New()
	k.Sync(providers)
	first := k.Snapshot()

	k.Sync(providers)
	second := k.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second sync changed contents: %v vs %v", first, second)
	}
}

func TestSyncRemovesStaleEntries(t *testing.T) {
	k := New()
	k.Sync([]api.Provider{{ProviderName: "openai", APIKey: "k1"}})
	k.Sync([]api.Provider{{ProviderName: "anthropic", APIKey: "k2"}})

	if _, ok := k.Lookup("OPENAI_API_KEY"); ok {
		t.Error("stale entry survived resync")
	}
	if _, ok := k.Lookup("ANTHROPIC_API_KEY"); !ok {
		t.Error("new entry missing after resync")
	}
}

func TestSyncEmptyTable(t *testing.T) {
	k := New()
	k.Sync(nil)
	if k.Len() != 0 {
		t.Errorf("Len = %d, want 0", k.Len())
	}
}

func TestSyncSkipsProvidersWithoutCredential(t *testing.T) {
	k := New()
	k.Sync([]api.Provider{{ProviderName: "openai"}})
	if _, ok := k.Lookup("OPENAI_API_KEY"); ok {
		t.Error("provider without credential should contribute no entry")
	}
}

func TestConcurrentSyncAndLookup(t *testing.T) {
	k := New()
	k.Sync([]api.Provider{{ProviderName: "openai", APIKey: "old"}})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			k.Sync([]api.Provider{{ProviderName: "openai", APIKey: fmt.Sprintf("v%d", n)}})
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Must always observe a complete value, never an empty map
			// entry mid-write.
			if v, ok := k.Lookup("OPENAI_API_KEY"); ok && v == "" {
				t.Error("observed half-written credential")
			}
		}()
	}
	wg.Wait()
}
