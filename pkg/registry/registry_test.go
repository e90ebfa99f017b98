package registry

import (
	"testing"
)

func TestLookup(t *testing.T) {
	reg := New([]Model{
		{Id: "gpt-4o", DisplayName: "GPT-4o", Provider: "openai", Upstream: "gpt-4o"},
		{Id: "llama3", DisplayName: "Llama 3", Provider: "ollama", Upstream: "llama3"},
	})

	m, ok := reg.Lookup("llama3")
	if !ok {
		t.Fatal("expected llama3 to resolve")
	}
	if m.Provider != "ollama" {
		t.Errorf("provider = %q, want ollama", m.Provider)
	}

	if _, ok := reg.Lookup("claude-3"); ok {
		t.Error("unknown id should not resolve")
	}
	if reg.Has("claude-3") {
		t.Error("Has should reject unknown id")
	}
}

func TestListIsACopy(t *testing.T) {
	reg := New(DefaultModels())

	list := reg.List()
	if len(list) == 0 {
		t.Fatal("default catalog is empty")
	}
	list[0].Id = "mutated"

	if reg.List()[0].Id == "mutated" {
		t.Error("List must not expose internal storage")
	}
}
