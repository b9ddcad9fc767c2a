package provider

import (
	"strings"
	"testing"
)

func TestInTreeRegistry(t *testing.T) {
	r := NewInTreeRegistry()

	for _, name := range []string{"openai", "anthropic", "claude", "ollama", "gemini", "deepseek", "qwen", "glm", "kimi"} {
		if !r.Has(name) {
			t.Errorf("expected %q to be registered", name)
		}
	}

	factory, err := r.Get("OpenAI")
	if err != nil {
		t.Fatalf("lookup should be case-insensitive: %v", err)
	}
	if got := factory().Name(); got != "openai" {
		t.Errorf("Name() = %q, want openai", got)
	}
}

func TestRegistryUnknownListsSupported(t *testing.T) {
	r := NewInTreeRegistry()
	_, err := r.Get("mystery")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "openai") || !strings.Contains(err.Error(), "mystery") {
		t.Errorf("error should name the provider and the supported list: %v", err)
	}
}

func TestRegistryDuplicateAndMerge(t *testing.T) {
	a := NewInTreeRegistry()
	if err := a.Register("OPENAI", nil); err == nil {
		t.Error("duplicate registration should fail regardless of case")
	}

	b := NewRegistry()
	if err := b.Merge(a); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if b.Len() != a.Len() {
		t.Errorf("merged Len = %d, want %d", b.Len(), a.Len())
	}
	if err := b.Merge(a); err == nil {
		t.Error("merging twice should report a duplicate")
	}
}
