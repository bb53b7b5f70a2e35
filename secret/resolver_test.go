package secret

import (
	"context"
	"strings"
	"testing"
)

func TestParseSecretRef(t *testing.T) {
	provider, ref, ok := ParseSecretRef("secretref:vault:kv/openai/api_key")
	if !ok {
		t.Fatal("expected secretref to parse")
	}
	if provider != "vault" || ref != "kv/openai/api_key" {
		t.Errorf("parsed (%q, %q), want (vault, kv/openai/api_key)", provider, ref)
	}

	if _, _, ok := ParseSecretRef("sk-plaintext-key"); ok {
		t.Error("plain value should not parse as a secretref")
	}
	if _, _, ok := ParseSecretRef("secretref:missingref"); ok {
		t.Error("secretref without provider:ref should not parse")
	}
}

func TestResolver_ResolvesFullSecretRef(t *testing.T) {
	r := NewResolver(true, NewStaticProvider("vault", map[string]string{
		"kv/openai/api_key": "sk-resolved",
	}))

	got, err := r.ResolveValue(context.Background(), "secretref:vault:kv/openai/api_key")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "sk-resolved" {
		t.Errorf("ResolveValue() = %q, want sk-resolved", got)
	}
}

func TestResolver_ResolvesInlineSecretRef(t *testing.T) {
	r := NewResolver(true, NewStaticProvider("vault", map[string]string{
		"kv/openai/api_key": "sk-resolved",
	}))

	got, err := r.ResolveValue(context.Background(), "Bearer secretref:vault:kv/openai/api_key")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "Bearer sk-resolved" {
		t.Errorf("ResolveValue() = %q, want Bearer sk-resolved", got)
	}
}

func TestResolver_ResolveMap(t *testing.T) {
	t.Setenv("MODEL_NAME", "gpt-4")
	r := NewResolver(true, NewStaticProvider("vault", map[string]string{
		"kv/openai/api_key": "sk-resolved",
	}))

	got, err := r.ResolveMap(context.Background(), map[string]string{
		"model":   "${MODEL_NAME}",
		"api_key": "secretref:vault:kv/openai/api_key",
	})
	if err != nil {
		t.Fatalf("ResolveMap() error = %v", err)
	}
	if got["model"] != "gpt-4" {
		t.Errorf("model = %q, want gpt-4", got["model"])
	}
	if got["api_key"] != "sk-resolved" {
		t.Errorf("api_key = %q, want sk-resolved", got["api_key"])
	}
}

func TestResolver_UnregisteredProvider(t *testing.T) {
	r := NewResolver(true)

	if _, err := r.ResolveValue(context.Background(), "secretref:vault:kv/x"); err == nil {
		t.Error("unregistered provider should error")
	}
}

func TestResolver_StrictEmptyProviderValueErrors(t *testing.T) {
	r := NewResolver(true, NewStaticProvider("vault", map[string]string{"empty": ""}))

	if _, err := r.ResolveValue(context.Background(), "secretref:vault:empty"); err == nil {
		t.Error("strict resolver should reject empty secret value")
	}
}

func TestResolver_ProviderErrorPropagates(t *testing.T) {
	r := NewResolver(true, NewStaticProvider("vault", nil))

	_, err := r.ResolveValue(context.Background(), "secretref:vault:boom")
	if err == nil {
		t.Fatal("expected error for missing secret")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should name the missing ref, got: %v", err)
	}
}
