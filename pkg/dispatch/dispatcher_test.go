package dispatch

import (
	"context"
	"testing"

	"ai-traininglab-be/pkg/llm"
	"ai-traininglab-be/pkg/registry"
)

type stubProvider struct {
	lastModel string
	reply     string
	err       error
}

func (s *stubProvider) Chat(_ context.Context, _ []llm.Message, opts ...llm.Option) (string, error) {
	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}
	s.lastModel = options.Model
	return s.reply, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func testRegistry() *registry.Registry {
	return registry.New([]registry.Model{
		{Id: "fast", DisplayName: "Fast", Provider: "openai", Upstream: "gpt-4o-mini"},
		{Id: "local", DisplayName: "Local", Provider: "ollama", Upstream: "llama3"},
	})
}

func TestRelayRoutesToProviderAndRewritesModel(t *testing.T) {
	stub := &stubProvider{reply: "hello"}
	relay := NewRelay(testRegistry(), map[string]llm.LLMProvider{"openai": stub})

	reply, err := relay.Dispatch(context.Background(), "fast", []llm.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "hello" {
		t.Errorf("reply = %q, want %q", reply, "hello")
	}
	if stub.lastModel != "gpt-4o-mini" {
		t.Errorf("upstream model = %q, want %q", stub.lastModel, "gpt-4o-mini")
	}
}

func TestRelayUnknownModel(t *testing.T) {
	relay := NewRelay(testRegistry(), map[string]llm.LLMProvider{})

	_, err := relay.Dispatch(context.Background(), "nope", nil)
	dispErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if dispErr.Kind != KindUnclassified {
		t.Errorf("Kind = %s, want %s", dispErr.Kind, KindUnclassified)
	}
}

func TestRelayClassifiesProviderFailure(t *testing.T) {
	stub := &stubProvider{err: &llm.StatusError{StatusCode: 429, Body: "rate limit"}}
	relay := NewRelay(testRegistry(), map[string]llm.LLMProvider{"ollama": stub})

	_, err := relay.Dispatch(context.Background(), "local", nil)
	dispErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if dispErr.Kind != KindRateLimited {
		t.Errorf("Kind = %s, want %s", dispErr.Kind, KindRateLimited)
	}
}
