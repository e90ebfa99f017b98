package dispatch

import (
	"errors"
	"fmt"
	"testing"

	"ai-traininglab-be/pkg/llm"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
	}{
		{
			name:     "401 maps to authentication",
			err:      &llm.StatusError{StatusCode: 401, Body: "invalid api key"},
			wantKind: KindAuthentication,
		},
		{
			name:     "403 maps to permission denied",
			err:      &llm.StatusError{StatusCode: 403, Body: "insufficient scope"},
			wantKind: KindPermissionDenied,
		},
		{
			name:     "429 maps to rate limited",
			err:      &llm.StatusError{StatusCode: 429, Body: "slow down"},
			wantKind: KindRateLimited,
		},
		{
			name:     "500 falls back to unclassified",
			err:      &llm.StatusError{StatusCode: 500, Body: "boom"},
			wantKind: KindUnclassified,
		},
		{
			name:     "wrapped status error still classified",
			err:      fmt.Errorf("chat: %w", &llm.StatusError{StatusCode: 429, Body: "limit"}),
			wantKind: KindRateLimited,
		},
		{
			name:     "connection refused is network",
			err:      errors.New("dial tcp 127.0.0.1:11434: connection refused"),
			wantKind: KindNetwork,
		},
		{
			name:     "dns failure is network",
			err:      errors.New("lookup api.example.com: no such host"),
			wantKind: KindNetwork,
		},
		{
			name:     "context deadline is network",
			err:      errors.New("context deadline exceeded"),
			wantKind: KindNetwork,
		},
		{
			name:     "anything else is unclassified",
			err:      errors.New("unmarshal response: unexpected token"),
			wantKind: KindUnclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("model-x", tt.err)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", got.Kind, tt.wantKind)
			}
			if got.ModelId != "model-x" {
				t.Errorf("ModelId = %q, want %q", got.ModelId, "model-x")
			}
		})
	}
}

func TestUserMessageDistinguishesProjectCredential(t *testing.T) {
	projErr := &Error{Kind: KindAuthentication, Detail: "project key disabled"}
	userErr := &Error{Kind: KindAuthentication, Detail: "invalid api key"}

	if projErr.UserMessage() == userErr.UserMessage() {
		t.Error("project-scoped and user-scoped credential failures should produce different messages")
	}
}

func TestUserMessageCoversAllKinds(t *testing.T) {
	kinds := []Kind{KindAuthentication, KindRateLimited, KindPermissionDenied, KindNetwork, KindUnclassified}
	seen := make(map[string]bool)
	for _, k := range kinds {
		msg := (&Error{Kind: k}).UserMessage()
		if msg == "" {
			t.Errorf("empty user message for kind %s", k)
		}
		seen[msg] = true
	}
	if len(seen) != len(kinds) {
		t.Errorf("expected %d distinct messages, got %d", len(kinds), len(seen))
	}
}
