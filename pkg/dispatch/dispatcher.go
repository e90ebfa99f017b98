package dispatch

import (
	"context"
	"fmt"

	"ai-traininglab-be/pkg/llm"
	"ai-traininglab-be/pkg/registry"
)

// Dispatcher adapts a (model id, history, options) triple into one
// round trip against a chat-completion endpoint. It never retries; a
// failure surfaces immediately as a classified *Error.
type Dispatcher interface {
	Dispatch(ctx context.Context, modelId string, history []llm.Message, opts ...llm.Option) (string, error)
}

// Relay routes dispatches through the model registry to the provider
// configured for the model's backend kind.
type Relay struct {
	registry  *registry.Registry
	providers map[string]llm.LLMProvider // keyed by registry.Model.Provider
}

var _ Dispatcher = &Relay{}

func NewRelay(reg *registry.Registry, providers map[string]llm.LLMProvider) *Relay {
	return &Relay{
		registry:  reg,
		providers: providers,
	}
}

func (r *Relay) Dispatch(ctx context.Context, modelId string, history []llm.Message, opts ...llm.Option) (string, error) {
	model, ok := r.registry.Lookup(modelId)
	if !ok {
		return "", &Error{Kind: KindUnclassified, ModelId: modelId, Detail: "model not in registry"}
	}

	provider, ok := r.providers[model.Provider]
	if !ok {
		return "", &Error{Kind: KindUnclassified, ModelId: modelId, Detail: fmt.Sprintf("no provider for backend %q", model.Provider)}
	}

	opts = append(opts, llm.WithModel(model.Upstream))
	reply, err := provider.Chat(ctx, history, opts...)
	if err != nil {
		return "", Classify(modelId, err)
	}
	return reply, nil
}
