package registry

// Model describes one selectable chat endpoint.
type Model struct {
	Id          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Tags        []string `json:"tags,omitempty"`
	Provider    string   `json:"provider"` // "openai" | "ollama"
	Upstream    string   `json:"-"`        // model name on the provider side
}

// Registry is the static list of models the portal exposes.
type Registry struct {
	models []Model
	byId   map[string]Model
}

func New(models []Model) *Registry {
	byId := make(map[string]Model, len(models))
	for _, m := range models {
		byId[m.Id] = m
	}
	return &Registry{models: models, byId: byId}
}

// DefaultModels is the built-in selection. Config may replace it.
func DefaultModels() []Model {
	return []Model{
		{Id: "gpt-4o-mini", DisplayName: "GPT-4o mini", Tags: []string{"fast", "general"}, Provider: "openai", Upstream: "gpt-4o-mini"},
		{Id: "gpt-4o", DisplayName: "GPT-4o", Tags: []string{"quality"}, Provider: "openai", Upstream: "gpt-4o"},
		{Id: "llama3", DisplayName: "Llama 3 (local)", Tags: []string{"local"}, Provider: "ollama", Upstream: "llama3"},
		{Id: "qwen2.5", DisplayName: "Qwen 2.5 (local)", Tags: []string{"local"}, Provider: "ollama", Upstream: "qwen2.5"},
	}
}

func (r *Registry) List() []Model {
	out := make([]Model, len(r.models))
	copy(out, r.models)
	return out
}

func (r *Registry) Lookup(id string) (Model, bool) {
	m, ok := r.byId[id]
	return m, ok
}

func (r *Registry) Has(id string) bool {
	_, ok := r.byId[id]
	return ok
}
