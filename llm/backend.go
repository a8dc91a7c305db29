package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/newsgap/newsgap/apperr"
)

// Backend is one external AI provider. Each variant owns its endpoint,
// auth header shape and wire schema; callers stay agnostic.
type Backend interface {
	ID() string
	DefaultModel() string
	RequiresKey() bool
	BuildRequest(ctx context.Context, apiKey, model, prompt string) (*http.Request, error)
	ParseResponse(status int, body []byte) (string, error)
}

// BackendError identifies a provider-side failure: a non-success HTTP
// status or a response missing the expected content path.
type BackendError struct {
	Provider string
	Status   int
	Msg      string
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s API error: status %d: %s", e.Provider, e.Status, e.Msg)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Msg)
}

// ModelInfo describes a selectable model for the settings surface.
type ModelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BackendInfo describes one registered backend for the settings surface.
type BackendInfo struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	RequiresAPIKey bool        `json:"requires_api_key"`
	Models         []ModelInfo `json:"models"`
}

// Registry is the closed set of known backends. Adding a provider means
// adding a variant here, not editing a conditional.
type Registry struct {
	backends map[string]Backend
	order    []string
}

// NewRegistry wires the default variant set. ollamaHost points local
// generation at a configurable daemon.
func NewRegistry(ollamaHost string) *Registry {
	r := &Registry{backends: make(map[string]Backend)}
	r.register(newGeminiBackend())
	r.register(newDeepSeekBackend())
	r.register(newOpenAIBackend())
	r.register(newOllamaBackend(ollamaHost))
	return r
}

func (r *Registry) register(b Backend) {
	r.backends[b.ID()] = b
	r.order = append(r.order, b.ID())
}

// Lookup resolves a backend id; unknown ids are a configuration error.
func (r *Registry) Lookup(id string) (Backend, error) {
	b, ok := r.backends[id]
	if !ok {
		return nil, apperr.New(apperr.KindConfiguration, "unknown LLM backend %q", id)
	}
	return b, nil
}

// IDs returns the registered backend ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Describe lists the registered backends for the settings surface.
func (r *Registry) Describe() []BackendInfo {
	infos := make([]BackendInfo, 0, len(r.order))
	for _, id := range r.order {
		infos = append(infos, describe(r.backends[id]))
	}
	return infos
}

func describe(b Backend) BackendInfo {
	switch b.ID() {
	case "gemini":
		return BackendInfo{
			ID: "gemini", Name: "Google Gemini", RequiresAPIKey: true,
			Models: []ModelInfo{
				{ID: "gemini-2.0-flash-exp", Name: "Gemini 2.0 Flash"},
				{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro"},
				{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash"},
			},
		}
	case "deepseek":
		return BackendInfo{
			ID: "deepseek", Name: "DeepSeek", RequiresAPIKey: true,
			Models: []ModelInfo{
				{ID: "deepseek-chat", Name: "DeepSeek Chat"},
				{ID: "deepseek-coder", Name: "DeepSeek Coder"},
			},
		}
	case "openai":
		return BackendInfo{
			ID: "openai", Name: "OpenAI", RequiresAPIKey: true,
			Models: []ModelInfo{
				{ID: "gpt-4o", Name: "GPT-4o"},
				{ID: "gpt-4o-mini", Name: "GPT-4o Mini"},
				{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo"},
			},
		}
	case "ollama":
		return BackendInfo{
			ID: "ollama", Name: "Ollama (local)", RequiresAPIKey: false,
			Models: []ModelInfo{
				{ID: "llama3.1", Name: "Llama 3.1"},
				{ID: "qwen2.5", Name: "Qwen 2.5"},
			},
		}
	default:
		return BackendInfo{ID: b.ID(), Name: b.ID(), RequiresAPIKey: b.RequiresKey()}
	}
}
