package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// ollamaBackend talks to a local Ollama daemon; no credential needed.
type ollamaBackend struct {
	baseURL string
}

func newOllamaBackend(host string) *ollamaBackend {
	if host == "" {
		host = "http://localhost:11434"
	}
	return &ollamaBackend{baseURL: host}
}

func (o *ollamaBackend) ID() string           { return "ollama" }
func (o *ollamaBackend) DefaultModel() string { return "llama3.1" }
func (o *ollamaBackend) RequiresKey() bool    { return false }

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (o *ollamaBackend) BuildRequest(ctx context.Context, _ string, model, prompt string) (*http.Request, error) {
	body, err := json.Marshal(ollamaRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (o *ollamaBackend) ParseResponse(status int, body []byte) (string, error) {
	if status != http.StatusOK {
		return "", &BackendError{Provider: o.ID(), Status: status, Msg: trimBody(body)}
	}
	var resp ollamaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &BackendError{Provider: o.ID(), Msg: "malformed response: " + err.Error()}
	}
	if resp.Response == "" {
		return "", &BackendError{Provider: o.ID(), Msg: "empty response field"}
	}
	return resp.Response, nil
}
