package llm

import (
	"context"
	"net/http"
)

type deepseekBackend struct {
	baseURL string
}

func newDeepSeekBackend() *deepseekBackend {
	return &deepseekBackend{baseURL: "https://api.deepseek.com"}
}

func (d *deepseekBackend) ID() string           { return "deepseek" }
func (d *deepseekBackend) DefaultModel() string { return "deepseek-chat" }
func (d *deepseekBackend) RequiresKey() bool    { return true }

func (d *deepseekBackend) BuildRequest(ctx context.Context, apiKey, model, prompt string) (*http.Request, error) {
	return buildChatRequest(ctx, d.baseURL+"/v1/chat/completions", apiKey, model, prompt)
}

func (d *deepseekBackend) ParseResponse(status int, body []byte) (string, error) {
	return parseChatResponse(d.ID(), status, body)
}
