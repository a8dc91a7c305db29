package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

const analystSystemPrompt = "You are a professional intelligence analyst, skilled at isolating the few signals that matter from a flood of information."

// chatRequest is the OpenAI-compatible chat-completions wire shape, shared
// by the openai and deepseek variants.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func buildChatRequest(ctx context.Context, url, apiKey, model, prompt string) (*http.Request, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: analystSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   8000,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	return req, nil
}

func parseChatResponse(provider string, status int, body []byte) (string, error) {
	if status != http.StatusOK {
		return "", &BackendError{Provider: provider, Status: status, Msg: trimBody(body)}
	}
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &BackendError{Provider: provider, Msg: "malformed response: " + err.Error()}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &BackendError{Provider: provider, Msg: "response missing message content"}
	}
	return resp.Choices[0].Message.Content, nil
}

func trimBody(body []byte) string {
	const max = 512
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}

type openaiBackend struct {
	baseURL string
}

func newOpenAIBackend() *openaiBackend {
	return &openaiBackend{baseURL: "https://api.openai.com"}
}

func (o *openaiBackend) ID() string           { return "openai" }
func (o *openaiBackend) DefaultModel() string { return "gpt-4o-mini" }
func (o *openaiBackend) RequiresKey() bool    { return true }

func (o *openaiBackend) BuildRequest(ctx context.Context, apiKey, model, prompt string) (*http.Request, error) {
	return buildChatRequest(ctx, o.baseURL+"/v1/chat/completions", apiKey, model, prompt)
}

func (o *openaiBackend) ParseResponse(status int, body []byte) (string, error) {
	return parseChatResponse(o.ID(), status, body)
}
