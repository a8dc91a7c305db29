package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type geminiBackend struct {
	baseURL string
}

func newGeminiBackend() *geminiBackend {
	return &geminiBackend{baseURL: "https://generativelanguage.googleapis.com"}
}

func (g *geminiBackend) ID() string           { return "gemini" }
func (g *geminiBackend) DefaultModel() string { return "gemini-2.0-flash-exp" }
func (g *geminiBackend) RequiresKey() bool    { return true }

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Gemini authenticates via a key query parameter rather than a header.
func (g *geminiBackend) BuildRequest(ctx context.Context, apiKey, model, prompt string) (*http.Request, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.7,
			MaxOutputTokens: 8000,
			TopP:            0.95,
			TopK:            40,
		},
	})
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, model, apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (g *geminiBackend) ParseResponse(status int, body []byte) (string, error) {
	if status != http.StatusOK {
		return "", &BackendError{Provider: g.ID(), Status: status, Msg: trimBody(body)}
	}
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &BackendError{Provider: g.ID(), Msg: "malformed response: " + err.Error()}
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &BackendError{Provider: g.ID(), Msg: "response missing candidates"}
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
