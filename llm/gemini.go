package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"media-intel/apperrors"
	"media-intel/config"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiClient calls the generateContent REST endpoint.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewGeminiClient creates a GeminiClient.
func NewGeminiClient(cfg config.LLMConfig) *GeminiClient {
	return &GeminiClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: newHTTPClient(cfg),
	}
}

// Generate sends prompt as a single user turn and returns the text of the first
// part of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "gemini generateContent"

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", &apperrors.LLMCallError{Op: op, Err: err}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?%s",
		c.baseURL, url.PathEscape(c.model), url.Values{"key": {c.apiKey}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &apperrors.LLMCallError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := do(c.httpClient, req, op)
	if err != nil {
		return "", err
	}

	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &apperrors.LLMCallError{Op: op, RawResponse: string(body), Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out.Candidates) == 0 || out.Candidates[0].Content == nil || len(out.Candidates[0].Content.Parts) == 0 {
		return "", &apperrors.LLMCallError{Op: op, RawResponse: string(body), Err: errors.New("response has no candidate text")}
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
