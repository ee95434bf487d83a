package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"media-intel/apperrors"
	"media-intel/config"
)

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Message is one turn of a chat completion.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// ChatClient calls an OpenAI-compatible chat/completions endpoint such as
// DeepSeek.
type ChatClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewChatClient creates a ChatClient.
func NewChatClient(cfg config.LLMConfig) *ChatClient {
	return &ChatClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: newHTTPClient(cfg),
	}
}

// Generate sends prompt as a user message and returns the first choice.
func (c *ChatClient) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "chat completion"
	if c.apiKey == "" {
		return "", &apperrors.LLMCallError{Op: op, Err: errors.New("api key not configured")}
	}

	jsonData, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", &apperrors.LLMCallError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", &apperrors.LLMCallError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	body, err := do(c.httpClient, req, op)
	if err != nil {
		return "", err
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &apperrors.LLMCallError{Op: op, RawResponse: string(body), Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(response.Choices) == 0 {
		return "", &apperrors.LLMCallError{Op: op, RawResponse: string(body), Err: errors.New("no choices in response")}
	}
	return response.Choices[0].Message.Content, nil
}
