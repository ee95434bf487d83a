// Package llm talks to the language models that write campaign summaries.
package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"media-intel/apperrors"
	"media-intel/config"
)

// Client generates text for a single-turn prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Providers accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderChat   = "chat"
	ProviderGenAI  = "genai"
)

// Defaults for the OpenAI-compatible chat provider.
const (
	DefaultChatBaseURL = "https://api.deepseek.com/v1"
	DefaultChatModel   = "deepseek-chat"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// New builds the client selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		return NewGeminiClient(cfg), nil
	case ProviderChat:
		if cfg.BaseURL == "" || cfg.BaseURL == config.DefaultLLMBaseURL {
			cfg.BaseURL = DefaultChatBaseURL
		}
		if cfg.Model == "" || cfg.Model == config.DefaultLLMModel {
			cfg.Model = DefaultChatModel
		}
		return NewChatClient(cfg), nil
	case ProviderGenAI:
		return NewGenAIClient(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}

func newHTTPClient(cfg config.LLMConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// do sends req and returns the body of a 2xx response. Any other outcome is an
// *apperrors.LLMCallError.
func do(client *http.Client, req *http.Request, op string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, &apperrors.LLMCallError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &apperrors.LLMCallError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperrors.LLMCallError{
			Op:          op,
			StatusCode:  resp.StatusCode,
			RawResponse: string(body),
			Err:         fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return body, nil
}
