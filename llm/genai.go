package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"media-intel/apperrors"
	"media-intel/config"
)

// GenAIClient generates text through the Google Gen AI SDK.
type GenAIClient struct {
	client *genai.Client
	model  string
}

// NewGenAIClient creates a GenAIClient for the Gemini API backend.
func NewGenAIClient(ctx context.Context, cfg config.LLMConfig) (*GenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("genai: api key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(cfg),
	}
	if cfg.BaseURL != "" && cfg.BaseURL != config.DefaultLLMBaseURL {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIClient{client: client, model: cfg.Model}, nil
}

// Generate sends prompt as a single user turn.
func (c *GenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "genai GenerateContent"

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", &apperrors.LLMCallError{Op: op, Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &apperrors.LLMCallError{Op: op, Err: errors.New("response has no candidate text")}
	}
	return text, nil
}
