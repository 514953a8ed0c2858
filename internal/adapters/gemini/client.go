// Package gemini adapts the Google Gemini API to the Completer port.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"hotel_scout/internal/adapters/observability"
)

// The structuring prompts depend on the model following formatting
// instructions, so temperature stays fixed rather than configurable.
const temperature float32 = 1.0

type Client struct {
	gc        *genai.Client
	model     string
	maxTokens int32
}

func New(ctx context.Context, key, model string, maxTokens int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{gc: gc, model: model, maxTokens: int32(maxTokens)}, nil
}

// Complete sends one system+user exchange and returns the model's text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](temperature),
		MaxOutputTokens: c.maxTokens,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	start := time.Now()
	resp, err := c.gc.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	status := 200
	if err != nil {
		status = 0
	}
	observability.ObserveExternal("gemini", "generate_content", status, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
