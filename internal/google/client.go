package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/jusunglee/romanize/internal/llm"
	"google.golang.org/genai"
)

// Model represents a Google AI model identifier
type Model string

const (
	ModelGemma3_27B   Model = "gemma-3-27b-it"
	ModelGemini2Flash Model = "gemini-2.0-flash"
	ModelGemini2_5Pro Model = "gemini-2.5-pro"
)

var DefaultModel Model = ModelGemini2Flash

type Client struct {
	client *genai.Client
	model  Model
}

var _ llm.Client = (*Client)(nil)

func NewClient(ctx context.Context, apiKey string, model Model) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

func (c *Client) Model() string { return string(c.model) }

func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	// Gemma has no system instructions, so the system prompt is prepended.
	fullPrompt := system + "\n\n" + prompt

	result, err := c.client.Models.GenerateContent(ctx, string(c.model),
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: fullPrompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: c.responseMIMEType()},
	)
	if err != nil {
		return "", fmt.Errorf("google API call failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("empty response from google")
	}
	return llm.StripMarkdownCodeBlocks(text), nil
}

// responseMIMEType asks Gemini models for raw JSON. Gemma rejects the option.
func (c *Client) responseMIMEType() string {
	if c.model == ModelGemma3_27B {
		return ""
	}
	return "application/json"
}
