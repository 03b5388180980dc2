package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jusunglee/romanize/internal/llm"
)

type Model = anthropic.Model

const (
	ModelClaudeSonnet4_5 Model = anthropic.ModelClaudeSonnet4_5_20250929
	ModelClaudeHaiku4_5  Model = anthropic.ModelClaudeHaiku4_5_20251001
)

// Translation is short text in, short JSON out; the small model is enough.
var DefaultModel Model = ModelClaudeHaiku4_5

const defaultMaxTokens = 1024

type Client struct {
	client    anthropic.Client
	model     Model
	maxTokens int64
}

var _ llm.Client = (*Client)(nil)

func NewClient(apiKey string, model Model) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: defaultMaxTokens,
	}
}

// WithMaxTokens caps the response length. Long inputs to the translate
// endpoint need more room than the default.
func (c *Client) WithMaxTokens(n int64) *Client {
	if n > 0 {
		c.maxTokens = n
	}
	return c
}

func (c *Client) Model() string { return string(c.model) }

func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok && textBlock.Text != "" {
			return llm.StripMarkdownCodeBlocks(textBlock.Text), nil
		}
	}
	return "", errors.New("no text content in anthropic response")
}
