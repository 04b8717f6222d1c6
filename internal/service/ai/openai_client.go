package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to any OpenAI-compatible API through go-openai.
type OpenAIClient struct {
	baseURL string
	model   string
	apiKey  func() string
}

// NewOpenAIClient returns a client for baseURL (e.g. https://api.groq.com/openai/v1).
func NewOpenAIClient(baseURL, model string, apiKey func() string) *OpenAIClient {
	return &OpenAIClient{baseURL: baseURL, model: model, apiKey: apiKey}
}

// Complete builds a fresh SDK client per call so the key is never cached.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) Result {
	key := c.apiKey()
	if key == "" {
		return Failure(ErrMissingAPIKey)
	}

	cfg := openai.DefaultConfig(key)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return Failure(err)
	}
	if len(resp.Choices) == 0 {
		return Failure(fmt.Errorf("completion response has no choices"))
	}

	return Reply(strings.TrimSpace(resp.Choices[0].Message.Content))
}
