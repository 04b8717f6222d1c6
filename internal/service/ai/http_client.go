package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/go-resty/resty/v2"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// HTTPClient posts prompts to an OpenAI-compatible chat completions URL.
type HTTPClient struct {
	client *resty.Client
	url    string
	model  string
	apiKey func() string
}

// NewHTTPClient builds a client for url and model. apiKey is consulted on every
// call; an empty key short-circuits to ErrMissingAPIKey.
func NewHTTPClient(url, model string, apiKey func() string) *HTTPClient {
	return &HTTPClient{
		client: resty.New(),
		url:    url,
		model:  model,
		apiKey: apiKey,
	}
}

// Complete performs exactly one request/response round trip.
func (c *HTTPClient) Complete(ctx context.Context, prompt string) Result {
	key := c.apiKey()
	if key == "" {
		return Failure(ErrMissingAPIKey)
	}

	body := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+key).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.url)
	if err != nil {
		log.Printf("[ai] completion request failed: %v", err)
		return Failure(err)
	}

	if resp.IsError() {
		return Failure(fmt.Errorf("%s for url: %s", resp.Status(), c.url))
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return Failure(fmt.Errorf("decode completion response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return Failure(fmt.Errorf("completion response has no choices"))
	}

	return Reply(strings.TrimSpace(parsed.Choices[0].Message.Content))
}
