package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/talktonic/backend/internal/config"
)

type generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ArkClient sends prompts through an eino chat model backed by Volcengine Ark.
type ArkClient struct {
	model generator
}

// NewArkClient creates the Ark chat model from cfg.
func NewArkClient(ctx context.Context, cfg config.AIConfig) (*ArkClient, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return &ArkClient{model: chatModel}, nil
}

// Complete sends prompt as a single user message.
func (c *ArkClient) Complete(ctx context.Context, prompt string) Result {
	msg, err := c.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		log.Printf("[ai] ark generate failed: %v", err)
		return Failure(err)
	}
	if msg == nil {
		return Failure(fmt.Errorf("ark returned an empty message"))
	}
	return Reply(strings.TrimSpace(msg.Content))
}
