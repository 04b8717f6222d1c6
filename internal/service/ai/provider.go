package ai

import (
	"context"
	"log"

	"github.com/zhouzirui/talktonic/backend/internal/config"
)

// NewCompleter picks the completion backend named by cfg.Completion.Provider.
// An Ark provider without usable credentials falls back to the HTTP client.
func NewCompleter(ctx context.Context, cfg *config.Config) Completer {
	completion := cfg.Completion

	switch completion.Provider {
	case config.ProviderOpenAI:
		log.Printf("[ai] using openai-compatible provider at %s", completion.OpenAIBaseURL)
		return NewOpenAIClient(completion.OpenAIBaseURL, completion.Model, completion.APIKey)
	case config.ProviderArk:
		client, err := NewArkClient(ctx, cfg.AI)
		if err == nil {
			log.Printf("[ai] using ark provider with model %s", cfg.AI.Model)
			return client
		}
		log.Printf("[ai] ark provider unavailable: %v", err)
		log.Println("[ai] falling back to the groq http provider")
	}

	log.Printf("[ai] using http provider at %s (model %s)", completion.URL, completion.Model)
	return NewHTTPClient(completion.URL, completion.Model, completion.APIKey)
}
